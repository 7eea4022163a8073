// Package stubserver is an in-memory stand-in for the authoritative chess
// server. It speaks the same HTTP surface as the real one but performs no
// rule validation: a move simply relocates whatever stands on its origin.
package stubserver

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/pkg/chessdto"
	"go.uber.org/zap"
)

const (
	TurnWhite = "WHITE"
	TurnBlack = "BLACK"
)

// FaultFunc lets tests fail selected requests. Returning 0 lets the request through.
type FaultFunc func(r *http.Request) int

type game struct {
	id        string
	whiteID   string
	whiteName string
	blackID   string
	blackName string
	turn      string
	status    chessdto.GameStatus
	positions board.State
}

func (g *game) free() bool { return g.blackID == "" }

func (g *game) has(playerID string) bool {
	return playerID != "" && (g.whiteID == playerID || g.blackID == playerID)
}

type Server struct {
	mu     sync.Mutex
	games  map[string]*game
	order  []string
	nextID int
	fault  FaultFunc
	assets fs.FS
	logger *zap.Logger
	counts sync.Map // path -> *atomic.Int64
	router chi.Router
}

type Option func(*Server)

func WithAssets(fsys fs.FS) Option { return func(s *Server) { s.assets = fsys } }

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(opts ...Option) *Server {
	s := &Server{games: map[string]*game{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)
	r.Use(s.injectFaults)
	r.Route("/chess/v1", func(r chi.Router) {
		r.Get("/newgame", s.handleNewGame)
		r.Get("/gamestate", s.handleGameState)
		r.Post("/makemove", s.handleMakeMove)
		r.Get("/allgames/", s.handleAllGames)
		r.Get("/allgames", s.handleAllGames)
	})
	if s.assets != nil {
		r.Handle("/images/*", http.FileServer(http.FS(s.assets)))
	}
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// SetFault installs (or clears with nil) a fault injector.
func (s *Server) SetFault(f FaultFunc) {
	s.mu.Lock()
	s.fault = f
	s.mu.Unlock()
}

// Requests returns how many requests reached path.
func (s *Server) Requests(path string) int64 {
	if v, ok := s.counts.Load(path); ok {
		return v.(*atomic.Int64).Load()
	}
	return 0
}

// SetPositions overwrites the board of a game.
func (s *Server) SetPositions(gameID string, st board.State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if ok {
		g.positions = st.Clone()
	}
	return ok
}

// Positions returns a copy of a game's board.
func (s *Server) Positions(gameID string) (board.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok {
		return nil, false
	}
	return g.positions.Clone(), true
}

// Finish marks a game as finished.
func (s *Server) Finish(gameID string) {
	s.mu.Lock()
	if g, ok := s.games[gameID]; ok {
		g.status = chessdto.StatusFinished
	}
	s.mu.Unlock()
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, _ := s.counts.LoadOrStore(r.URL.Path, new(atomic.Int64))
		v.(*atomic.Int64).Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f := s.fault
		s.mu.Unlock()
		if f != nil {
			if code := f(r); code != 0 {
				http.Error(w, http.StatusText(code), code)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// handleNewGame seats the caller in the oldest game still waiting for an
// opponent, or opens a new one.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.Header.Get("X-Player-Name"))

	s.mu.Lock()
	s.nextID++
	playerID := strconv.Itoa(s.nextID)
	if name == "" {
		name = "player-" + playerID
	}
	var g *game
	for _, id := range s.order {
		if cand := s.games[id]; cand.free() && cand.status != chessdto.StatusFinished {
			g = cand
			break
		}
	}
	colour := TurnBlack
	if g != nil {
		g.blackID, g.blackName = playerID, name
		g.status = chessdto.StatusInProgress
	} else {
		s.nextID++
		g = &game{
			id:        strconv.Itoa(s.nextID),
			whiteID:   playerID,
			whiteName: name,
			turn:      TurnWhite,
			status:    chessdto.StatusWaiting,
			positions: StandardPosition(),
		}
		s.games[g.id] = g
		s.order = append(s.order, g.id)
		colour = TurnWhite
	}
	gameID := g.id
	s.mu.Unlock()

	s.logger.Info("stub_new_game", zap.String("game_id", gameID), zap.String("player_id", playerID), zap.String("colour", colour))
	writeJSON(w, http.StatusOK, chessdto.NewGameResponse{GameID: chessdto.ID(gameID), PlayerID: chessdto.ID(playerID), Colour: colour})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	gameID := strings.TrimSpace(r.URL.Query().Get("gameId"))
	if gameID == "" {
		http.Error(w, "gameId required", http.StatusBadRequest)
		return
	}
	st, ok := s.Positions(gameID)
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, chessdto.GameState{Positions: st.Positions()})
}

// handleMakeMove never reports rejection; like the real server it logs and
// leaves the board as it was.
func (s *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	var req chessdto.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad move body", http.StatusBadRequest)
		return
	}
	if reason := s.apply(req); reason != "" {
		s.logger.Warn("stub_move_ignored",
			zap.String("game_id", req.GameID),
			zap.String("player_id", req.PlayerID),
			zap.String("move", req.From+"-"+req.To),
			zap.String("reason", reason),
		)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) apply(req chessdto.MoveRequest) string {
	from, err := board.ParseSquare(req.From)
	if err != nil {
		return "bad from square"
	}
	to, err := board.ParseSquare(req.To)
	if err != nil {
		return "bad to square"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[req.GameID]
	switch {
	case !ok:
		return "game not found"
	case !g.has(req.PlayerID):
		return "player not in game"
	case g.status != chessdto.StatusInProgress:
		return "game not in progress"
	case (g.turn == TurnWhite) != (g.whiteID == req.PlayerID):
		return "not player's turn"
	}
	piece, ok := g.positions[from]
	if !ok {
		return "origin square empty"
	}
	if from == to {
		return "null move"
	}
	delete(g.positions, from)
	g.positions[to] = piece
	if g.turn == TurnWhite {
		g.turn = TurnBlack
	} else {
		g.turn = TurnWhite
	}
	return ""
}

func (s *Server) handleAllGames(w http.ResponseWriter, r *http.Request) {
	playerID := strings.TrimSpace(r.URL.Query().Get("playerId"))
	s.mu.Lock()
	out := make([]chessdto.GameSummary, 0)
	for _, id := range s.order {
		g := s.games[id]
		if !g.has(playerID) {
			continue
		}
		out = append(out, chessdto.GameSummary{
			GameID:          chessdto.ID(g.id),
			GameStatus:      g.status,
			WhitePlayerName: g.whiteName,
			BlackPlayerName: g.blackName,
			CurrentTurn:     g.turn,
		})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StandardPosition is the usual starting layout using the client's piece ids.
func StandardPosition() board.State {
	back := []string{"Rook", "Knight", "Bishop", "Queen", "King", "Bishop", "Knight", "Rook"}
	st := board.State{}
	for col, name := range back {
		file := string(rune('A' + col))
		st[board.Square(file+"1")] = board.PieceID("w" + name)
		st[board.Square(file+"2")] = "wPawn"
		st[board.Square(file+"7")] = "bPawn"
		st[board.Square(file+"8")] = board.PieceID("b" + name)
	}
	return st
}
