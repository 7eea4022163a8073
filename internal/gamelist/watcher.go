// Package gamelist keeps a live list of the games a player takes part in.
package gamelist

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/repeat"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/pkg/chessdto"
	"go.uber.org/zap"
)

const (
	DefaultInterval = 2 * time.Second
	maxNameRunes    = 20
)

// Lister is the part of the chess server the watcher needs.
type Lister interface {
	AllGames(ctx context.Context, playerID string) ([]chessdto.GameSummary, error)
}

// Entry is one displayable line of the list.
type Entry struct {
	GameID   string
	Status   chessdto.GameStatus
	Opponent string
	YourTurn bool
	Message  string
}

type Watcher struct {
	api      Lister
	cat      *msgcat.Catalog
	logger   *zap.Logger
	interval time.Duration
	clock    repeat.Clock

	mu         sync.RWMutex
	playerID   string
	playerName string
	entries    []Entry
	onUpdate   func([]Entry)
	repeater   *repeat.Repeater
}

type Option func(*Watcher)

func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithClock(c repeat.Clock) Option { return func(w *Watcher) { w.clock = c } }

func New(api Lister, cat *msgcat.Catalog, opts ...Option) *Watcher {
	if cat == nil {
		cat = msgcat.Default()
	}
	w := &Watcher{api: api, cat: cat, logger: zap.NewNop(), interval: DefaultInterval}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetPlayer sets whose games are listed. The name decides which side of
// each game is "ours".
func (w *Watcher) SetPlayer(playerID, playerName string) {
	w.mu.Lock()
	w.playerID, w.playerName = playerID, playerName
	w.mu.Unlock()
}

// OnUpdate registers a hook called with every refreshed list.
func (w *Watcher) OnUpdate(fn func([]Entry)) {
	w.mu.Lock()
	w.onUpdate = fn
	w.mu.Unlock()
}

// Entries returns the last fetched list.
func (w *Watcher) Entries() []Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Entry(nil), w.entries...)
}

// Refresh fetches the list once. Without a player id nothing is fetched.
func (w *Watcher) Refresh(ctx context.Context) error {
	w.mu.RLock()
	playerID, name := w.playerID, w.playerName
	w.mu.RUnlock()
	if playerID == "" {
		return nil
	}
	games, err := w.api.AllGames(ctx, playerID)
	if err != nil {
		w.logger.Warn("gamelist_refresh_failed", zap.String("player_id", playerID), zap.Error(err))
		return err
	}
	entries := make([]Entry, 0, len(games))
	for _, g := range games {
		if g.GameStatus == chessdto.StatusFinished {
			continue
		}
		entries = append(entries, w.Describe(g, name))
	}

	w.mu.Lock()
	w.entries = entries
	hook := w.onUpdate
	w.mu.Unlock()
	if hook != nil {
		hook(entries)
	}
	return nil
}

// Describe builds the list line for g as seen by the player called myName.
func (w *Watcher) Describe(g chessdto.GameSummary, myName string) Entry {
	e := Entry{GameID: g.GameID.String(), Status: g.GameStatus}
	opponent, opponentColour := g.BlackPlayerName, "black"
	if myName != g.WhitePlayerName {
		opponent, opponentColour = g.WhitePlayerName, "white"
	}
	if opponent == "" {
		e.Message = w.cat.RenderOr("gamelist.waiting_join", map[string]string{"Colour": opponentColour},
			"Waiting for "+opponentColour+" player to join.")
		return e
	}
	e.Opponent = TruncateName(opponent)
	data := map[string]string{"Opponent": e.Opponent}
	// Anything but the opponent's colour, an empty turn included, counts as ours.
	if !strings.EqualFold(g.CurrentTurn, opponentColour) {
		e.YourTurn = true
		e.Message = w.cat.RenderOr("gamelist.your_turn", data, "It's your turn against "+e.Opponent+"!")
	} else {
		e.Message = w.cat.RenderOr("gamelist.waiting_move", data, "Waiting for "+e.Opponent+" to make their move.")
	}
	return e
}

// TruncateName shortens names longer than 20 characters.
func TruncateName(name string) string {
	if utf8.RuneCountInString(name) <= maxNameRunes {
		return name
	}
	return string([]rune(name)[:maxNameRunes]) + "..."
}

// Select switches to one of the listed games by building a new session for it.
func (w *Watcher) Select(gameID string) (session.Session, error) {
	w.mu.RLock()
	playerID := w.playerID
	w.mu.RUnlock()
	return session.New(gameID, playerID)
}

// Start refreshes now and then on a fixed rate until Stop.
func (w *Watcher) Start(ctx context.Context) bool {
	w.mu.Lock()
	if w.repeater != nil && w.repeater.Running() {
		w.mu.Unlock()
		return false
	}
	var opts []repeat.Option
	if w.clock != nil {
		opts = append(opts, repeat.WithClock(w.clock))
	}
	w.repeater = repeat.NewFixedRate(w.interval, func(ctx context.Context) { _ = w.Refresh(ctx) }, opts...)
	r := w.repeater
	w.mu.Unlock()
	return r.Start(ctx)
}

func (w *Watcher) Stop() {
	w.mu.RLock()
	r := w.repeater
	w.mu.RUnlock()
	if r != nil {
		r.Stop()
	}
}

// Wait blocks until the refresh loop has exited after Stop.
func (w *Watcher) Wait() {
	w.mu.RLock()
	r := w.repeater
	w.mu.RUnlock()
	if r != nil {
		r.Wait()
	}
}
