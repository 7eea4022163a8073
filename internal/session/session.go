// Package session carries the identity of the game being played. A Session is
// built once when a game is created or joined and never changes afterwards;
// switching games means building a new one.
package session

import (
	"errors"
	"strings"

	"github.com/park285/cheese-board/pkg/chessdto"
)

var (
	ErrMissingGameID   = errors.New("session: game id is required")
	ErrMissingPlayerID = errors.New("session: player id is required")
)

type Session struct {
	gameID   string
	playerID string
}

func New(gameID, playerID string) (Session, error) {
	gameID = strings.TrimSpace(gameID)
	playerID = strings.TrimSpace(playerID)
	if gameID == "" {
		return Session{}, ErrMissingGameID
	}
	if playerID == "" {
		return Session{}, ErrMissingPlayerID
	}
	return Session{gameID: gameID, playerID: playerID}, nil
}

// FromNewGame builds a session from the server's newgame response.
func FromNewGame(resp *chessdto.NewGameResponse) (Session, error) {
	if resp == nil {
		return Session{}, ErrMissingGameID
	}
	return New(resp.GameID.String(), resp.PlayerID.String())
}

func (s Session) GameID() string   { return s.gameID }
func (s Session) PlayerID() string { return s.playerID }

// Zero reports whether s was never initialised.
func (s Session) Zero() bool { return s.gameID == "" }

// WithGame returns a new session for another game played by the same player.
func (s Session) WithGame(gameID string) (Session, error) {
	return New(gameID, s.playerID)
}
