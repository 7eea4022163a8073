// Package journal records every move this client submits in PostgreSQL.
// It is write-mostly bookkeeping; the board shown to the player always
// comes from the chess server.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/lib/pq"

	"github.com/park285/cheese-board/internal/board"
)

const schema = `
CREATE TABLE IF NOT EXISTS client_moves (
    id           BIGSERIAL PRIMARY KEY,
    game_id      TEXT        NOT NULL,
    player_id    TEXT        NOT NULL,
    from_square  CHAR(2)     NOT NULL,
    to_square    CHAR(2)     NOT NULL,
    submit_error TEXT,
    submitted_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS client_moves_game_idx ON client_moves (game_id, submitted_at);
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Repository struct {
	db   *sql.DB
	exec execer
	now  func() time.Time
}

// Entry is one journaled submission.
type Entry struct {
	GameID      string
	PlayerID    string
	From, To    board.Square
	SubmitError string
	SubmittedAt time.Time
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db, exec: db, now: time.Now}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// EnsureSchema creates the journal table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.exec == nil {
		return nil
	}
	_, err := r.exec.ExecContext(ctx, schema)
	return err
}

// RecordMove stores one submission and the error the server answered with, if any.
func (r *Repository) RecordMove(ctx context.Context, mv board.Move, submitErr error) error {
	if r == nil || r.exec == nil {
		return nil
	}
	var errText sql.NullString
	if submitErr != nil {
		errText = sql.NullString{String: truncate(submitErr.Error(), 512), Valid: true}
	}
	const q = `INSERT INTO client_moves (game_id, player_id, from_square, to_square, submit_error, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.exec.ExecContext(ctx, q,
		mv.GameID,
		mv.PlayerID,
		mv.From.String(),
		mv.To.String(),
		errText,
		r.now().UTC(),
	)
	return err
}

// History lists the journaled submissions of a game, oldest first.
func (r *Repository) History(ctx context.Context, gameID string, limit int) ([]Entry, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT game_id, player_id, from_square, to_square, submit_error, submitted_at
FROM client_moves WHERE game_id = $1 ORDER BY submitted_at ASC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			from, to string
			errText  sql.NullString
		)
		if err := rows.Scan(&e.GameID, &e.PlayerID, &from, &to, &errText, &e.SubmittedAt); err != nil {
			return nil, err
		}
		e.From, e.To = board.Square(strings.TrimSpace(from)), board.Square(strings.TrimSpace(to))
		e.SubmitError = errText.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
