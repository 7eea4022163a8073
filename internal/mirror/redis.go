// Package mirror copies every applied board snapshot into Redis so other
// processes can watch a game without polling the chess server themselves.
// The client never reads these snapshots back into its own board.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/notation"
	"github.com/redis/go-redis/v9"
)

const ttlSnapshot = 24 * time.Hour

// Snapshot is the mirrored form of a board.
type Snapshot struct {
	GameID    string            `json:"gameId"`
	Positions map[string]string `json:"positions"`
	Placement string            `json:"placement"`
	SyncedAt  time.Time         `json:"syncedAt"`
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

type Option func(*Store)

func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

func NewStore(rdb *redis.Client, opts ...Option) *Store {
	s := &Store{rdb: rdb, ttl: ttlSnapshot, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to redisURL and verifies the connection.
func Dial(ctx context.Context, redisURL string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	o, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(o)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStore(rdb, opts...), nil
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func keySnapshot(gameID string) string { return Channel(gameID) + ":snapshot" }

// Channel is the pub/sub channel carrying a game's snapshots.
func Channel(gameID string) string { return "chess:board:" + strings.TrimSpace(gameID) }

// PublishSnapshot stores the latest snapshot and announces it on the game's channel.
func (s *Store) PublishSnapshot(ctx context.Context, gameID string, st board.State) error {
	raw, err := json.Marshal(Snapshot{
		GameID:    gameID,
		Positions: st.Positions(),
		Placement: notation.Placement(st),
		SyncedAt:  s.now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, keySnapshot(gameID), raw, s.ttl)
		p.Publish(ctx, Channel(gameID), raw)
		return nil
	})
	return err
}

// Load returns the last mirrored snapshot of a game, or nil if none is stored.
func (s *Store) Load(ctx context.Context, gameID string) (*Snapshot, error) {
	raw, err := s.rdb.Get(ctx, keySnapshot(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Subscribe streams the snapshots published for gameID until ctx ends.
func (s *Store) Subscribe(ctx context.Context, gameID string) (<-chan Snapshot, error) {
	sub := s.rdb.Subscribe(ctx, Channel(gameID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	out := make(chan Snapshot)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var snap Snapshot
				if err := json.Unmarshal([]byte(m.Payload), &snap); err != nil {
					continue
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
