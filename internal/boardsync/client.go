// Package boardsync keeps the local board model in step with the server.
//
// The server is authoritative: every successful poll replaces the whole
// board, and a submitted move only becomes visible once a poll brings it
// back. Submissions are always followed by exactly one poll, whatever the
// server said about the move.
package boardsync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/repeat"
	"github.com/park285/cheese-board/internal/session"
	"github.com/park285/cheese-board/pkg/chessdto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultPollInterval is the fixed delay between board polls.
const DefaultPollInterval = 5 * time.Second

var ErrNoSession = errors.New("no game session")

// API is the part of the chess server the sync client needs.
type API interface {
	GameState(ctx context.Context, gameID string) (*chessdto.GameState, error)
	MakeMove(ctx context.Context, req chessdto.MoveRequest) error
}

// Redrawer is notified whenever the model changes.
type Redrawer interface {
	RequestRedraw()
}

// SnapshotSink receives every snapshot applied to the model.
type SnapshotSink interface {
	PublishSnapshot(ctx context.Context, gameID string, st board.State) error
}

// MoveRecorder receives every submission together with its outcome.
type MoveRecorder interface {
	RecordMove(ctx context.Context, mv board.Move, submitErr error) error
}

type Client struct {
	api    API
	model  *board.Model
	redraw Redrawer
	logger *zap.Logger

	sink     SnapshotSink
	recorder MoveRecorder
	clock    repeat.Clock

	pollTimeout time.Duration

	limiter    *rate.Limiter
	suppressed atomic.Int64

	mu         sync.RWMutex
	sess       session.Session
	onSnapshot func(board.State)
	poller     *repeat.Repeater

	lastSync atomic.Int64
}

type Option func(*Client)

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithSnapshotSink(s SnapshotSink) Option { return func(c *Client) { c.sink = s } }

func WithMoveRecorder(r MoveRecorder) Option { return func(c *Client) { c.recorder = r } }

// WithClock sets the clock used for poll scheduling.
func WithClock(clock repeat.Clock) Option { return func(c *Client) { c.clock = clock } }

// WithPollTimeout bounds the poll that follows each submission.
func WithPollTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollTimeout = d
		}
	}
}

// WithFailureLogLimit throttles poll failure logs to r events per second.
func WithFailureLogLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

func New(api API, model *board.Model, redraw Redrawer, sess session.Session, opts ...Option) *Client {
	c := &Client{
		api:     api,
		model:   model,
		redraw:  redraw,
		sess:        sess,
		logger:      zap.NewNop(),
		pollTimeout: 10 * time.Second,
		limiter:     rate.NewLimiter(rate.Every(30*time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() session.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess
}

// SetSession switches the client to another game. Polls already in flight
// for the previous game are discarded when they complete.
func (c *Client) SetSession(s session.Session) {
	c.mu.Lock()
	c.sess = s
	c.mu.Unlock()
}

// OnSnapshot registers a hook called after each applied snapshot.
func (c *Client) OnSnapshot(fn func(board.State)) {
	c.mu.Lock()
	c.onSnapshot = fn
	c.mu.Unlock()
}

// LastSync reports when a poll last succeeded.
func (c *Client) LastSync() time.Time {
	n := c.lastSync.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// PollOnce fetches the game state and replaces the model with it. On
// failure the model is left exactly as it was.
func (c *Client) PollOnce(ctx context.Context) error {
	sess := c.Session()
	if sess.Zero() {
		return ErrNoSession
	}
	gameID := sess.GameID()

	st, err := c.api.GameState(ctx, gameID)
	if err != nil {
		c.logPollFailure(gameID, err)
		return err
	}
	snapshot := board.FromPositions(st.Positions)

	c.mu.RLock()
	current := c.sess.GameID()
	hook := c.onSnapshot
	c.mu.RUnlock()
	if current != gameID {
		c.logger.Debug("board_poll_stale", zap.String("game_id", gameID), zap.String("current_game_id", current))
		return nil
	}

	c.model.Replace(snapshot)
	c.lastSync.Store(time.Now().UnixNano())
	if c.redraw != nil {
		c.redraw.RequestRedraw()
	}
	if hook != nil {
		hook(snapshot)
	}
	if c.sink != nil {
		if err := c.sink.PublishSnapshot(ctx, gameID, snapshot); err != nil {
			c.logger.Warn("board_snapshot_publish_failed", zap.String("game_id", gameID), zap.Error(err))
		}
	}
	return nil
}

func (c *Client) logPollFailure(gameID string, err error) {
	if !c.limiter.Allow() {
		c.suppressed.Add(1)
		return
	}
	c.logger.Warn("board_poll_failed",
		zap.String("game_id", gameID),
		zap.Int64("suppressed", c.suppressed.Swap(0)),
		zap.Error(err),
	)
}

// SubmitMove sends mv with the session's identifiers and then polls once,
// whether or not the submission succeeded. The returned error is the
// submission's.
func (c *Client) SubmitMove(ctx context.Context, mv board.Move) error {
	sess := c.Session()
	if sess.Zero() {
		return ErrNoSession
	}
	mv.GameID, mv.PlayerID = sess.GameID(), sess.PlayerID()

	err := c.api.MakeMove(ctx, chessdto.MoveRequest{
		From:     mv.From.String(),
		To:       mv.To.String(),
		GameID:   mv.GameID,
		PlayerID: mv.PlayerID,
	})
	if err != nil {
		c.logger.Warn("move_submit_failed", zap.String("game_id", mv.GameID), zap.String("move", mv.String()), zap.Error(err))
	} else {
		c.logger.Info("move_submitted", zap.String("game_id", mv.GameID), zap.String("move", mv.String()))
	}
	if c.recorder != nil {
		if rerr := c.recorder.RecordMove(ctx, mv, err); rerr != nil {
			c.logger.Warn("move_record_failed", zap.String("game_id", mv.GameID), zap.Error(rerr))
		}
	}

	// The submission may have failed because ctx ended; the poll still runs.
	pollCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.pollTimeout)
	defer cancel()
	_ = c.PollOnce(pollCtx)
	return err
}

// StartPolling polls now and then again interval after each poll
// completes. It returns false if polling is already running.
func (c *Client) StartPolling(interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	c.mu.Lock()
	if c.poller != nil && c.poller.Running() {
		c.mu.Unlock()
		return false
	}
	var opts []repeat.Option
	if c.clock != nil {
		opts = append(opts, repeat.WithClock(c.clock))
	}
	p := repeat.NewFixedDelay(interval, func(ctx context.Context) { _ = c.PollOnce(ctx) }, opts...)
	c.poller = p
	c.mu.Unlock()

	c.logger.Info("board_polling_started", zap.Duration("interval", interval))
	return p.Start(context.Background())
}

// StopPolling cancels future polls. A poll already on the wire completes.
func (c *Client) StopPolling() {
	c.mu.Lock()
	p := c.poller
	c.mu.Unlock()
	if p == nil || !p.Running() {
		return
	}
	p.Stop()
	c.logger.Info("board_polling_stopped")
}

// Wait blocks until the polling loop has exited after StopPolling.
func (c *Client) Wait() {
	c.mu.RLock()
	p := c.poller
	c.mu.RUnlock()
	if p != nil {
		p.Wait()
	}
}

func (c *Client) Polling() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.poller != nil && c.poller.Running()
}
