// Package view connects pointer input to the move gesture and the board
// renderer. The windowing layer only forwards clicks and frames.
package view

import (
	"context"
	"sync"
	"time"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/input"
	"go.uber.org/zap"
)

// Submitter sends a finished move to the server.
type Submitter interface {
	SubmitMove(ctx context.Context, mv board.Move) error
}

// Selector shows which square a half-finished gesture started on.
type Selector interface {
	SetSelection(sq board.Square)
}

type Controller struct {
	capture *input.Capture
	sel     Selector
	submit  Submitter
	logger  *zap.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	lastMove board.Move
	lastErr  error
	onResult func(board.Move, error)
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSubmitTimeout bounds each submission including its follow-up poll.
func WithSubmitTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithResultHook registers fn to run after every submission.
func WithResultHook(fn func(board.Move, error)) Option {
	return func(c *Controller) { c.onResult = fn }
}

func NewController(capture *input.Capture, sel Selector, submit Submitter, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		capture: capture,
		sel:     sel,
		submit:  submit,
		logger:  zap.NewNop(),
		timeout: 15 * time.Second,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Click handles a click at canvas position (x, y). A completed gesture is
// submitted in the background so the frame loop never waits on the network.
func (c *Controller) Click(x, y int) {
	mv, ok := c.capture.ClickPixel(x, y)
	sq, _ := c.capture.Selected()
	if c.sel != nil {
		c.sel.SetSelection(sq)
	}
	if !ok {
		return
	}
	c.logger.Debug("move_gesture_completed", zap.String("move", mv.String()))
	c.wg.Add(1)
	go c.send(mv)
}

// Cancel drops a half-finished gesture.
func (c *Controller) Cancel() {
	c.capture.Reset()
	if c.sel != nil {
		c.sel.SetSelection("")
	}
}

func (c *Controller) send(mv board.Move) {
	defer c.wg.Done()
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()
	err := c.submit.SubmitMove(ctx, mv)

	c.mu.Lock()
	c.lastMove, c.lastErr = mv, err
	hook := c.onResult
	c.mu.Unlock()
	if hook != nil {
		hook(mv, err)
	}
}

// Last returns the most recent submission and its outcome.
func (c *Controller) Last() (board.Move, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMove, c.lastErr
}

// Wait blocks until in-flight submissions have returned.
func (c *Controller) Wait() { c.wg.Wait() }

// Close aborts in-flight submissions and waits for them.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}
