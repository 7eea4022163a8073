// Package repeat runs a task over and over until stopped.
//
// Two pacings are offered. FixedDelay waits the interval after each run has
// completed, so slow runs push later runs back. FixedRate aims at fixed
// ticks measured from the first run and drops ticks that elapse while a run
// is still in flight.
package repeat

import (
	"context"
	"sync"
	"time"
)

type Mode int

const (
	FixedDelay Mode = iota
	FixedRate
)

func (m Mode) String() string {
	if m == FixedRate {
		return "fixed_rate"
	}
	return "fixed_delay"
}

// Task is one unit of repeated work.
type Task func(ctx context.Context)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type Repeater struct {
	mode     Mode
	interval time.Duration
	task     Task
	clock    Clock

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Repeater)

func WithClock(c Clock) Option {
	return func(r *Repeater) {
		if c != nil {
			r.clock = c
		}
	}
}

func New(mode Mode, interval time.Duration, task Task, opts ...Option) *Repeater {
	if interval <= 0 {
		interval = time.Second
	}
	r := &Repeater{mode: mode, interval: interval, task: task, clock: realClock{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func NewFixedDelay(interval time.Duration, task Task, opts ...Option) *Repeater {
	return New(FixedDelay, interval, task, opts...)
}

func NewFixedRate(interval time.Duration, task Task, opts ...Option) *Repeater {
	return New(FixedRate, interval, task, opts...)
}

func (r *Repeater) Interval() time.Duration { return r.interval }
func (r *Repeater) Mode() Mode              { return r.mode }

// Start runs the task immediately and keeps repeating it. The task receives
// ctx itself: Stop only cancels scheduling, never a run in progress. Calling
// Start on a running repeater is a no-op and returns false.
func (r *Repeater) Start(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return false
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(ctx, loopCtx, r.done)
	return true
}

// Stop cancels future runs. It does not wait for a run in flight; use Wait
// for that.
func (r *Repeater) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()
}

// Wait blocks until the loop goroutine of the last Start has exited.
func (r *Repeater) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (r *Repeater) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// release marks the repeater stopped once the loop that owns done exits,
// including when the parent context of Start was cancelled.
func (r *Repeater) release(done chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == done && r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Repeater) loop(taskCtx, loopCtx context.Context, done chan struct{}) {
	defer close(done)
	defer r.release(done)
	next := r.clock.Now()
	for {
		if loopCtx.Err() != nil {
			return
		}
		r.task(taskCtx)
		if loopCtx.Err() != nil {
			return
		}

		var wait time.Duration
		switch r.mode {
		case FixedRate:
			now := r.clock.Now()
			next = next.Add(r.interval)
			for !next.After(now) {
				next = next.Add(r.interval)
			}
			wait = next.Sub(now)
		default:
			wait = r.interval
		}

		select {
		case <-loopCtx.Done():
			return
		case <-r.clock.After(wait):
		}
	}
}
