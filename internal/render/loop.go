package render

import (
	"context"
	"image"
	"time"
)

// FrameLoop is a headless stand-in for a display's animation frame callback.
// It ticks at a fixed frame rate and lets the renderer decide whether the
// frame needs painting.
type FrameLoop struct {
	renderer *Renderer
	surface  *image.RGBA
	interval time.Duration
	onFrame  func(*image.RGBA)
}

func NewFrameLoop(r *Renderer, fps int) *FrameLoop {
	if fps <= 0 {
		fps = 60
	}
	return &FrameLoop{
		renderer: r,
		surface:  r.NewSurface(),
		interval: time.Second / time.Duration(fps),
	}
}

// OnFrame registers a hook called after every frame that actually redrew.
func (l *FrameLoop) OnFrame(fn func(*image.RGBA)) { l.onFrame = fn }

func (l *FrameLoop) Surface() *image.RGBA { return l.surface }

// Step runs a single frame.
func (l *FrameLoop) Step() bool {
	if !l.renderer.Frame(l.surface) {
		return false
	}
	if l.onFrame != nil {
		l.onFrame(l.surface)
	}
	return true
}

// Run drives frames until ctx is done.
func (l *FrameLoop) Run(ctx context.Context) error {
	t := time.NewTicker(l.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			l.Step()
		}
	}
}
