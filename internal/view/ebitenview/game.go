// Package ebitenview shows the board in a desktop window.
package ebitenview

import (
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/view"
	"go.uber.org/zap"
)

// Poller is the piece of the sync client the window tears down on close.
type Poller interface {
	StopPolling()
}

// Game implements ebiten.Game. Each Update forwards new clicks; each Draw
// gives the renderer its animation frame and blits the last painted board.
type Game struct {
	renderer *render.Renderer
	ctrl     *view.Controller
	poller   Poller
	logger   *zap.Logger

	surface *image.RGBA
	board   *ebiten.Image

	closeOnce sync.Once
}

func New(r *render.Renderer, ctrl *view.Controller, poller Poller, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		renderer: r,
		ctrl:     ctrl,
		poller:   poller,
		logger:   logger,
		surface:  r.NewSurface(),
	}
}

func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.Close()
		return ebiten.Termination
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.ctrl.Click(x, y)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.ctrl.Cancel()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.board == nil {
		b := g.surface.Bounds()
		g.board = ebiten.NewImage(b.Dx(), b.Dy())
		g.renderer.RequestRedraw()
	}
	if g.renderer.Frame(g.surface) {
		g.board.WritePixels(g.surface.Pix)
	}
	screen.DrawImage(g.board, nil)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.surface.Bounds()
	return b.Dx(), b.Dy()
}

// Close stops polling and waits for pending submissions. Safe to call twice.
func (g *Game) Close() {
	g.closeOnce.Do(func() {
		if g.poller != nil {
			g.poller.StopPolling()
		}
		g.ctrl.Close()
		g.logger.Info("board_view_closed")
	})
}

// Run opens the window and blocks until it is closed.
func Run(g *Game, title string, fps int) error {
	b := g.surface.Bounds()
	ebiten.SetWindowSize(b.Dx(), b.Dy())
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowClosingHandled(true)
	if fps > 0 {
		ebiten.SetTPS(fps)
	}
	defer g.Close()
	err := ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{ScreenTransparent: false})
	if err == ebiten.Termination {
		return nil
	}
	return err
}
