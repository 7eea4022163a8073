package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"sync"
	"sync/atomic"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/grid"
	xdraw "golang.org/x/image/draw"
)

// BoardReader is the read side of the board model.
type BoardReader interface {
	Snapshot() board.State
}

// PieceSource hands out piece images without blocking. A false result means
// the image is not available yet (or never will be).
type PieceSource interface {
	Piece(id board.PieceID) (image.Image, bool)
}

var (
	lightSquare            = color.RGBA{233, 207, 163, 255}
	darkSquare             = color.RGBA{187, 136, 96, 255}
	friendlyHighlightColor = color.NRGBA{R: 182, G: 184, B: 190, A: 130}
)

// Renderer paints the board model onto a surface. Redraws are requested
// through a dirty flag and carried out by whatever drives Frame.
type Renderer struct {
	board  BoardReader
	mapper grid.Mapper
	pieces PieceSource

	dirty atomic.Bool

	selMu    sync.Mutex
	selected board.Square
}

func NewRenderer(b BoardReader, mapper grid.Mapper, pieces PieceSource) *Renderer {
	r := &Renderer{board: b, mapper: mapper, pieces: pieces}
	r.dirty.Store(true)
	return r
}

func (r *Renderer) Mapper() grid.Mapper { return r.mapper }

// Bounds is the surface size needed to hold the board.
func (r *Renderer) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.mapper.Extent(), r.mapper.Extent())
}

func (r *Renderer) RequestRedraw() { r.dirty.Store(true) }

func (r *Renderer) Dirty() bool { return r.dirty.Load() }

// SetSelection marks the origin square of a half-finished gesture; an empty
// square clears it.
func (r *Renderer) SetSelection(sq board.Square) {
	r.selMu.Lock()
	changed := r.selected != sq
	r.selected = sq
	r.selMu.Unlock()
	if changed {
		r.RequestRedraw()
	}
}

// Frame is called once per animation frame. It redraws dst only when a
// redraw was requested and reports whether it did.
func (r *Renderer) Frame(dst imagedraw.Image) bool {
	if !r.dirty.CompareAndSwap(true, false) {
		return false
	}
	r.Draw(dst)
	return true
}

// Draw performs one full pass over all 64 squares against a single
// snapshot of the board, so a concurrent replace never shows half a board.
func (r *Renderer) Draw(dst imagedraw.Image) {
	cell := r.mapper.CellSize()
	r.selMu.Lock()
	selected := r.selected
	r.selMu.Unlock()
	pieces := r.board.Snapshot()

	for _, sq := range board.AllSquares() {
		x, y := r.mapper.SquareToPixel(sq)
		rect := image.Rect(x, y, x+cell, y+cell)
		imagedraw.Draw(dst, rect, image.NewUniform(tileColor(sq.File(), sq.Row())), image.Point{}, imagedraw.Src)
		if sq == selected {
			imagedraw.Draw(dst, rect, image.NewUniform(friendlyHighlightColor), image.Point{}, imagedraw.Over)
		}

		id, ok := pieces[sq]
		if !ok || r.pieces == nil {
			continue
		}
		img, ok := r.pieces.Piece(id)
		if !ok || img == nil {
			continue
		}
		xdraw.ApproxBiLinear.Scale(dst, rect, img, img.Bounds(), xdraw.Over, nil)
	}
}

// NewSurface allocates an RGBA image sized for the board.
func (r *Renderer) NewSurface() *image.RGBA {
	return image.NewRGBA(r.Bounds())
}

func tileColor(x, y int) color.Color {
	if x%2 == y%2 {
		return darkSquare
	}
	return lightSquare
}

// EncodePNG serializes a rendered surface.
func EncodePNG(img image.Image) ([]byte, error) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}
