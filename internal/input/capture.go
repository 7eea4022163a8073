// Package input turns a stream of board clicks into from→to moves.
package input

import (
	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/grid"
)

type State int

const (
	Idle State = iota
	FromSelected
)

func (s State) String() string {
	switch s {
	case FromSelected:
		return "FROM_SELECTED"
	default:
		return "IDLE"
	}
}

// Occupancy answers whether a square currently holds a piece.
type Occupancy interface {
	IsEmpty(sq board.Square) bool
}

// Capture is a two-click gesture recognizer. It does not know any chess
// rules; the first click only has to land on a piece.
// Capture is driven by a single input goroutine and is not safe for
// concurrent use.
type Capture struct {
	board  Occupancy
	mapper grid.Mapper
	state  State
	from   board.Square
	onMove func(board.Move)
}

func NewCapture(b Occupancy, mapper grid.Mapper) *Capture {
	return &Capture{board: b, mapper: mapper}
}

// OnMove registers a handler called for every completed gesture.
func (c *Capture) OnMove(fn func(board.Move)) { c.onMove = fn }

func (c *Capture) State() State { return c.state }

// Selected returns the origin square while a gesture is half done.
func (c *Capture) Selected() (board.Square, bool) {
	if c.state != FromSelected {
		return "", false
	}
	return c.from, true
}

// Click feeds one click. The returned move is valid only when ok is true.
func (c *Capture) Click(sq board.Square) (mv board.Move, ok bool) {
	switch c.state {
	case Idle:
		if c.board.IsEmpty(sq) {
			return board.Move{}, false
		}
		c.from = sq
		c.state = FromSelected
		return board.Move{}, false
	default:
		mv = board.Move{From: c.from, To: sq}
		c.Reset()
		if c.onMove != nil {
			c.onMove(mv)
		}
		return mv, true
	}
}

// ClickPixel maps a canvas position to a square and feeds it to Click.
// Positions off the board are ignored.
func (c *Capture) ClickPixel(x, y int) (board.Move, bool) {
	if !c.mapper.Contains(x, y) {
		return board.Move{}, false
	}
	return c.Click(c.mapper.PixelToSquare(x, y))
}

// Reset drops a half-finished gesture.
func (c *Capture) Reset() {
	c.state = Idle
	c.from = ""
}
