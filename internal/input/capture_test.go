package input

import (
	"testing"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/grid"
)

func newCapture(st board.State) (*Capture, *[]board.Move) {
	m := board.NewModel()
	m.Replace(st)
	c := NewCapture(m, grid.NewMapper(grid.DefaultCellSize))
	var emitted []board.Move
	c.OnMove(func(mv board.Move) { emitted = append(emitted, mv) })
	return c, &emitted
}

func TestOccupiedThenEmptyEmitsMove(t *testing.T) {
	c, emitted := newCapture(board.State{"A2": "wPawn"})
	if _, ok := c.Click("A2"); ok {
		t.Fatalf("first click must not emit")
	}
	if c.State() != FromSelected {
		t.Fatalf("state = %s", c.State())
	}
	mv, ok := c.Click("B3")
	if !ok || mv.From != "A2" || mv.To != "B3" {
		t.Fatalf("unexpected move %+v ok=%v", mv, ok)
	}
	if len(*emitted) != 1 || (*emitted)[0] != mv {
		t.Fatalf("expected exactly one emitted move, got %v", *emitted)
	}
	if c.State() != Idle {
		t.Fatalf("expected IDLE after completion, got %s", c.State())
	}
}

func TestEmptyFirstClickDiscarded(t *testing.T) {
	c, emitted := newCapture(board.State{"A2": "wPawn"})
	if _, ok := c.Click("A3"); ok {
		t.Fatalf("click on empty square emitted a move")
	}
	if c.State() != Idle || len(*emitted) != 0 {
		t.Fatalf("state=%s emitted=%v", c.State(), *emitted)
	}
	if _, sel := c.Selected(); sel {
		t.Fatalf("nothing should be selected")
	}
}

func TestSameSquareTwiceIsSubmitted(t *testing.T) {
	c, _ := newCapture(board.State{"E2": "wPawn"})
	c.Click("E2")
	mv, ok := c.Click("E2")
	if !ok || mv.From != "E2" || mv.To != "E2" {
		t.Fatalf("expected E2-E2, got %+v ok=%v", mv, ok)
	}
}

func TestSecondClickMayLandOnAnything(t *testing.T) {
	c, _ := newCapture(board.State{"A1": "wRook", "A8": "bRook"})
	c.Click("A1")
	if sq, ok := c.Selected(); !ok || sq != "A1" {
		t.Fatalf("Selected = %s,%v", sq, ok)
	}
	mv, ok := c.Click("A8")
	if !ok || mv.To != "A8" {
		t.Fatalf("capture onto occupied square not emitted: %+v", mv)
	}
}

func TestClickPixel(t *testing.T) {
	c, _ := newCapture(board.State{"A2": "wPawn"})
	g := grid.DefaultCellSize
	// A2 is column 0, drawn row 6.
	c.ClickPixel(10, 6*g+10)
	mv, ok := c.ClickPixel(10, 4*g+1)
	if !ok || mv.From != "A2" || mv.To != "A4" {
		t.Fatalf("pixel gesture gave %+v ok=%v", mv, ok)
	}
	if _, ok := c.ClickPixel(-5, 10); ok || c.State() != Idle {
		t.Fatalf("off-board click must be ignored")
	}
}

func TestResetDropsSelection(t *testing.T) {
	c, emitted := newCapture(board.State{"A2": "wPawn"})
	c.Click("A2")
	c.Reset()
	c.Click("A3")
	if len(*emitted) != 0 || c.State() != Idle {
		t.Fatalf("reset did not clear the gesture")
	}
}
