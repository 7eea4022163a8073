package view

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/grid"
	"github.com/park285/cheese-board/internal/input"
)

type recorder struct {
	mu    sync.Mutex
	moves []board.Move
	sel   []board.Square
	err   error
}

func (r *recorder) SubmitMove(_ context.Context, mv board.Move) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, mv)
	return r.err
}

func (r *recorder) SetSelection(sq board.Square) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sel = append(r.sel, sq)
}

func setup(t *testing.T, err error) (*Controller, *recorder, grid.Mapper) {
	t.Helper()
	m := grid.NewMapper(grid.DefaultCellSize)
	model := board.NewModel()
	model.Replace(board.State{"A2": "wPawn"})
	rec := &recorder{err: err}
	c := NewController(input.NewCapture(model, m), rec, rec)
	t.Cleanup(c.Close)
	return c, rec, m
}

func clickSquare(c *Controller, m grid.Mapper, sq board.Square) {
	x, y := m.SquareToPixel(sq)
	c.Click(x+1, y+1)
}

func TestClickSequenceSubmits(t *testing.T) {
	c, rec, m := setup(t, nil)
	clickSquare(c, m, "A2")
	clickSquare(c, m, "A4")
	c.Wait()

	if len(rec.moves) != 1 || rec.moves[0].From != "A2" || rec.moves[0].To != "A4" {
		t.Fatalf("moves %+v", rec.moves)
	}
	if len(rec.sel) != 2 || rec.sel[0] != "A2" || rec.sel[1] != "" {
		t.Fatalf("selection updates %v", rec.sel)
	}
	mv, err := c.Last()
	if err != nil || mv.To != "A4" {
		t.Fatalf("Last = %v, %v", mv, err)
	}
}

func TestEmptyFirstClickIgnored(t *testing.T) {
	c, rec, m := setup(t, nil)
	clickSquare(c, m, "E4")
	c.Click(-5, 10)
	c.Wait()
	if len(rec.moves) != 0 {
		t.Fatalf("unexpected submission %+v", rec.moves)
	}
}

func TestCancelClearsSelection(t *testing.T) {
	c, rec, m := setup(t, nil)
	clickSquare(c, m, "A2")
	c.Cancel()
	clickSquare(c, m, "A4")
	c.Wait()
	if len(rec.moves) != 0 {
		t.Fatalf("cancelled gesture submitted")
	}
	if rec.sel[len(rec.sel)-1] != "" {
		t.Fatalf("selection not cleared")
	}
}

func TestSubmitErrorReported(t *testing.T) {
	boom := errors.New("boom")
	c, _, m := setup(t, boom)
	var got error
	c.onResult = func(_ board.Move, err error) { got = err }
	clickSquare(c, m, "A2")
	clickSquare(c, m, "A2")
	c.Wait()
	if !errors.Is(got, boom) {
		t.Fatalf("hook error %v", got)
	}
	if _, err := c.Last(); !errors.Is(err, boom) {
		t.Fatalf("Last error %v", err)
	}
}
