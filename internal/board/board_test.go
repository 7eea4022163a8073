package board

import (
	"errors"
	"testing"
)

func TestParseSquare(t *testing.T) {
	sq, err := ParseSquare(" e4 ")
	if err != nil || sq != "E4" {
		t.Fatalf("ParseSquare e4: got %q err=%v", sq, err)
	}
	for _, bad := range []string{"", "I1", "A9", "A0", "E44", "4E"} {
		if _, err := ParseSquare(bad); !errors.Is(err, ErrInvalidSquare) {
			t.Fatalf("expected ErrInvalidSquare for %q, got %v", bad, err)
		}
	}
}

func TestNewSquareInvertsRows(t *testing.T) {
	if got := NewSquare(0, 0); got != "A8" {
		t.Fatalf("NewSquare(0,0) = %s, want A8", got)
	}
	if got := NewSquare(7, 7); got != "H1" {
		t.Fatalf("NewSquare(7,7) = %s, want H1", got)
	}
	sq := NewSquare(4, 4)
	if sq.File() != 4 || sq.Row() != 4 || sq.Rank() != 4 {
		t.Fatalf("unexpected decomposition of %s", sq)
	}
	if n := len(AllSquares()); n != 64 {
		t.Fatalf("AllSquares len = %d", n)
	}
}

func TestModelReplaceIsWholesale(t *testing.T) {
	m := NewModel()
	if !m.IsEmpty("A1") || m.Len() != 0 {
		t.Fatalf("new model should be empty")
	}
	m.Replace(State{"A1": "wRook", "B2": "wPawn"})
	m.Replace(State{"C3": "bKnight"})
	if !m.IsEmpty("A1") || !m.IsEmpty("B2") {
		t.Fatalf("old snapshot leaked into the new one")
	}
	if p, ok := m.Get("C3"); !ok || p != "bKnight" {
		t.Fatalf("Get C3 = %q,%v", p, ok)
	}
}

func TestModelReplaceIdempotent(t *testing.T) {
	snap := State{"A1": "wRook", "E8": "bKing"}
	m := NewModel()
	m.Replace(snap)
	first := m.Snapshot()
	m.Replace(snap)
	for _, sq := range AllSquares() {
		a, aok := first[sq]
		b, bok := m.Get(sq)
		if a != b || aok != bok {
			t.Fatalf("square %s changed after second Replace: %q/%v vs %q/%v", sq, a, aok, b, bok)
		}
	}
}

func TestModelCopiesInput(t *testing.T) {
	src := State{"A1": "wRook"}
	m := NewModel()
	m.Replace(src)
	src["A1"] = "bQueen"
	delete(src, "A1")
	if p, _ := m.Get("A1"); p != "wRook" {
		t.Fatalf("model aliased caller map: %q", p)
	}
	snap := m.Snapshot()
	snap["H8"] = "bRook"
	if !m.IsEmpty("H8") {
		t.Fatalf("snapshot aliased model map")
	}
}

func TestFromPositionsDropsGarbage(t *testing.T) {
	st := FromPositions(map[string]string{"a1": "wRook", "Z9": "bPawn", "B2": ""})
	if len(st) != 1 || st["A1"] != "wRook" {
		t.Fatalf("unexpected state %v", st)
	}
	if !st.Equal(FromPositions(st.Positions())) {
		t.Fatalf("positions round trip mismatch")
	}
}
