package notation

import (
	"strings"
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/stubserver"
)

func TestStartingPlacement(t *testing.T) {
	got := Placement(stubserver.StandardPosition())
	if got != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" {
		t.Fatalf("placement %q", got)
	}
}

func TestFENSideToMove(t *testing.T) {
	st := board.State{"E1": "wKing", "E8": "bKing"}
	if got := FEN(st, false); got != "4k3/8/8/8/8/8/8/4K3 b - - 0 1" {
		t.Fatalf("FEN %q", got)
	}
}

func TestUnknownIDsSkipped(t *testing.T) {
	st := board.State{"A1": "wRook", "B1": "xWizard", "C1": "w", "D1": "bDragon"}
	b := ToBoard(st)
	if b.Piece(nchess.A1) != nchess.WhiteRook {
		t.Fatalf("A1 = %v", b.Piece(nchess.A1))
	}
	for _, sq := range []nchess.Square{nchess.B1, nchess.C1, nchess.D1} {
		if b.Piece(sq) != nchess.NoPiece {
			t.Fatalf("%v should be empty", sq)
		}
	}
}

func TestPieceFor(t *testing.T) {
	cases := map[board.PieceID]nchess.Piece{
		"wKing":   nchess.WhiteKing,
		"bQueen":  nchess.BlackQueen,
		"bKnight": nchess.BlackKnight,
		"wPawn":   nchess.WhitePawn,
	}
	for id, want := range cases {
		got, ok := PieceFor(id)
		if !ok || got != want {
			t.Fatalf("%s: got %v %v", id, got, ok)
		}
	}
}

func TestASCIIHasRanks(t *testing.T) {
	out := ASCII(board.State{"H8": "bRook"})
	if !strings.Contains(out, "8") || strings.Count(out, "\n") < 8 {
		t.Fatalf("unexpected drawing:\n%s", out)
	}
}
