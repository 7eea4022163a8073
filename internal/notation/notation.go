// Package notation exports board snapshots in standard chess notations.
// Piece ids are read as a colour letter followed by a piece name
// ("wRook", "bKnight"); ids that do not follow that shape are skipped.
package notation

import (
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-board/internal/board"
)

var pieceTypes = map[string]nchess.PieceType{
	"king":   nchess.King,
	"queen":  nchess.Queen,
	"rook":   nchess.Rook,
	"bishop": nchess.Bishop,
	"knight": nchess.Knight,
	"pawn":   nchess.Pawn,
}

// PieceFor maps a piece id to a chess piece.
func PieceFor(id board.PieceID) (nchess.Piece, bool) {
	s := string(id)
	if len(s) < 2 {
		return nchess.NoPiece, false
	}
	var c nchess.Color
	switch s[0] {
	case 'w', 'W':
		c = nchess.White
	case 'b', 'B':
		c = nchess.Black
	default:
		return nchess.NoPiece, false
	}
	t, ok := pieceTypes[strings.ToLower(s[1:])]
	if !ok {
		return nchess.NoPiece, false
	}
	return nchess.NewPiece(t, c), true
}

func toSquare(sq board.Square) nchess.Square {
	return nchess.NewSquare(nchess.File(sq.File()), nchess.Rank(sq.Rank()-1))
}

// ToBoard converts a snapshot into a chess board.
func ToBoard(st board.State) *nchess.Board {
	m := make(map[nchess.Square]nchess.Piece, len(st))
	for sq, id := range st {
		if !sq.Valid() {
			continue
		}
		if p, ok := PieceFor(id); ok {
			m[toSquare(sq)] = p
		}
	}
	return nchess.NewBoard(m)
}

// Placement is the piece placement field of a FEN record.
func Placement(st board.State) string {
	return ToBoard(st).String()
}

// FEN builds a full FEN record. Castling and en passant are unknown to the
// client and always written as "-".
func FEN(st board.State, whiteToMove bool) string {
	side := "w"
	if !whiteToMove {
		side = "b"
	}
	return Placement(st) + " " + side + " - - 0 1"
}

// ASCII draws the board as text, rank 8 on top.
func ASCII(st board.State) string {
	return ToBoard(st).Draw()
}
