package board

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the number of files and ranks on the board.
const Size = 8

var ErrInvalidSquare = errors.New("invalid square")

// Square is a board coordinate in file+rank notation, e.g. "E4".
type Square string

// NewSquare builds a square from a column (0 = file A) and a row counted
// from the top of the drawn board (0 = rank 8).
func NewSquare(col, row int) Square {
	return Square(fmt.Sprintf("%c%d", 'A'+col, Size-row))
}

// ParseSquare validates and normalizes s ("e4" → "E4").
func ParseSquare(s string) (Square, error) {
	sq := Square(strings.ToUpper(strings.TrimSpace(s)))
	if !sq.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return sq, nil
}

func (s Square) Valid() bool {
	if len(s) != 2 {
		return false
	}
	return s[0] >= 'A' && s[0] <= 'H' && s[1] >= '1' && s[1] <= '8'
}

// File returns the zero-based column (A = 0).
func (s Square) File() int { return int(s[0] - 'A') }

// Rank returns the rank number 1..8.
func (s Square) Rank() int { return int(s[1] - '0') }

// Row returns the zero-based drawn row; rank 8 is row 0.
func (s Square) Row() int { return Size - s.Rank() }

func (s Square) String() string { return string(s) }

// AllSquares lists the 64 squares in drawing order, rank 8 first.
func AllSquares() []Square {
	out := make([]Square, 0, Size*Size)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			out = append(out, NewSquare(col, row))
		}
	}
	return out
}
