// Package grid converts between canvas pixels and board squares. Rank 8 is
// drawn at the top, so pixel row 0 belongs to rank 8.
package grid

import "github.com/park285/cheese-board/internal/board"

// DefaultCellSize is the pixel width of one square.
const DefaultCellSize = 63

type Mapper struct {
	cell int
}

func NewMapper(cellSize int) Mapper {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return Mapper{cell: cellSize}
}

func (m Mapper) CellSize() int { return m.cell }

// Extent is the width (and height) of the drawn board in pixels.
func (m Mapper) Extent() int { return m.cell * board.Size }

// Contains reports whether (x, y) lies on the drawn board.
func (m Mapper) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Extent() && y < m.Extent()
}

// Cell returns the column and row holding pixel (x, y).
func (m Mapper) Cell(x, y int) (col, row int) {
	return x / m.cell, y / m.cell
}

func (m Mapper) PixelToSquare(x, y int) board.Square {
	col, row := m.Cell(x, y)
	return board.NewSquare(col, row)
}

// SquareToPixel returns the top-left pixel of sq's cell.
func (m Mapper) SquareToPixel(sq board.Square) (x, y int) {
	return sq.File() * m.cell, sq.Row() * m.cell
}
