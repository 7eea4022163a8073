package board

// PieceID names a piece's colour and type ("wRook"). The client only cares
// whether a square holds one; the value is used as an asset lookup key.
type PieceID string

// State maps occupied squares to pieces. A missing key is an empty square.
type State map[Square]PieceID

// Clone returns an independent copy of st.
func (st State) Clone() State {
	out := make(State, len(st))
	for sq, p := range st {
		out[sq] = p
	}
	return out
}

// Equal reports whether both states hold the same pieces on the same squares.
func (st State) Equal(other State) bool {
	if len(st) != len(other) {
		return false
	}
	for sq, p := range st {
		if q, ok := other[sq]; !ok || q != p {
			return false
		}
	}
	return true
}

// FromPositions converts the wire representation, dropping malformed squares
// and blank piece ids.
func FromPositions(positions map[string]string) State {
	out := make(State, len(positions))
	for k, v := range positions {
		sq, err := ParseSquare(k)
		if err != nil || v == "" {
			continue
		}
		out[sq] = PieceID(v)
	}
	return out
}

// Positions is the inverse of FromPositions.
func (st State) Positions() map[string]string {
	out := make(map[string]string, len(st))
	for sq, p := range st {
		out[string(sq)] = string(p)
	}
	return out
}
