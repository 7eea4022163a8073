package board

import "sync"

// Model holds the last authoritative board snapshot. Only the sync client
// replaces it; everything else reads.
type Model struct {
	mu    sync.RWMutex
	state State
}

func NewModel() *Model {
	return &Model{state: State{}}
}

// Replace swaps in a copy of st. Nothing of the previous snapshot survives.
func (m *Model) Replace(st State) {
	next := st.Clone()
	m.mu.Lock()
	m.state = next
	m.mu.Unlock()
}

func (m *Model) IsEmpty(sq Square) bool {
	_, ok := m.Get(sq)
	return !ok
}

func (m *Model) Get(sq Square) (PieceID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.state[sq]
	return p, ok
}

// Snapshot returns a copy of the current state.
func (m *Model) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state)
}
