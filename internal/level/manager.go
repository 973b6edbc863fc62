package level

import (
	"fmt"
	"log"
)

type request int

const (
	requestNone request = iota
	requestRestart
	requestNext
)

// Manager owns the level list and the level being played. Restart and next
// requests made during a frame are applied by Apply once the frame is done,
// so nothing tears down the level that is still stepping.
type Manager struct {
	levels  []*Data
	deps    Deps
	index   int
	current *Root
	pending request
}

// NewManager creates a manager over levels; call Load to build the first one
func NewManager(levels []*Data, deps Deps) *Manager {
	return &Manager{levels: levels, deps: deps, index: -1}
}

// Count returns the number of levels
func (m *Manager) Count() int {
	return len(m.levels)
}

// Index returns the position of the current level in the list
func (m *Manager) Index() int {
	return m.index
}

// CurrentLevelRoot returns the level being played, nil before the first Load
func (m *Manager) CurrentLevelRoot() *Root {
	return m.current
}

// Load builds level i from scratch and makes it current
func (m *Manager) Load(i int) error {
	if i < 0 || i >= len(m.levels) {
		return fmt.Errorf("level index %d out of range [0, %d)", i, len(m.levels))
	}
	data := m.levels[i]
	m.current = Build(data, m.deps, m)
	m.index = i
	m.pending = requestNone
	log.Printf("Loaded level %d/%d: %s", i+1, len(m.levels), data.Name)
	return nil
}

// RestartLevel requests a rebuild of the current level
func (m *Manager) RestartLevel() {
	if m.pending == requestNone {
		m.pending = requestRestart
	}
}

// GenerateNextLevel requests the next level. It wins over a restart
// requested in the same frame.
func (m *Manager) GenerateNextLevel() {
	m.pending = requestNext
}

// Pending reports whether a restart or level change is waiting for Apply
func (m *Manager) Pending() bool {
	return m.pending != requestNone
}

// Apply carries out the pending request, if any. After the last level the
// list starts over.
func (m *Manager) Apply() error {
	switch m.pending {
	case requestRestart:
		return m.Load(m.index)
	case requestNext:
		next := m.index + 1
		if next >= len(m.levels) {
			log.Println("All levels complete, starting over")
			next = 0
		}
		return m.Load(next)
	}
	return nil
}
