package snapshot

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/Carrerajorge/Hola-sub011/internal/grid"
	"github.com/Carrerajorge/Hola-sub011/internal/logging"
)

// Manager autosaves a grid after edits. Edits mark the manager dirty and
// each mark restarts a short debounce timer, so a burst of edits ends in a
// single write.
type Manager struct {
	store        *Store
	source       func() grid.Snapshot
	mu           sync.Mutex
	dirty        bool
	last         *grid.Snapshot // last written state, for change summaries
	saveTimer    *time.Timer
	saveDuration time.Duration
}

// NewManager creates a manager that persists to dir. source is called at
// save time to capture the current grid state.
func NewManager(dir string, source func() grid.Snapshot) *Manager {
	return &Manager{
		store:        NewStore(dir),
		source:       source,
		saveDuration: 2 * time.Second, // Debounce saves
	}
}

// MarkDirty records an unsaved change and schedules a debounced save.
func (m *Manager) MarkDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dirty = true

	// Cancel any pending save timer
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	// Schedule a debounced save
	m.saveTimer = time.AfterFunc(m.saveDuration, func() {
		m.mu.Lock()
		dirty := m.dirty
		m.mu.Unlock()
		if dirty {
			_ = m.Flush() // Ignore errors for background save
		}
	})
}

// Flush writes a snapshot now, regardless of the dirty flag.
func (m *Manager) Flush() error {
	snap := m.source()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}

	path, err := m.store.Save(snap)
	if err != nil {
		return err
	}
	m.dirty = false

	if m.last != nil {
		if d := Compare(*m.last, snap); !d.Empty() {
			logging.Debug.Printf("Snapshot %s: %s", filepath.Base(path), d)
		}
	} else {
		logging.Debug.Printf("Snapshot %s: %d cells", filepath.Base(path), len(snap.Cells))
	}
	m.last = &snap

	return nil
}

// Close ensures any pending save is written
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}
	dirty := m.dirty
	m.mu.Unlock()

	if dirty {
		return m.Flush()
	}
	return nil
}
