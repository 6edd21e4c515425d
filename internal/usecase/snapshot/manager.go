package snapshot

import (
	"sort"
	"sync"

	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
)

// DefaultRetention is how many snapshots the manager keeps when none is
// configured. Retention must cover at least the replay buffer window so a
// gapped symbol can always resync from a stored snapshot.
const DefaultRetention = 16

// Manager stores periodic full snapshots keyed by sequence and answers
// "latest snapshot at or before N" and "is a new snapshot due". Safe for
// concurrent use.
type Manager struct {
	mu        sync.RWMutex
	interval  uint64
	retention int
	sequences []uint64 // ascending
	snapshots map[uint64]*eventv1.OrderBookSnapshot
}

// NewManager creates a manager that signals a snapshot due every interval
// sequences and retains up to retention snapshots. Non-positive retention
// falls back to DefaultRetention.
func NewManager(interval uint64, retention int) *Manager {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Manager{
		interval:  interval,
		retention: retention,
		snapshots: make(map[uint64]*eventv1.OrderBookSnapshot),
	}
}

// Store retains the snapshot indexed by its sequence, evicting the lowest
// sequences beyond the retention bound. Re-storing a sequence replaces it.
func (m *Manager) Store(snapshot *eventv1.OrderBookSnapshot) {
	if snapshot == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seq := snapshot.Sequence
	if _, exists := m.snapshots[seq]; !exists {
		i := sort.Search(len(m.sequences), func(i int) bool { return m.sequences[i] >= seq })
		m.sequences = append(m.sequences, 0)
		copy(m.sequences[i+1:], m.sequences[i:])
		m.sequences[i] = seq
	}
	m.snapshots[seq] = snapshot

	for len(m.sequences) > m.retention {
		oldest := m.sequences[0]
		m.sequences = m.sequences[1:]
		delete(m.snapshots, oldest)
	}
}

// Before returns the latest stored snapshot with sequence <= seq.
func (m *Manager) Before(seq uint64) (*eventv1.OrderBookSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := sort.Search(len(m.sequences), func(i int) bool { return m.sequences[i] > seq })
	if i == 0 {
		return nil, false
	}
	return m.snapshots[m.sequences[i-1]], true
}

// Latest returns the most recent stored snapshot.
func (m *Manager) Latest() (*eventv1.OrderBookSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.sequences) == 0 {
		return nil, false
	}
	return m.snapshots[m.sequences[len(m.sequences)-1]], true
}

// Len returns how many snapshots are currently retained.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sequences)
}

// NeedsSnapshot reports whether the distance from the last snapshot to the
// current sequence exceeds the configured interval.
func (m *Manager) NeedsSnapshot(currentSeq, lastSnapshotSeq uint64) bool {
	if m.interval == 0 {
		return false
	}
	if currentSeq <= lastSnapshotSeq {
		return false
	}
	return currentSeq-lastSnapshotSeq >= m.interval
}
