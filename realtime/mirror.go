package realtime

import (
	"sync"

	"rievent_server/store"
)

// SlotState describes what the mirror knows about a key.
type SlotState int

const (
	// SlotAbsent means no snapshot has ever been delivered for the key.
	SlotAbsent SlotState = iota
	// SlotKnown means the slot holds the last delivered snapshot.
	SlotKnown
	// SlotUnknown means the key's stream errored; the slot holds no data
	// rather than stale data.
	SlotUnknown
)

// Slot is one mirror entry: the last-known-good snapshot for a key, or an
// explicit unknown marker.
type Slot struct {
	State    SlotState
	Snapshot store.Snapshot
}

// Mirror is the in-process cache of the last delivered snapshot per
// subscribed key. Semantics are replace-the-whole-value: every delivery is
// the complete authoritative state for its key.
type Mirror struct {
	mu    sync.RWMutex
	slots map[string]Slot
}

// NewMirror returns an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{slots: map[string]Slot{}}
}

// Replace atomically installs snap as the current value for key.
func (m *Mirror) Replace(key string, snap store.Snapshot) {
	m.mu.Lock()
	m.slots[key] = Slot{State: SlotKnown, Snapshot: snap}
	m.mu.Unlock()
}

// MarkUnknown drops key's data after a stream error, leaving other keys
// untouched.
func (m *Mirror) MarkUnknown(key string) {
	m.mu.Lock()
	m.slots[key] = Slot{State: SlotUnknown}
	m.mu.Unlock()
}

// Remove forgets key entirely.
func (m *Mirror) Remove(key string) {
	m.mu.Lock()
	delete(m.slots, key)
	m.mu.Unlock()
}

// Get returns the current slot for key. The zero Slot (SlotAbsent) is
// returned for keys the mirror has never seen.
func (m *Mirror) Get(key string) Slot {
	m.mu.RLock()
	slot := m.slots[key]
	m.mu.RUnlock()
	return slot
}

// GetAll returns a consistent copy of every slot for iteration.
func (m *Mirror) GetAll() map[string]Slot {
	m.mu.RLock()
	out := make(map[string]Slot, len(m.slots))
	for key, slot := range m.slots {
		out[key] = slot
	}
	m.mu.RUnlock()
	return out
}
