package progress

import "sync"

// Tracker serializes concurrent refreshes with monotonic sequence numbers.
// A refresh takes a sequence via Begin, loads its snapshot, and offers it
// through Apply; only the newest sequence wins, so a slow early request can
// never clobber the result of a later one.
type Tracker struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
	snap    Snapshot
	primed  bool
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin issues the next refresh sequence number.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued++
	return t.issued
}

// Apply installs snap if seq is newer than anything applied so far.
// Returns false when the snapshot was stale and discarded.
func (t *Tracker) Apply(seq uint64, snap Snapshot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seq <= t.applied {
		return false
	}
	t.applied = seq
	t.snap = snap
	t.primed = true
	return true
}

// Snapshot returns the current view and whether any refresh has landed yet.
func (t *Tracker) Snapshot() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap, t.primed
}
