package scan

import (
	"sync"
	"time"

	"cargotrace/internal/lifecycle"
	"cargotrace/pkg/domain"
)

// Entry is one recorded scan attempt, accepted or rejected. Transport
// failures are not history entries; they never carried a verdict.
type Entry struct {
	ContainerID domain.ContainerID
	Accepted    bool
	Reason      lifecycle.RejectionReason
	Message     string
	Concern     string
	At          time.Time
}

// History is a bounded, most-recent-first log of scan attempts. When full,
// the oldest entry falls off.
type History struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
}

const DefaultHistoryLimit = 50

func NewHistory(limit int) *History {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Record prepends an entry, evicting the oldest when over the limit.
func (h *History) Record(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append([]Entry{e}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

// Entries returns a copy, most recent first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry(nil), h.entries...)
}

// Len reports the current number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
