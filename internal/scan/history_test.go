package scan

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargotrace/pkg/domain"
)

func TestHistoryMostRecentFirst(t *testing.T) {
	h := NewHistory(10)
	for i := 1; i <= 3; i++ {
		h.Record(Entry{
			ContainerID: domain.ContainerID(fmt.Sprintf("C%03d", i)),
			Accepted:    true,
			At:          time.Now(),
		})
	}

	entries := h.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, domain.ContainerID("C003"), entries[0].ContainerID)
	assert.Equal(t, domain.ContainerID("C001"), entries[2].ContainerID)
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Record(Entry{ContainerID: domain.ContainerID(fmt.Sprintf("C%03d", i))})
	}

	entries := h.Entries()
	require.Len(t, entries, 3)
	// The two oldest fell off.
	assert.Equal(t, domain.ContainerID("C005"), entries[0].ContainerID)
	assert.Equal(t, domain.ContainerID("C003"), entries[2].ContainerID)
}

func TestHistoryEntriesIsACopy(t *testing.T) {
	h := NewHistory(3)
	h.Record(Entry{ContainerID: "C001"})

	entries := h.Entries()
	entries[0].ContainerID = "mutated"
	assert.Equal(t, domain.ContainerID("C001"), h.Entries()[0].ContainerID)
}

func TestHistoryDefaultLimit(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < DefaultHistoryLimit+10; i++ {
		h.Record(Entry{})
	}
	assert.Equal(t, DefaultHistoryLimit, h.Len())
}
