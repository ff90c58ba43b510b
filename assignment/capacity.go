package assignment

import (
	"maps"
	"sync"

	"github.com/Soo0803/ternswipe-matcher/core"
)

// CapacityTable tracks remaining slots per offer. All reads and writes go
// through its methods, which serialize on a single mutex.
type CapacityTable struct {
	mu        sync.Mutex
	remaining map[core.ID]int
}

// NewCapacityTable seeds the table from the open offers' capacities.
// Closed offers and negative capacities start at zero.
func NewCapacityTable(offers []*core.Offer) *CapacityTable {
	t := &CapacityTable{remaining: make(map[core.ID]int, len(offers))}
	for _, o := range offers {
		if o == nil {
			continue
		}
		slots := 0
		if o.Open {
			slots = max(o.Capacity, 0)
		}
		t.remaining[o.ID] = slots
	}
	return t
}

// TryReserve takes one slot from the offer if any remain.
func (t *CapacityTable) TryReserve(id core.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remaining[id] <= 0 {
		return false
	}
	t.remaining[id]--
	return true
}

// Remaining returns the slots left for an offer. Unknown offers have none.
func (t *CapacityTable) Remaining(id core.ID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining[id]
}

// Snapshot returns a copy of the table.
func (t *CapacityTable) Snapshot() map[core.ID]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.remaining)
}
