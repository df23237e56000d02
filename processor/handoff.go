package processor

import "sync"

// Handoff is a single-slot mailbox between the background producer and the
// render-loop consumer. The producer overwrites unconditionally and never
// blocks; the consumer polls and never blocks. At most one dataset is
// buffered at any instant, so a slow consumer only ever costs discarded
// frames, never memory.
type Handoff struct {
	mu   sync.Mutex
	slot *Dataset
}

// Publish stores the dataset, discarding any unconsumed one.
func (h *Handoff) Publish(d *Dataset) {
	h.mu.Lock()
	h.slot = d
	h.mu.Unlock()
}

// TryTake returns and clears the slot if occupied, else (nil, false)
// immediately.
func (h *Handoff) TryTake() (*Dataset, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.slot == nil {
		return nil, false
	}
	d := h.slot
	h.slot = nil
	return d, true
}
