package pipeline

// Batch holds one round's items in production order. It is created empty
// at the start of a round, filled to capacity, drained as a unit, and
// reset; no partial batch survives a round.
type Batch struct {
	items [][]byte
	cap   int
}

// NewBatch creates an empty batch with room for size items.
func NewBatch(size int) *Batch {
	return &Batch{items: make([][]byte, 0, size), cap: size}
}

// Add appends one item. Adding past capacity indicates a sequencing bug in
// the caller, so it panics rather than growing.
func (b *Batch) Add(item []byte) {
	if len(b.items) >= b.cap {
		panic("pipeline: batch overfilled")
	}
	b.items = append(b.items, item)
}

// Items returns the filled slots in production order.
func (b *Batch) Items() [][]byte { return b.items }

// Len returns the number of filled slots.
func (b *Batch) Len() int { return len(b.items) }

// Full reports whether the batch holds its configured size.
func (b *Batch) Full() bool { return len(b.items) == b.cap }

// Reset clears the batch for the next round.
func (b *Batch) Reset() { b.items = b.items[:0] }
