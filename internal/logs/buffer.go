package logs

import "sync"

// circularBuffer is a thread-safe fixed-capacity ring of entries.
type circularBuffer struct {
	entries []Entry
	size    int
	head    int // oldest entry
	count   int
	mu      sync.RWMutex
}

func newBuffer(size int) *circularBuffer {
	return &circularBuffer{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Write appends an entry, overwriting the oldest when full.
func (b *circularBuffer) Write(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := (b.head + b.count) % b.size
	if b.count < b.size {
		b.entries[idx] = entry
		b.count++
	} else {
		b.entries[b.head] = entry
		b.head = (b.head + 1) % b.size
	}
}

// Recent returns up to n newest entries in chronological order.
func (b *circularBuffer) Recent(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > b.count {
		n = b.count
	}
	result := make([]Entry, 0, n)
	for i := b.count - n; i < b.count; i++ {
		result = append(result, b.entries[(b.head+i)%b.size])
	}
	return result
}

// Size returns the number of entries currently buffered.
func (b *circularBuffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}
