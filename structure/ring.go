package structure

import "sync/atomic"

// Ring is a fixed-capacity single-producer/single-consumer queue.
// Exactly one goroutine may write and exactly one may read; under that
// contract every operation is wait-free. Records are delivered in the
// exact order they were committed.
//
// The write path is TryWrite (claim the next slot, nil when full) followed
// by CommitWrite once the slot is populated. The read path mirrors it with
// TryRead/CommitRead. A slot returned by TryRead stays valid until
// CommitRead, so callers can process it in place.
type Ring[T any] struct {
	// Sequences sit on their own cache lines to avoid false sharing
	// between the producer and consumer cores.
	_     [56]byte
	write atomic.Uint64
	_     [56]byte
	read  atomic.Uint64
	_     [56]byte

	buf  []T
	mask uint64
}

// NewRing creates a ring with the given capacity.
// capacity must be a power of 2.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("structure: ring capacity must be a power of 2")
	}
	return &Ring[T]{
		buf:  make([]T, capacity),
		mask: uint64(capacity) - 1,
	}
}

// TryWrite returns the next free slot, or nil if the ring is full.
// Only the producer goroutine may call this.
func (r *Ring[T]) TryWrite() *T {
	w := r.write.Load()
	if w-r.read.Load() == uint64(len(r.buf)) {
		return nil
	}
	return &r.buf[w&r.mask]
}

// CommitWrite publishes the slot previously returned by TryWrite.
func (r *Ring[T]) CommitWrite() {
	r.write.Add(1)
}

// TryRead returns the oldest unconsumed slot, or nil if the ring is empty.
// Only the consumer goroutine may call this.
func (r *Ring[T]) TryRead() *T {
	rd := r.read.Load()
	if rd == r.write.Load() {
		return nil
	}
	return &r.buf[rd&r.mask]
}

// CommitRead releases the slot previously returned by TryRead.
func (r *Ring[T]) CommitRead() {
	r.read.Add(1)
}

// Size returns the number of committed, unconsumed records.
func (r *Ring[T]) Size() int {
	return int(r.write.Load() - r.read.Load())
}

// Cap returns the fixed capacity of the ring.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}
