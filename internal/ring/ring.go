// Package ring provides a fixed-capacity FIFO buffer.
//
// A Buffer allocates all of its slots once in New and never grows. It has no
// internal locking: callers that share a Buffer between goroutines must hold
// their own lock around every call.
package ring

import (
	"fmt"
	"iter"
)

// Occupancy is the fill regime of a Buffer.
type Occupancy int

const (
	Empty Occupancy = iota
	Partial
	Full
)

func (o Occupancy) String() string {
	switch o {
	case Partial:
		return "partial"
	case Full:
		return "full"
	default:
		return "empty"
	}
}

// Buffer is a circular FIFO of values of type T.
type Buffer[T any] struct {
	slots []T
	head  int // physical index of the oldest element
	count int
}

// New creates a buffer with the given capacity. It panics if capacity < 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		panic(fmt.Sprintf("ring: capacity must be at least 1, got %d", capacity))
	}
	return &Buffer[T]{
		slots: make([]T, capacity),
	}
}

// Cap returns the number of slots.
func (b *Buffer[T]) Cap() int {
	return len(b.slots)
}

// Len returns the number of occupied slots.
func (b *Buffer[T]) Len() int {
	return b.count
}

// IsEmpty reports whether no slot is occupied.
func (b *Buffer[T]) IsEmpty() bool {
	return b.count == 0
}

// IsFull reports whether another PushBack would be rejected.
func (b *Buffer[T]) IsFull() bool {
	return b.count == len(b.slots)
}

// Occupancy returns the current fill regime.
func (b *Buffer[T]) Occupancy() Occupancy {
	switch b.count {
	case 0:
		return Empty
	case len(b.slots):
		return Full
	default:
		return Partial
	}
}

// PushBack stores a copy of v after the newest element.
// It returns false and leaves the buffer untouched when full.
func (b *Buffer[T]) PushBack(v T) bool {
	if b.IsFull() {
		return false
	}
	if b.count == 0 {
		b.head = 0
	}
	idx := b.physical(b.count)
	b.slots[idx] = v
	b.count++
	return true
}

// RemoveFront scrubs the oldest element back to the zero value and releases
// its slot. It returns false when the buffer is empty.
func (b *Buffer[T]) RemoveFront() bool {
	if b.count == 0 {
		return false
	}
	assertSlot(b.head, len(b.slots))

	var zero T
	b.slots[b.head] = zero
	b.count--
	if b.count == 0 {
		b.head = 0
		return true
	}
	b.head = (b.head + 1) % len(b.slots)
	return true
}

// PopFront returns the oldest element and removes it.
func (b *Buffer[T]) PopFront() (T, bool) {
	if b.count == 0 {
		var zero T
		return zero, false
	}
	v := b.slots[b.head]
	b.RemoveFront()
	return v, true
}

// At returns a copy of the element at logical index i, counting from the
// oldest. Indexes past the newest element are clamped to the newest, negative
// indexes to the oldest. Calling At on an empty buffer returns the zero value;
// callers are expected to check IsEmpty first.
func (b *Buffer[T]) At(i int) T {
	if b.count == 0 {
		var zero T
		return zero
	}
	if i > b.count-1 {
		i = b.count - 1
	}
	if i < 0 {
		i = 0
	}
	return b.slots[b.physical(i)]
}

// Front returns the oldest element.
func (b *Buffer[T]) Front() (T, bool) {
	if b.count == 0 {
		var zero T
		return zero, false
	}
	return b.slots[b.head], true
}

// Back returns the newest element.
func (b *Buffer[T]) Back() (T, bool) {
	if b.count == 0 {
		var zero T
		return zero, false
	}
	return b.slots[b.physical(b.count-1)], true
}

// All iterates the occupied elements from oldest to newest together with
// their logical index. The buffer must not be modified during iteration.
func (b *Buffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < b.count; i++ {
			if !yield(i, b.slots[b.physical(i)]) {
				return
			}
		}
	}
}

// Clear scrubs every occupied slot and empties the buffer.
func (b *Buffer[T]) Clear() {
	for b.RemoveFront() {
	}
}

// physical maps a logical offset from head to a slot index.
func (b *Buffer[T]) physical(i int) int {
	idx := b.head + i
	if idx >= len(b.slots) {
		idx -= len(b.slots)
	}
	assertSlot(idx, len(b.slots))
	return idx
}
