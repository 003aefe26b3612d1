package pqueue

import (
	"errors"
	"fmt"
)

// ErrHeapOverflow is the panic value (wrapped) raised when Add exceeds capacity.
var ErrHeapOverflow = errors.New("pqueue: heap capacity exceeded")

// Item is an element that can live in a Heap.
type Item[T any] interface {
	comparable
	// CompareTo returns >0 if the receiver has higher priority than other,
	// <0 if lower, and 0 if equal.
	CompareTo(other T) int
	// HeapIndex returns the index last assigned by SetHeapIndex.
	HeapIndex() int
	// SetHeapIndex records the item's position in the heap.
	SetHeapIndex(i int)
}

// Heap is an array-backed binary heap with fixed capacity.
// It is not safe for concurrent use.
type Heap[T Item[T]] struct {
	items []T
	count int
}

// New returns an empty heap able to hold capacity items.
func New[T Item[T]](capacity int) *Heap[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Heap[T]{items: make([]T, capacity)}
}

// Count returns the number of items currently held.
func (h *Heap[T]) Count() int { return h.count }

// Capacity returns the fixed capacity.
func (h *Heap[T]) Capacity() int { return len(h.items) }

// Add inserts item. Panics if the heap is full.
func (h *Heap[T]) Add(item T) {
	if h.count == len(h.items) {
		panic(fmt.Errorf("%w: capacity %d", ErrHeapOverflow, len(h.items)))
	}
	item.SetHeapIndex(h.count)
	h.items[h.count] = item
	h.count++
	h.sortUp(item)
}

// RemoveFirst removes and returns the highest-priority item.
// Precondition: Count() > 0.
func (h *Heap[T]) RemoveFirst() T {
	first := h.items[0]
	h.count--
	last := h.items[h.count]
	var zero T
	h.items[h.count] = zero
	if h.count > 0 {
		last.SetHeapIndex(0)
		h.items[0] = last
		h.sortDown(last)
	}
	first.SetHeapIndex(-1)
	return first
}

// Peek returns the highest-priority item without removing it.
// Precondition: Count() > 0.
func (h *Heap[T]) Peek() T { return h.items[0] }

// Update restores heap order after item's priority increased (for A*, after
// its f cost decreased).
func (h *Heap[T]) Update(item T) { h.sortUp(item) }

// Contains reports whether item is held by this heap.
func (h *Heap[T]) Contains(item T) bool {
	i := item.HeapIndex()
	return i >= 0 && i < h.count && h.items[i] == item
}

// Clear empties the heap, keeping its capacity.
func (h *Heap[T]) Clear() {
	var zero T
	for i := 0; i < h.count; i++ {
		h.items[i].SetHeapIndex(-1)
		h.items[i] = zero
	}
	h.count = 0
}

func (h *Heap[T]) sortUp(item T) {
	for {
		i := item.HeapIndex()
		if i == 0 {
			return
		}
		parent := h.items[(i-1)/2]
		if item.CompareTo(parent) <= 0 {
			return
		}
		h.swap(item, parent)
	}
}

func (h *Heap[T]) sortDown(item T) {
	for {
		i := item.HeapIndex()
		left, right := 2*i+1, 2*i+2
		if left >= h.count {
			return
		}
		child := left
		if right < h.count && h.items[right].CompareTo(h.items[left]) > 0 {
			child = right
		}
		if item.CompareTo(h.items[child]) >= 0 {
			return
		}
		h.swap(item, h.items[child])
	}
}

func (h *Heap[T]) swap(a, b T) {
	ia, ib := a.HeapIndex(), b.HeapIndex()
	h.items[ia], h.items[ib] = b, a
	a.SetHeapIndex(ib)
	b.SetHeapIndex(ia)
}
