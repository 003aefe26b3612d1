// Package pqueue implements a fixed-capacity binary heap whose items track
// their own position, so membership tests and priority updates are O(1) and
// O(log n) without searching the backing array.
//
// What:
//
//   - Heap[T] orders items by Item.CompareTo: a.CompareTo(b) > 0 means a has
//     higher priority and is removed before b.
//   - Each item stores its heap index (HeapIndex/SetHeapIndex); the heap keeps
//     it current on every move.
//
// Why:
//
//   - A* pops the cheapest node and re-prioritises open nodes thousands of
//     times per search; container/heap needs an interface call per swap and a
//     separate index map. Capacity is fixed up front (total grid cell count) so
//     the backing array never reallocates inside the search loop.
//
// Complexity:
//
//   - Add, RemoveFirst, Update: O(log n).
//   - Contains, Count, Peek: O(1).
//
// Preconditions (not checked at runtime beyond what Go itself enforces):
//
//   - RemoveFirst and Peek require Count() > 0.
//   - Contains requires that the item's stored index was last set by this heap.
//   - Add beyond Capacity() panics with ErrHeapOverflow; size the heap to the
//     maximum number of items it can ever hold.
package pqueue
