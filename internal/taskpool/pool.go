// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package taskpool provides a lock-free bounded pool used to recycle
// fixed-size value slots across calls, avoiding a per-call allocation on
// the hot fill path. It is adapted from a buffer-registration pool: the
// pool used to hand out indices into a set of pre-allocated network I/O
// buffers; here it hands out indices into a set of pre-allocated fill-task
// descriptors.
package taskpool

// Pool is a generic object pool interface with configurable blocking
// semantics.
//
// Implementations may operate in blocking or non-blocking mode. In
// blocking mode, Get blocks until an item is available and Put blocks
// until space is available. In non-blocking mode, both operations return
// iox.ErrWouldBlock instead of blocking.
//
// All implementations must be safe for concurrent use.
type Pool[T any] interface {
	// Put returns the item to the pool.
	// Returns iox.ErrWouldBlock if non-blocking and full.
	Put(item T) error

	// Get acquires an item from the pool.
	// Returns iox.ErrWouldBlock if non-blocking and empty.
	Get() (item T, err error)
}

// IndirectPool manages items by index rather than by value, enabling
// zero-copy access to pooled slots.
//
// The pool stores slot indices (int) rather than values directly. This
// design allows:
//   - Zero-copy slot access via Value() without moving large structs
//   - Efficient pool operations (only small integers are enqueued/dequeued)
//   - Clear ownership semantics through index hand-off
//
// Usage pattern:
//
//	idx, _ := pool.Get()     // Acquire a slot index
//	slot := pool.Value(idx)  // Access the slot
//	// populate/use slot...
//	pool.Put(idx)            // Return the slot to the pool
type IndirectPool[T any] interface {
	Pool[int]

	// Value returns the item associated with the given indirect index.
	// The caller must have acquired this index via Get.
	Value(indirect int) T

	// SetValue updates the item at the specified indirect index.
	// The caller must have acquired this index via Get.
	SetValue(indirect int, item T)
}
