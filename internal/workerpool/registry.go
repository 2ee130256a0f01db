// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package workerpool

import (
	"sync"
)

// GlobalNode is the pseudo node ID used for pools that aren't bound to
// any particular NUMA node.
const GlobalNode = -1

type poolKey struct {
	node        int
	workerCount int
}

type entry struct {
	pool *Pool
	refs int
}

// Registry is a process-wide, reference-counted cache of worker pools
// keyed by (node, workerCount). Multiple generators targeting the same
// node with the same worker count share one Pool; the underlying
// goroutines are torn down only when the last reference is released.
type Registry struct {
	mu      sync.Mutex
	entries map[poolKey]*entry
}

// NewRegistry returns an empty Registry. Most callers should use the
// process-wide Default registry instead of constructing their own.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[poolKey]*entry)}
}

// Default is the process-wide worker pool registry used by the public
// generator API.
var Default = NewRegistry()

// Acquire returns the Pool for (node, workerCount), creating it on first
// use. node should be GlobalNode when the pool isn't bound to a
// specific NUMA node. cpus is only consulted on creation.
func (r *Registry) Acquire(node int, workerCount int, cpus []int) (*Pool, error) {
	key := poolKey{node: node, workerCount: workerCount}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[key]; ok {
		e.refs++
		return e.pool, nil
	}

	pool, err := New(workerCount, cpus)
	if err != nil {
		return nil, err
	}
	r.entries[key] = &entry{pool: pool, refs: 1}
	return pool, nil
}

// Release decrements the reference count for (node, workerCount) and
// tears the pool down once no generator holds a reference to it.
func (r *Registry) Release(node int, workerCount int) {
	key := poolKey{node: node, workerCount: workerCount}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		e.pool.Close()
		delete(r.entries, key)
	}
}
