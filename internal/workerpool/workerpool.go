// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package workerpool provides a persistent goroutine pool pinned to a
// NUMA node's CPU set, dispatching closures without a per-call spawn.
// Work item descriptors are recycled through a lock-free bounded pool
// rather than allocated per dispatch, so repeated fill calls against an
// already-constructed Pool do not pressure the allocator.
package workerpool

import (
	"runtime"
	"sync"

	"github.com/dgenlab/dgen/dgenerr"
	"github.com/dgenlab/dgen/internal/taskpool"
)

// fillTask is one unit of dispatched work: run fn, then signal done.
type fillTask struct {
	fn   func()
	done *sync.WaitGroup
}

// taskSlotsPerWorker bounds how many in-flight task descriptors a single
// Pool can have outstanding at once: the slot pool holds
// nextPowerOfTwo(workerCount*taskSlotsPerWorker) slots. It is sized generously relative to
// worker count so Dispatch rarely blocks waiting for a slot.
const taskSlotsPerWorker = 8

// Pool is a persistent set of goroutines pinned to a fixed CPU list. It
// is created once per (node, workerCount) pair by a Registry and shared
// across every Generator that targets that node.
type Pool struct {
	workerCount int
	cpus        []int

	workC chan int
	slots taskpool.IndirectPool[fillTask]

	closeOnce sync.Once
	done      chan struct{}
}

var _ taskpool.IndirectPool[fillTask] = (*taskpool.BoundedPool[fillTask])(nil)

// New creates a Pool with workerCount persistent goroutines pinned to
// cpus (nil/empty means "no pinning, let the OS scheduler place them").
// Workers are spawned immediately and run until Close.
func New(workerCount int, cpus []int) (*Pool, error) {
	if workerCount < 1 {
		return nil, dgenerr.InvalidArgument("workerpool: workerCount must be >= 1, got %d", workerCount)
	}

	slotCapacity := nextPowerOfTwo(workerCount * taskSlotsPerWorker)
	slots := taskpool.NewBoundedPool[fillTask](slotCapacity)
	slots.Fill(func() fillTask { return fillTask{} })

	p := &Pool{
		workerCount: workerCount,
		cpus:        cpus,
		workC:       make(chan int, slotCapacity),
		slots:       slots,
		done:        make(chan struct{}),
	}

	for i := range workerCount {
		pin := -1
		if len(cpus) > 0 {
			pin = cpus[i%len(cpus)]
		}
		go p.worker(pin)
	}

	return p, nil
}

func (p *Pool) worker(pinnedCPU int) {
	if pinnedCPU >= 0 {
		runtime.LockOSThread()
		pinToCPU(pinnedCPU)
	}
	for idx := range p.workC {
		task := p.slots.Value(idx)
		task.fn()
		task.done.Done()
	}
}

// Dispatch runs fn on a pool worker and returns immediately, along with
// the task-slot index used. The caller must call Wait on wg (shared by
// every task in one Fill call) and then ReleaseSlot(idx) once fn is
// known to have finished — only then is it safe to let another
// dispatcher reuse the slot's fn closure.
func (p *Pool) Dispatch(wg *sync.WaitGroup, fn func()) (slot int, err error) {
	idx, err := p.slots.Get()
	if err != nil {
		return 0, dgenerr.ResourceExhausted("workerpool: no free task slot: %v", err)
	}
	p.slots.SetValue(idx, fillTask{fn: fn, done: wg})
	p.workC <- idx
	return idx, nil
}

// ReleaseSlot returns a task-descriptor slot to the pool. Must only be
// called after the dispatched task's WaitGroup has been observed Done.
func (p *Pool) ReleaseSlot(idx int) {
	_ = p.slots.Put(idx)
}

// WorkerCount returns the number of persistent goroutines in the pool.
func (p *Pool) WorkerCount() int {
	return p.workerCount
}

// Close stops accepting new work and terminates all worker goroutines
// once pending work drains. Safe to call multiple times.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.workC)
		close(p.done)
	})
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}
