// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package topology

import "runtime"

// probe synthesizes a single UMA node with full affinity on platforms
// where NUMA topology and CPU affinity cannot be queried through the
// Linux-specific interfaces.
func probe() *Snapshot {
	n := runtime.NumCPU()
	cpus := make([]int, n)
	for i := range cpus {
		cpus[i] = i
	}
	nodes := []Node{{ID: 0, CPUs: cpus}}
	return newSnapshot(nodes, cpus)
}
