// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package topology probes the host's NUMA topology and the process's
// effective CPU affinity, and classifies the deployment so the worker
// pool and NUMA allocator can make binding decisions. The result is
// probed once and cached process-wide: a snapshot never changes after
// construction.
package topology

import "sync"

// Deployment classifies what kind of NUMA environment the process is
// running under.
type Deployment int

const (
	// BareMetalMultiSocket is a host with 2+ NUMA nodes where the
	// process's affinity spans 2+ of them.
	BareMetalMultiSocket Deployment = iota
	// SingleSocket is a host with exactly one NUMA node.
	SingleSocket
	// VMUnknown is a host reporting 2+ NUMA nodes where the process's
	// affinity touches fewer than two of them (all of one node or a
	// strict subset of it) — a hint that a hypervisor has hidden the
	// real topology.
	VMUnknown
)

func (d Deployment) String() string {
	switch d {
	case BareMetalMultiSocket:
		return "bare-metal-multi-socket"
	case SingleSocket:
		return "single-socket"
	case VMUnknown:
		return "vm-unknown"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the host's NUMA topology and the
// process's effective CPU affinity, captured once at probe time.
type Snapshot struct {
	Nodes      []Node
	Affinity   []int
	Deployment Deployment

	cpuToNode map[int]int
}

// Node describes one NUMA node and the logical CPUs assigned to it.
type Node struct {
	ID   int
	CPUs []int
}

// CPUsForNode returns the CPU list for NUMA node n, or nil if n is not a
// known node.
func (s *Snapshot) CPUsForNode(n int) []int {
	for _, node := range s.Nodes {
		if node.ID == n {
			return node.CPUs
		}
	}
	return nil
}

// NodeForCPU returns the NUMA node that owns logical CPU c, or -1 if c
// is not assigned to any known node.
func (s *Snapshot) NodeForCPU(c int) int {
	if n, ok := s.cpuToNode[c]; ok {
		return n
	}
	return -1
}

// EffectiveWorkerCount returns min(maxWorkersHint, |effective affinity|).
// A non-positive hint means "no hint": the full affinity set is used.
func (s *Snapshot) EffectiveWorkerCount(maxWorkersHint int) int {
	n := len(s.Affinity)
	if maxWorkersHint > 0 && maxWorkersHint < n {
		return maxWorkersHint
	}
	return n
}

func newSnapshot(nodes []Node, affinity []int) *Snapshot {
	cpuToNode := make(map[int]int, len(affinity))
	for _, node := range nodes {
		for _, cpu := range node.CPUs {
			cpuToNode[cpu] = node.ID
		}
	}

	affinityNodes := make(map[int]struct{})
	for _, cpu := range affinity {
		if n, ok := cpuToNode[cpu]; ok {
			affinityNodes[n] = struct{}{}
		}
	}

	var deployment Deployment
	switch {
	case len(nodes) == 1:
		deployment = SingleSocket
	case len(nodes) >= 2 && len(affinityNodes) >= 2:
		deployment = BareMetalMultiSocket
	default:
		deployment = VMUnknown
	}

	return &Snapshot{
		Nodes:      nodes,
		Affinity:   affinity,
		Deployment: deployment,
		cpuToNode:  cpuToNode,
	}
}

var probeOnce = sync.OnceValue(probe)

// Probe returns the process-wide topology snapshot, probing the host
// exactly once and caching the result for the lifetime of the process.
func Probe() *Snapshot {
	return probeOnce()
}
