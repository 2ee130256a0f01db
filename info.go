// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dgen

import "github.com/dgenlab/dgen/internal/topology"

// TopologyInfo is a neutral, pointer-free snapshot of the host topology
// suitable for reporting across a language or process boundary.
type TopologyInfo struct {
	NumNodes int
	// PhysicalCores reports the same count as LogicalCPUs (the CPUs
	// listed across all nodes); SMT siblings are not told apart.
	PhysicalCores  int
	LogicalCPUs    int
	IsUMA          bool
	DeploymentKind string
}

// SystemInfo returns the current process's topology snapshot in neutral
// record form. Safe to call from any goroutine; the underlying snapshot
// is probed once per process and cached.
func SystemInfo() TopologyInfo {
	snap := topology.Probe()

	logical := 0
	for _, n := range snap.Nodes {
		logical += len(n.CPUs)
	}

	return TopologyInfo{
		NumNodes:       len(snap.Nodes),
		PhysicalCores:  logical,
		LogicalCPUs:    logical,
		IsUMA:          len(snap.Nodes) <= 1,
		DeploymentKind: snap.Deployment.String(),
	}
}
