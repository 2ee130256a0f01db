// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package numa allocates page-aligned buffers, optionally bound to a
// specific NUMA node via mbind(2). Binding is best-effort: on platforms
// or configurations where kernel-level binding isn't available,
// allocation still succeeds with first-touch locality left to the OS
// scheduler.
package numa

import (
	"github.com/dgenlab/dgen/dgenerr"
	"github.com/dgenlab/dgen/internal/align"
	"github.com/dgenlab/dgen/internal/topology"
)

// Mode selects how aggressively Allocate tries to bind memory to a node.
type Mode int

const (
	// Auto binds only on bare-metal-multi-socket topologies, where
	// binding reliably improves locality. Elsewhere it behaves like
	// Disabled.
	Auto Mode = iota
	// Force always attempts to bind, and surfaces a TopologyUnavailable
	// error if the kernel refuses the bind request outright.
	Force
	// Disabled never attempts to bind; Allocate behaves like AllocAny.
	Disabled
)

func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Force:
		return "force"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// ParseMode parses the external numa_mode strings ("auto", "force",
// "disabled") used at the generator's construction boundary.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "auto", "":
		return Auto, nil
	case "force":
		return Force, nil
	case "disabled":
		return Disabled, nil
	default:
		return Auto, dgenerr.InvalidArgument("unknown numa_mode %q", s)
	}
}

// PageSize is the allocation alignment used by AllocOn and AllocAny. It
// mirrors align.PageSize and can be adjusted with SetPageSize for hosts
// reporting a non-4096 page size.
var PageSize = align.PageSize

// SetPageSize updates the package-level page size used for allocations.
func SetPageSize(size int) {
	PageSize = uintptr(size)
	align.SetPageSize(size)
}

// AllocAny returns a page-aligned (or alignment-aligned, if non-zero)
// byte slice with no NUMA binding attempted.
func AllocAny(size int, alignment uintptr) []byte {
	if alignment == 0 {
		alignment = PageSize
	}
	return align.Mem(size, alignment)
}

// AllocOn returns an aligned byte slice and unconditionally attempts to
// bind its backing pages to NUMA node node via mbind(2). Bind failure is
// reported in the returned error rather than being fatal to the
// allocation; the buffer is always valid and usable even on error.
func AllocOn(node int, size int, alignment uintptr) ([]byte, error) {
	if alignment == 0 {
		alignment = PageSize
	}
	buf := align.Mem(size, alignment)
	err := bindToNode(buf, node)
	return buf, err
}

// Allocate implements the numa_mode policy described in the spec: Auto
// binds only on bare-metal-multi-socket topologies, Force always binds
// and turns a hard kernel refusal into a TopologyUnavailable error,
// Disabled never binds.
func Allocate(mode Mode, node int, size int, alignment uintptr) ([]byte, error) {
	snap := topology.Probe()

	if !shouldBind(mode, snap) {
		return AllocAny(size, alignment), nil
	}

	buf, err := AllocOn(node, size, alignment)
	if err != nil && mode == Force {
		return buf, dgenerr.TopologyUnavailable("numa bind to node %d failed: %v", node, err)
	}
	return buf, nil
}

func shouldBind(mode Mode, snap *topology.Snapshot) bool {
	switch mode {
	case Force:
		return true
	case Auto:
		return snap.Deployment == topology.BareMetalMultiSocket
	default:
		return false
	}
}
