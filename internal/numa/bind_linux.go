// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package numa

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mbind(2) policy modes, from linux/mempolicy.h. Not exposed by
// golang.org/x/sys/unix as a named constant, so declared locally.
const (
	mpolBind      = 2
	mbindStrict   = 1 << 0
	maxNUMANodeID = 1024 // generous upper bound for the nodemask bitset
)

// bindToNode asks the kernel to restrict buf's backing pages to node via
// mbind(2) with MPOL_BIND. This is a raw syscall: the Linux kernel's
// mbind interface has no generated wrapper in golang.org/x/sys/unix.
//
// Failure here is reported to the caller but does not invalidate buf;
// Allocate decides whether a failure is fatal based on numa_mode.
func bindToNode(buf []byte, node int) error {
	if len(buf) == 0 {
		return nil
	}
	if node < 0 || node >= maxNUMANodeID {
		return fmt.Errorf("numa: node %d out of range", node)
	}

	maskWords := maxNUMANodeID / 64
	mask := make([]uint64, maskWords)
	mask[node/64] |= 1 << uint(node%64)

	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	length := uintptr(len(buf))
	maskPtr := uintptr(unsafe.Pointer(&mask[0]))
	maxNode := uintptr(maxNUMANodeID + 1)

	_, _, errno := unix.Syscall6(unix.SYS_MBIND, addr, length, mpolBind, maskPtr, maxNode, mbindStrict)
	if errno != 0 {
		return errno
	}
	return nil
}
