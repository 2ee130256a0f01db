// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package align provides aligned-memory allocation helpers used by the
// NUMA allocator.
package align

import (
	"unsafe"

	"github.com/dgenlab/dgen/internal/cpuinfo"
)

// PageSize is the system memory page size used as the default alignment
// for output buffers. It can be overridden with SetPageSize for platforms
// that report a non-4096 page size.
var PageSize uintptr = 4096

// SetPageSize updates the package-level page size used for allocations.
func SetPageSize(size int) {
	PageSize = uintptr(size)
}

// CacheLineSize is the CPU L1 cache line size for the current architecture.
const CacheLineSize = cpuinfo.CacheLineSize

// Mem returns a byte slice of the given size whose starting address is
// aligned to align, which must be a power of two.
//
// The returned slice shares underlying memory with a larger allocation;
// do not assume len(result) == cap(result).
func Mem(size int, align uintptr) []byte {
	p := make([]byte, uintptr(size)+align-1)
	base := unsafe.Pointer(unsafe.SliceData(p))
	offset := ((uintptr(base)+align-1)/align)*align - uintptr(base)
	return unsafe.Slice((*byte)(unsafe.Add(base, offset)), size)
}

// PageMem returns a byte slice of size bytes aligned to PageSize.
//
// This is the building block for zero-copy buffer exchange (spec §6):
// the result is safe to expose read-only via a host language's
// memory-view facility without copying.
func PageMem(size int) []byte {
	return Mem(size, PageSize)
}

// Blocks returns n page-aligned byte slices, each of length blockSize.
//
// All returned slices share a single contiguous underlying allocation.
// Panics if n < 1.
func Blocks(n int, blockSize int) (blocks [][]byte) {
	if n < 1 {
		panic("align: bad block count")
	}
	align := PageSize
	alignedBlockSize := ((uintptr(blockSize) + align - 1) / align) * align
	total := int(alignedBlockSize)*n + int(align) - 1
	p := make([]byte, total)
	base := unsafe.Pointer(unsafe.SliceData(p))
	offset := ((uintptr(base)+align-1)/align)*align - uintptr(base)
	blocks = make([][]byte, n)
	for i := range n {
		blocks[i] = unsafe.Slice((*byte)(unsafe.Add(base, offset+uintptr(i)*alignedBlockSize)), blockSize)
	}
	return
}

// CacheLineMem returns a byte slice of the given size whose starting
// address is aligned to CacheLineSize. Useful for preventing false sharing
// of per-task scratch structures across worker goroutines.
func CacheLineMem(size int) []byte {
	return Mem(size, uintptr(CacheLineSize))
}
