// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fillengine partitions a contiguous range of blocks into
// disjoint-slice tasks and dispatches them onto a worker pool, with each
// task synthesizing its own blocks via the content model. Task bodies
// never read or write outside their assigned slice, so no
// synchronization is needed beyond a single completion barrier per call.
package fillengine

import (
	"sync"

	"github.com/dgenlab/dgen/dgenerr"
	"github.com/dgenlab/dgen/internal/content"
	"github.com/dgenlab/dgen/internal/workerpool"
)

// Fill synthesizes blockCount blocks starting at firstBlock into target,
// using ratios and seed to drive the content model, and returns the
// number of bytes written (clamped to len(target) for a generator's
// final, possibly partial, chunk).
//
// For blockCount <= 1, the work runs inline on the calling goroutine,
// bypassing the pool entirely — dispatch overhead would dominate a
// single block's generation cost.
func Fill(target []byte, firstBlock, blockCount uint64, ratios content.Params, seed uint64, pool *workerpool.Pool) (uint64, error) {
	blockSize := uint64(ratios.BlockSize)
	totalBytes := blockCount * blockSize
	if uint64(len(target)) < totalBytes {
		totalBytes = uint64(len(target))
	}

	if blockCount <= 1 {
		fillBlockRange(target, firstBlock, blockCount, seed, ratios)
		return totalBytes, nil
	}

	workerCount := uint64(max(1, pool.WorkerCount()))
	blocksPerTask := max(uint64(1), blockCount/(4*workerCount))

	var wg sync.WaitGroup
	var dispatchErr error
	var slots []int

	for start := uint64(0); start < blockCount; start += blocksPerTask {
		end := min(start+blocksPerTask, blockCount)

		byteStart := start * blockSize
		byteEnd := min(end*blockSize, uint64(len(target)))
		if byteStart >= uint64(len(target)) {
			break
		}
		slice := target[byteStart:byteEnd]
		taskFirstBlock := firstBlock + start
		taskBlockCount := end - start

		wg.Add(1)
		idx, err := pool.Dispatch(&wg, func() {
			fillBlockRange(slice, taskFirstBlock, taskBlockCount, seed, ratios)
		})
		if err != nil {
			wg.Done()
			dispatchErr = dgenerr.ResourceExhausted("fillengine: dispatch failed: %v", err)
			break
		}
		slots = append(slots, idx)
	}

	wg.Wait()
	for _, idx := range slots {
		pool.ReleaseSlot(idx)
	}

	if dispatchErr != nil {
		return 0, dispatchErr
	}
	return totalBytes, nil
}

// fillBlockRange synthesizes blockCount blocks starting at firstBlock
// directly into dst, which must hold at least blockCount full blocks
// (the final task in a call may have a shorter trailing slice when the
// requested length isn't block-aligned; the last partial block is still
// generated in full into a scratch buffer and copied in, so content
// never depends on how much of the tail is discarded).
func fillBlockRange(dst []byte, firstBlock uint64, blockCount uint64, seed uint64, ratios content.Params) {
	blockSize := ratios.BlockSize
	var scratch []byte

	for i := uint64(0); i < blockCount; i++ {
		off := int(i) * blockSize
		if off >= len(dst) {
			return
		}
		end := off + blockSize
		if end <= len(dst) {
			content.Fill(dst[off:end], firstBlock+i, seed, ratios)
			continue
		}

		if scratch == nil {
			scratch = make([]byte, blockSize)
		}
		content.Fill(scratch, firstBlock+i, seed, ratios)
		copy(dst[off:], scratch)
	}
}
