// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package content implements the per-block content model: it turns a
// block index and a master seed into bytes whose aggregate deduplication
// and compression ratios, measured over many blocks, converge on the
// caller's requested targets.
//
// Every block is produced independently of every other block — a fill
// task never reads another task's output, even when the block it is
// assigned is classified as a replica of an earlier template. This keeps
// the parallel fill engine free of cross-task synchronization.
package content

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/dgenlab/dgen/internal/prng"
)

// Params carries the per-generator content targets.
type Params struct {
	BlockSize    int
	SubBlockSize int
	Dedup        float64
	Compress     float64
}

// basePeriod is the dedup class period: ceil(Dedup), at least 1.
func (p Params) basePeriod() uint64 {
	bp := uint64(math.Ceil(p.Dedup))
	if bp < 1 {
		bp = 1
	}
	return bp
}

// TemplateIndex returns the block index that blockIndex is a replica of
// (or blockIndex itself, if it is a template). It is a pure function of
// blockIndex and the dedup ratio, with no dependency on prior calls.
func TemplateIndex(blockIndex uint64, p Params) uint64 {
	bp := p.basePeriod()
	return blockIndex - (blockIndex % bp)
}

// IsTemplate reports whether blockIndex is its own template under the
// deterministic replica-selection rule described below.
//
// Blocks on a period boundary (blockIndex == TemplateIndex(blockIndex))
// are always templates. Every other block mixes the master seed and the
// block index into a single hash h and is a fresh template only when h
// falls below a threshold derived from how far Dedup is below
// basePeriod: templateProb = (basePeriod-Dedup)/(Dedup*(basePeriod-1)).
// Over long runs this makes 1/Dedup of all blocks unique (so with
// probability 1-1/Dedup a block is a replica of TemplateIndex). For an
// integer Dedup templateProb is 0 and only period boundaries are
// templates; the hash only matters for non-integer Dedup ratios.
func IsTemplate(blockIndex uint64, seed uint64, p Params) bool {
	ti := TemplateIndex(blockIndex, p)
	if ti == blockIndex {
		return true
	}
	h := classHash(seed, blockIndex)
	bp := float64(p.basePeriod())
	templateProb := (bp - p.Dedup) / (p.Dedup * (bp - 1))
	threshold := uint64(templateProb * float64(math.MaxUint64))
	return h < threshold
}

func classHash(seed, blockIndex uint64) uint64 {
	sm := prng.NewSplitMix64(seed ^ blockIndex)
	return sm.Next()
}

// Fill writes one block's worth of bytes into dst, which must be exactly
// p.BlockSize bytes, synthesizing content for blockIndex under seed and
// p. If blockIndex is classified as a replica, Fill regenerates the
// template block's content directly rather than copying from any
// in-memory buffer.
func Fill(dst []byte, blockIndex uint64, seed uint64, p Params) {
	effectiveIndex := blockIndex
	if !IsTemplate(blockIndex, seed, p) {
		effectiveIndex = TemplateIndex(blockIndex, p)
	}
	fillTemplate(dst, effectiveIndex, seed, p)
}

// fillTemplate writes the deterministic compression-layer content for a
// single template block index. It never consults any other block.
func fillTemplate(dst []byte, templateIndex uint64, seed uint64, p Params) {
	subBlockSize := p.SubBlockSize
	if subBlockSize <= 0 || subBlockSize > len(dst) {
		subBlockSize = len(dst)
	}

	u := 1.0
	if p.Compress > 1 {
		u = 1 / p.Compress
	}

	for off := 0; off < len(dst); off += subBlockSize {
		end := min(off+subBlockSize, len(dst))
		fillSubBlock(dst[off:end], templateIndex, uint64(off/subBlockSize), seed, u)
	}
}

func fillSubBlock(sub []byte, templateIndex uint64, subIndex uint64, seed uint64, u float64) {
	n := len(sub)
	uniqueLen := int(math.Round(float64(n) * u))
	if uniqueLen < 1 {
		uniqueLen = 1
	}
	if uniqueLen > n {
		uniqueLen = n
	}

	mixed := seed ^ (templateIndex * 0x9e3779b97f4a7c15) ^ (subIndex*0xc2b2ae3d27d4eb4f + 0x165667b19e3779f9)
	gen := prng.NewBlockState(mixed, subIndex)
	gen.Fill(sub[:uniqueLen])

	if uniqueLen >= n {
		return
	}

	fillerHash := hashPrefix(sub[:uniqueLen])
	var pattern [8]byte
	binary.LittleEndian.PutUint64(pattern[:], fillerHash)

	for i := uniqueLen; i < n; i++ {
		sub[i] = pattern[(i-uniqueLen)%len(pattern)]
	}
}

// hashPrefix derives a short hash of the unique prefix to seed the
// filler pattern, so the repeating tail varies across sub-blocks even
// when the unique prefix is tiny (C very large, uniqueLen==1).
func hashPrefix(prefix []byte) uint64 {
	h := fnv.New64a()
	h.Write(prefix)
	return h.Sum64()
}
