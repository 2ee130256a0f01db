// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dgen is a high-throughput synthetic byte-stream generator. It
// produces large volumes of pseudorandom data whose aggregate
// deduplication and compression ratios converge on caller-specified
// targets, at a per-core throughput close to memory-bandwidth limits.
//
// Content is deterministic: for a fixed seed, size and ratio pair, the
// generated byte stream is bit-identical regardless of worker count,
// NUMA configuration, or chunk size. Two APIs are exposed: a one-shot
// GenerateBuffer/FillBuffer pair for producing an entire buffer in one
// call, and a streaming Generator for pull-style chunked generation.
//
// # Content model
//
// Dedup and compression ratios (package content) are synthesized by a
// parallel fill engine (package fillengine) dispatching onto a
// process-wide, NUMA-aware worker pool registry (package workerpool)
// backed by page-aligned, optionally NUMA-bound allocation (package
// numa). Randomness is deterministic and non-cryptographic (package
// prng) once a seed is fixed; crypto/rand is used only once, to draw a
// fresh seed when the caller does not supply one.
//
// # Usage
//
//	buf, err := dgen.GenerateBuffer(256<<20, content.Params{
//	    BlockSize: 4 << 20, SubBlockSize: 64 << 10, Dedup: 4, Compress: 3,
//	}, numa.Auto, 0)
//
// or, for chunked streaming generation:
//
//	g, err := dgen.NewGenerator(dgen.Config{Size: 1 << 30, Ratios: ratios})
//	for !g.IsComplete() {
//	    n, err := g.FillChunk(chunk)
//	    // consume chunk[:n]
//	}
//
// # Errors
//
// All errors returned across the package boundary are *dgenerr.Error
// values; callers branch on Kind via errors.Is/errors.As rather than
// string-matching messages.
//
// # Thread safety
//
// A *Generator serializes its own chunk production (FillChunk calls must
// not run concurrently with each other on the same Generator), but
// distinct Generators, including ones sharing a worker pool via the
// process-wide registry, are fully concurrent with each other.
package dgen
