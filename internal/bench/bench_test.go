// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bench holds throughput benchmarks for the generator and its
// NUMA allocation paths, in the style of the teacher's top-level
// benchmark_test.go: b.RunParallel with spin.Yield standing in for the
// downstream I/O latency a generated chunk would normally be handed
// off to.
package bench_test

import (
	"testing"

	"code.hybscloud.com/spin"

	"github.com/dgenlab/dgen"
	"github.com/dgenlab/dgen/internal/content"
	"github.com/dgenlab/dgen/internal/numa"
)

func benchRatios() content.Params {
	return content.Params{BlockSize: 4 << 20, SubBlockSize: 64 << 10, Dedup: 2, Compress: 2}
}

// One-shot generation benchmarks

func BenchmarkGenerateBuffer_1MiB(b *testing.B) {
	ratios := benchRatios()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, err := dgen.GenerateBuffer(1<<20, ratios, numa.Disabled, 4)
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(int64(len(buf)))
	}
}

func BenchmarkGenerateBuffer_16MiB(b *testing.B) {
	ratios := benchRatios()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, err := dgen.GenerateBuffer(16<<20, ratios, numa.Disabled, 4)
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(int64(len(buf)))
	}
}

func BenchmarkGenerateBuffer_NoDedupNoCompress_16MiB(b *testing.B) {
	ratios := content.Params{BlockSize: 4 << 20, SubBlockSize: 64 << 10, Dedup: 1, Compress: 1}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, err := dgen.GenerateBuffer(16<<20, ratios, numa.Disabled, 4)
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(int64(len(buf)))
	}
}

func BenchmarkGenerateBuffer_HighDedupHighCompress_16MiB(b *testing.B) {
	ratios := content.Params{BlockSize: 4 << 20, SubBlockSize: 64 << 10, Dedup: 8, Compress: 8}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, err := dgen.GenerateBuffer(16<<20, ratios, numa.Disabled, 4)
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(int64(len(buf)))
	}
}

// FillBuffer reuses a caller-owned buffer, so RunParallel can share one
// allocation per goroutine and measure steady-state fill throughput
// without allocator noise.

func BenchmarkFillBuffer_4MiB(b *testing.B) {
	ratios := benchRatios()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		buf := make([]byte, 4<<20)
		for pb.Next() {
			n, err := dgen.FillBuffer(buf, ratios, numa.Disabled, 2)
			if err != nil {
				b.Fatal(err)
			}
			b.SetBytes(int64(n))
			spin.Yield()
		}
	})
}

// Streaming chunked generation benchmarks

func BenchmarkGenerator_StreamChunks_1MiBChunks(b *testing.B) {
	// Chunks must be at least one block, so 1 MiB chunks need a 1 MiB block.
	ratios := content.Params{BlockSize: 1 << 20, SubBlockSize: 64 << 10, Dedup: 2, Compress: 2}
	const totalSize = 64 << 20
	const chunkSize = 1 << 20
	seed := uint64(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g, err := dgen.NewGenerator(dgen.Config{
			Size:      totalSize,
			Ratios:    ratios,
			Seed:      &seed,
			ChunkSize: chunkSize,
		})
		if err != nil {
			b.Fatal(err)
		}

		chunk := make([]byte, chunkSize)
		var written uint64
		for !g.IsComplete() {
			n, err := g.FillChunk(chunk)
			if err != nil {
				b.Fatal(err)
			}
			if n == 0 {
				break
			}
			written += n
		}
		b.SetBytes(int64(written))
		g.Release()
	}
}

func BenchmarkGenerator_FillChunk_Reused(b *testing.B) {
	ratios := benchRatios()
	const chunkSize = 4 << 20
	seed := uint64(1)

	g, err := dgen.NewGenerator(dgen.Config{
		Size:      chunkSize,
		Ratios:    ratios,
		Seed:      &seed,
		ChunkSize: chunkSize,
	})
	if err != nil {
		b.Fatal(err)
	}
	defer g.Release()

	chunk := make([]byte, chunkSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Reset()
		n, err := g.FillChunk(chunk)
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(int64(n))
	}
}

// NUMA allocation path benchmarks: Disabled vs Auto vs Force, so a
// reader can see the cost mbind(2) adds relative to a plain aligned
// allocation on whatever host runs the suite.

func BenchmarkAllocate_Disabled_4MiB(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, err := numa.Allocate(numa.Disabled, 0, 4<<20, numa.PageSize)
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(int64(len(buf)))
	}
}

func BenchmarkAllocate_Auto_4MiB(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, err := numa.Allocate(numa.Auto, 0, 4<<20, numa.PageSize)
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(int64(len(buf)))
	}
}

func BenchmarkAllocate_Force_4MiB(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, err := numa.Allocate(numa.Force, 0, 4<<20, numa.PageSize)
		if err != nil {
			// Force surfaces bind failures as an error on hosts
			// where mbind is unavailable or refuses node 0; the
			// allocation path itself is still what's timed.
			continue
		}
		b.SetBytes(int64(len(buf)))
	}
}

func BenchmarkAllocAny_4MiB(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = numa.AllocAny(4<<20, numa.PageSize)
	}
}

// High-contention benchmark demonstrating the worker pool's slot
// recycling under many small concurrent generators sharing the
// process-wide registry, mirroring the teacher's
// BenchmarkPool_HighContention_* style.

func BenchmarkGenerateBuffer_HighContention_SmallBuffers(b *testing.B) {
	ratios := content.Params{BlockSize: 4096, SubBlockSize: 1024, Dedup: 2, Compress: 2}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf, err := dgen.GenerateBuffer(64*4096, ratios, numa.Disabled, 2)
			if err != nil {
				b.Fatal(err)
			}
			b.SetBytes(int64(len(buf)))
			spin.Yield()
		}
	})
}
