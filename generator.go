// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dgen

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgenlab/dgen/dgenerr"
	"github.com/dgenlab/dgen/internal/content"
	"github.com/dgenlab/dgen/internal/fillengine"
	"github.com/dgenlab/dgen/internal/numa"
	"github.com/dgenlab/dgen/internal/prng"
	"github.com/dgenlab/dgen/internal/topology"
	"github.com/dgenlab/dgen/internal/workerpool"
)

// generator state machine values.
const (
	stateFresh uint32 = iota
	stateRunning
	stateComplete
)

// Config holds the arguments used to construct a Generator.
type Config struct {
	// Size is the requested logical size in bytes. Rounded up to a
	// multiple of Ratios.BlockSize.
	Size uint64
	// Ratios carries the block size, sub-block size, and target dedup
	// and compression ratios (both must be >= 1.0).
	Ratios content.Params
	// NumaMode is recorded on the Generator but does not change what it
	// does: a Generator writes into caller-supplied buffers and
	// allocates none itself. GenerateBuffer applies its own mode
	// argument to the buffer it allocates. Zero value is numa.Auto.
	NumaMode numa.Mode
	// MaxWorkers caps the worker count; 0 means "use the full
	// effective affinity width".
	MaxWorkers int
	// PinnedNode optionally selects a specific NUMA node whose CPU list
	// the worker pool is pinned to. It does not affect allocation. nil
	// means "no specific node": the pool uses the full effective
	// affinity.
	PinnedNode *int
	// Seed fixes the master seed. A nil Seed draws fresh entropy at
	// construction time.
	Seed *uint64
	// ChunkSize is the size of each FillChunk call's output, must be
	// >= Ratios.BlockSize and block-aligned. Zero means
	// "one chunk covering the whole rounded size" (one-shot mode).
	ChunkSize uint64
}

// Generator is a streaming, pull-style byte generator: repeated
// FillChunk calls produce the stream in strictly increasing position
// order. Content is a pure function of (seed, block index, ratios), so
// the concatenation of chunks is bit-identical regardless of chunk size
// or worker count.
type Generator struct {
	_ noCopy

	totalSize uint64
	chunkSize uint64
	ratios    content.Params
	seed      uint64

	numaMode   numa.Mode
	maxWorkers int
	pinnedNode int

	pool *workerpool.Pool

	mu       sync.Mutex
	position uint64
	state    atomic.Uint32
}

// NewGenerator validates cfg, rounds Size up to a block-size multiple,
// and returns a Generator in the Fresh state.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Ratios.BlockSize <= 0 {
		return nil, dgenerr.InvalidArgument("ratios.BlockSize must be > 0")
	}
	if cfg.Size == 0 {
		return nil, dgenerr.InvalidArgument("size must be > 0")
	}
	if cfg.Ratios.Dedup < 1.0 || cfg.Ratios.Compress < 1.0 {
		return nil, dgenerr.InvalidArgument("dedup and compress ratios must be >= 1.0, got D=%v C=%v", cfg.Ratios.Dedup, cfg.Ratios.Compress)
	}

	blockSize := uint64(cfg.Ratios.BlockSize)
	totalSize := roundUp(cfg.Size, blockSize)

	chunkSize := cfg.ChunkSize
	if chunkSize == 0 {
		chunkSize = totalSize
	}
	if chunkSize < blockSize {
		return nil, dgenerr.InvalidArgument("chunk_size %d must be >= block_size %d", chunkSize, blockSize)
	}
	if chunkSize%blockSize != 0 {
		return nil, dgenerr.InvalidArgument("chunk_size %d must be a multiple of block_size %d", chunkSize, blockSize)
	}

	snap := topology.Probe()
	maxWorkers := cfg.MaxWorkers
	effective := snap.EffectiveWorkerCount(maxWorkers)
	if effective < 1 {
		effective = 1
	}

	if cfg.PinnedNode != nil {
		n := *cfg.PinnedNode
		if n < 0 || n >= len(snap.Nodes) {
			return nil, dgenerr.InvalidArgument("invalid pinned_node %d", n)
		}
	}

	seed, err := resolveSeed(cfg.Seed)
	if err != nil {
		return nil, err
	}

	var cpus []int
	poolNode := workerpool.GlobalNode
	if cfg.PinnedNode != nil {
		poolNode = *cfg.PinnedNode
		cpus = snap.CPUsForNode(poolNode)
	} else {
		cpus = snap.Affinity
	}

	pool, err := workerpool.Default.Acquire(poolNode, effective, cpus)
	if err != nil {
		return nil, dgenerr.ResourceExhausted("worker pool acquisition failed: %v", err)
	}

	g := &Generator{
		totalSize:  totalSize,
		chunkSize:  chunkSize,
		ratios:     cfg.Ratios,
		seed:       seed,
		numaMode:   cfg.NumaMode,
		maxWorkers: effective,
		pinnedNode: poolNode,
		pool:       pool,
	}
	g.state.Store(stateFresh)
	activeLogger.Infof("dgen: generator created size=%d chunk_size=%d workers=%d node=%d", totalSize, chunkSize, effective, poolNode)
	return g, nil
}

// FillChunk writes the next chunk of the stream into buf, which must be
// at least ChunkSize() bytes long. Returns the number of bytes written,
// which is 0 once the generator is Complete.
func (g *Generator) FillChunk(buf []byte) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.position >= g.totalSize {
		g.state.Store(stateComplete)
		return 0, nil
	}
	if uint64(len(buf)) < g.chunkSize {
		return 0, dgenerr.InvalidArgument("buffer length %d smaller than chunk_size %d", len(buf), g.chunkSize)
	}

	g.state.Store(stateRunning)

	remaining := g.totalSize - g.position
	want := min(g.chunkSize, remaining)
	blockSize := uint64(g.ratios.BlockSize)
	blockCount := want / blockSize
	firstBlock := g.position / blockSize

	n, err := fillengine.Fill(buf[:want], firstBlock, blockCount, g.ratios, g.seed, g.pool)
	if err != nil {
		return 0, err
	}

	g.position += n
	if g.position >= g.totalSize {
		g.state.Store(stateComplete)
	}
	return n, nil
}

// IsComplete reports whether the generator has produced its full size.
func (g *Generator) IsComplete() bool {
	return g.state.Load() == stateComplete
}

// Position returns the number of bytes produced so far.
func (g *Generator) Position() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

// TotalSize returns the rounded-up total size this generator will
// produce.
func (g *Generator) TotalSize() uint64 {
	return g.totalSize
}

// ChunkSize returns the configured chunk size.
func (g *Generator) ChunkSize() uint64 {
	return g.chunkSize
}

// Reset rewinds the generator to position 0 without changing its seed
// or ratios, so a subsequent FillChunk reproduces the first chunk
// exactly.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = 0
	g.state.Store(stateFresh)
}

// SetSeed changes the generator's master seed, rewinding position to 0.
// A nil seed draws fresh entropy, matching construction-time behavior.
func (g *Generator) SetSeed(seed *uint64) error {
	resolved, err := resolveSeed(seed)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seed = resolved
	g.position = 0
	g.state.Store(stateFresh)
	return nil
}

// Release returns the generator's worker pool reference to the
// process-wide registry. Call when the Generator is no longer needed.
func (g *Generator) Release() {
	workerpool.Default.Release(g.pinnedNode, g.maxWorkers)
}

func roundUp(n, multiple uint64) uint64 {
	if n%multiple == 0 {
		return n
	}
	return (n/multiple + 1) * multiple
}

// resolveSeed returns *seed if non-nil, otherwise draws fresh entropy
// from crypto/rand mixed with the wall clock (time.Now().UnixNano(); the
// monotonic clock reading is not used) through one SplitMix64 round. This is the only place in the module that touches
// crypto/rand; everything downstream of the resolved seed uses the
// non-cryptographic Xoshiro256++ path.
func resolveSeed(seed *uint64) (uint64, error) {
	if seed != nil {
		return *seed, nil
	}

	var entropy [8]byte
	if _, err := rand.Read(entropy[:]); err != nil {
		return 0, dgenerr.Internal("failed to draw entropy for seed: %v", err)
	}
	raw := binary.LittleEndian.Uint64(entropy[:])
	clock := uint64(time.Now().UnixNano())

	sm := prng.NewSplitMix64(raw ^ clock)
	return sm.Next(), nil
}
