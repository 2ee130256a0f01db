// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dgen

import (
	"github.com/dgenlab/dgen/dgenerr"
	"github.com/dgenlab/dgen/internal/content"
	"github.com/dgenlab/dgen/internal/numa"
)

// GenerateBuffer allocates and returns a fresh, page-aligned buffer of
// size bytes (rounded up to a block-size multiple), filled per ratios.
// The returned buffer's storage is owned entirely by the caller; dgen
// retains no reference to it once GenerateBuffer returns.
func GenerateBuffer(size uint64, ratios content.Params, mode numa.Mode, maxWorkers int) ([]byte, error) {
	if size == 0 {
		return nil, dgenerr.InvalidArgument("size must be > 0")
	}
	blockSize := uint64(ratios.BlockSize)
	rounded := roundUp(size, blockSize)

	buf, err := numa.Allocate(mode, 0, int(rounded), numa.PageSize)
	if err != nil {
		return nil, err
	}

	g, err := NewGenerator(Config{
		Size:       rounded,
		Ratios:     ratios,
		NumaMode:   mode,
		MaxWorkers: maxWorkers,
		ChunkSize:  rounded,
	})
	if err != nil {
		return nil, err
	}
	defer g.Release()

	if _, err := g.FillChunk(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// FillBuffer fills the caller-supplied buf in place per ratios. The
// engine stops at the last block boundary <= len(buf); any remainder
// shorter than one block is left untouched. Returns the number of bytes
// written.
func FillBuffer(buf []byte, ratios content.Params, mode numa.Mode, maxWorkers int) (uint64, error) {
	blockSize := uint64(ratios.BlockSize)
	if uint64(len(buf)) < blockSize {
		return 0, dgenerr.InvalidArgument("buffer length %d smaller than block_size %d", len(buf), blockSize)
	}

	usable := (uint64(len(buf)) / blockSize) * blockSize

	g, err := NewGenerator(Config{
		Size:       usable,
		Ratios:     ratios,
		NumaMode:   mode,
		MaxWorkers: maxWorkers,
		ChunkSize:  usable,
	})
	if err != nil {
		return 0, err
	}
	defer g.Release()

	return g.FillChunk(buf[:usable])
}
