// Package pool implements the fixed-block allocator described in spec
// §4.2: O(1) alloc/free over K blocks of size B, reentrant against ISRs.
// Free blocks are threaded into a singly linked list whose "next" pointer
// lives in each block's own first word — the same "structure lives inside
// the memory it manages" trick intuitivelabs-mallocs/qmalloc uses for its
// fragment headers, just simplified to a flat pool with no coalescing.
package pool

import (
	"encoding/binary"
	"errors"
	"unsafe"

	"oskernel/hal"
)

// ErrNoBlock is returned by Alloc when the pool is exhausted.
var ErrNoBlock = errors.New("pool: no free block")

// ErrInvalidBlock is returned by Free when the pointer does not belong to
// this pool, or is not aligned to a block boundary.
var ErrInvalidBlock = errors.New("pool: pointer outside region")

const noFree = ^uint32(0)

// Pool is a fixed-block allocator over one contiguous region of
// blockCount*blockSize bytes.
type Pool struct {
	mem        []byte
	blockSize  uint32
	blockCount uint32

	freeOff   uint32 // offset of the free-list head, or noFree
	freeCount uint32
	usedCount uint32
}

// New wires blockCount blocks of blockSize bytes into a free list.
// blockSize must be at least 4 (room for the embedded next-pointer).
func New(blockSize, blockCount uint32) *Pool {
	if blockSize < 4 {
		blockSize = 4
	}
	p := &Pool{
		mem:        make([]byte, uint64(blockSize)*uint64(blockCount)),
		blockSize:  blockSize,
		blockCount: blockCount,
	}
	p.Init()
	return p
}

// Init (re)builds the free list from scratch, discarding any outstanding
// allocations. Called once at construction; exposed so a caller can
// reformat a pool the way spec §4.2's "init" step is a distinct operation
// from allocation.
func (p *Pool) Init() {
	for i := uint32(0); i < p.blockCount; i++ {
		off := i * p.blockSize
		next := noFree
		if i+1 < p.blockCount {
			next = off + p.blockSize
		}
		binary.LittleEndian.PutUint32(p.mem[off:off+4], next)
	}
	if p.blockCount == 0 {
		p.freeOff = noFree
	} else {
		p.freeOff = 0
	}
	p.freeCount = p.blockCount
	p.usedCount = 0
}

// Alloc unlinks and zeroes the head of the free list. O(1).
func (p *Pool) Alloc() ([]byte, error) {
	g := hal.AcquireGuard()
	defer g.Release()

	if p.freeOff == noFree {
		return nil, ErrNoBlock
	}
	off := p.freeOff
	p.freeOff = binary.LittleEndian.Uint32(p.mem[off : off+4])
	p.freeCount--
	p.usedCount++

	blk := p.mem[off : off+p.blockSize : off+p.blockSize]
	for i := range blk {
		blk[i] = 0
	}
	return blk, nil
}

// Free validates that blk falls inside this pool's region and on a block
// boundary, then pushes it back onto the head of the free list. O(1).
func (p *Pool) Free(blk []byte) error {
	off, err := p.offsetOf(blk)
	if err != nil {
		return err
	}

	g := hal.AcquireGuard()
	defer g.Release()

	binary.LittleEndian.PutUint32(p.mem[off:off+4], p.freeOff)
	p.freeOff = off
	p.freeCount++
	p.usedCount--
	return nil
}

func (p *Pool) offsetOf(blk []byte) (uint32, error) {
	if len(p.mem) == 0 || len(blk) != int(p.blockSize) {
		return 0, ErrInvalidBlock
	}
	base := uintptr(unsafe.Pointer(&p.mem[0]))
	ptr := uintptr(unsafe.Pointer(&blk[0]))
	if ptr < base {
		return 0, ErrInvalidBlock
	}
	diff := ptr - base
	if diff >= uintptr(len(p.mem)) || diff%uintptr(p.blockSize) != 0 {
		return 0, ErrInvalidBlock
	}
	return uint32(diff), nil
}

// FreeCount and UsedCount are readable without a guard: callers may
// observe a momentarily inconsistent pair, but each value alone is a
// single aligned word read (spec §4.2).
func (p *Pool) FreeCount() uint32 { return p.freeCount }
func (p *Pool) UsedCount() uint32 { return p.usedCount }

// BlockSize and BlockCount report the pool's fixed geometry.
func (p *Pool) BlockSize() uint32  { return p.blockSize }
func (p *Pool) BlockCount() uint32 { return p.blockCount }
