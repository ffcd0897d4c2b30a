// Package heap implements the first-fit allocator described in spec §4.3:
// one contiguous arena walked as an implicit list of blocks, each block
// prefixed by a single header word that packs its total size (block
// header included) together with a used bit in the size's otherwise-idle
// low bit. Every free block is eagerly forward-coalesced with its free
// successors, both when a block is freed and again as Alloc's scan
// passes over it, so a run of adjacent free blocks left by out-of-order
// Frees is never seen as anything but one block. The single header word
// with the used bit packed into its low bit is this package's own
// encoding; there is no end tag, since forward-only coalescing never
// needs to walk backward.
package heap

import (
	"encoding/binary"
	"errors"
	"unsafe"

	"oskernel/hal"
)

// ErrNoSpace is returned by Alloc when no free block is large enough.
var ErrNoSpace = errors.New("heap: no free block large enough")

// ErrInvalidPointer is returned by Free when the pointer does not
// correspond to a live allocation from this heap.
var ErrInvalidPointer = errors.New("heap: pointer not a live allocation")

// ErrInvalidSize is returned by Alloc(0): a zero-byte allocation is a
// precondition violation, not silently rounded up to one byte.
var ErrInvalidSize = errors.New("heap: alloc size must be nonzero")

const (
	align       = 4
	headerSize  = 4
	minBlock    = headerSize + align
	usedBit     = uint32(1)
	sizeMask    = ^uint32(1)
)

// Heap is a first-fit allocator over one arena.
type Heap struct {
	mem []byte

	freeTotal uint32
	usedTotal uint32
}

// New carves size bytes into a single free block spanning the whole
// arena.
func New(size uint32) *Heap {
	if size < minBlock {
		size = minBlock
	}
	size -= size % align
	h := &Heap{mem: make([]byte, size)}
	setHeader(h.mem, 0, size, false)
	h.freeTotal = size - headerSize
	return h
}

func headerAt(mem []byte, off uint32) (size uint32, used bool) {
	w := binary.LittleEndian.Uint32(mem[off : off+4])
	return w & sizeMask, w&usedBit != 0
}

func setHeader(mem []byte, off, size uint32, used bool) {
	w := size &^ 1
	if used {
		w |= usedBit
	}
	binary.LittleEndian.PutUint32(mem[off:off+4], w)
}

func alignUp(n uint32) uint32 {
	if r := n % align; r != 0 {
		n += align - r
	}
	return n
}

// coalesceForward merges the free block at off with as many immediately
// following free blocks as it can reach, rewriting off's header to cover
// the whole run and returning the run's new size. off must already be a
// free block. Callers hold the guard.
func (h *Heap) coalesceForward(off uint32) uint32 {
	size, _ := headerAt(h.mem, off)
	next := off + size
	for next < uint32(len(h.mem)) {
		nSize, nUsed := headerAt(h.mem, next)
		if nUsed || nSize < headerSize {
			break
		}
		size += nSize
		h.freeTotal += headerSize // the absorbed neighbor's header is no longer overhead
		next = off + size
	}
	setHeader(h.mem, off, size, false)
	return size
}

// Alloc walks the arena from its base looking for the first free block
// that fits n bytes of payload. Every free block is eagerly forward-
// coalesced with its free successors before being measured against the
// request, so a run of adjacent free blocks left by out-of-order Frees
// is seen as one block rather than several undersized ones. The chosen
// block is then split off the remainder when it is large enough to
// stand alone as its own block. Alloc(0) is a precondition violation and
// returns ErrInvalidSize rather than allocating a zero-byte block.
func (h *Heap) Alloc(n uint32) ([]byte, error) {
	if n == 0 {
		return nil, ErrInvalidSize
	}
	need := alignUp(n) + headerSize

	g := hal.AcquireGuard()
	defer g.Release()

	var off uint32
	for off < uint32(len(h.mem)) {
		size, used := headerAt(h.mem, off)
		if size < headerSize {
			break // corrupt or end sentinel
		}
		if !used {
			size = h.coalesceForward(off)
		}
		if !used && size >= need {
			remainder := size - need
			if remainder >= minBlock {
				setHeader(h.mem, off, need, true)
				setHeader(h.mem, off+need, remainder, false)
				h.freeTotal -= headerSize // the split-off remainder's header is new overhead
			} else {
				need = size
				setHeader(h.mem, off, size, true)
			}
			h.freeTotal -= need - headerSize
			h.usedTotal += need - headerSize

			payload := h.mem[off+headerSize : off+need : off+need]
			for i := range payload {
				payload[i] = 0
			}
			return payload[:n], nil
		}
		off += size
	}
	return nil, ErrNoSpace
}

// Free marks the block backing p free and eagerly forward-coalesces it
// with however many free blocks follow it. A free block that precedes
// p's block is not merged here; it absorbs p's block when a later
// Alloc's scan passes over it.
func (h *Heap) Free(p []byte) error {
	off, blockSize, err := h.blockOf(p)
	if err != nil {
		return err
	}

	g := hal.AcquireGuard()
	defer g.Release()

	setHeader(h.mem, off, blockSize, false)
	h.usedTotal -= blockSize - headerSize
	h.freeTotal += blockSize - headerSize

	h.coalesceForward(off)
	return nil
}

// blockOf recovers a payload pointer's owning block header, validating
// that it lies on a real header boundary inside this arena and is
// currently marked used.
func (h *Heap) blockOf(p []byte) (off, size uint32, err error) {
	if len(h.mem) == 0 || len(p) == 0 {
		return 0, 0, ErrInvalidPointer
	}
	base := uintptr(unsafe.Pointer(&h.mem[0]))
	ptr := uintptr(unsafe.Pointer(&p[0]))
	if ptr < base+headerSize {
		return 0, 0, ErrInvalidPointer
	}
	diff := ptr - base
	if diff >= uintptr(len(h.mem)) {
		return 0, 0, ErrInvalidPointer
	}
	blockOff := uint32(diff) - headerSize
	size, used := headerAt(h.mem, blockOff)
	if !used || size < minBlock || blockOff+size > uint32(len(h.mem)) {
		return 0, 0, ErrInvalidPointer
	}
	return blockOff, size, nil
}

// FreeTotal and UsedTotal report payload bytes (header overhead
// excluded), maintained incrementally on every Alloc/Free.
func (h *Heap) FreeTotal() uint32 { return h.freeTotal }
func (h *Heap) UsedTotal() uint32 { return h.usedTotal }

// LargestFree walks the arena and returns the payload capacity of its
// biggest free block, for callers deciding whether a later Alloc of a
// given size stands a chance.
func (h *Heap) LargestFree() uint32 {
	g := hal.AcquireGuard()
	defer g.Release()

	var largest uint32
	var off uint32
	for off < uint32(len(h.mem)) {
		size, used := headerAt(h.mem, off)
		if size < headerSize {
			break
		}
		if !used && size-headerSize > largest {
			largest = size - headerSize
		}
		off += size
	}
	return largest
}

// FragmentCount returns the number of distinct free blocks in the
// arena — 1 means no fragmentation, 0 means fully allocated.
func (h *Heap) FragmentCount() uint32 {
	g := hal.AcquireGuard()
	defer g.Release()

	var count uint32
	var off uint32
	for off < uint32(len(h.mem)) {
		size, used := headerAt(h.mem, off)
		if size < headerSize {
			break
		}
		if !used {
			count++
		}
		off += size
	}
	return count
}

// Size reports the arena's total size in bytes, header overhead
// included.
func (h *Heap) Size() uint32 { return uint32(len(h.mem)) }
