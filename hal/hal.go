// Package hal is the only contact point between the kernel core and the
// outside world. It exposes exactly the seams the core consumes: a byte
// sink for diagnostics, raw flash primitives, a byte-oriented serial
// channel for the filesystem upload protocol, and a periodic tick source.
// Everything else (framebuffer, GPIO, shell, interpreter) is a collaborator
// the core never imports.
package hal

import "errors"

// ErrNotImplemented is returned by seams that a given build target does
// not back with real hardware.
var ErrNotImplemented = errors.New("hal: not implemented")

// Logger writes newline-delimited diagnostic lines. Core code treats a nil
// Logger as "discard": no allocation, no blocking, safe to call from a
// guard-held section.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// Flash provides raw, block-erasable, byte-addressable access to
// non-volatile memory. All addresses are relative to the start of the
// region this Flash represents. Every implementation requires
// erase-before-write semantics: WriteAt over already-programmed bits is
// implementation defined.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// Serial is the byte source/sink named in spec §4.10: a non-blocking read
// side and a (possibly busy-waiting) write side. It is consumed only by
// the filesystem upload path.
type Serial interface {
	// TryReadByte returns a byte if one is immediately available.
	TryReadByte() (b byte, ok bool)
	// WriteByte writes a single byte, busy-waiting on the hardware FIFO
	// if necessary.
	WriteByte(b byte) error
}

// TickSource delivers a periodic callback at a platform-defined rate.
// Start must be called exactly once; fn is invoked from interrupt (or
// interrupt-equivalent) context and must not block or allocate.
type TickSource interface {
	Start(fn func())
	Stop()
}

// HAL aggregates the seams a single runtime binds together at startup.
type HAL interface {
	Logger() Logger
	Flash() Flash
	Serial() Serial
	Tick() TickSource
}
