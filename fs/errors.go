package fs

import "errors"

var (
	// ErrNotMounted is returned by every operation except Mount/Format
	// when called before a successful Mount or Format.
	ErrNotMounted = errors.New("fs: not mounted")

	// ErrInvalidSuperblock is returned by Mount when the superblock's
	// magic or version does not match.
	ErrInvalidSuperblock = errors.New("fs: invalid superblock")

	// ErrExists is returned by Create/Rename when the target name is
	// already present.
	ErrExists = errors.New("fs: file exists")

	// ErrNotFound is returned when the named file has no file-table
	// entry.
	ErrNotFound = errors.New("fs: file not found")

	// ErrNoSpace is returned when the sector bitmap has no run of free
	// sectors long enough for the request.
	ErrNoSpace = errors.New("fs: no space")

	// ErrNoSlot is returned when the file table has no free entry left.
	ErrNoSlot = errors.New("fs: file table full")

	// ErrWouldNotFit is returned by Append when the new size would
	// exceed the file's already-reserved sector run.
	ErrWouldNotFit = errors.New("fs: append would not fit in reserved sectors")

	// ErrInvalidName is returned for empty names or names that do not
	// fit in the 23-byte-plus-NUL name field.
	ErrInvalidName = errors.New("fs: invalid file name")

	// ErrTimeout is returned by Upload when 10 seconds pass without a
	// byte arriving.
	ErrTimeout = errors.New("fs: upload timed out")
)
