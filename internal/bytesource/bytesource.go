// Package bytesource implements the byte-addressable mutable store
// every other engine component reads and writes through.
//
// The memory-mapped backing is grounded on the teacher's direct use of
// mmap for executable pages (arena.go, hotreload_unix.go), adapted
// here from an anonymous PROT_EXEC mapping to a file-backed
// PROT_READ|PROT_WRITE mapping opened MAP_SHARED so writes land on
// disk. The buffered fallback exists for the same reason the teacher
// falls back to malloc on platforms without a cheap mmap path
// (arena.go's generateArenaInit): small inputs, or a build without
// mmap support, don't need the complexity.
package bytesource

import "errors"

// ErrOutOfRange is returned by Write when the offset falls outside
// [0, Len()). Reads never return this error; an out-of-range read
// silently yields 0, per spec.
var ErrOutOfRange = errors.New("bytesource: offset out of range")

// ByteSource is the abstract byte-addressable mutable store backing
// reads and writes for every other component (PEMapper, SignatureScanner,
// AsmEncoder payloads, ScriptEngine writes, UndoJournal restores).
//
// Both implementations guard every call with an internal RWMutex, so
// reads and single-byte writes are safe to issue from any goroutine.
// A run of several WriteU8 calls is not atomic as a whole — the caller
// (ScriptEngine, UndoJournal, UI) is expected to hold a single writer
// at a time, matching the concurrency model in §4.1/§5 of the
// specification.
type ByteSource interface {
	Len() uint64
	ReadU8(off uint64) uint8
	ReadInto(off uint64, buf []byte) int
	WriteU8(off uint64, v uint8) error
	Flush() error
	Close() error
}

// New opens path as a ByteSource, preferring a memory-mapped backing
// and falling back to a buffered in-memory copy (flushed on demand)
// when mmap setup fails — e.g. a zero-length file, or a filesystem
// that rejects shared mappings.
func New(path string) (ByteSource, error) {
	mm, err := newMmapSource(path)
	if err == nil {
		return mm, nil
	}
	return newBufferedSource(path)
}
