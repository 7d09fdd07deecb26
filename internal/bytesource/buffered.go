package bytesource

import (
	"os"
	"sync"
)

// bufferedSource keeps the whole file in memory and writes it back on
// Flush/Close. It backs platforms or inputs where mmap isn't
// available (see mmap_unix.go's empty-file case, and mmap_windows.go which
// always uses this path since the teacher carries no Windows mmap
// code to adapt from).
type bufferedSource struct {
	mu    sync.RWMutex
	path  string
	perm  os.FileMode
	data  []byte
	dirty bool
}

func newBufferedSource(path string) (*bufferedSource, error) {
	info, statErr := os.Stat(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	perm := os.FileMode(0o644)
	if statErr == nil {
		perm = info.Mode().Perm()
	}
	return &bufferedSource{path: path, perm: perm, data: data}, nil
}

func (b *bufferedSource) Len() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint64(len(b.data))
}

func (b *bufferedSource) ReadU8(off uint64) uint8 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if off >= uint64(len(b.data)) {
		return 0
	}
	return b.data[off]
}

func (b *bufferedSource) ReadInto(off uint64, buf []byte) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if off >= uint64(len(b.data)) {
		return 0
	}
	return copy(buf, b.data[off:])
}

func (b *bufferedSource) WriteU8(off uint64, v uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if off >= uint64(len(b.data)) {
		return ErrOutOfRange
	}
	b.data[off] = v
	b.dirty = true
	return nil
}

func (b *bufferedSource) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.dirty {
		return nil
	}
	if err := os.WriteFile(b.path, b.data, b.perm); err != nil {
		return err
	}
	b.dirty = false
	return nil
}

func (b *bufferedSource) Close() error {
	return b.Flush()
}
