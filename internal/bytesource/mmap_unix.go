//go:build linux || darwin
// +build linux darwin

package bytesource

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// mmapSource maps the whole file MAP_SHARED so writes through WriteU8
// are visible to subsequent reads on this instance and are eventually
// written back by the kernel (Flush forces it with Msync).
//
// Grounded on the teacher's arena.go/hotreload_unix.go raw mmap calls,
// adapted from an anonymous executable mapping to a file-backed
// read/write one via golang.org/x/sys/unix (see other_examples'
// dh-cli uffd_linux.go for the unix.Mmap(fd, 0, size, PROT, MAP_PRIVATE)
// call shape this mirrors, with MAP_SHARED in place of MAP_PRIVATE so
// writes persist).
type mmapSource struct {
	mu   sync.RWMutex
	file *os.File
	data []byte
}

func newMmapSource(path string) (*mmapSource, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := st.Size()
	if size == 0 {
		f.Close()
		return nil, fmt.Errorf("bytesource: cannot mmap empty file %s", path)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bytesource: mmap failed: %w", err)
	}
	return &mmapSource{file: f, data: data}, nil
}

func (m *mmapSource) Len() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.data))
}

func (m *mmapSource) ReadU8(off uint64) uint8 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if off >= uint64(len(m.data)) {
		return 0
	}
	return m.data[off]
}

func (m *mmapSource) ReadInto(off uint64, buf []byte) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if off >= uint64(len(m.data)) {
		return 0
	}
	n := copy(buf, m.data[off:])
	return n
}

func (m *mmapSource) WriteU8(off uint64, v uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off >= uint64(len(m.data)) {
		return ErrOutOfRange
	}
	m.data[off] = v
	return nil
}

func (m *mmapSource) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return unix.Msync(m.data, unix.MS_SYNC)
}

func (m *mmapSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data != nil {
		unix.Munmap(m.data)
		m.data = nil
	}
	return m.file.Close()
}
