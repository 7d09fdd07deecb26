//go:build windows
// +build windows

package bytesource

import "fmt"

// No Windows mmap path is grounded in the teacher's dependency set
// (filewatcher_windows.go polls mtimes rather than reaching for
// golang.org/x/sys/windows), so ByteSource always falls back to the
// buffered implementation on this platform.
func newMmapSource(path string) (*mmapSourceStub, error) {
	return nil, fmt.Errorf("bytesource: mmap backing unavailable on windows")
}

type mmapSourceStub struct{}

func (*mmapSourceStub) Len() uint64                       { return 0 }
func (*mmapSourceStub) ReadU8(off uint64) uint8            { return 0 }
func (*mmapSourceStub) ReadInto(off uint64, buf []byte) int { return 0 }
func (*mmapSourceStub) WriteU8(off uint64, v uint8) error  { return ErrOutOfRange }
func (*mmapSourceStub) Flush() error                       { return nil }
func (*mmapSourceStub) Close() error                       { return nil }
