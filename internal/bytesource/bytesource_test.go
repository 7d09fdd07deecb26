package bytesource

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	path := writeTempFile(t, make([]byte, 64))
	bs, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer bs.Close()

	for off := uint64(0); off < bs.Len(); off++ {
		v := uint8(off*7 + 3)
		if err := bs.WriteU8(off, v); err != nil {
			t.Fatalf("WriteU8(%d): %v", off, err)
		}
		if got := bs.ReadU8(off); got != v {
			t.Fatalf("ReadU8(%d) = %d, want %d", off, got, v)
		}
	}
}

func TestOutOfRangeReadReturnsZero(t *testing.T) {
	path := writeTempFile(t, []byte{1, 2, 3})
	bs, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer bs.Close()

	if got := bs.ReadU8(1000); got != 0 {
		t.Fatalf("out-of-range ReadU8 = %d, want 0", got)
	}
}

func TestOutOfRangeWriteFails(t *testing.T) {
	path := writeTempFile(t, []byte{1, 2, 3})
	bs, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer bs.Close()

	if err := bs.WriteU8(1000, 0xFF); err != ErrOutOfRange {
		t.Fatalf("out-of-range WriteU8 err = %v, want ErrOutOfRange", err)
	}
}

func TestReadIntoCopiesAvailableBytes(t *testing.T) {
	path := writeTempFile(t, []byte{0xAA, 0xBB, 0xCC, 0xDD})
	bs, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer bs.Close()

	buf := make([]byte, 2)
	n := bs.ReadInto(1, buf)
	if n != 2 || buf[0] != 0xBB || buf[1] != 0xCC {
		t.Fatalf("ReadInto = %d, %v", n, buf)
	}
}
