package undo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xyproto/euvcore/internal/bytesource"
)

func openTemp(t *testing.T, data []byte) bytesource.ByteSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	bs, err := bytesource.New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { bs.Close() })
	return bs
}

func TestUndoOneRestoresSingleByte(t *testing.T) {
	bs := openTemp(t, []byte{0x00})
	j := New()

	old := bs.ReadU8(0)
	bs.WriteU8(0, 0xFF)
	j.Record(0, []byte{old}, []byte{0xFF})

	if got := bs.ReadU8(0); got != 0xFF {
		t.Fatalf("pre-undo = %X", got)
	}
	j.UndoOne(bs)
	if got := bs.ReadU8(0); got != 0x00 {
		t.Fatalf("UndoOne did not restore: got %X", got)
	}
}

func TestUndoOneNoopWhenEmpty(t *testing.T) {
	bs := openTemp(t, []byte{0x01})
	j := New()
	j.UndoOne(bs) // must not panic
	if got := bs.ReadU8(0); got != 0x01 {
		t.Fatalf("unexpected mutation: %X", got)
	}
}

func TestTransactionalUndoRestoresAllFourBytes(t *testing.T) {
	bs := openTemp(t, []byte{1, 2, 3, 4})
	j := New()

	for off := uint64(0); off < 4; off++ {
		old := bs.ReadU8(off)
		bs.WriteU8(off, byte(0xA0+off))
		j.Record(off, []byte{old}, []byte{byte(0xA0 + off)})
	}
	j.Commit(j.Depth())

	j.UndoTransaction(bs)
	want := []byte{1, 2, 3, 4}
	for off := uint64(0); off < 4; off++ {
		if got := bs.ReadU8(off); got != want[off] {
			t.Fatalf("offset %d = %X, want %X", off, got, want[off])
		}
	}
}

func TestUndoOneFourTimesMatchesUndoTransaction(t *testing.T) {
	bs := openTemp(t, []byte{1, 2, 3, 4})
	j := New()
	for off := uint64(0); off < 4; off++ {
		old := bs.ReadU8(off)
		bs.WriteU8(off, byte(0xA0+off))
		j.Record(off, []byte{old}, []byte{byte(0xA0 + off)})
	}
	j.Commit(j.Depth())

	for i := 0; i < 4; i++ {
		j.UndoOne(bs)
	}
	want := []byte{1, 2, 3, 4}
	for off := uint64(0); off < 4; off++ {
		if got := bs.ReadU8(off); got != want[off] {
			t.Fatalf("offset %d = %X, want %X", off, got, want[off])
		}
	}
}

func TestCommitZeroPushesNoBoundary(t *testing.T) {
	bs := openTemp(t, []byte{1})
	j := New()
	j.Commit(0)
	// Should be a no-op: undoing a transaction must not restore
	// anything since no boundary was pushed.
	bs.WriteU8(0, 9)
	j.UndoTransaction(bs)
	if got := bs.ReadU8(0); got != 9 {
		t.Fatalf("unexpected restore with no committed transaction: %X", got)
	}
}
