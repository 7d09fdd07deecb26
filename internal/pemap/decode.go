package pemap

import "encoding/binary"

// little-endian field readers over an absolute-offset byte slice —
// the same primitives pe_reader.go gets from encoding/binary.Read
// against an *os.File, adapted here to operate on an in-memory header
// window since PEMapper is handed a byte range rather than a file
// handle (spec.md §4.3: "the host reads a header window from the
// ByteSource, passes it to PEMapper").
func u16At(data []byte, off uint64) (uint16, bool) {
	if off+2 > uint64(len(data)) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(data[off:]), true
}

func u32At(data []byte, off uint64) (uint32, bool) {
	if off+4 > uint64(len(data)) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[off:]), true
}

func u64At(data []byte, off uint64) (uint64, bool) {
	if off+8 > uint64(len(data)) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(data[off:]), true
}

func bytesAt(data []byte, off, size uint64) []byte {
	if off+size > uint64(len(data)) {
		return nil
	}
	return data[off : off+size]
}
