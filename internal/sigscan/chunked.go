package sigscan

import "github.com/xyproto/euvcore/internal/bytesource"

// FindAllInSource runs FindAll chunk-by-chunk over a ByteSource that
// may be larger than memory, with an overlap of len(pattern)-1 bytes
// between chunks so matches straddling a chunk boundary are not
// missed. Offsets in the returned matches are absolute.
func FindAllInSource(src bytesource.ByteSource, pattern []PatternByte, name string) []SignatureMatch {
	if len(pattern) == 0 {
		return nil
	}
	total := src.Len()
	overlap := uint64(len(pattern) - 1)
	var all []SignatureMatch
	seen := make(map[uint64]bool)

	for start := uint64(0); start < total; {
		end := start + chunkSize
		if end > total {
			end = total
		}
		buf := make([]byte, end-start)
		src.ReadInto(start, buf)
		for _, m := range FindAll(buf, pattern, name) {
			abs := m.Offset + start
			if seen[abs] {
				continue
			}
			seen[abs] = true
			m.Offset = abs
			all = append(all, m)
		}
		if end == total {
			break
		}
		// Advance by a full chunk minus the overlap so a match
		// beginning in the tail of this chunk is still caught
		// starting from the next chunk's read.
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return all
}
