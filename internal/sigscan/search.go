package sigscan

// SignatureMatch is one located occurrence of a pattern, reported in
// absolute file coordinates.
type SignatureMatch struct {
	Offset  uint64
	Name    string
	Pattern string
	Length  int
}

// chunkSize bounds how much of a ByteSource-backed search window is
// held in memory at once; searches against an in-memory []byte skip
// chunking entirely since the whole slice is already resident.
const chunkSize = 1 << 20 // 1 MiB

// FindAll returns every position where pattern matches data, in
// ascending offset order; overlapping matches are all reported.
func FindAll(data []byte, pattern []PatternByte, name string) []SignatureMatch {
	if len(pattern) == 0 {
		return nil
	}
	var matches []SignatureMatch
	if hasWildcard(pattern) {
		for _, pos := range bmhSearchWildcard(data, pattern) {
			matches = append(matches, SignatureMatch{
				Offset: uint64(pos), Name: name, Pattern: patternString(pattern), Length: len(pattern),
			})
		}
		return matches
	}
	for _, pos := range exactSearch(data, pattern) {
		matches = append(matches, SignatureMatch{
			Offset: uint64(pos), Name: name, Pattern: patternString(pattern), Length: len(pattern),
		})
	}
	return matches
}

// FindFirst returns the first match offset, or (0, false) on a miss.
func FindFirst(data []byte, pattern []PatternByte) (uint64, bool) {
	if len(pattern) == 0 {
		return 0, false
	}
	if hasWildcard(pattern) {
		positions := bmhSearchWildcard(data, pattern)
		if len(positions) == 0 {
			return 0, false
		}
		return uint64(positions[0]), true
	}
	positions := exactSearch(data, pattern)
	if len(positions) == 0 {
		return 0, false
	}
	return uint64(positions[0]), true
}

// FindInRange searches data[off:off+size] and adjusts reported
// offsets back to absolute file coordinates.
func FindInRange(data []byte, off, size uint64, pattern []PatternByte, name string) []SignatureMatch {
	end := off + size
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	if off > end {
		return nil
	}
	slice := data[off:end]
	matches := FindAll(slice, pattern, name)
	for i := range matches {
		matches[i].Offset += off
	}
	return matches
}

func patternString(pattern []PatternByte) string {
	b := make([]byte, 0, len(pattern)*3)
	for i, p := range pattern {
		if i > 0 {
			b = append(b, ' ')
		}
		if p.Wildcard {
			b = append(b, '?', '?')
			continue
		}
		const hex = "0123456789ABCDEF"
		b = append(b, hex[p.Value>>4], hex[p.Value&0xF])
	}
	return string(b)
}

// exactSearch is a plain subsequence scan — the teacher's
// detectBadAddresses walks a byte slice the same way, comparing a
// fixed pattern byte-by-byte at every candidate position.
func exactSearch(data []byte, pattern []PatternByte) []int {
	n := len(pattern)
	if n == 0 || n > len(data) {
		return nil
	}
	first := pattern[0].Value
	var out []int
	for i := 0; i+n <= len(data); i++ {
		if data[i] != first {
			continue
		}
		if matchesAt(data, i, pattern) {
			out = append(out, i)
		}
	}
	return out
}

// bmhSearchWildcard is Boyer-Moore-Horspool with a 256-entry bad-byte
// shift table; wildcard positions contribute no skip: a wildcard at
// position i stands for every byte value, so it caps every table
// entry at n-1-i, and a wildcard in the last position forces a shift
// of 1. matchesAt re-checks the full window at each candidate.
func bmhSearchWildcard(data []byte, pattern []PatternByte) []int {
	n := len(pattern)
	if n == 0 || n > len(data) {
		return nil
	}

	var shift [256]int
	for i := range shift {
		shift[i] = n
	}
	lastConcreteWildcard := pattern[n-1].Wildcard
	for i := 0; i < n-1; i++ {
		if pattern[i].Wildcard {
			for c := range shift {
				shift[c] = n - 1 - i
			}
			continue
		}
		shift[pattern[i].Value] = n - 1 - i
	}

	var out []int
	i := 0
	for i+n <= len(data) {
		if matchesAt(data, i, pattern) {
			out = append(out, i)
			i++
			continue
		}
		var s int
		if lastConcreteWildcard {
			s = 1
		} else {
			s = shift[data[i+n-1]]
			if s == 0 {
				s = 1
			}
		}
		i += s
	}
	return out
}
