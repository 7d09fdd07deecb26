// Package sigscan implements pure, stateless byte-pattern search and
// entropy analysis over a target file.
//
// The naive exact-match scan is grounded on the teacher's
// detectBadAddresses (bad_address_detector.go), which already walks a
// byte slice looking for fixed 4-byte patterns such as 0xDEADBEEF;
// this package generalizes that to arbitrary-length patterns with
// wildcard bytes, and adds the Boyer-Moore-Horspool-with-wildcards
// variant the specification requires for chunked, over-memory-sized
// searches.
package sigscan

import (
	"fmt"
	"strconv"
	"strings"
)

// PatternByte is one position of a parsed signature: a concrete value
// to match, or a wildcard that matches any byte.
type PatternByte struct {
	Wildcard bool
	Value    byte
}

// ParsePattern tokenizes whitespace-separated hex bytes; "??" or "?"
// is a wildcard. Empty input yields an empty pattern.
func ParsePattern(text string) ([]PatternByte, error) {
	fields := strings.Fields(text)
	pattern := make([]PatternByte, 0, len(fields))
	for _, tok := range fields {
		if tok == "??" || tok == "?" {
			pattern = append(pattern, PatternByte{Wildcard: true})
			continue
		}
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("sigscan: invalid hex byte %q: %w", tok, err)
		}
		pattern = append(pattern, PatternByte{Value: byte(v)})
	}
	return pattern, nil
}

// hasWildcard reports whether any position of pattern is a wildcard.
func hasWildcard(pattern []PatternByte) bool {
	for _, p := range pattern {
		if p.Wildcard {
			return true
		}
	}
	return false
}

// matchesAt reports whether pattern matches data at the given
// position: every concrete byte must be equal, every wildcard
// position is unconstrained.
func matchesAt(data []byte, pos int, pattern []PatternByte) bool {
	if pos < 0 || pos+len(pattern) > len(data) {
		return false
	}
	for i, p := range pattern {
		if !p.Wildcard && data[pos+i] != p.Value {
			return false
		}
	}
	return true
}
