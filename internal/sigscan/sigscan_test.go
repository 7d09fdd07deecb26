package sigscan

import (
	"math"
	"testing"
)

func TestParsePatternWildcards(t *testing.T) {
	pat, err := ParsePattern("DE AD ?? EF ?")
	if err != nil {
		t.Fatalf("ParsePattern: %v", err)
	}
	want := []PatternByte{
		{Value: 0xDE}, {Value: 0xAD}, {Wildcard: true}, {Value: 0xEF}, {Wildcard: true},
	}
	if len(pat) != len(want) {
		t.Fatalf("len = %d, want %d", len(pat), len(want))
	}
	for i := range want {
		if pat[i] != want[i] {
			t.Fatalf("pat[%d] = %+v, want %+v", i, pat[i], want[i])
		}
	}
}

func TestParsePatternEmpty(t *testing.T) {
	pat, err := ParsePattern("")
	if err != nil || len(pat) != 0 {
		t.Fatalf("ParsePattern(\"\") = %v, %v", pat, err)
	}
}

func TestParsePatternInvalidHex(t *testing.T) {
	if _, err := ParsePattern("ZZ"); err == nil {
		t.Fatal("expected error for invalid hex byte")
	}
}

func TestFindFirstExact(t *testing.T) {
	data := []byte{0x00, 0x01, 0xDE, 0xAD, 0xBE, 0xEF, 0x02}
	pat, _ := ParsePattern("DE AD BE EF")
	off, ok := FindFirst(data, pat)
	if !ok || off != 2 {
		t.Fatalf("FindFirst = %d, %v, want 2, true", off, ok)
	}
}

func TestFindFirstMiss(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02}
	pat, _ := ParsePattern("DE AD BE EF")
	if _, ok := FindFirst(data, pat); ok {
		t.Fatal("expected miss")
	}
}

func TestFindAllOverlapping(t *testing.T) {
	data := []byte{0xAA, 0xAA, 0xAA}
	pat, _ := ParsePattern("AA AA")
	matches := FindAll(data, pat, "dup")
	if len(matches) != 2 {
		t.Fatalf("expected 2 overlapping matches, got %d: %+v", len(matches), matches)
	}
	if matches[0].Offset != 0 || matches[1].Offset != 1 {
		t.Fatalf("unexpected offsets: %+v", matches)
	}
}

func TestWildcardSearchMatchesOnlyConcretePositions(t *testing.T) {
	data := []byte{0x10, 0x99, 0x30, 0x10, 0x77, 0x30}
	pat, _ := ParsePattern("10 ?? 30")
	matches := FindAll(data, pat, "w")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(matches), matches)
	}
	for _, m := range matches {
		if data[m.Offset] != 0x10 || data[m.Offset+2] != 0x30 {
			t.Fatalf("match at %d violates concrete bytes", m.Offset)
		}
	}
}

func TestFindInRangeAdjustsOffsets(t *testing.T) {
	data := []byte{0, 0, 0, 0xDE, 0xAD, 0, 0, 0xDE, 0xAD, 0}
	pat, _ := ParsePattern("DE AD")
	matches := FindInRange(data, 5, 5, pat, "r")
	if len(matches) != 1 || matches[0].Offset != 7 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestEntropyEmptyIsZero(t *testing.T) {
	if e := Entropy(nil); e != 0.0 {
		t.Fatalf("Entropy(nil) = %f, want 0", e)
	}
}

func TestEntropySingleByteRunIsZero(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = 0x41
	}
	if e := Entropy(data); e != 0.0 {
		t.Fatalf("Entropy(uniform) = %f, want 0", e)
	}
}

func TestEntropyBoundedByEight(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	e := Entropy(data)
	if e < 0 || e > 8.0 {
		t.Fatalf("Entropy out of bounds: %f", e)
	}
	if math.Abs(e-8.0) > 1e-9 {
		t.Fatalf("uniform 256-byte distribution should be ~8.0 bits, got %f", e)
	}
}

func TestEntropyByRegionSkipsNonCodeData(t *testing.T) {
	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(i * 7)
	}
	regions := []Region{
		{Name: "text", Offset: 0, Size: 16, Kind: "Code"},
		{Name: "rsrc", Offset: 16, Size: 16, Kind: "Resource"},
	}
	out := EntropyByRegion(data, regions)
	if _, ok := out["rsrc"]; ok {
		t.Fatal("Resource region should be excluded")
	}
	if _, ok := out["text"]; !ok {
		t.Fatal("Code region should be included")
	}
}
