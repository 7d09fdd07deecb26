package detect

import (
	"math/rand"
	"testing"

	"github.com/xyproto/euvcore/internal/pemap"
)

func highEntropyBytes(n int) []byte {
	r := rand.New(rand.NewSource(1))
	b := make([]byte, n)
	r.Read(b)
	return b
}

func structureWithSections(names ...string) *pemap.BinaryStructure {
	root := pemap.NewNode("PE File", "Root")
	sections := pemap.NewNode("Sections", "Sections")
	root.AddChild(sections)
	for _, n := range names {
		sections.AddChild(pemap.NewNode(n, "IMAGE_SECTION_HEADER"))
	}
	return root
}

func TestUPXDetectorMatchesSpecScenarioTwo(t *testing.T) {
	structure := structureWithSections("UPX0", "UPX1")
	data := append([]byte{0x55, 0x50, 0x58, 0x21}, highEntropyBytes(4096)...)

	res, err := UPXDetector{}.Detect(data, structure)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if res == nil {
		t.Fatal("expected a result, got nil")
	}
	if res.Confidence != 1.0 {
		t.Fatalf("confidence = %v, want 1.0", res.Confidence)
	}
	if res.Version != "3.x+" {
		t.Fatalf("version = %q, want 3.x+", res.Version)
	}
	if res.Kind != KindPacker {
		t.Fatalf("kind = %v, want Packer", res.Kind)
	}
}

func TestUPXDetectorNilOnCleanBuffer(t *testing.T) {
	res, err := UPXDetector{}.Detect(make([]byte, 64), nil)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil result on a clean buffer, got %+v", res)
	}
}

func TestThemidaDetectorMatchesWildcardedSignature(t *testing.T) {
	data := []byte{0xB8, 0x11, 0x22, 0x33, 0x44, 0x60, 0x0B, 0xC0, 0x74, 0x58}
	res, err := ThemidaDetector{}.Detect(data, nil)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if res == nil || res.Confidence <= 0 {
		t.Fatal("expected nonzero confidence on a single Themida signature hit")
	}
}

func TestFSGDetectorAssignsVersionOnSignatureHit(t *testing.T) {
	data := []byte{0x87, 0x25, 0x11, 0x22, 0x33, 0x44, 0x61, 0x94}
	res, err := FSGDetector{}.Detect(data, nil)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.Version != "2.0" {
		t.Fatalf("version = %q, want 2.0", res.Version)
	}
}

func TestRegistryOrdersResultsByDescendingConfidence(t *testing.T) {
	r := NewRegistry()
	r.Register(FSGDetector{})
	r.Register(UPXDetector{})
	r.Register(ThemidaDetector{})

	structure := structureWithSections("UPX0", "UPX1")
	data := append([]byte{0x55, 0x50, 0x58, 0x21}, highEntropyBytes(4096)...)

	results := r.Analyze(data, structure, nil)
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	for i := 1; i < len(results); i++ {
		if results[i].Confidence > results[i-1].Confidence {
			t.Fatalf("results not sorted descending: %+v", results)
		}
	}
	if results[0].Name != "UPX" {
		t.Fatalf("expected UPX to win, got %q", results[0].Name)
	}
}

func TestRegistryDropsZeroConfidenceResults(t *testing.T) {
	r := NewRegistry()
	r.Register(UPXDetector{})
	r.Register(ThemidaDetector{})
	r.Register(FSGDetector{})

	results := r.Analyze(make([]byte, 64), nil, nil)
	if len(results) != 0 {
		t.Fatalf("expected no results on a clean buffer, got %+v", results)
	}
}

func TestRegistryBestReturnsFalseWhenEmpty(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Best(nil, nil); ok {
		t.Fatal("expected Best to report false on an empty registry")
	}
}

func TestRegistryRunsDetectorsInPriorityOrder(t *testing.T) {
	r := NewRegistry()
	var seen []string
	ch := make(chan string, 3)
	r.Register(ThemidaDetector{})
	r.Register(FSGDetector{})
	r.Register(UPXDetector{})

	structure := structureWithSections("UPX0", "UPX1")
	data := append([]byte{0x55, 0x50, 0x58, 0x21}, highEntropyBytes(4096)...)
	r.Analyze(data, structure, ch)
	close(ch)
	for name := range ch {
		seen = append(seen, name)
	}
	want := []string{"UPX", "Themida/WinLicense", "FSG"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}
