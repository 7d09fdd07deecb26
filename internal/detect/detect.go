// Package detect implements packer/protector identification: a
// registry of named Detectors, each scoring a byte buffer (plus its
// parsed BinaryStructure) against its own signature set, with results
// ranked by confidence.
//
// Grounded on gonids' Rule-as-self-contained-matcher shape (each rule
// owns its own Contents/PCREs/ByteMatchers and is evaluated
// independently against a buffer) — detect.Detector plays the same
// role, trading regex/content rule chains for sigscan pattern lists
// plus section-name/entropy scoring against the PEMapper tree.
package detect

import (
	"sort"

	"github.com/xyproto/euvcore/internal/pemap"
	"github.com/xyproto/euvcore/internal/sigscan"
)

// Kind classifies what a DetectionResult identified.
type Kind int

const (
	KindUnknown Kind = iota
	KindPacker
	KindProtector
	KindCryptor
	KindVirtualizer
	KindCompiler
)

func (k Kind) String() string {
	switch k {
	case KindPacker:
		return "Packer"
	case KindProtector:
		return "Protector"
	case KindCryptor:
		return "Cryptor"
	case KindVirtualizer:
		return "Virtualizer"
	case KindCompiler:
		return "Compiler"
	default:
		return "Unknown"
	}
}

// DetectionResult is one detector's verdict against a buffer.
// Registry.Analyze clamps Confidence to 1.0 and drops records at or
// below 0.0; a detector's own Detect returns its raw additive score,
// which can exceed 1.0. A non-match is represented by the record's
// absence from Registry.Analyze's output, never by a zero-confidence
// record.
type DetectionResult struct {
	Detector   string
	Name       string
	Version    string
	Kind       Kind
	Confidence float64
	Matches    []sigscan.SignatureMatch
	Metadata   map[string]string
}

// Detector identifies a single packer, protector, or compiler
// signature family.
type Detector interface {
	Name() string
	Version() string
	Priority() int
	// CanAnalyze reports whether this detector has anything useful to
	// say about structure (e.g. it needs a parsed section table).
	CanAnalyze(structure *pemap.BinaryStructure) bool
	// Detect scores data/structure, returning nil when nothing matched.
	Detect(data []byte, structure *pemap.BinaryStructure) (*DetectionResult, error)
}

// Registry holds registered Detectors and runs them against a buffer.
type Registry struct {
	detectors []Detector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds d to the registry. Detectors run in ascending
// Priority order (lower runs first) and ties are kept in registration
// order (sort.SliceStable).
func (r *Registry) Register(d Detector) {
	r.detectors = append(r.detectors, d)
}

// Analyze runs every registered detector whose CanAnalyze(structure)
// is true against data, suppresses detectors whose Detect fails, drops
// results with confidence <= 0, clamps the rest to 1.0, and returns
// them sorted by descending confidence.
func (r *Registry) Analyze(data []byte, structure *pemap.BinaryStructure, progress chan string) []DetectionResult {
	ordered := make([]Detector, len(r.detectors))
	copy(ordered, r.detectors)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	var results []DetectionResult
	for _, d := range ordered {
		if !d.CanAnalyze(structure) {
			continue
		}
		if progress != nil {
			select {
			case progress <- d.Name():
			default:
			}
		}
		res, err := d.Detect(data, structure)
		if err != nil || res == nil {
			continue
		}
		if res.Confidence <= 0 {
			continue
		}
		if res.Confidence > 1.0 {
			res.Confidence = 1.0
		}
		results = append(results, *res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}

// Best returns the highest-confidence result, or false if nothing
// matched.
func (r *Registry) Best(data []byte, structure *pemap.BinaryStructure) (DetectionResult, bool) {
	results := r.Analyze(data, structure, nil)
	if len(results) == 0 {
		return DetectionResult{}, false
	}
	return results[0], true
}

// findSignatures parses each hex-pattern string in sigs and collects
// every match against data; malformed patterns are skipped rather
// than failing the whole detector, since the signature tables below
// are trusted literals, not user input.
func findSignatures(data []byte, sigs []string, name string) []sigscan.SignatureMatch {
	var matches []sigscan.SignatureMatch
	for _, text := range sigs {
		pattern, err := sigscan.ParsePattern(text)
		if err != nil {
			continue
		}
		matches = append(matches, sigscan.FindAll(data, pattern, name)...)
	}
	return matches
}
