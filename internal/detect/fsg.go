package detect

import (
	"github.com/xyproto/euvcore/internal/pemap"
	"github.com/xyproto/euvcore/internal/sigscan"
)

// FSGDetector recognizes the FSG (Fast Small Good) packer's small
// entry-point decompression stub, versioned by which stub variant
// matched, plus the abnormally small sections and redirected import
// RVA FSG's single-section layout tends to leave behind.
type FSGDetector struct{}

func (FSGDetector) Name() string    { return "FSG" }
func (FSGDetector) Version() string { return "" }
func (FSGDetector) Priority() int   { return 30 }

func (FSGDetector) CanAnalyze(*pemap.BinaryStructure) bool { return true }

type fsgVersionSig struct {
	pattern string
	version string
}

var fsgVersionSignatures = []fsgVersionSig{
	{"87 25 ?? ?? ?? ?? 61 94", "2.0"},
	{"BE ?? ?? ?? ?? AD 8B F8", "1.33"},
	{"EB 02 ?? ?? E9 ?? ?? ?? ??", "1.31"},
}

func (FSGDetector) Detect(data []byte, structure *pemap.BinaryStructure) (*DetectionResult, error) {
	var confidence float64
	var version string
	var matches []sigscan.SignatureMatch

	for _, v := range fsgVersionSignatures {
		hits := findSignatures(data, []string{v.pattern}, "FSG")
		if len(hits) > 0 {
			matches = append(matches, hits...)
			if version == "" {
				version = v.version
			}
		}
	}
	if version != "" {
		confidence += 0.60
	}

	sizes := structure.SectionRawSizes()
	for _, sz := range sizes {
		if sz < 1024 {
			confidence += 0.10
			break
		}
	}
	if len(sizes) > 0 && sizes[0] < 512 {
		confidence += 0.15
	}
	if sigscan.Entropy(data) > 7.0 {
		confidence += 0.15
	}
	if rva, ok := structure.ImportDirectoryRVA(); structure != nil && (!ok || rva == 0) {
		confidence += 0.10
	}
	if confidence <= 0 {
		return nil, nil
	}

	return &DetectionResult{
		Detector:   "FSG",
		Name:       "FSG",
		Version:    version,
		Kind:       KindPacker,
		Confidence: confidence,
		Matches:    matches,
	}, nil
}
