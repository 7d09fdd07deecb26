package detect

import (
	"github.com/xyproto/euvcore/internal/pemap"
	"github.com/xyproto/euvcore/internal/sigscan"
)

// UPXDetector recognizes the UPX packer: its "UPX0"/"UPX1"/"UPX!"
// ASCII markers, its entry-point decompression stub, the UPX0/UPX1
// section names it renames sections to, and the high entropy its
// compressed payload section leaves behind.
type UPXDetector struct{}

func (UPXDetector) Name() string    { return "UPX" }
func (UPXDetector) Version() string { return "" }
func (UPXDetector) Priority() int   { return 10 }

func (UPXDetector) CanAnalyze(*pemap.BinaryStructure) bool { return true }

var upxSignatures = []string{
	"55 50 58 30", // "UPX0"
	"55 50 58 31", // "UPX1"
	"55 50 58 21", // "UPX!"
	"60 BE ?? ?? ?? ?? 8D BE ?? ?? ?? ?? 57",
}

const upxStubMagic = "55 50 58 21"

func (UPXDetector) Detect(data []byte, structure *pemap.BinaryStructure) (*DetectionResult, error) {
	matches := findSignatures(data, upxSignatures, "UPX")

	var confidence float64
	if len(matches) > 0 {
		confidence += 0.40
	}
	if structure.HasSectionNamed("UPX0") || structure.HasSectionNamed("UPX1") {
		confidence += 0.40
	} else if structure.HasSectionNamed(".UPX0") || structure.HasSectionNamed(".UPX1") {
		confidence += 0.30
	}
	if sigscan.Entropy(data) > 7.0 {
		confidence += 0.20
	}
	if confidence <= 0 {
		return nil, nil
	}

	version := ""
	if len(findSignatures(data, []string{upxStubMagic}, "UPX")) > 0 {
		version = "3.x+"
	}

	return &DetectionResult{
		Detector:   "UPX",
		Name:       "UPX",
		Version:    version,
		Kind:       KindPacker,
		Confidence: confidence,
		Matches:    matches,
	}, nil
}
