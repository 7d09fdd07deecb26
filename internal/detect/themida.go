package detect

import (
	"github.com/xyproto/euvcore/internal/pemap"
	"github.com/xyproto/euvcore/internal/sigscan"
)

// ThemidaDetector recognizes Themida/WinLicense by the entry-point
// VM-dispatch prologue its stub shares across versions, its renamed
// .THEMIDA/.WINLICE sections, an unusually large section count, an
// import RVA that's been redirected by the VM, and high overall
// entropy.
type ThemidaDetector struct{}

func (ThemidaDetector) Name() string    { return "Themida/WinLicense" }
func (ThemidaDetector) Version() string { return "" }
func (ThemidaDetector) Priority() int   { return 20 }

func (ThemidaDetector) CanAnalyze(*pemap.BinaryStructure) bool { return true }

var themidaSignatures = []string{
	"B8 ?? ?? ?? ?? 60 0B C0 74 58",
	"8B C5 8D 1C 28",
	"68 ?? ?? ?? ?? E8 00 00 00 00",
	"EB 10 ?? ?? ?? ?? ?? ?? ?? ?? ?? ?? ?? ?? ?? ??",
}

func (ThemidaDetector) Detect(data []byte, structure *pemap.BinaryStructure) (*DetectionResult, error) {
	matches := findSignatures(data, themidaSignatures, "Themida/WinLicense")

	var confidence float64
	if len(matches) > 0 {
		confidence += 0.30
	}
	if structure.HasSectionNamed(".THEMIDA") || structure.HasSectionNamed(".WINLICE") {
		confidence += 0.50
	}
	if len(structure.SectionNodes()) > 8 {
		confidence += 0.10
	}
	rva, ok := structure.ImportDirectoryRVA()
	if structure != nil && (!ok || rva == 0 || rva > 0x100000) {
		confidence += 0.20
	}
	if sigscan.Entropy(data) > 7.5 {
		confidence += 0.30
	}
	if confidence <= 0 {
		return nil, nil
	}

	return &DetectionResult{
		Detector:   "Themida/WinLicense",
		Name:       "Themida/WinLicense",
		Kind:       KindProtector,
		Confidence: confidence,
		Matches:    matches,
	}, nil
}
