// Package pemap parses PE headers into a navigable BinaryStructure
// tree and a DataRegion byte-interval map.
//
// Grounded on the teacher's pe_reader.go (DOSHeader/COFFHeader/
// OptionalHeader64/SectionHeader/ExportDirectory structs and the
// seek-and-binary.Read walk through them) and pe.go (the PE constants
// table: dosHeaderSize, peSectionHeaderSize, section characteristic
// flags). Neither teacher file builds a generic tree — pe_reader.go
// only extracts exported symbols for its own linker needs — so the
// BinaryStructure/DataRegion shape itself is new, built to spec.md
// §3, but every field offset and struct layout below is the same one
// pe_reader.go already decodes.
package pemap

// Value is the tagged union spec.md §3 assigns to BinaryStructure:
// at most one of Int/Float/Bytes is meaningful, selected by Kind.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueFloat
	ValueBytes
)

type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Bytes []byte
}

// BinaryStructure is a tree node in file coordinate space: every
// offset, including a child's, is absolute, never relative to its
// parent (spec.md §3 invariant).
type BinaryStructure struct {
	Name         string
	Type         string
	Offset       *uint64
	Size         *uint64
	Value        *Value
	DisplayValue string
	Metadata     map[string]string
	Children     []*BinaryStructure
	Parent       *BinaryStructure
}

// NewNode creates a detached node; attach it with AddChild so Parent
// and absolute offsets stay consistent.
func NewNode(name, typ string) *BinaryStructure {
	return &BinaryStructure{Name: name, Type: typ, Metadata: map[string]string{}}
}

// AddChild appends child, sets its Parent, and returns it for chaining.
func (n *BinaryStructure) AddChild(child *BinaryStructure) *BinaryStructure {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// WithOffsetSize sets absolute offset and size, returning the node for
// chaining during construction.
func (n *BinaryStructure) WithOffsetSize(offset, size uint64) *BinaryStructure {
	n.Offset = &offset
	n.Size = &size
	return n
}

// WithIntValue sets an integer value and its display string.
func (n *BinaryStructure) WithIntValue(v int64, display string) *BinaryStructure {
	n.Value = &Value{Kind: ValueInt, Int: v}
	n.DisplayValue = display
	return n
}

// FindByPath performs a case-sensitive, name-matched descent through
// the tree: FindByPath("DOS Header", "e_lfanew") finds the root's
// child named "DOS Header" and then its child named "e_lfanew".
func (n *BinaryStructure) FindByPath(segments ...string) *BinaryStructure {
	cur := n
	for _, seg := range segments {
		var next *BinaryStructure
		for _, c := range cur.Children {
			if c.Name == seg {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// RegionKind enumerates the DataRegion tags from spec.md §3.
type RegionKind int

const (
	RegionHeader RegionKind = iota
	RegionCode
	RegionData
	RegionImport
	RegionExport
	RegionResource
	RegionRelocation
	RegionDebug
	RegionOverlay
	RegionSignature
	RegionUnknown
)

func (k RegionKind) String() string {
	switch k {
	case RegionHeader:
		return "Header"
	case RegionCode:
		return "Code"
	case RegionData:
		return "Data"
	case RegionImport:
		return "Import"
	case RegionExport:
		return "Export"
	case RegionResource:
		return "Resource"
	case RegionRelocation:
		return "Relocation"
	case RegionDebug:
		return "Debug"
	case RegionOverlay:
		return "Overlay"
	case RegionSignature:
		return "Signature"
	default:
		return "Unknown"
	}
}

// DataRegion is a byte interval [Offset, Offset+Size) tagged with a
// kind, display color, and stacking layer. Structure is a weak
// back-reference — pemap never manages its lifecycle.
type DataRegion struct {
	Offset        uint64
	Size          uint64
	Kind          RegionKind
	HighlightColor string
	Layer         int
	Structure     *BinaryStructure
}

// Contains reports whether off falls within [Offset, Offset+Size).
func (r DataRegion) Contains(off uint64) bool {
	return off >= r.Offset && off < r.Offset+r.Size
}

// RegionProvider lets external collaborators contribute additional
// DataRegions after native PE parsing completes (spec.md §4.3: "a
// minimum of the Import and Export data directory entries ... accepts
// externally supplied RegionProviders").
type RegionProvider interface {
	Regions(data []byte, root *BinaryStructure) ([]DataRegion, error)
}
