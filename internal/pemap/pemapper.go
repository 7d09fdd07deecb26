// Parse builds the BinaryStructure tree and DataRegion list from a
// byte window covering at least the DOS header, NT headers, section
// table, and data directories.
//
// The walk order — DOS header, then NT headers (COFF + Optional) at
// e_lfanew, then the section table immediately following the Optional
// Header, then the Export/Import data directory entries — follows
// pe_reader.go's readDOSHeader/readPEHeaders/readSections sequence
// exactly; this function just emits a tree instead of populating a
// single *PEReader struct, and never returns an error (spec.md §4.3:
// "the function always returns a tree, never raises").
package pemap

import (
	"fmt"
	"time"
)

const (
	dosHeaderSize = 64
	ntHeadersSize = 248
	sectionSize   = 40

	peMagicPE32  = 0x010B
	peMagicPE32P = 0x020B

	scnCntCode            = 0x00000020
	scnCntInitializedData = 0x00000040
	scnCntUninitData      = 0x00000080
)

// Parse decodes data (a byte window starting at file offset 0) and
// the full list of externally supplied RegionProviders, returning the
// root "PE File" node and the flattened DataRegion list.
func Parse(data []byte, providers []RegionProvider) (root *BinaryStructure, regions []DataRegion) {
	root = NewNode("PE File", "Root")

	defer func() {
		if r := recover(); r != nil {
			root.AddChild(NewNode("Parse Error", "Error")).
				Metadata["message"] = fmt.Sprintf("%v", r)
		}
	}()

	dos := parseDOSHeader(data)
	root.AddChild(dos)

	lfanew, ok := u32At(data, 0x3C)
	if !ok {
		return root, regions
	}
	regions = append(regions, DataRegion{Offset: 0, Size: dosHeaderSize, Kind: RegionHeader, HighlightColor: "gray", Layer: 0, Structure: dos})

	nt, sectionsStart, imageMagic, dirBase, numDirs := parseNTHeaders(data, uint64(lfanew))
	if nt == nil {
		return root, regions
	}
	root.AddChild(nt)
	regions = append(regions, DataRegion{Offset: uint64(lfanew), Size: ntHeadersSize, Kind: RegionHeader, HighlightColor: "gray", Layer: 0, Structure: nt})

	fileHdr := nt.FindByPath("File Header")
	numSections := 0
	if fileHdr != nil {
		if n := fileHdr.FindByPath("NumberOfSections"); n != nil && n.Value != nil {
			numSections = int(n.Value.Int)
		}
	}

	sectionsNode := NewNode("Sections", "Sections")
	sectionsOffset := sectionsStart
	sectionsNode.WithOffsetSize(sectionsOffset, uint64(numSections)*sectionSize)
	root.AddChild(sectionsNode)

	for i := 0; i < numSections; i++ {
		off := sectionsStart + uint64(i)*sectionSize
		sec := parseSectionHeader(data, off)
		if sec == nil {
			break
		}
		sectionsNode.AddChild(sec)

		var size uint64
		if sz := sec.FindByPath("SizeOfRawData"); sz != nil && sz.Value != nil {
			size = uint64(sz.Value.Int)
		}
		var ptr uint64
		if p := sec.FindByPath("PointerToRawData"); p != nil && p.Value != nil {
			ptr = uint64(p.Value.Int)
		}
		var chars uint64
		if c := sec.FindByPath("Characteristics"); c != nil && c.Value != nil {
			chars = uint64(c.Value.Int)
		}
		regions = append(regions, DataRegion{
			Offset: ptr, Size: size, Kind: RegionCode,
			HighlightColor: sectionColor(uint32(chars)), Layer: 1, Structure: sec,
		})
	}

	if dirBase > 0 {
		dirsNode := NewNode("Data Directories", "DataDirectories")
		root.AddChild(dirsNode)
		addDirectoryIfPresent(data, dirsNode, dirBase, 0, "Export", numDirs)
		addDirectoryIfPresent(data, dirsNode, dirBase, 1, "Import", numDirs)
	}

	for _, p := range providers {
		extra, err := p.Regions(data, root)
		if err != nil {
			root.Metadata[fmt.Sprintf("region_provider_error_%T", p)] = err.Error()
			continue
		}
		regions = append(regions, extra...)
	}

	_ = imageMagic
	return root, regions
}

func parseDOSHeader(data []byte) *BinaryStructure {
	dos := NewNode("DOS Header", "IMAGE_DOS_HEADER").WithOffsetSize(0, dosHeaderSize)

	if v, ok := u16At(data, 0); ok {
		dos.AddChild(NewNode("e_magic", "field").WithOffsetSize(0, 2).
			WithIntValue(int64(v), fmt.Sprintf("0x%04X (MZ)", v)))
	}
	if v, ok := u16At(data, 2); ok {
		dos.AddChild(NewNode("e_cblp", "field").WithOffsetSize(2, 2).WithIntValue(int64(v), fmt.Sprintf("%d", v)))
	}
	if v, ok := u16At(data, 4); ok {
		dos.AddChild(NewNode("e_cp", "field").WithOffsetSize(4, 2).WithIntValue(int64(v), fmt.Sprintf("%d", v)))
	}
	if v, ok := u32At(data, 0x3C); ok {
		dos.AddChild(NewNode("e_lfanew", "field").WithOffsetSize(0x3C, 4).
			WithIntValue(int64(v), fmt.Sprintf("0x%08X", v)))
	}
	return dos
}

// parseNTHeaders returns the NT Headers node, the absolute offset the
// section table starts at, the optional-header magic, the absolute
// offset of the data directory array, and how many directory entries
// are present.
func parseNTHeaders(data []byte, lfanew uint64) (nt *BinaryStructure, sectionsStart uint64, magic uint16, dirBase uint64, numDirs uint32) {
	sig, ok := u32At(data, lfanew)
	if !ok || sig != 0x00004550 { // "PE\0\0"
		return nil, 0, 0, 0, 0
	}
	nt = NewNode("NT Headers", "IMAGE_NT_HEADERS").WithOffsetSize(lfanew, ntHeadersSize)

	fileHdrOff := lfanew + 4
	fileHdr := NewNode("File Header", "IMAGE_FILE_HEADER").WithOffsetSize(fileHdrOff, 20)
	nt.AddChild(fileHdr)

	machine, _ := u16At(data, fileHdrOff)
	fileHdr.AddChild(NewNode("Machine", "field").WithOffsetSize(fileHdrOff, 2).
		WithIntValue(int64(machine), machineName(machine)))

	numSections, _ := u16At(data, fileHdrOff+2)
	fileHdr.AddChild(NewNode("NumberOfSections", "field").WithOffsetSize(fileHdrOff+2, 2).
		WithIntValue(int64(numSections), fmt.Sprintf("%d", numSections)))

	timeDateStamp, _ := u32At(data, fileHdrOff+4)
	fileHdr.AddChild(NewNode("TimeDateStamp", "field").WithOffsetSize(fileHdrOff+4, 4).
		WithIntValue(int64(timeDateStamp), unixDecoded(timeDateStamp)))

	sizeOfOptHdr, _ := u16At(data, fileHdrOff+16)

	characteristics, _ := u16At(data, fileHdrOff+18)
	fileHdr.AddChild(NewNode("Characteristics", "field").WithOffsetSize(fileHdrOff+18, 2).
		WithIntValue(int64(characteristics), fileCharacteristicsFlags(characteristics)))

	optHdrOff := fileHdrOff + 20
	optHdr := NewNode("Optional Header", "IMAGE_OPTIONAL_HEADER").WithOffsetSize(optHdrOff, uint64(sizeOfOptHdr))
	nt.AddChild(optHdr)

	magic, _ = u16At(data, optHdrOff)
	optHdr.AddChild(NewNode("Magic", "field").WithOffsetSize(optHdrOff, 2).
		WithIntValue(int64(magic), fmt.Sprintf("0x%04X", magic)))

	aep, _ := u32At(data, optHdrOff+16)
	optHdr.AddChild(NewNode("AddressOfEntryPoint", "field").WithOffsetSize(optHdrOff+16, 4).
		WithIntValue(int64(aep), fmt.Sprintf("0x%08X", aep)))

	var imageBaseOff, imageBaseSize, sectAlignOff uint64
	switch magic {
	case peMagicPE32:
		imageBaseOff, imageBaseSize = optHdrOff+28, 4
	case peMagicPE32P:
		imageBaseOff, imageBaseSize = optHdrOff+24, 8
	default:
		// Unknown magic: still emit what we can from the fixed prefix.
		imageBaseOff, imageBaseSize = optHdrOff+28, 4
	}
	sectAlignOff = imageBaseOff + imageBaseSize

	var imageBase uint64
	if imageBaseSize == 8 {
		imageBase, _ = u64At(data, imageBaseOff)
	} else {
		v, _ := u32At(data, imageBaseOff)
		imageBase = uint64(v)
	}
	optHdr.AddChild(NewNode("ImageBase", "field").WithOffsetSize(imageBaseOff, imageBaseSize).
		WithIntValue(int64(imageBase), fmt.Sprintf("0x%X", imageBase)))

	secAlign, _ := u32At(data, sectAlignOff)
	optHdr.AddChild(NewNode("SectionAlignment", "field").WithOffsetSize(sectAlignOff, 4).
		WithIntValue(int64(secAlign), fmt.Sprintf("0x%X", secAlign)))

	fileAlign, _ := u32At(data, sectAlignOff+4)
	optHdr.AddChild(NewNode("FileAlignment", "field").WithOffsetSize(sectAlignOff+4, 4).
		WithIntValue(int64(fileAlign), fmt.Sprintf("0x%X", fileAlign)))

	sizeOfImageOff := sectAlignOff + 24 // matches the fixed 24-byte run from SectionAlignment to SizeOfImage in both PE32/PE32+
	sizeOfImage, _ := u32At(data, sizeOfImageOff)
	optHdr.AddChild(NewNode("SizeOfImage", "field").WithOffsetSize(sizeOfImageOff, 4).
		WithIntValue(int64(sizeOfImage), fmt.Sprintf("0x%X", sizeOfImage)))

	sizeOfHeaders, _ := u32At(data, sizeOfImageOff+4)
	optHdr.AddChild(NewNode("SizeOfHeaders", "field").WithOffsetSize(sizeOfImageOff+4, 4).
		WithIntValue(int64(sizeOfHeaders), fmt.Sprintf("0x%X", sizeOfHeaders)))

	// SizeOfImage..NumberOfRvaAndSizes: the four stack/heap reserve and
	// commit fields are 4 bytes each in PE32 and 8 bytes each in PE32+.
	numRvaAndSizesOff := sizeOfImageOff + 36
	if magic == peMagicPE32P {
		numRvaAndSizesOff = sizeOfImageOff + 52
	}
	numRvaAndSizes, _ := u32At(data, numRvaAndSizesOff)
	dirBase = numRvaAndSizesOff + 4
	numDirs = numRvaAndSizes

	sectionsStart = fileHdrOff + 20 + uint64(sizeOfOptHdr)
	return nt, sectionsStart, magic, dirBase, numDirs
}

func parseSectionHeader(data []byte, off uint64) *BinaryStructure {
	nameBytes := bytesAt(data, off, 8)
	if nameBytes == nil {
		return nil
	}
	name := trimSectionName(nameBytes)
	sec := NewNode(name, "IMAGE_SECTION_HEADER").WithOffsetSize(off, sectionSize)

	vsize, _ := u32At(data, off+8)
	sec.AddChild(NewNode("VirtualSize", "field").WithOffsetSize(off+8, 4).WithIntValue(int64(vsize), fmt.Sprintf("0x%X", vsize)))

	vaddr, _ := u32At(data, off+12)
	sec.AddChild(NewNode("VirtualAddress", "field").WithOffsetSize(off+12, 4).WithIntValue(int64(vaddr), fmt.Sprintf("0x%X", vaddr)))

	rawSize, _ := u32At(data, off+16)
	sec.AddChild(NewNode("SizeOfRawData", "field").WithOffsetSize(off+16, 4).WithIntValue(int64(rawSize), fmt.Sprintf("0x%X", rawSize)))

	rawPtr, _ := u32At(data, off+20)
	sec.AddChild(NewNode("PointerToRawData", "field").WithOffsetSize(off+20, 4).WithIntValue(int64(rawPtr), fmt.Sprintf("0x%X", rawPtr)))

	chars, _ := u32At(data, off+36)
	sec.AddChild(NewNode("Characteristics", "field").WithOffsetSize(off+36, 4).WithIntValue(int64(chars), fmt.Sprintf("0x%X", chars)))

	return sec
}

func addDirectoryIfPresent(data []byte, parent *BinaryStructure, dirBase uint64, index int, name string, numDirs uint32) {
	if uint32(index) >= numDirs {
		return
	}
	off := dirBase + uint64(index)*8
	rva, ok := u32At(data, off)
	if !ok {
		return
	}
	size, _ := u32At(data, off+4)
	if rva == 0 && size == 0 {
		return
	}
	dir := NewNode(name, "IMAGE_DATA_DIRECTORY").WithOffsetSize(off, 8)
	dir.AddChild(NewNode("RVA", "field").WithOffsetSize(off, 4).WithIntValue(int64(rva), fmt.Sprintf("0x%X", rva)))
	dir.AddChild(NewNode("Size", "field").WithOffsetSize(off+4, 4).WithIntValue(int64(size), fmt.Sprintf("0x%X", size)))
	parent.AddChild(dir)
}

func trimSectionName(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

func sectionColor(characteristics uint32) string {
	switch {
	case characteristics&scnCntCode != 0:
		return "green"
	case characteristics&scnCntInitializedData != 0:
		return "blue"
	case characteristics&scnCntUninitData != 0:
		return "gray"
	default:
		return "yellow"
	}
}

func machineName(v uint16) string {
	switch v {
	case 0x014c:
		return "IMAGE_FILE_MACHINE_I386"
	case 0x8664:
		return "IMAGE_FILE_MACHINE_AMD64"
	case 0xaa64:
		return "IMAGE_FILE_MACHINE_ARM64"
	default:
		return fmt.Sprintf("0x%04X", v)
	}
}

func fileCharacteristicsFlags(v uint16) string {
	type flag struct {
		bit  uint16
		name string
	}
	flags := []flag{
		{0x0002, "EXECUTABLE_IMAGE"},
		{0x0020, "LARGE_ADDRESS_AWARE"},
		{0x2000, "DLL"},
		{0x0100, "32BIT_MACHINE"},
	}
	var out string
	for _, f := range flags {
		if v&f.bit != 0 {
			if out != "" {
				out += "|"
			}
			out += f.name
		}
	}
	if out == "" {
		return fmt.Sprintf("0x%04X", v)
	}
	return out
}

func unixDecoded(timestamp uint32) string {
	if timestamp == 0 {
		return "0"
	}
	return time.Unix(int64(timestamp), 0).UTC().Format("2006-01-02 15:04:05 UTC")
}
