package pemap

// The detector registry needs a handful of read-only facts about a
// parsed image — section names, section raw sizes, the import
// directory RVA — without reaching back into the byte buffer itself.
// These walk the generic BinaryStructure tree Parse already built
// rather than duplicating any of its decoding.

// SectionNodes returns the "Sections" node's children, or nil if the
// tree has no Sections node (a truncated or non-PE buffer) or n itself
// is nil (no structure available at all).
func (n *BinaryStructure) SectionNodes() []*BinaryStructure {
	if n == nil {
		return nil
	}
	sections := n.FindByPath("Sections")
	if sections == nil {
		return nil
	}
	return sections.Children
}

// SectionNames returns every section's trimmed name in table order.
func (n *BinaryStructure) SectionNames() []string {
	secs := n.SectionNodes()
	if secs == nil {
		return nil
	}
	names := make([]string, len(secs))
	for i, s := range secs {
		names[i] = s.Name
	}
	return names
}

// SectionRawSizes returns every section's SizeOfRawData in table order.
func (n *BinaryStructure) SectionRawSizes() []uint64 {
	secs := n.SectionNodes()
	sizes := make([]uint64, 0, len(secs))
	for _, s := range secs {
		if f := s.FindByPath("SizeOfRawData"); f != nil && f.Value != nil {
			sizes = append(sizes, uint64(f.Value.Int))
		}
	}
	return sizes
}

// HasSectionNamed reports whether any section name equals name.
func (n *BinaryStructure) HasSectionNamed(name string) bool {
	for _, s := range n.SectionNames() {
		if s == name {
			return true
		}
	}
	return false
}

// ImportDirectoryRVA returns the Import data directory's RVA field,
// or (0, false) if the image has no Import directory entry.
func (n *BinaryStructure) ImportDirectoryRVA() (uint32, bool) {
	if n == nil {
		return 0, false
	}
	rva := n.FindByPath("Data Directories", "Import", "RVA")
	if rva == nil || rva.Value == nil {
		return 0, false
	}
	return uint32(rva.Value.Int), true
}
