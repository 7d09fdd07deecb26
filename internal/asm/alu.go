package asm

// aluOpcodes is the reg,reg ALU opcode table from spec.md §4.4,
// mirroring the one-mnemonic-per-file split the teacher uses for
// add.go/sub.go/and.go/or.go/xor.go/cmp.go — collapsed into a single
// table here since all six share the identical ModRM encoding shape
// (only the opcode byte differs).
var aluOpcodes = map[string]byte{
	"add": 0x01,
	"or":  0x09,
	"and": 0x21,
	"sub": 0x29,
	"xor": 0x31,
	"cmp": 0x39,
}

// encodeALU handles `op reg, reg` → opcode, 0xC0 | (src<<3) | dst.
//
// Grounded on the teacher's AddRegToReg family (add.go) which emits
// the ModRM byte the same way for the x86_64 fallback path, narrowed
// to the fixed 32-bit register set and without the REX prefix the
// teacher's 64-bit registers require.
func encodeALU(tokens []string) ([]byte, bool) {
	if len(tokens) != 3 {
		return nil, false
	}
	opcode, ok := aluOpcodes[tokens[0]]
	if !ok {
		return nil, false
	}
	dst, ok := reg32[tokens[1]]
	if !ok {
		return nil, false
	}
	src, ok := reg32[tokens[2]]
	if !ok {
		return nil, false
	}
	modrm := 0xC0 | (src << 3) | dst
	return []byte{opcode, modrm}, true
}
