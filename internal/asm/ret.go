package asm

// RET — near return, opcode 0xC3.
//
// Adapted from the teacher's retX86 (ret.go): same fixed opcode, minus
// the ARM64/RISC-V fallback branches and the RetImm stack-cleanup
// variant, neither of which the patching DSL's mnemonic vocabulary
// exposes (spec.md §4.4 table).
func encodeRet(tokens []string) ([]byte, bool) {
	if len(tokens) != 1 {
		return nil, false
	}
	return []byte{0xC3}, true
}
