package asm

import "strconv"

// reg32 maps the eight 32-bit general-purpose register names to the
// ModRM/opcode-extension encoding used by B8+rd and the ALU ModRM
// byte — the same ordinal table the teacher's register allocator
// (register_allocator.go) assigns per architecture, narrowed here to
// the fixed x86-32 set the DSL payload targets.
var reg32 = map[string]byte{
	"eax": 0, "ecx": 1, "edx": 2, "ebx": 3,
	"esp": 4, "ebp": 5, "esi": 6, "edi": 7,
}

// MOV reg, imm32 — opcode 0xB8+rd followed by a little-endian imm32.
//
// Grounded on the teacher's movX86ImmToReg path in mov.go and the
// direct 0xB8|(dstReg.Encoding&7) construction in x86_64_codegen.go,
// narrowed from 64-bit REX-prefixed encodings to the plain 32-bit
// B8+rd form spec.md §4.4 specifies.
func encodeMov(tokens []string) ([]byte, bool) {
	if len(tokens) != 3 {
		return nil, false
	}
	rd, ok := reg32[tokens[1]]
	if !ok {
		return nil, false
	}
	imm, err := strconv.ParseInt(tokens[2], 0, 64)
	if err != nil {
		return nil, false
	}
	if imm < -(1<<31) || imm > (1<<32-1) {
		return nil, false
	}
	v := int32(imm)
	out := make([]byte, 5)
	out[0] = 0xB8 + rd
	out[1] = byte(v)
	out[2] = byte(v >> 8)
	out[3] = byte(v >> 16)
	out[4] = byte(v >> 24)
	return out, true
}
