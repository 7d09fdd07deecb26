package asm

import (
	"strconv"
	"strings"
)

// JMP — near relative jump, opcode 0xE9 followed by a little-endian
// rel32 displacement computed from the target address and the
// instruction's own length (5 bytes).
//
// Grounded on the teacher's jmpX86Unconditional (jmp.go), which emits
// the same 0xE9 opcode; here the operand is an absolute target
// address, written in decimal or as 0x-prefixed hex, rather than a
// pre-computed relative offset, so this function does the
// target-minus-(current+5) subtraction the teacher's caller does
// elsewhere (codegen.go's patchJumpImmediate sites).
func encodeJmp(tokens []string, addr uint32) ([]byte, bool) {
	if len(tokens) != 2 {
		return nil, false
	}
	text, base := tokens[1], 10
	if strings.HasPrefix(text, "0x") {
		text, base = text[2:], 16
	}
	target, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		return nil, false
	}
	current := int64(addr)
	next := current + 5
	rel := target - next
	if rel > int64(1<<31-1) || rel < -int64(1<<31) {
		return nil, false
	}
	rel32 := int32(rel)
	out := make([]byte, 5)
	out[0] = 0xE9
	out[1] = byte(rel32)
	out[2] = byte(rel32 >> 8)
	out[3] = byte(rel32 >> 16)
	out[4] = byte(rel32 >> 24)
	return out, true
}
