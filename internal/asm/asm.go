// Package asm translates a single line of mnemonic text into machine
// bytes for the patching DSL, following the teacher's convention of
// one file per mnemonic (ret.go, jmp.go, mov.go, add.go, ...) — each
// file here keeps that split, but drops the teacher's ARM64/RISC-V
// backend dispatch and VerboseMode tracing since the DSL payload is
// scoped to 32-bit x86 only (spec.md §1 Non-goals).
//
// Encode never returns an error: a line that doesn't match any rule,
// or fails to encode (e.g. an unknown register), yields (nil, false)
// so the caller can fall through to string-literal or raw-hex
// interpretation, per spec.md §4.4/§4.8.
package asm

import "strings"

// Encode translates line into bytes given the current write address
// (needed to resolve jmp's PC-relative displacement).
func Encode(line string, addr uint32) ([]byte, bool) {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return nil, false
	}
	switch tokens[0] {
	case "nop":
		return encodeNop(tokens)
	case "ret":
		return encodeRet(tokens)
	case "jmp":
		return encodeJmp(tokens, addr)
	case "mov":
		return encodeMov(tokens)
	case "add", "or", "and", "sub", "xor", "cmp":
		return encodeALU(tokens)
	default:
		return nil, false
	}
}

// tokenize lowercases the line and splits on spaces/commas, discarding
// empty tokens — the same lexical rule spec.md §4.4 specifies.
func tokenize(line string) []string {
	line = strings.ToLower(line)
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
