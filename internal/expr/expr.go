// Package expr implements the integer expression grammar the
// patching DSL uses for addresses and payload values.
//
// The recursive-descent structure is grounded on the teacher's
// CParser (cparser.go): a lexer that tokenizes, and a parser that
// recurses by precedence level. The numeric-literal handling (hex vs
// decimal, via strings.HasPrefix(expr, "0x")) is adapted from
// evalConstant's own hex/decimal dispatch. Unlike evalConstant, this
// package has no macro/constant-table fallback (the DSL has exactly
// two name scopes, local and global, not a C preprocessor's single
// table) and it propagates the Invalid sentinel instead of returning
// (0, false) — see Invalid below.
package expr

import (
	"strings"
)

// Invalid is the reserved sentinel that flows through arithmetic
// unchanged to signal "a required signature was not located"
// (spec.md §4.5). Chosen as the most-negative 64-bit integer, per
// spec.md §2/§8.
const Invalid int64 = -1 << 63

// Scope resolves identifiers: local is consulted before global.
// Missing identifiers resolve to 0. The command names
// "find"/"set"/"check" get no special treatment here; the script
// engine refuses to bind them when a find or set command names one
// (spec.md §9 Open Questions).
type Scope struct {
	Local  map[string]int64
	Global map[string]int64
}

func (s Scope) lookup(name string) int64 {
	if v, ok := s.Local[name]; ok {
		return v
	}
	if v, ok := s.Global[name]; ok {
		return v
	}
	return 0
}

// Eval parses and evaluates expr, where "." or "()" alone resolves to
// lastAddress. All arithmetic is 64-bit signed, two's complement,
// wrapping on overflow; division and modulo by zero yield 0.
func Eval(text string, scope Scope, lastAddress int64) int64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "." || trimmed == "()" {
		return lastAddress
	}
	p := &parser{lex: newLexer(text), scope: scope, lastAddress: lastAddress}
	p.advance()
	v := p.parseAdd()
	return v
}

type parser struct {
	lex         *lexer
	cur         token
	scope       Scope
	lastAddress int64
}

func (p *parser) advance() {
	p.cur = p.lex.next()
}

// parseAdd := mul (('+'|'-') mul)*
func (p *parser) parseAdd() int64 {
	v := p.parseMul()
	for {
		switch p.cur.kind {
		case tokPlus:
			p.advance()
			rhs := p.parseMul()
			v = propagate(v, rhs, func(a, b int64) int64 { return a + b })
		case tokMinus:
			p.advance()
			rhs := p.parseMul()
			v = propagate(v, rhs, func(a, b int64) int64 { return a - b })
		default:
			return v
		}
	}
}

// parseMul := unary (('*'|'/'|'%') unary)*
func (p *parser) parseMul() int64 {
	v := p.parseUnary()
	for {
		switch p.cur.kind {
		case tokStar:
			p.advance()
			rhs := p.parseUnary()
			v = propagate(v, rhs, func(a, b int64) int64 { return a * b })
		case tokSlash:
			p.advance()
			rhs := p.parseUnary()
			v = propagate(v, rhs, func(a, b int64) int64 {
				if b == 0 {
					return 0
				}
				return a / b
			})
		case tokPercent:
			p.advance()
			rhs := p.parseUnary()
			v = propagate(v, rhs, func(a, b int64) int64 {
				if b == 0 {
					return 0
				}
				return a % b
			})
		default:
			return v
		}
	}
}

// parseUnary := ('+'|'-')? atom
func (p *parser) parseUnary() int64 {
	switch p.cur.kind {
	case tokMinus:
		p.advance()
		v := p.parseUnary()
		if v == Invalid {
			return Invalid
		}
		return -v
	case tokPlus:
		p.advance()
		return p.parseUnary()
	default:
		return p.parseAtom()
	}
}

// parseAtom := '(' expr ')' | hex | dec | ident
func (p *parser) parseAtom() int64 {
	switch p.cur.kind {
	case tokLParen:
		p.advance()
		// A bare "()" with nothing inside resolves to lastAddress,
		// per spec.md §4.5.
		if p.cur.kind == tokRParen {
			p.advance()
			return p.lastAddress
		}
		v := p.parseAdd()
		if p.cur.kind == tokRParen {
			p.advance()
		}
		return v
	case tokNumber:
		v := p.cur.num
		p.advance()
		return v
	case tokIdent:
		v := p.scope.lookup(p.cur.text)
		p.advance()
		return v
	default:
		// Malformed trailing input resolves to 0 rather than
		// panicking — the engine logs a ParseError at the command
		// level (internal/script), not here.
		return 0
	}
}

// propagate applies op unless either operand is Invalid, in which
// case Invalid flows through unchanged — the mechanism spec.md §4.5
// describes as "the way a failed find(...) causes every dependent
// write to be skipped."
func propagate(a, b int64, op func(a, b int64) int64) int64 {
	if a == Invalid || b == Invalid {
		return Invalid
	}
	return op(a, b)
}
