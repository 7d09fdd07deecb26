// Package script implements the `.euv` ScriptEngine: a line-oriented
// DSL parser and executor driving SignatureScanner, ExprEvaluator,
// AsmEncoder, ByteSource, and UndoJournal.
//
// Grounded on the teacher's lexer.go/parser.go two-stage shape (a
// Lexer that tokenizes into a flat stream, a parser that walks tokens
// into an AST of top-level declarations) — simplified here since the
// `.euv` grammar has no expressions of its own beyond what
// internal/expr already evaluates; the parser only needs to recognize
// line-level directives and method bracketing.
package script

// AccessModifier is the method visibility set by a bare `public:` or
// `private:` line.
type AccessModifier int

const (
	AccessPrivate AccessModifier = iota
	AccessPublic
)

// MethodContainer is one `_createMethod(NAME) { ... }` block: its raw
// command lines plus the export names bound through its `clink:`
// accumulator.
type MethodContainer struct {
	Name    string
	Access  AccessModifier
	Body    []string
	Exports []string
}

// Script is the full parsed `.euv` program: every method declared
// between `start;` and `end;`, in declaration order.
type Script struct {
	Methods []*MethodContainer
}
