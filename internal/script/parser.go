package script

import (
	"fmt"
	"strings"

	"github.com/xyproto/euvcore/internal/diag"
)

// ParseError is a script-level failure classified by the same
// diag.Kind taxonomy the rest of the core uses: a missing start;/end;
// bracket, or an end; reached while a method is still open, is
// diag.KindFatal (the run cannot proceed at all), anything else
// malformed is diag.KindParseError.
type ParseError struct {
	Kind diag.Kind
	Msg  string
}

func (e *ParseError) Error() string { return e.Msg }

func fatalf(format string, args ...any) error {
	return &ParseError{Kind: diag.KindFatal, Msg: fmt.Sprintf(format, args...)}
}

func parseErrorf(format string, args ...any) error {
	return &ParseError{Kind: diag.KindParseError, Msg: fmt.Sprintf(format, args...)}
}

// Parse runs the `.euv` top-level state machine over text: outside
// the start;/end; bracket every line but "start;" is ignored; inside,
// public:/private: set the modifier for the next _createMethod, and
// { }-delimited bodies collect raw command lines plus any clink:
// export list.
func Parse(text string) (*Script, error) {
	lines := strings.Split(text, "\n")

	script := &Script{}
	insideBody := false
	sawEnd := false
	pendingAccess := AccessPrivate
	var current *MethodContainer
	inExportAccum := false
	var exportBuf strings.Builder

	for lineNo, raw := range lines {
		line := stripComment(raw)
		line = collapseWhitespace(strings.TrimSpace(line))
		if line == "" {
			continue
		}

		if inExportAccum {
			line = strings.TrimSpace(strings.TrimPrefix(line, "["))
			if line == "" {
				continue
			}
			if idx := strings.Index(line, "]"); idx >= 0 {
				exportBuf.WriteString(line[:idx])
				if current != nil {
					current.Exports = append(current.Exports, splitExportNames(exportBuf.String())...)
				}
				exportBuf.Reset()
				inExportAccum = false
				rest := strings.TrimSpace(line[idx+1:])
				if rest != "" {
					line = rest
				} else {
					continue
				}
			} else {
				exportBuf.WriteString(line)
				exportBuf.WriteString("\n")
				continue
			}
		}

		if !insideBody {
			if line == "start;" {
				insideBody = true
			}
			continue
		}

		if line == "end;" {
			if current != nil {
				return nil, fatalf("script.Parse: line %d: end; reached while method %q is still open", lineNo+1, current.Name)
			}
			sawEnd = true
			break
		}

		if rest, ok := strings.CutPrefix(line, "public: "); ok {
			pendingAccess = AccessPublic
			line = rest
		} else if rest, ok := strings.CutPrefix(line, "private: "); ok {
			pendingAccess = AccessPrivate
			line = rest
		}

		switch {
		case line == "public:":
			pendingAccess = AccessPublic
		case line == "private:":
			pendingAccess = AccessPrivate
		case strings.HasPrefix(line, "_createMethod("):
			if current != nil {
				return nil, parseErrorf("script.Parse: line %d: nested _createMethod inside %q", lineNo+1, current.Name)
			}
			name, err := parseMethodName(line)
			if err != nil {
				return nil, parseErrorf("script.Parse: line %d: %v", lineNo+1, err)
			}
			current = &MethodContainer{Name: name, Access: pendingAccess}
		case line == "{":
			// opening brace, nothing to do
		case line == "}":
			if current == nil {
				return nil, parseErrorf("script.Parse: line %d: unmatched }", lineNo+1)
			}
			script.Methods = append(script.Methods, current)
			current = nil
		case strings.HasPrefix(line, "clink:") || strings.Contains(line, "["):
			rest := line
			if strings.HasPrefix(rest, "clink:") {
				rest = strings.TrimSpace(rest[len("clink:"):])
			}
			idx := strings.Index(rest, "[")
			if idx < 0 {
				if rest != "" {
					return nil, parseErrorf("script.Parse: line %d: clink: without [", lineNo+1)
				}
				// A bare "clink:" line: the [ ... ] list follows on later lines.
				inExportAccum = true
				continue
			}
			rest = rest[idx+1:]
			if end := strings.Index(rest, "]"); end >= 0 {
				if current != nil {
					current.Exports = append(current.Exports, splitExportNames(rest[:end])...)
				}
			} else {
				exportBuf.WriteString(rest)
				exportBuf.WriteString("\n")
				inExportAccum = true
			}
		default:
			if current != nil {
				current.Body = append(current.Body, line)
			}
			// Lines outside any method body that don't match a known
			// directive are ignored rather than rejected, matching the
			// lenient outside-body scanning rule.
		}
	}

	if !insideBody {
		return nil, fatalf("script.Parse: reached end of input before start;")
	}
	if !sawEnd {
		return nil, fatalf("script.Parse: reached end of input before end;")
	}
	return script, nil
}

func parseMethodName(line string) (string, error) {
	open := strings.Index(line, "(")
	closeP := strings.Index(line, ")")
	if open < 0 || closeP < 0 || closeP < open {
		return "", fmt.Errorf("malformed _createMethod declaration: %q", line)
	}
	name := strings.TrimSpace(line[open+1 : closeP])
	if name == "" {
		return "", fmt.Errorf("_createMethod with empty name: %q", line)
	}
	return name, nil
}

func splitExportNames(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var names []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			names = append(names, f)
		}
	}
	return names
}

// stripComment removes a trailing # or // comment, honoring double
// quotes so payload strings like "nop # not a comment" survive intact.
func stripComment(line string) string {
	inQuotes := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case '#':
			if !inQuotes {
				return line[:i]
			}
		case '/':
			if !inQuotes && i+1 < len(line) && line[i+1] == '/' {
				return line[:i]
			}
		}
	}
	return line
}

func collapseWhitespace(line string) string {
	return strings.Join(strings.Fields(line), " ")
}
