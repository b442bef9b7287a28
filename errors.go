// errors.go — caret-snippet rendering of lexer/parser diagnostics.
//
// WrapErrorWithSource recognizes *LexError and *ParseError and returns an
// error whose message is a multi-line snippet with one line of context on
// each side and a caret under the offending column:
//
//	PARSE ERROR at 2:16: expected ')' after expression
//
//	   1 | let a = 1
//	   2 | let x = (1 + 2 let y = 3
//	     |                ^
//	   3 | print(x)
//
// Other errors are returned unchanged.
package veureka

import (
	"fmt"
	"strings"
)

// WrapErrorWithSource augments a lex/parse error with a caret-annotated
// snippet of the source it came from.
func WrapErrorWithSource(err error, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", caretSnippet(src, "LEXICAL ERROR", e.Line, e.Col, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", caretSnippet(src, "PARSE ERROR", e.Line, e.Col, e.Msg))
	default:
		return err
	}
}

// caretSnippet builds the snippet; line/col are 1-based and clamped to the
// source bounds so rendering never fails.
func caretSnippet(src, header string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
