package parser

import (
	"fmt"

	"github.com/foundrydata/foundry/internal/token"
)

// ParseError is a syntactic failure, carrying the exact source position so
// a driver can print a `file:line:col: message` diagnostic (spec.md §4.1,
// §7).
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Diagnostics collects parse errors for a single parse() call. The parser
// keeps scanning after most errors so a single invocation can report more
// than one problem (spec.md §7: "collected per phase and reported in
// batch").
type Diagnostics struct {
	Errors []*ParseError
}

// Add appends a new error at pos.
func (d *Diagnostics) Add(pos token.Position, format string, args ...any) {
	d.Errors = append(d.Errors, &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any error was collected.
func (d *Diagnostics) HasErrors() bool { return len(d.Errors) > 0 }
