package parser

import (
	"fmt"
	"strings"

	"imlang/pkg/types"
)

// UnexpectedEndError reports that the token stream ran out where a token was
// required.
type UnexpectedEndError struct {
	Line int
}

func (e *UnexpectedEndError) Error() string { return "unexpected end of input" }

func (e *UnexpectedEndError) SourceLine() int { return e.Line }

// UnexpectedTokenError reports a required terminal that did not match.
type UnexpectedTokenError struct {
	Line     int
	Expected string
	Actual   string
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("expected %s, got %q", e.Expected, e.Actual)
}

func (e *UnexpectedTokenError) SourceLine() int { return e.Line }

// SymbolNotFoundError reports a reference to an undeclared identifier.
type SymbolNotFoundError struct {
	Name string
	Line int
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol %q not found", e.Name)
}

func (e *SymbolNotFoundError) SourceLine() int { return e.Line }

// InvalidTypeError reports a failed type check. Expected lists every type
// that would have been accepted.
type InvalidTypeError struct {
	Line     int
	Expected []types.Type
	Actual   types.Type
}

func (e *InvalidTypeError) Error() string {
	want := make([]string, len(e.Expected))
	for i, t := range e.Expected {
		want[i] = t.String()
	}
	expected := strings.Join(want, "|")
	if len(want) > 1 {
		expected = "(" + expected + ")"
	}
	return fmt.Sprintf("invalid type: expected %s, got %s", expected, e.Actual)
}

func (e *InvalidTypeError) SourceLine() int { return e.Line }

// GenericError is any other semantic error.
type GenericError struct {
	Line int
	Msg  string
}

func (e *GenericError) Error() string { return e.Msg }

func (e *GenericError) SourceLine() int { return e.Line }

func invalidType(line int, actual types.Type, expected ...types.Type) *InvalidTypeError {
	return &InvalidTypeError{Line: line, Expected: expected, Actual: actual}
}
