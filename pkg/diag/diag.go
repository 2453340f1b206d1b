// Package diag collects line-tagged compiler messages so that a whole
// compilation pass can be reported at once.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Severity orders diagnostics from informational to fatal for the unit.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic is one reported message. Line is 1-based; 0 means the message
// is not tied to a source line.
type Diagnostic struct {
	Line     int
	Severity Severity
	Message  string
	Err      error // set when the diagnostic was built from an error value
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", d.Line, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// List is an append-only diagnostics collector. The zero value is ready to use.
// A List belongs to one compilation unit and is not safe for concurrent use.
type List struct {
	items []Diagnostic
}

// Add appends d.
func (l *List) Add(d Diagnostic) {
	l.items = append(l.items, d)
}

// Errorf records an error diagnostic.
func (l *List) Errorf(line int, format string, args ...any) {
	l.Add(Diagnostic{Line: line, Severity: Error, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a warning diagnostic.
func (l *List) Warnf(line int, format string, args ...any) {
	l.Add(Diagnostic{Line: line, Severity: Warning, Message: fmt.Sprintf(format, args...)})
}

// Infof records an informational diagnostic.
func (l *List) Infof(line int, format string, args ...any) {
	l.Add(Diagnostic{Line: line, Severity: Info, Message: fmt.Sprintf(format, args...)})
}

// Report records err as an error diagnostic. Errors that carry a source line
// (via a SourceLine() int method) are tagged with it.
func (l *List) Report(err error) {
	if err == nil {
		return
	}
	line := 0
	var lined interface{ SourceLine() int }
	if errors.As(err, &lined) {
		line = lined.SourceLine()
	}
	l.Add(Diagnostic{Line: line, Severity: Error, Message: err.Error(), Err: err})
}

// Items returns the collected diagnostics in report order.
func (l *List) Items() []Diagnostic {
	return l.items
}

// Len returns the number of collected diagnostics.
func (l *List) Len() int {
	return len(l.items)
}

// Errors returns only the error-severity diagnostics.
func (l *List) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range l.items {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Err joins every error diagnostic into one error, or returns nil. Errors
// recorded through Report stay reachable with errors.As.
func (l *List) Err() error {
	var errs []error
	for _, d := range l.items {
		switch {
		case d.Severity != Error:
			continue
		case d.Err != nil && d.Line > 0:
			errs = append(errs, fmt.Errorf("line %d: %w", d.Line, d.Err))
		case d.Err != nil:
			errs = append(errs, d.Err)
		default:
			errs = append(errs, errors.New(d.String()))
		}
	}
	return errors.Join(errs...)
}

// Format renders every diagnostic with the offending source line underneath.
func (l *List) Format(src string) string {
	lines := strings.Split(src, "\n")
	var sb strings.Builder
	for _, d := range l.items {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
		idx := d.Line - 1
		if idx >= 0 && idx < len(lines) {
			fmt.Fprintf(&sb, "  |> %s\n", strings.TrimSpace(lines[idx]))
		}
	}
	return sb.String()
}
