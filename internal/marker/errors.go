package marker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnbalanced reports a closing marker that does not match the innermost open block.
	ErrUnbalanced = errors.New("unbalanced marker")
	// ErrUnclosed reports blocks still open at end of document.
	ErrUnclosed = errors.New("unclosed marker")
)

// ParseError is the fatal error returned by Parse. Line is the primary
// location; Markers lists every marker involved.
type ParseError struct {
	Kind    error
	Msg     string
	Line    int
	Markers []Marker
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Kind.Error())
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind.Error(), e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Kind }

func unbalancedError(expected, found Marker) error {
	return &ParseError{
		Kind: ErrUnbalanced,
		Msg: fmt.Sprintf("expected closing %s (opened at line %d), found %s at line %d",
			expected.Key(), expected.Line, found.Key(), found.Line),
		Line:    found.Line,
		Markers: []Marker{expected, found},
	}
}

func unclosedError(open []Marker) error {
	parts := make([]string, 0, len(open))
	for _, m := range open {
		parts = append(parts, fmt.Sprintf("%s opened at line %d", m.Key(), m.Line))
	}
	return &ParseError{
		Kind:    ErrUnclosed,
		Msg:     strings.Join(parts, ", "),
		Line:    open[0].Line,
		Markers: open,
	}
}
