// Package diagnostics holds the issue model shared by every stage of the
// marker engine.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"
)

// Severity ranks an Issue. Only SeverityError fails a document.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Status is the overall outcome of a validation call.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Issue codes emitted by the engine.
const (
	CodeMarkerUnknownKind      = "marker.unknown_kind"
	CodeMarkerMalformed        = "marker.malformed"
	CodeMarkerAttribute        = "marker.attribute"
	CodeMarkerPlacement        = "marker.placement"
	CodeHeaderField            = "template.header_field"
	CodeMissingRequired        = "structure.missing_required"
	CodeUnknownBlock           = "structure.unknown_block"
	CodeUnexpectedRepeat       = "structure.unexpected_repeat"
	CodeContent                = "content.invalid"
	CodeIdentifierMalformed    = "identifier.malformed"
	CodeIdentifierDuplicate    = "identifier.duplicate"
	CodeIdentifierMissing      = "identifier.missing"
	CodeIdentifierPriority     = "identifier.priority"
	CodeCheckboxOutsideList    = "identifier.checkbox_outside_list"
	CodeOrphanedReference      = "crossref.orphaned"
	CodeDuplicateDefinition    = "crossref.duplicate_definition"
	CodeUncoveredDefinition    = "crossref.uncovered"
	CodeUntracedDefinition     = "crossref.untraced"
	CodeArtifactExcluded       = "crossref.excluded"
	CodeTemplateKindMismatched = "template.kind_mismatch"
	CodeTemplateRequired       = "template.required"
)

// Issue is a single located finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Line     int      `json:"line"`
	Path     string   `json:"path,omitempty"`
	Source   string   `json:"source,omitempty"`
}

// String renders the issue as `source:line: severity: message [code]`.
func (i Issue) String() string {
	var b strings.Builder
	if i.Source != "" {
		b.WriteString(i.Source)
		b.WriteByte(':')
	}
	if i.Line > 0 {
		fmt.Fprintf(&b, "%d:", i.Line)
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(string(i.Severity))
	b.WriteString(": ")
	b.WriteString(i.Message)
	if i.Path != "" {
		b.WriteString(" (")
		b.WriteString(i.Path)
		b.WriteByte(')')
	}
	if i.Code != "" {
		b.WriteString(" [")
		b.WriteString(i.Code)
		b.WriteByte(']')
	}
	return b.String()
}

// Errorf builds an error-severity issue.
func Errorf(code string, line int, path string, format string, args ...any) Issue {
	return Issue{Severity: SeverityError, Code: code, Line: line, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning-severity issue.
func Warnf(code string, line int, path string, format string, args ...any) Issue {
	return Issue{Severity: SeverityWarning, Code: code, Line: line, Path: path, Message: fmt.Sprintf(format, args...)}
}

// HasErrors reports whether any issue carries SeverityError.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of issues with the given severity.
func Count(issues []Issue, severity Severity) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// StatusOf derives PASS/FAIL from an issue list.
func StatusOf(issues []Issue) Status {
	if HasErrors(issues) {
		return StatusFail
	}
	return StatusPass
}

// Sort orders issues by line, keeping emission order for equal lines.
func Sort(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Line < issues[j].Line
	})
}

// WithSource stamps source on every issue that does not carry one yet.
func WithSource(issues []Issue, source string) []Issue {
	if source == "" {
		return issues
	}
	for i := range issues {
		if issues[i].Source == "" {
			issues[i].Source = source
		}
	}
	return issues
}
