package rules

import (
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/identifiers"
	"github.com/goliatone/go-docmark/internal/marker"
)

// Grammar and duplicate checks belong to the identifier extractor; these
// validators check the line shape around the identifiers.

func validateDefinition(in Input) []diagnostics.Issue {
	b := in.Block
	var (
		issues []diagnostics.Issue
		found  bool
	)
	for _, line := range b.OwnLines() {
		info := identifiers.ScanLine(line.Text)
		issues = append(issues, checkboxIssue(b, line, info)...)
		if info.Definition == "" || found {
			continue
		}
		found = true
		if in.Attributes.Priority && info.Priority == nil {
			issues = append(issues, diagnostics.Errorf(diagnostics.CodeIdentifierPriority, line.Number, b.Path,
				"identifier %q requires a priority token such as `p1`", info.Definition))
		}
	}
	if !found {
		issues = append(issues, diagnostics.Errorf(diagnostics.CodeIdentifierMissing, b.StartLine, b.Path,
			"%s must declare an identifier as **ID**: `system-kind-slug`", b.Key()))
	}
	return issues
}

func validateReference(in Input) []diagnostics.Issue {
	b := in.Block
	var (
		issues []diagnostics.Issue
		tokens int
	)
	for _, line := range b.OwnLines() {
		info := identifiers.ScanLine(line.Text)
		issues = append(issues, checkboxIssue(b, line, info)...)
		tokens += len(info.Tokens)
	}
	if tokens == 0 {
		issues = append(issues, diagnostics.Warnf(diagnostics.CodeIdentifierMissing, b.StartLine, b.Path,
			"%s references no identifiers", b.Key()))
	}
	return issues
}

func checkboxIssue(b *marker.Block, line marker.Line, info identifiers.LineInfo) []diagnostics.Issue {
	if !info.Checkbox || info.InListItem {
		return nil
	}
	return []diagnostics.Issue{diagnostics.Errorf(diagnostics.CodeCheckboxOutsideList, line.Number, b.Path,
		"checkbox must start a list item, e.g. - [ ] **ID**: `system-kind-slug`")}
}
