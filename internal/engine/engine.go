// Package engine runs the per-artifact pipeline: block matching, content
// validation and identifier extraction.
package engine

import (
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/identifiers"
	"github.com/goliatone/go-docmark/internal/marker"
	"github.com/goliatone/go-docmark/internal/matcher"
	"github.com/goliatone/go-docmark/internal/rules"
	"github.com/goliatone/go-docmark/internal/templates"
)

// Options tune Validate.
type Options struct {
	// FailOnWarnings turns any warning into a FAIL status.
	FailOnWarnings bool
}

// Result is the outcome of validating one artifact.
type Result struct {
	Path        string
	Status      diagnostics.Status
	Issues      []diagnostics.Issue
	Definitions []identifiers.Definition
	References  []identifiers.Reference
}

// Validate starts from the artifact's parse issues, then runs the matcher,
// the content validators and the identifier extractor. Every stage runs
// regardless of earlier findings; issues are additive and sorted by line.
// A nil artifact or one without a template fails with a single issue.
func Validate(a *templates.Artifact, opts Options) Result {
	res := Result{Status: diagnostics.StatusPass}
	if a == nil || a.Template == nil {
		return missingTemplate(a)
	}
	res.Path = a.Path

	match := matcher.Match(a.Template.Blocks(), a.Blocks(), a.Template.UnknownSectionPolicy)
	issues := a.ParseIssues()
	issues = append(issues, match.Issues...)

	for _, pair := range match.Pairs {
		issues = append(issues, rules.Validate(rules.Input{
			Block:      pair.Artifact,
			Template:   pair.Template,
			Attributes: pair.Attributes(),
		})...)
	}
	marker.Walk(match.Unmatched, func(b *marker.Block) bool {
		issues = append(issues, rules.Validate(rules.Input{Block: b, Attributes: b.Attributes})...)
		return true
	})

	extraction := extractWith(a, match)
	issues = append(issues, extraction.Issues...)

	issues = diagnostics.WithSource(issues, a.Path)
	diagnostics.Sort(issues)

	res.Issues = issues
	res.Definitions = extraction.Definitions
	res.References = extraction.References
	res.Status = statusOf(issues, opts)
	return res
}

func missingTemplate(a *templates.Artifact) Result {
	res := Result{Status: diagnostics.StatusFail}
	if a != nil {
		res.Path = a.Path
	}
	issue := diagnostics.Errorf(diagnostics.CodeTemplateRequired, 1, "", "%s", templates.ErrTemplateRequired.Error())
	issue.Source = res.Path
	res.Issues = []diagnostics.Issue{issue}
	return res
}

// Extract collects the artifact's identifiers without the content checks.
func Extract(a *templates.Artifact) identifiers.Extraction {
	if a == nil || a.Template == nil {
		return identifiers.Extraction{}
	}
	return extractWith(a, matcher.Match(a.Template.Blocks(), a.Blocks(), a.Template.UnknownSectionPolicy))
}

// extractWith uses the effective attributes of each matched pair.
func extractWith(a *templates.Artifact, match matcher.Result) identifiers.Extraction {
	pairs := make(map[*marker.Block]matcher.Pair, len(match.Pairs))
	for _, pair := range match.Pairs {
		pairs[pair.Artifact] = pair
	}
	return identifiers.Extract(a.Blocks(), identifiers.Options{
		Artifact: a.Path,
		Attributes: func(b *marker.Block) marker.Attributes {
			if pair, ok := pairs[b]; ok {
				return pair.Attributes()
			}
			return b.Attributes
		},
	})
}

func statusOf(issues []diagnostics.Issue, opts Options) diagnostics.Status {
	if opts.FailOnWarnings && diagnostics.Count(issues, diagnostics.SeverityWarning) > 0 {
		return diagnostics.StatusFail
	}
	return diagnostics.StatusOf(issues)
}
