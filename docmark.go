// Package docmark validates Markdown artifacts annotated with typed
// markers against reusable templates, and cross-checks identifier
// definitions and references across a set of artifacts.
package docmark

import (
	"context"

	"github.com/goliatone/go-docmark/internal/crossref"
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/engine"
	"github.com/goliatone/go-docmark/internal/identifiers"
	"github.com/goliatone/go-docmark/internal/marker"
	"github.com/goliatone/go-docmark/internal/project"
	"github.com/goliatone/go-docmark/internal/templates"
	"github.com/goliatone/go-docmark/internal/workspace"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

type (
	Template              = templates.Template
	Artifact              = templates.Artifact
	Version               = templates.Version
	Policy                = templates.Policy
	Block                 = marker.Block
	Issue                 = diagnostics.Issue
	Severity              = diagnostics.Severity
	Status                = diagnostics.Status
	ValidationResult      = engine.Result
	Definition            = identifiers.Definition
	Reference             = identifiers.Reference
	Identifier            = identifiers.ID
	CrossValidationResult = crossref.Result
	Exclusion             = crossref.Exclusion
	ProjectReport         = project.Report
	ParseError            = marker.ParseError
)

const (
	SeverityError   = diagnostics.SeverityError
	SeverityWarning = diagnostics.SeverityWarning
	StatusPass      = diagnostics.StatusPass
	StatusFail      = diagnostics.StatusFail
)

var (
	ErrUnbalanced       = marker.ErrUnbalanced
	ErrUnclosed         = marker.ErrUnclosed
	ErrHeaderMissing    = templates.ErrHeaderMissing
	ErrHeaderInvalid    = templates.ErrHeaderInvalid
	ErrTemplateRequired = templates.ErrTemplateRequired
)

// ParseOption tunes ParseTemplate and ParseArtifact.
type ParseOption func(*templates.Options)

// WithPrefix restricts markers to one prefix. Empty accepts any prefix.
func WithPrefix(prefix string) ParseOption {
	return func(o *templates.Options) { o.Prefix = prefix }
}

// WithPath labels the document in issues.
func WithPath(path string) ParseOption {
	return func(o *templates.Options) { o.Path = path }
}

func parseOptions(opts []ParseOption) templates.Options {
	var out templates.Options
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}

// ParseTemplate parses a template: a metadata header followed by a marker
// body. Parse failures are returned as errors; header and marker warnings
// as issues.
func ParseTemplate(text string, opts ...ParseOption) (*Template, []Issue, error) {
	return templates.ParseTemplate(text, parseOptions(opts))
}

// ParseArtifact parses an artifact bound to tpl.
func ParseArtifact(text string, tpl *Template, opts ...ParseOption) (*Artifact, []Issue, error) {
	return templates.ParseArtifact(text, tpl, parseOptions(opts))
}

// Validate matches the artifact against its template, checks block
// content and extracts identifiers.
func Validate(a *Artifact) ValidationResult {
	return engine.Validate(a, engine.Options{})
}

// CrossValidate checks identifiers across artifacts. References in one of
// externalNamespaces are never orphaned.
func CrossValidate(artifacts []*Artifact, externalNamespaces []string) CrossValidationResult {
	res, _ := CrossValidateWithOptions(context.Background(), artifacts, CrossOptions{ExternalNamespaces: externalNamespaces})
	return res
}

// CrossOptions configure CrossValidateWithOptions.
type CrossOptions struct {
	ExternalNamespaces []string
	// OrphanSeverity defaults to SeverityError.
	OrphanSeverity Severity
	// Workers bounds concurrent extraction; 0 uses every CPU.
	Workers int
	// CodeTraces lists identifiers found in code; nil skips the to_code check.
	CodeTraces []string
	Excluded   []Exclusion
	Logger     interfaces.Logger
}

// CrossValidateWithOptions is CrossValidate with cancellation and tuning.
// Artifacts not loaded before ctx is done are reported as exclusions.
func CrossValidateWithOptions(ctx context.Context, artifacts []*Artifact, opts CrossOptions) (CrossValidationResult, error) {
	sources := make([]crossref.Source, 0, len(artifacts))
	for _, a := range artifacts {
		if a == nil {
			continue
		}
		sources = append(sources, workspace.NewSource(a))
	}
	return crossref.Validate(ctx, sources, crossref.Options{
		ExternalNamespaces: opts.ExternalNamespaces,
		OrphanSeverity:     opts.OrphanSeverity,
		Workers:            opts.Workers,
		CodeTraces:         opts.CodeTraces,
		Excluded:           opts.Excluded,
		Logger:             opts.Logger,
	})
}

// ParseIdentifier splits an identifier into its system, kind, slug and
// version parts.
func ParseIdentifier(raw string) (Identifier, error) {
	return identifiers.Parse(raw)
}
