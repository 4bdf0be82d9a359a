// Package project runs a whole-workspace check: discovery, per-artifact
// validation, cross-document validation and the optional history record.
package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"

	"github.com/goliatone/go-docmark/internal/crossref"
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/engine"
	"github.com/goliatone/go-docmark/internal/history"
	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/marker"
	"github.com/goliatone/go-docmark/internal/workspace"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// Options configure Run.
type Options struct {
	Workspace          workspace.Config
	ExternalNamespaces []string
	OrphanSeverity     diagnostics.Severity
	Workers            int
	FailOnWarnings     bool
	// CodeTraces enables the to_code check when non-nil.
	CodeTraces []string
	// History receives a summary of the run when set.
	History  history.Repository
	Provider interfaces.LoggerProvider
}

// Report is the outcome of one project run.
type Report struct {
	RunID     string
	Root      string
	Templates []string
	// Issues are workspace-level findings: template warnings, templates
	// that failed to parse and artifacts that could not be validated.
	Issues    []diagnostics.Issue
	Artifacts []engine.Result
	Crossref  crossref.Result
	// Record is the stored history entry, nil when history is off.
	Record *history.RunRecord

	failOnWarnings bool
}

// AllIssues concatenates workspace, artifact and cross-document issues.
func (r *Report) AllIssues() []diagnostics.Issue {
	if r == nil {
		return nil
	}
	out := append([]diagnostics.Issue(nil), r.Issues...)
	for _, res := range r.Artifacts {
		out = append(out, res.Issues...)
	}
	return append(out, r.Crossref.Issues...)
}

// Status is FAIL when any issue is an error, or any is a warning and the
// run was configured to fail on warnings.
func (r *Report) Status() diagnostics.Status {
	issues := r.AllIssues()
	if r != nil && r.failOnWarnings && diagnostics.Count(issues, diagnostics.SeverityWarning) > 0 {
		return diagnostics.StatusFail
	}
	return diagnostics.StatusOf(issues)
}

// Run checks every artifact under fsys. Only discovery failures and
// cancellation are returned as errors; everything else is in the report.
func Run(ctx context.Context, fsys fs.FS, opts Options) (*Report, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithWorkspace(logging.RootLogger(opts.Provider), opts.Workspace.Root).WithContext(ctx)

	wsCfg := opts.Workspace
	if wsCfg.Logger == nil {
		wsCfg.Logger = logging.WorkspaceLogger(opts.Provider)
	}
	loader := workspace.NewLoader(fsys, wsCfg)
	proj, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:          runID,
		Root:           opts.Workspace.Root,
		Templates:      proj.Templates.Kinds(),
		failOnWarnings: opts.FailOnWarnings,
	}
	report.Issues = append(report.Issues, proj.Templates.Issues...)
	for _, failed := range proj.Templates.Failed {
		issue := diagnostics.Errorf(diagnostics.CodeArtifactExcluded, 0, "", "template excluded: %s", failed.Reason)
		issue.Source = failed.Path
		report.Issues = append(report.Issues, issue)
	}
	for _, doc := range proj.Documents {
		if doc.Kind == "" {
			continue
		}
		if _, ok := proj.Templates.Lookup(doc.Kind); !ok {
			issue := diagnostics.Warnf(diagnostics.CodeArtifactExcluded, 0, "", "no template for kind %s", doc.Kind)
			issue.Source = doc.Path
			report.Issues = append(report.Issues, issue)
		}
	}

	outcomes, err := engine.ValidateBatch(ctx, proj.Jobs, engine.BatchOptions{
		Options: engine.Options{FailOnWarnings: opts.FailOnWarnings},
		Workers: opts.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("project validate: %w", err)
	}
	for _, out := range outcomes {
		if out.Err != nil {
			report.Issues = append(report.Issues, out.Result.Issues...)
			report.Issues = append(report.Issues, parseFailure(out))
			continue
		}
		report.Artifacts = append(report.Artifacts, out.Result)
	}

	sources, failed := workspace.Sources(outcomes)
	report.Crossref, err = crossref.Validate(ctx, sources, crossref.Options{
		ExternalNamespaces: opts.ExternalNamespaces,
		OrphanSeverity:     opts.OrphanSeverity,
		Workers:            opts.Workers,
		CodeTraces:         opts.CodeTraces,
		Excluded:           append(append([]crossref.Exclusion(nil), proj.Excluded...), failed...),
		RunID:              runID,
		Logger:             logging.CrossrefLogger(opts.Provider),
	})
	if err != nil {
		return nil, err
	}

	if opts.History != nil {
		var artifactIssues []diagnostics.Issue
		for _, res := range report.Artifacts {
			artifactIssues = append(artifactIssues, res.Issues...)
		}
		record := history.FromResult(opts.Workspace.Root, len(sources), append(artifactIssues, report.Issues...), report.Crossref)
		record.Status = report.Status()
		stored, err := opts.History.Record(ctx, record)
		if err != nil {
			logger.Warn("project.history.failed", "error", err)
		} else {
			report.Record = &stored
		}
	}

	logger.Info("project.run.completed",
		"templates", len(report.Templates),
		"artifacts", len(report.Artifacts),
		"excluded", len(report.Crossref.Excluded),
		"status", string(report.Status()),
		"coverage", report.Crossref.Coverage,
	)
	return report, nil
}

func parseFailure(out engine.Outcome) diagnostics.Issue {
	line := 0
	var parseErr *marker.ParseError
	if errors.As(out.Err, &parseErr) {
		line = parseErr.Line
	}
	issue := diagnostics.Errorf(diagnostics.CodeArtifactExcluded, line, "", "artifact excluded: %v", out.Err)
	issue.Source = out.Path
	return issue
}
