// Package printer renders validation results for the terminal.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"

	"github.com/goliatone/go-docmark/internal/crossref"
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/engine"
	"github.com/goliatone/go-docmark/internal/history"
	"github.com/goliatone/go-docmark/internal/project"
	"github.com/goliatone/go-docmark/internal/templates"
)

// Printer writes human or JSON output. Errors always go to Err.
type Printer struct {
	Out  io.Writer
	Err  io.Writer
	JSON bool

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
	faint  *color.Color
}

// New returns a printer on stdout/stderr. NO_COLOR disables colors.
func New(jsonOutput bool) *Printer {
	return NewWithWriters(os.Stdout, os.Stderr, jsonOutput, os.Getenv("NO_COLOR") == "")
}

// NewWithWriters is New with explicit writers and color switch.
func NewWithWriters(out, errOut io.Writer, jsonOutput, colors bool) *Printer {
	p := &Printer{
		Out:    out,
		Err:    errOut,
		JSON:   jsonOutput,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed, color.Bold),
		cyan:   color.New(color.FgCyan),
		faint:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.green, p.yellow, p.red, p.cyan, p.faint} {
		if colors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Issue prints one issue line colored by severity.
func (p *Printer) Issue(issue diagnostics.Issue) {
	switch issue.Severity {
	case diagnostics.SeverityError:
		p.red.Fprint(p.Out, "✗ ")
	case diagnostics.SeverityWarning:
		p.yellow.Fprint(p.Out, "⚠ ")
	default:
		p.faint.Fprint(p.Out, "· ")
	}
	fmt.Fprintln(p.Out, issue.String())
}

// Issues prints issues in the given order.
func (p *Printer) Issues(issues []diagnostics.Issue) {
	for _, issue := range issues {
		p.Issue(issue)
	}
}

// Status prints the PASS/FAIL banner with error and warning counts.
func (p *Printer) Status(label string, status diagnostics.Status, issues []diagnostics.Issue) {
	errs := diagnostics.Count(issues, diagnostics.SeverityError)
	warns := diagnostics.Count(issues, diagnostics.SeverityWarning)
	summary := fmt.Sprintf("%s: %s (%d errors, %d warnings)", label, status, errs, warns)
	if status == diagnostics.StatusPass {
		p.green.Fprintf(p.Out, "✓ %s\n", summary)
		return
	}
	p.red.Fprintf(p.Out, "✗ %s\n", summary)
}

// ArtifactResult prints a single-artifact validation.
func (p *Printer) ArtifactResult(res engine.Result) error {
	if p.JSON {
		return p.writeJSON(artifactJSON(res))
	}
	p.Issues(res.Issues)
	p.Status(res.Path, res.Status, res.Issues)
	fmt.Fprintf(p.Out, "  %d definitions, %d references\n", len(res.Definitions), len(res.References))
	return nil
}

// ProjectReport prints a whole-workspace check.
func (p *Printer) ProjectReport(report *project.Report) error {
	if report == nil {
		return nil
	}
	if p.JSON {
		return p.writeJSON(projectJSON(report))
	}
	p.cyan.Fprintf(p.Out, "→ run %s: %d templates, %d artifacts\n", report.RunID, len(report.Templates), len(report.Artifacts))

	issues := report.AllIssues()
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Source != issues[j].Source {
			return issues[i].Source < issues[j].Source
		}
		return issues[i].Line < issues[j].Line
	})
	p.Issues(issues)
	p.exclusions(report.Crossref.Excluded)

	cr := report.Crossref
	fmt.Fprintf(p.Out, "  %d definitions, %d references (%d resolved, %d external, %d orphaned)\n",
		cr.Definitions, cr.References, cr.Resolved, cr.External, len(cr.Orphaned))
	fmt.Fprintf(p.Out, "  coverage %.1f%%\n", cr.CoveragePercent())
	p.Status(report.Root, report.Status(), issues)
	return nil
}

// TemplateLint prints a template's header and issues.
func (p *Printer) TemplateLint(path string, tpl *templates.Template, issues []diagnostics.Issue) error {
	status := diagnostics.StatusOf(issues)
	if p.JSON {
		out := map[string]any{"path": path, "status": status, "issues": nonNil(issues)}
		if tpl != nil {
			out["kind"] = tpl.Kind
			out["version"] = tpl.Version.String()
			out["unknown_sections"] = tpl.UnknownSectionPolicy
		}
		return p.writeJSON(out)
	}
	if tpl != nil {
		p.cyan.Fprintf(p.Out, "→ %s v%s (unknown sections: %s)\n", tpl.Kind, tpl.Version, tpl.UnknownSectionPolicy)
	}
	p.Issues(issues)
	p.Status(path, status, issues)
	return nil
}

// Runs prints stored run summaries, newest first.
func (p *Printer) Runs(records []history.RunRecord) error {
	if p.JSON {
		out := make([]map[string]any, 0, len(records))
		for _, r := range records {
			out = append(out, map[string]any{
				"id":          r.ID.String(),
				"root":        r.Root,
				"started_at":  r.StartedAt,
				"status":      r.Status,
				"artifacts":   r.Artifacts,
				"definitions": r.Definitions,
				"references":  r.References,
				"orphaned":    r.Orphaned,
				"errors":      r.Errors,
				"warnings":    r.Warnings,
				"coverage":    r.Coverage,
			})
		}
		return p.writeJSON(out)
	}
	if len(records) == 0 {
		p.faint.Fprintln(p.Out, "no recorded runs")
		return nil
	}
	for _, r := range records {
		line := fmt.Sprintf("%s  %s  %-4s  %d artifacts  %d orphaned  coverage %.1f%%",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.ID, r.Status, r.Artifacts, r.Orphaned, r.Coverage*100)
		if r.Status == diagnostics.StatusPass {
			p.green.Fprintln(p.Out, line)
		} else {
			p.red.Fprintln(p.Out, line)
		}
	}
	return nil
}

// Error prints a titled error with optional suggestions to Err and returns
// an error carrying only the title.
func (p *Printer) Error(title, explanation string, suggestions []string) error {
	p.red.Fprintf(p.Err, "%s\n\n", title)
	if explanation != "" {
		fmt.Fprintf(p.Err, "%s\n", explanation)
	}
	if len(suggestions) > 0 {
		fmt.Fprintln(p.Err)
		if len(suggestions) == 1 {
			fmt.Fprintf(p.Err, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(p.Err, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(p.Err, "  %d. %s\n", i+1, suggestion)
			}
		}
	}
	return fmt.Errorf("%s", title)
}

func (p *Printer) exclusions(excluded []crossref.Exclusion) {
	for _, ex := range excluded {
		p.faint.Fprintf(p.Out, "· excluded %s: %s\n", ex.Path, ex.Reason)
	}
}

func (p *Printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type referenceJSON struct {
	ID       string `json:"id"`
	Artifact string `json:"artifact"`
	Line     int    `json:"line"`
}

func artifactJSON(res engine.Result) map[string]any {
	defs := make([]string, 0, len(res.Definitions))
	for _, def := range res.Definitions {
		defs = append(defs, def.ID)
	}
	refs := make([]string, 0, len(res.References))
	for _, ref := range res.References {
		refs = append(refs, ref.ID)
	}
	return map[string]any{
		"path":        res.Path,
		"status":      res.Status,
		"issues":      nonNil(res.Issues),
		"definitions": defs,
		"references":  refs,
	}
}

func projectJSON(report *project.Report) map[string]any {
	artifacts := make([]map[string]any, 0, len(report.Artifacts))
	for _, res := range report.Artifacts {
		artifacts = append(artifacts, artifactJSON(res))
	}
	cr := report.Crossref
	orphaned := make([]referenceJSON, 0, len(cr.Orphaned))
	for _, ref := range cr.Orphaned {
		orphaned = append(orphaned, referenceJSON{ID: ref.ID, Artifact: ref.Artifact, Line: ref.Line})
	}
	excluded := cr.Excluded
	if excluded == nil {
		excluded = []crossref.Exclusion{}
	}
	return map[string]any{
		"run_id":    report.RunID,
		"root":      report.Root,
		"status":    report.Status(),
		"templates": report.Templates,
		"issues":    nonNil(report.Issues),
		"artifacts": artifacts,
		"crossref": map[string]any{
			"definitions": cr.Definitions,
			"references":  cr.References,
			"resolved":    cr.Resolved,
			"external":    cr.External,
			"coverage":    cr.Coverage,
			"orphaned":    orphaned,
			"excluded":    excluded,
			"issues":      nonNil(cr.Issues),
		},
	}
}

func nonNil(issues []diagnostics.Issue) []diagnostics.Issue {
	if issues == nil {
		return []diagnostics.Issue{}
	}
	return issues
}
