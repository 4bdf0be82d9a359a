// Package crossref aggregates identifiers across a set of artifacts and
// reports orphaned references, duplicate definitions and coverage gaps.
package crossref

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/identifiers"
	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/marker"
	"github.com/goliatone/go-docmark/internal/workers"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// Source is one artifact taking part in a run.
type Source interface {
	// Name is the artifact path used in issues.
	Name() string
	// Kind is the template kind the artifact was validated against.
	Kind() string
	// Identifiers extracts the artifact's definitions and references. It
	// may be called from any goroutine.
	Identifiers() identifiers.Extraction
}

// Exclusion records an artifact left out of the run and why.
type Exclusion struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Duplicate is an identifier defined by more than one artifact.
type Duplicate struct {
	ID          string
	Definitions []identifiers.Definition
}

// Options configure a run.
type Options struct {
	// ExternalNamespaces exempt references whose system or kind segment,
	// or whose leading dash-separated prefix, matches an entry.
	ExternalNamespaces []string
	// OrphanSeverity defaults to error.
	OrphanSeverity diagnostics.Severity
	Workers        int
	// CodeTraces lists identifiers found in code. When nil the to_code
	// check is skipped.
	CodeTraces []string
	// Excluded are artifacts the caller already dropped, e.g. parse failures.
	Excluded []Exclusion
	RunID    string
	Logger   interfaces.Logger
}

// Result is the project-wide report.
type Result struct {
	RunID       string
	Orphaned    []identifiers.Reference
	Duplicates  []Duplicate
	Uncovered   []identifiers.Definition
	Untraced    []identifiers.Definition
	Excluded    []Exclusion
	Issues      []diagnostics.Issue
	Definitions int
	References  int
	Resolved    int
	External    int
	// Coverage is resolved / references, 1.0 with no references. External
	// references are exempt from orphan checks but do not count as resolved.
	Coverage   float64
	StartedAt  time.Time
	FinishedAt time.Time
}

// CoveragePercent is Coverage scaled to 0-100.
func (r Result) CoveragePercent() float64 {
	return r.Coverage * 100
}

// Status is FAIL when any cross-document issue is an error.
func (r Result) Status() diagnostics.Status {
	return diagnostics.StatusOf(r.Issues)
}

// Validator runs one cross-validation. It is single-use.
type Validator struct {
	opts   Options
	logger interfaces.Logger

	mu    sync.Mutex
	state State
}

// New returns a validator in the UNINITIALIZED state.
func New(opts Options) *Validator {
	if opts.OrphanSeverity == "" {
		opts.OrphanSeverity = diagnostics.SeverityError
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Validator{opts: opts, logger: logger, state: StateUninitialized}
}

// State reports the current lifecycle stage.
func (v *Validator) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Validate is a convenience wrapper around New(opts).Run.
func Validate(ctx context.Context, sources []Source, opts Options) (Result, error) {
	return New(opts).Run(ctx, sources)
}

// Run loads every source, aggregates once all extractions are done, then
// checks every reference. Failures accumulate; the only errors returned are
// lifecycle misuse. Sources skipped by cancellation are reported as
// exclusions.
func (v *Validator) Run(ctx context.Context, sources []Source) (Result, error) {
	res := Result{
		RunID:     v.opts.RunID,
		StartedAt: time.Now().UTC(),
		Excluded:  append([]Exclusion(nil), v.opts.Excluded...),
	}
	if res.RunID == "" {
		res.RunID = uuid.NewString()
	}
	logger := v.logger.WithContext(logging.WithRunID(ctx, res.RunID))

	if err := v.transition(StateUninitialized, StateLoading); err != nil {
		return res, err
	}
	extractions, loaded := v.load(ctx, sources)
	for i, ok := range loaded {
		if !ok {
			res.Excluded = append(res.Excluded, Exclusion{Path: sources[i].Name(), Reason: fmt.Sprintf("not loaded: %v", ctx.Err())})
		}
	}

	if err := v.transition(StateLoading, StateAggregating); err != nil {
		return res, err
	}
	agg := aggregate(sources, extractions, loaded)
	res.Definitions = len(agg.definitions)
	res.References = len(agg.references)
	res.Duplicates = agg.duplicates
	for _, dup := range agg.duplicates {
		first := dup.Definitions[0]
		for _, def := range dup.Definitions[1:] {
			issue := diagnostics.Errorf(diagnostics.CodeDuplicateDefinition, def.Line, pathOf(def.Block),
				"identifier %q is also defined in %s:%d", dup.ID, first.Artifact, first.Line)
			issue.Source = def.Artifact
			res.Issues = append(res.Issues, issue)
		}
	}

	if err := v.transition(StateAggregating, StateChecking); err != nil {
		return res, err
	}
	v.check(agg, &res)

	if err := v.transition(StateChecking, StateDone); err != nil {
		return res, err
	}
	res.FinishedAt = time.Now().UTC()
	sortIssues(res.Issues)

	logger.Info("crossref.run.completed",
		"artifacts", len(sources),
		"excluded", len(res.Excluded),
		"definitions", res.Definitions,
		"references", res.References,
		"orphaned", len(res.Orphaned),
		"coverage", res.Coverage,
	)
	return res, nil
}

func (v *Validator) load(ctx context.Context, sources []Source) ([]identifiers.Extraction, []bool) {
	extractions := make([]identifiers.Extraction, len(sources))
	loaded := make([]bool, len(sources))
	err := workers.Run(ctx, len(sources), v.opts.Workers, func(i int) {
		extractions[i] = sources[i].Identifiers()
		loaded[i] = true
	})
	if err != nil {
		v.logger.Warn("crossref.load.cancelled", "error", err)
	}
	return extractions, loaded
}

type aggregation struct {
	definitions []identifiers.Definition
	references  []identifiers.Reference
	byID        map[string][]identifiers.Definition
	byBase      map[string][]identifiers.Definition
	duplicates  []Duplicate
	// kindReferences maps artifact kind to the identifiers its artifacts cite.
	kindReferences map[string]map[string]struct{}
}

// aggregate is the barrier step: it runs after every extraction finished
// and walks them in source order so the output is deterministic.
func aggregate(sources []Source, extractions []identifiers.Extraction, loaded []bool) aggregation {
	agg := aggregation{
		byID:           make(map[string][]identifiers.Definition),
		byBase:         make(map[string][]identifiers.Definition),
		kindReferences: make(map[string]map[string]struct{}),
	}
	for i, ex := range extractions {
		if !loaded[i] {
			continue
		}
		kind := strings.ToUpper(strings.TrimSpace(sources[i].Kind()))
		for _, def := range ex.Definitions {
			agg.definitions = append(agg.definitions, def)
			agg.byID[def.ID] = append(agg.byID[def.ID], def)
			if def.Parsed.Versioned {
				agg.byBase[def.Parsed.Base()] = append(agg.byBase[def.Parsed.Base()], def)
			}
		}
		for _, ref := range ex.References {
			agg.references = append(agg.references, ref)
			if kind == "" {
				continue
			}
			if agg.kindReferences[kind] == nil {
				agg.kindReferences[kind] = make(map[string]struct{})
			}
			agg.kindReferences[kind][ref.ID] = struct{}{}
			if ref.Parsed.Versioned {
				agg.kindReferences[kind][ref.Parsed.Base()] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(agg.byID))
	for id, defs := range agg.byID {
		if len(defs) > 1 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		agg.duplicates = append(agg.duplicates, Duplicate{ID: id, Definitions: agg.byID[id]})
	}
	return agg
}

func (v *Validator) check(agg aggregation, res *Result) {
	for _, ref := range agg.references {
		switch {
		case agg.resolves(ref):
			res.Resolved++
		case v.isExternal(ref):
			res.External++
		default:
			res.Orphaned = append(res.Orphaned, ref)
			issue := diagnostics.Issue{
				Severity: v.opts.OrphanSeverity,
				Code:     diagnostics.CodeOrphanedReference,
				Message:  fmt.Sprintf("reference %q has no definition in the project", ref.ID),
				Line:     ref.Line,
				Path:     pathOf(ref.Block),
				Source:   ref.Artifact,
			}
			res.Issues = append(res.Issues, issue)
		}
	}
	res.Coverage = 1.0
	if len(agg.references) > 0 {
		res.Coverage = float64(res.Resolved) / float64(len(agg.references))
	}

	var traced map[string]struct{}
	if v.opts.CodeTraces != nil {
		traced = make(map[string]struct{}, len(v.opts.CodeTraces))
		for _, id := range v.opts.CodeTraces {
			traced[strings.TrimSpace(id)] = struct{}{}
		}
	}

	for _, def := range agg.definitions {
		if missing := agg.uncoveredKinds(def); len(missing) > 0 {
			res.Uncovered = append(res.Uncovered, def)
			issue := diagnostics.Warnf(diagnostics.CodeUncoveredDefinition, def.Line, pathOf(def.Block),
				"identifier %q is not referenced by any %s artifact", def.ID, strings.Join(missing, ", "))
			issue.Source = def.Artifact
			res.Issues = append(res.Issues, issue)
		}
		if traced == nil || !def.ToCode {
			continue
		}
		_, direct := traced[def.ID]
		_, base := traced[def.Parsed.Base()]
		if !direct && !base {
			res.Untraced = append(res.Untraced, def)
			issue := diagnostics.Errorf(diagnostics.CodeUntracedDefinition, def.Line, pathOf(def.Block),
				"identifier %q must be traced to code but no trace was found", def.ID)
			issue.Source = def.Artifact
			res.Issues = append(res.Issues, issue)
		}
	}
}

// resolves matches the exact ID, or an unversioned reference against any
// versioned definition of the same base.
func (agg aggregation) resolves(ref identifiers.Reference) bool {
	if len(agg.byID[ref.ID]) > 0 {
		return true
	}
	return !ref.Parsed.Versioned && len(agg.byBase[ref.ID]) > 0
}

func (agg aggregation) uncoveredKinds(def identifiers.Definition) []string {
	var missing []string
	for _, kind := range def.Covers {
		kind = strings.ToUpper(strings.TrimSpace(kind))
		if kind == "" {
			continue
		}
		refs := agg.kindReferences[kind]
		if _, ok := refs[def.ID]; ok {
			continue
		}
		if _, ok := refs[def.Parsed.Base()]; ok && def.Parsed.Versioned {
			continue
		}
		missing = append(missing, kind)
	}
	return missing
}

func (v *Validator) isExternal(ref identifiers.Reference) bool {
	return MatchesNamespace(ref.Parsed, v.opts.ExternalNamespaces)
}

// MatchesNamespace reports whether id belongs to one of the namespaces. A
// namespace matches the system or kind segment exactly, or a dash-bounded
// prefix of the whole identifier such as "ext-api".
func MatchesNamespace(id identifiers.ID, namespaces []string) bool {
	for _, ns := range namespaces {
		ns = strings.ToLower(strings.TrimSpace(ns))
		ns = strings.TrimSuffix(ns, "-")
		if ns == "" {
			continue
		}
		if ns == id.System || ns == id.Kind {
			return true
		}
		if strings.HasPrefix(id.Raw, ns+"-") {
			return true
		}
	}
	return false
}

func sortIssues(issues []diagnostics.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Source != issues[j].Source {
			return issues[i].Source < issues[j].Source
		}
		return issues[i].Line < issues[j].Line
	})
}

func pathOf(b *marker.Block) string {
	if b == nil {
		return ""
	}
	return b.Path
}
