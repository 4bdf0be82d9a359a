// Package history stores a summary of every cross-validation run so
// coverage can be tracked over time.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-docmark/internal/crossref"
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/identity"
)

// ErrRunNotFound indicates that no run matches the lookup.
var ErrRunNotFound = errors.New("history: run not found")

// RunRecord summarises one project run.
type RunRecord struct {
	ID          uuid.UUID
	RunID       string
	WorkspaceID uuid.UUID
	Root        string
	StartedAt   time.Time
	FinishedAt  time.Time
	Artifacts   int
	Excluded    int
	Definitions int
	References  int
	Orphaned    int
	Duplicates  int
	Errors      int
	Warnings    int
	Coverage    float64
	Status      diagnostics.Status
}

// Repository persists run records.
type Repository interface {
	Record(ctx context.Context, run RunRecord) (RunRecord, error)
	Get(ctx context.Context, id uuid.UUID) (RunRecord, error)
	// List returns the newest runs first. An empty root lists every
	// workspace; limit <= 0 means no limit.
	List(ctx context.Context, root string, limit int) ([]RunRecord, error)
	Latest(ctx context.Context, root string) (RunRecord, error)
}

// FromResult builds a record for a finished run. artifacts counts the
// artifacts that took part.
func FromResult(root string, artifacts int, issues []diagnostics.Issue, res crossref.Result) RunRecord {
	all := append(append([]diagnostics.Issue(nil), issues...), res.Issues...)
	record := RunRecord{
		RunID:       res.RunID,
		WorkspaceID: identity.WorkspaceUUID(root),
		Root:        root,
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
		Artifacts:   artifacts,
		Excluded:    len(res.Excluded),
		Definitions: res.Definitions,
		References:  res.References,
		Orphaned:    len(res.Orphaned),
		Duplicates:  len(res.Duplicates),
		Errors:      diagnostics.Count(all, diagnostics.SeverityError),
		Warnings:    diagnostics.Count(all, diagnostics.SeverityWarning),
		Coverage:    res.Coverage,
		Status:      diagnostics.StatusOf(all),
	}
	if parsed, err := uuid.Parse(res.RunID); err == nil {
		record.ID = parsed
	}
	return record
}

func prepare(run RunRecord) RunRecord {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.WorkspaceID == uuid.Nil {
		run.WorkspaceID = identity.WorkspaceUUID(run.Root)
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}
	if run.Status == "" {
		run.Status = diagnostics.StatusPass
	}
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	return run
}
