package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-docmark/internal/diagnostics"
)

var errNoDatabase = errors.New("history: bun repository requires a database")

// BunRepository persists run records with Bun.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*runModel]
}

// NewBunRepository constructs a Bun-backed repository. Call Migrate once
// before use.
func NewBunRepository(db *bun.DB) *BunRepository {
	if db == nil {
		return &BunRepository{}
	}
	return &BunRepository{
		db:   db,
		repo: newRunModelRepository(db),
	}
}

func newRunModelRepository(db *bun.DB) repository.Repository[*runModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*runModel]{
		NewRecord: func() *runModel { return &runModel{} },
		GetID: func(m *runModel) uuid.UUID {
			return m.ID
		},
		SetID: func(m *runModel, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "run_id"
		},
		GetIdentifierValue: func(m *runModel) string {
			return m.RunID
		},
	})
}

// Migrate creates the runs table when it does not exist.
func (r *BunRepository) Migrate(ctx context.Context) error {
	if r.db == nil {
		return errNoDatabase
	}
	if _, err := r.db.NewCreateTable().Model((*runModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	_, err := r.db.NewCreateIndex().
		Model((*runModel)(nil)).
		Index("docmark_runs_root_started_idx").
		Column("root", "started_at").
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *BunRepository) Record(ctx context.Context, run RunRecord) (RunRecord, error) {
	if r.repo == nil {
		return RunRecord{}, errNoDatabase
	}
	run = prepare(run)
	model := modelFromRun(run)
	created, err := r.repo.Create(ctx, &model)
	if err != nil {
		return RunRecord{}, mapRepositoryError(err, run.ID.String())
	}
	return modelToRun(created), nil
}

func (r *BunRepository) Get(ctx context.Context, id uuid.UUID) (RunRecord, error) {
	if r.repo == nil {
		return RunRecord{}, errNoDatabase
	}
	model, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return RunRecord{}, mapRepositoryError(err, id.String())
	}
	return modelToRun(model), nil
}

func (r *BunRepository) List(ctx context.Context, root string, limit int) ([]RunRecord, error) {
	if r.repo == nil {
		return nil, errNoDatabase
	}
	filter := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if root != "" {
			q = q.Where("?TableAlias.root = ?", root)
		}
		return q.OrderExpr("?TableAlias.started_at DESC, ?TableAlias.id ASC")
	})
	var (
		models []*runModel
		err    error
	)
	if limit > 0 {
		models, _, err = r.repo.List(ctx, filter, repository.SelectPaginate(limit, 0))
	} else {
		models, _, err = r.repo.List(ctx, filter)
	}
	if err != nil {
		return nil, mapRepositoryError(err, root)
	}
	out := make([]RunRecord, 0, len(models))
	for _, model := range models {
		out = append(out, modelToRun(model))
	}
	return out, nil
}

func (r *BunRepository) Latest(ctx context.Context, root string) (RunRecord, error) {
	runs, err := r.List(ctx, root, 1)
	if err != nil {
		return RunRecord{}, err
	}
	if len(runs) == 0 {
		return RunRecord{}, ErrRunNotFound
	}
	return runs[0], nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, key)
	}
	return fmt.Errorf("history repository error: %w", err)
}

type runModel struct {
	bun.BaseModel `bun:"table:docmark_runs"`

	ID          uuid.UUID `bun:",pk,type:uuid"`
	RunID       string    `bun:"run_id,notnull"`
	WorkspaceID uuid.UUID `bun:"workspace_id,type:uuid"`
	Root        string    `bun:"root,notnull"`
	StartedAt   time.Time `bun:"started_at,notnull"`
	FinishedAt  time.Time `bun:"finished_at,notnull"`
	Artifacts   int       `bun:"artifacts"`
	Excluded    int       `bun:"excluded"`
	Definitions int       `bun:"definition_count"`
	References  int       `bun:"reference_count"`
	Orphaned    int       `bun:"orphaned"`
	Duplicates  int       `bun:"duplicates"`
	Errors      int       `bun:"error_count"`
	Warnings    int       `bun:"warning_count"`
	Coverage    float64   `bun:"coverage"`
	Status      string    `bun:"status,notnull"`
}

func modelFromRun(run RunRecord) runModel {
	return runModel{
		ID:          run.ID,
		RunID:       run.RunID,
		WorkspaceID: run.WorkspaceID,
		Root:        run.Root,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		Artifacts:   run.Artifacts,
		Excluded:    run.Excluded,
		Definitions: run.Definitions,
		References:  run.References,
		Orphaned:    run.Orphaned,
		Duplicates:  run.Duplicates,
		Errors:      run.Errors,
		Warnings:    run.Warnings,
		Coverage:    run.Coverage,
		Status:      string(run.Status),
	}
}

func modelToRun(model *runModel) RunRecord {
	if model == nil {
		return RunRecord{}
	}
	return RunRecord{
		ID:          model.ID,
		RunID:       model.RunID,
		WorkspaceID: model.WorkspaceID,
		Root:        model.Root,
		StartedAt:   model.StartedAt.UTC(),
		FinishedAt:  model.FinishedAt.UTC(),
		Artifacts:   model.Artifacts,
		Excluded:    model.Excluded,
		Definitions: model.Definitions,
		References:  model.References,
		Orphaned:    model.Orphaned,
		Duplicates:  model.Duplicates,
		Errors:      model.Errors,
		Warnings:    model.Warnings,
		Coverage:    model.Coverage,
		Status:      diagnostics.Status(model.Status),
	}
}
