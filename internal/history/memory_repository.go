package history

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps run records in-process.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]RunRecord
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		runs: make(map[uuid.UUID]RunRecord),
	}
}

// Record stores run, assigning an ID when it has none.
func (r *MemoryRepository) Record(_ context.Context, run RunRecord) (RunRecord, error) {
	run = prepare(run)
	r.mu.Lock()
	r.runs[run.ID] = run
	r.mu.Unlock()
	return run, nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return RunRecord{}, ErrRunNotFound
	}
	return run, nil
}

func (r *MemoryRepository) List(_ context.Context, root string, limit int) ([]RunRecord, error) {
	r.mu.RLock()
	out := make([]RunRecord, 0, len(r.runs))
	for _, run := range r.runs {
		if root != "" && run.Root != root {
			continue
		}
		out = append(out, run)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) Latest(ctx context.Context, root string) (RunRecord, error) {
	runs, err := r.List(ctx, root, 1)
	if err != nil {
		return RunRecord{}, err
	}
	if len(runs) == 0 {
		return RunRecord{}, ErrRunNotFound
	}
	return runs[0], nil
}
