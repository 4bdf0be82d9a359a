package engine

import (
	"context"

	"github.com/goliatone/go-docmark/internal/templates"
	"github.com/goliatone/go-docmark/internal/workers"
)

// Job is one artifact text to parse and validate.
type Job struct {
	Path     string
	Text     string
	Template *templates.Template
}

// Outcome is the per-job result. Err is set when the artifact could not be
// parsed; the batch carries on.
type Outcome struct {
	Path     string
	Artifact *templates.Artifact
	Result   Result
	Err      error
}

// BatchOptions tune ValidateBatch.
type BatchOptions struct {
	Options
	Workers int
	Prefix  string
}

// ValidateBatch parses and validates jobs on a bounded worker pool.
// Outcomes are returned in job order. Jobs skipped after cancellation carry
// the context error.
func ValidateBatch(ctx context.Context, jobs []Job, opts BatchOptions) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))
	for i, job := range jobs {
		outcomes[i].Path = job.Path
	}

	err := workers.Run(ctx, len(jobs), opts.Workers, func(i int) {
		outcomes[i] = runJob(jobs[i], opts)
	})
	if err != nil {
		for i := range outcomes {
			if outcomes[i].Artifact == nil && outcomes[i].Err == nil {
				outcomes[i].Err = err
			}
		}
	}
	return outcomes, err
}

func runJob(job Job, opts BatchOptions) Outcome {
	out := Outcome{Path: job.Path}
	if job.Template == nil {
		out.Err = templates.ErrTemplateRequired
		return out
	}
	art, issues, err := templates.ParseArtifact(job.Text, job.Template, templates.Options{Prefix: opts.Prefix, Path: job.Path})
	if err != nil {
		out.Err = err
		out.Result.Path = job.Path
		out.Result.Issues = issues
		return out
	}
	out.Artifact = art
	out.Result = Validate(art, opts.Options)
	return out
}
