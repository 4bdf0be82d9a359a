package workspace

import (
	"context"
	"fmt"

	"github.com/goliatone/go-docmark/internal/crossref"
	"github.com/goliatone/go-docmark/internal/engine"
	"github.com/goliatone/go-docmark/internal/identifiers"
	"github.com/goliatone/go-docmark/internal/templates"
)

// Project is a discovered workspace ready for batch validation.
type Project struct {
	Templates *Registry
	Documents []Document
	// Jobs are the documents whose template resolved, in path order.
	Jobs []engine.Job
	// Excluded are templates that failed to parse and documents with no
	// usable template.
	Excluded []crossref.Exclusion
}

// Load discovers templates and artifacts and pairs each artifact with its
// template.
func (l *Loader) Load(ctx context.Context) (*Project, error) {
	reg, err := l.LoadTemplates(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := l.LoadArtifacts(ctx)
	if err != nil {
		return nil, err
	}

	project := &Project{
		Templates: reg,
		Documents: docs,
		Excluded:  append([]crossref.Exclusion(nil), reg.Failed...),
	}
	for _, doc := range docs {
		tpl, reason := resolveTemplate(reg, doc)
		if tpl == nil {
			project.Excluded = append(project.Excluded, crossref.Exclusion{Path: doc.Path, Reason: reason})
			l.logger.Debug("workspace.artifact.excluded", "path", doc.Path, "reason", reason)
			continue
		}
		project.Jobs = append(project.Jobs, engine.Job{Path: doc.Path, Text: doc.Text, Template: tpl})
	}

	l.logger.Info("workspace.loaded",
		"templates", len(reg.Kinds()),
		"artifacts", len(project.Jobs),
		"excluded", len(project.Excluded),
	)
	return project, nil
}

func resolveTemplate(reg *Registry, doc Document) (*templates.Template, string) {
	if doc.Kind == "" {
		return nil, "no template kind declared in frontmatter or matched by pattern"
	}
	tpl, ok := reg.Lookup(doc.Kind)
	if !ok {
		return nil, fmt.Sprintf("unknown template kind %s", doc.Kind)
	}
	return tpl, ""
}

// Sources turns batch outcomes into cross-validation sources. Outcomes that
// failed to parse become exclusions.
func Sources(outcomes []engine.Outcome) ([]crossref.Source, []crossref.Exclusion) {
	var (
		sources  []crossref.Source
		excluded []crossref.Exclusion
	)
	for _, out := range outcomes {
		if out.Err != nil || out.Artifact == nil {
			reason := "not parsed"
			if out.Err != nil {
				reason = out.Err.Error()
			}
			excluded = append(excluded, crossref.Exclusion{Path: out.Path, Reason: reason})
			continue
		}
		sources = append(sources, &Source{
			artifact: out.Artifact,
			extraction: &identifiers.Extraction{
				Definitions: out.Result.Definitions,
				References:  out.Result.References,
			},
		})
	}
	return sources, excluded
}
