package workspace

import (
	"github.com/goliatone/go-docmark/internal/engine"
	"github.com/goliatone/go-docmark/internal/identifiers"
	"github.com/goliatone/go-docmark/internal/templates"
)

// Source adapts a parsed artifact to crossref.Source.
type Source struct {
	artifact   *templates.Artifact
	extraction *identifiers.Extraction
}

// NewSource extracts identifiers from artifact on demand.
func NewSource(artifact *templates.Artifact) *Source {
	return &Source{artifact: artifact}
}

func (s *Source) Name() string {
	if s == nil || s.artifact == nil {
		return ""
	}
	return s.artifact.Path
}

func (s *Source) Kind() string {
	if s == nil || s.artifact == nil || s.artifact.Template == nil {
		return ""
	}
	return s.artifact.Template.Kind
}

// Identifiers returns the extraction computed during validation when there
// is one.
func (s *Source) Identifiers() identifiers.Extraction {
	if s == nil {
		return identifiers.Extraction{}
	}
	if s.extraction != nil {
		return *s.extraction
	}
	return engine.Extract(s.artifact)
}
