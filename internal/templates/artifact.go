package templates

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/marker"
)

// ErrTemplateRequired is returned when an artifact is parsed without a template.
var ErrTemplateRequired = errors.New("artifact: template is required")

// Artifact is a concrete document bound to the template it is validated against.
type Artifact struct {
	Path     string
	Template *Template

	blocks []*marker.Block
	lines  []string
	issues []diagnostics.Issue
}

// Blocks returns the top-level artifact blocks. Callers must not mutate them.
func (a *Artifact) Blocks() []*marker.Block {
	if a == nil {
		return nil
	}
	return a.blocks
}

// ParseIssues returns the line-level issues found while parsing.
func (a *Artifact) ParseIssues() []diagnostics.Issue {
	if a == nil {
		return nil
	}
	return append([]diagnostics.Issue(nil), a.issues...)
}

// Line returns the text of a 1-based line number.
func (a *Artifact) Line(n int) string {
	if a == nil || n < 1 || n > len(a.lines) {
		return ""
	}
	return a.lines[n-1]
}

// ParseArtifact parses text with the block parser. No metadata header is
// required; a leading frontmatter block is inert content.
func ParseArtifact(text string, tpl *Template, opts Options) (*Artifact, []diagnostics.Issue, error) {
	if tpl == nil {
		return nil, nil, ErrTemplateRequired
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = tpl.Prefix
	}

	doc, err := marker.Parse(text, marker.Options{Prefix: prefix})
	issues := diagnostics.WithSource(doc.Issues, opts.Path)
	if err != nil {
		return nil, issues, err
	}
	diagnostics.Sort(issues)
	return &Artifact{
		Path:     opts.Path,
		Template: tpl,
		blocks:   doc.Blocks,
		lines:    doc.Stream.Lines,
		issues:   issues,
	}, issues, nil
}

// LoadArtifact reads and parses an artifact file.
func LoadArtifact(path string, tpl *Template, opts Options) (*Artifact, []diagnostics.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("artifact load %s: %w", path, err)
	}
	if opts.Path == "" {
		opts.Path = path
	}
	return ParseArtifact(string(data), tpl, opts)
}

type artifactEnvelope struct {
	Kind string `yaml:"kind"`
}

// DeclaredKind returns the `kind` field of an artifact's optional
// frontmatter, or "" when there is none.
func DeclaredKind(text string) string {
	var env artifactEnvelope
	if _, err := frontmatter.Parse(strings.NewReader(text), &env); err != nil {
		return ""
	}
	return strings.TrimSpace(env.Kind)
}
