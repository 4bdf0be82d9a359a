package templates

import (
	"fmt"
	"os"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/marker"
)

// Options configure template and artifact parsing.
type Options struct {
	// Prefix restricts recognised markers to one namespace. Artifacts
	// inherit the template prefix when empty.
	Prefix string
	// Path labels the document in issues and results.
	Path string
}

// Template is the structural contract for one artifact kind.
type Template struct {
	Kind                 string
	Version              Version
	UnknownSectionPolicy Policy
	Description          string
	Path                 string
	Prefix               string

	blocks []*marker.Block
}

// Blocks returns the top-level template blocks. Callers must not mutate them.
func (t *Template) Blocks() []*marker.Block {
	if t == nil {
		return nil
	}
	return t.blocks
}

// Find returns the first template block with key at any depth.
func (t *Template) Find(key marker.Key) *marker.Block {
	var found *marker.Block
	marker.Walk(t.Blocks(), func(b *marker.Block) bool {
		if found != nil {
			return false
		}
		if b.Key() == key {
			found = b
			return false
		}
		return true
	})
	return found
}

// ParseTemplate splits the metadata header from the body and parses the
// body. A missing or invalid header is fatal; header warnings and marker
// issues are returned alongside the template.
func ParseTemplate(text string, opts Options) (*Template, []diagnostics.Issue, error) {
	raw, body, headerLines, err := splitHeader(text)
	if err != nil {
		return nil, nil, err
	}

	header, issues, err := decodeHeader(raw, headerLines)
	if err != nil {
		return nil, nil, err
	}

	doc, err := marker.Parse(body, marker.Options{Prefix: opts.Prefix, LineOffset: headerLines})
	issues = append(issues, doc.Issues...)
	if err != nil {
		return nil, diagnostics.WithSource(issues, opts.Path), fmt.Errorf("template %s: %w", header.Kind, err)
	}

	diagnostics.Sort(issues)
	return &Template{
		Kind:                 header.Kind,
		Version:              header.Version,
		UnknownSectionPolicy: header.Policy,
		Description:          header.Description,
		Path:                 opts.Path,
		Prefix:               opts.Prefix,
		blocks:               doc.Blocks,
	}, diagnostics.WithSource(issues, opts.Path), nil
}

// LoadTemplate reads and parses a template file.
func LoadTemplate(path string, opts Options) (*Template, []diagnostics.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("template load %s: %w", path, err)
	}
	if opts.Path == "" {
		opts.Path = path
	}
	return ParseTemplate(string(data), opts)
}
