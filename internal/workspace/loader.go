// Package workspace discovers templates and artifacts on a filesystem and
// resolves which template each artifact is validated against.
package workspace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-docmark/internal/crossref"
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/identity"
	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/templates"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// ErrNoTemplates is returned when the template directory holds no template.
var ErrNoTemplates = errors.New("workspace: no templates found")

// Config configures discovery. Paths are slash-separated and relative to
// the filesystem root.
type Config struct {
	// Root labels the workspace in identifiers and logs.
	Root string
	// TemplateDir holds the templates (defaults to "templates").
	TemplateDir string
	// TemplatePattern selects template files (defaults to "*.template.md").
	TemplatePattern string
	// ArtifactPattern selects artifact files (defaults to "*.md").
	ArtifactPattern string
	Recursive       bool
	// Kinds maps artifact globs to template kinds. Frontmatter wins.
	Kinds map[string]string
	// Prefix is the marker prefix passed to the parser.
	Prefix string
	Logger interfaces.Logger
}

// Loader walks an fs.FS for templates and artifacts.
type Loader struct {
	fs              fs.FS
	root            string
	templateDir     string
	templatePattern string
	artifactPattern string
	recursive       bool
	kindGlobs       []kindGlob
	prefix          string
	logger          interfaces.Logger
}

type kindGlob struct {
	pattern string
	kind    string
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg Config) *Loader {
	templateDir := strings.Trim(path.Clean("/"+strings.TrimSpace(cfg.TemplateDir)), "/")
	if templateDir == "" {
		templateDir = "templates"
	}
	templatePattern := strings.TrimSpace(cfg.TemplatePattern)
	if templatePattern == "" {
		templatePattern = "*.template.md"
	}
	artifactPattern := strings.TrimSpace(cfg.ArtifactPattern)
	if artifactPattern == "" {
		artifactPattern = "*.md"
	}

	globs := make([]kindGlob, 0, len(cfg.Kinds))
	for pattern, kind := range cfg.Kinds {
		if strings.TrimSpace(pattern) == "" || strings.TrimSpace(kind) == "" {
			continue
		}
		globs = append(globs, kindGlob{pattern: pattern, kind: strings.TrimSpace(kind)})
	}
	// more specific (longer) globs first, then lexical, so resolution is stable
	sort.Slice(globs, func(i, j int) bool {
		if len(globs[i].pattern) != len(globs[j].pattern) {
			return len(globs[i].pattern) > len(globs[j].pattern)
		}
		return globs[i].pattern < globs[j].pattern
	})

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Loader{
		fs:              filesystem,
		root:            cfg.Root,
		templateDir:     templateDir,
		templatePattern: templatePattern,
		artifactPattern: artifactPattern,
		recursive:       cfg.Recursive,
		kindGlobs:       globs,
		prefix:          cfg.Prefix,
		logger:          logging.WithWorkspace(logger, cfg.Root),
	}
}

// Document is an artifact file read from the workspace.
type Document struct {
	ID       uuid.UUID
	Path     string
	Text     string
	Checksum string
	// Kind is the resolved template kind, empty when none could be found.
	Kind string
	// KindSource is "frontmatter" or "pattern".
	KindSource string
}

// Registry holds the parsed templates keyed by upper-cased kind.
type Registry struct {
	byKind map[string]*templates.Template
	kinds  []string
	// Issues are header warnings and marker issues from every template.
	Issues []diagnostics.Issue
	// Failed lists templates that could not be parsed.
	Failed []crossref.Exclusion
}

// Lookup returns the template for kind, case-insensitively.
func (r *Registry) Lookup(kind string) (*templates.Template, bool) {
	if r == nil {
		return nil, false
	}
	tpl, ok := r.byKind[normalizeKind(kind)]
	return tpl, ok
}

// Kinds lists the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.kinds...)
}

// LoadTemplates parses every template under the template directory. A
// template that fails to parse is recorded in Failed; the others load.
func (l *Loader) LoadTemplates(ctx context.Context) (*Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reg := &Registry{byKind: make(map[string]*templates.Template)}

	walkErr := fs.WalkDir(l.fs, l.templateDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != l.templateDir && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !matchesPattern(p, l.templatePattern) {
			return nil
		}

		data, err := fs.ReadFile(l.fs, p)
		if err != nil {
			return fmt.Errorf("workspace read %s: %w", p, err)
		}
		tpl, issues, err := templates.ParseTemplate(string(data), templates.Options{Prefix: l.prefix, Path: p})
		reg.Issues = append(reg.Issues, issues...)
		if err != nil {
			reg.Failed = append(reg.Failed, crossref.Exclusion{Path: p, Reason: err.Error()})
			l.logger.Warn("workspace.template.failed", "path", p, "error", err)
			return nil
		}
		kind := normalizeKind(tpl.Kind)
		if existing, ok := reg.byKind[kind]; ok {
			reason := fmt.Sprintf("template kind %s already provided by %s", tpl.Kind, existing.Path)
			reg.Failed = append(reg.Failed, crossref.Exclusion{Path: p, Reason: reason})
			l.logger.Warn("workspace.template.duplicate", "path", p, "kind", tpl.Kind)
			return nil
		}
		reg.byKind[kind] = tpl
		reg.kinds = append(reg.kinds, kind)
		l.logger.Debug("workspace.template.loaded", "path", p, "kind", tpl.Kind, "version", tpl.Version.String())
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("workspace templates %s: %w", l.templateDir, walkErr)
	}
	if len(reg.byKind) == 0 && len(reg.Failed) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTemplates, l.templateDir)
	}
	sort.Strings(reg.kinds)
	return reg, nil
}

// LoadArtifacts reads every artifact outside the template directory,
// sorted by path, and resolves its template kind.
func (l *Loader) LoadArtifacts(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []Document

	walkErr := fs.WalkDir(l.fs, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p == "." {
				return nil
			}
			if p == l.templateDir || strings.HasPrefix(d.Name(), ".") || !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !matchesPattern(p, l.artifactPattern) || matchesPattern(p, l.templatePattern) {
			return nil
		}

		doc, err := l.LoadFile(ctx, p)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("workspace artifacts: %w", walkErr)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// LoadFile reads one artifact and resolves its kind.
func (l *Loader) LoadFile(ctx context.Context, p string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	p = strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "./")
	data, err := fs.ReadFile(l.fs, p)
	if err != nil {
		return Document{}, fmt.Errorf("workspace read %s: %w", p, err)
	}
	sum := sha256.Sum256(data)
	doc := Document{
		ID:       identity.ArtifactUUID(l.root, p),
		Path:     p,
		Text:     string(data),
		Checksum: hex.EncodeToString(sum[:]),
	}
	doc.Kind, doc.KindSource = l.resolveKind(p, doc.Text)
	return doc, nil
}

func (l *Loader) resolveKind(p, text string) (string, string) {
	if kind := templates.DeclaredKind(text); kind != "" {
		return kind, "frontmatter"
	}
	for _, glob := range l.kindGlobs {
		if matchesPattern(p, glob.pattern) {
			return glob.kind, "pattern"
		}
	}
	return "", ""
}

// matchesPattern matches the base name for slash-free patterns and the
// whole path otherwise. "**/" segments are collapsed.
func matchesPattern(p, pattern string) bool {
	pattern = strings.ReplaceAll(pattern, "\\", "/")
	if strings.Contains(pattern, "**") {
		pattern = strings.ReplaceAll(pattern, "**/", "")
	}
	target := path.Base(p)
	if strings.Contains(pattern, "/") {
		target = p
	}
	ok, err := path.Match(pattern, target)
	return err == nil && ok
}

func normalizeKind(kind string) string {
	return strings.ToUpper(strings.TrimSpace(kind))
}
