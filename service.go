package docmark

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/engine"
	"github.com/goliatone/go-docmark/internal/history"
	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/logging/console"
	"github.com/goliatone/go-docmark/internal/logging/gologger"
	"github.com/goliatone/go-docmark/internal/project"
	"github.com/goliatone/go-docmark/internal/templates"
	"github.com/goliatone/go-docmark/internal/workspace"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// Service bundles the configured validation operations used by the CLI.
type Service struct {
	cfg          Config
	provider     interfaces.LoggerProvider
	logger       interfaces.Logger
	history      history.Repository
	closeHistory func() error
	codeTraces   []string
	openFS       func(root string) fs.FS
	customFS     bool
}

// Option customizes a Service.
type Option func(*Service)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(s *Service) {
		if provider != nil {
			s.provider = provider
		}
	}
}

// WithHistory overrides the repository opened from Config.History.
func WithHistory(repo history.Repository) Option {
	return func(s *Service) {
		if repo != nil {
			s.history = repo
		}
	}
}

// WithCodeTraces enables the to_code check on project runs.
func WithCodeTraces(ids []string) Option {
	return func(s *Service) {
		s.codeTraces = append([]string{}, ids...)
	}
}

// WithFS replaces os.DirFS when resolving project roots.
func WithFS(open func(root string) fs.FS) Option {
	return func(s *Service) {
		if open != nil {
			s.openFS, s.customFS = open, true
		}
	}
}

// New validates cfg and wires the logger provider and history store.
func New(cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		cfg:    cfg,
		openFS: func(root string) fs.FS { return os.DirFS(root) },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.provider == nil {
		provider, err := newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		s.provider = provider
	}
	s.logger = logging.RootLogger(s.provider)

	if s.history == nil && cfg.History.Enabled {
		repo, closeFn, err := history.Open(context.Background(), cfg.History.Driver, cfg.History.DSN)
		if err != nil {
			return nil, err
		}
		s.history, s.closeHistory = repo, closeFn
	}
	return s, nil
}

func newLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger", "go-logger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	case "", "console":
		opts := console.Options{Color: true}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Provider)
	}
}

// Config returns the configuration the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

// History returns the run store, nil when history is disabled.
func (s *Service) History() history.Repository {
	return s.history
}

// LoggerProvider exposes the provider used by the service.
func (s *Service) LoggerProvider() interfaces.LoggerProvider {
	return s.provider
}

// Close releases the history connection when one was opened.
func (s *Service) Close() error {
	if s.closeHistory == nil {
		return nil
	}
	closeFn := s.closeHistory
	s.closeHistory = nil
	return closeFn()
}

func (s *Service) parseOptions(path string) templates.Options {
	return templates.Options{Prefix: s.cfg.Markers.Prefix, Path: path}
}

// ValidateFile validates one artifact against one template. Parse and IO
// failures are returned as errors; a FAIL result is not an error.
func (s *Service) ValidateFile(ctx context.Context, templatePath, artifactPath string) (ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return ValidationResult{}, err
	}
	tpl, tplIssues, err := templates.LoadTemplate(templatePath, s.parseOptions(templatePath))
	if err != nil {
		return ValidationResult{}, fmt.Errorf("template %s: %w", templatePath, err)
	}
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("artifact %s: %w", artifactPath, err)
	}
	text := string(data)
	art, _, err := templates.ParseArtifact(text, tpl, templates.Options{Path: artifactPath})
	if err != nil {
		return ValidationResult{}, fmt.Errorf("artifact %s: %w", artifactPath, err)
	}

	opts := engine.Options{FailOnWarnings: s.cfg.Validation.FailOnWarnings}
	res := engine.Validate(art, opts)
	res.Path = artifactPath

	var extra []Issue
	for _, issue := range tplIssues {
		if issue.Source == "" {
			issue.Source = templatePath
		}
		extra = append(extra, issue)
	}
	if declared := templates.DeclaredKind(text); declared != "" && !strings.EqualFold(declared, tpl.Kind) {
		mismatch := diagnostics.Warnf(diagnostics.CodeTemplateKindMismatched, 1, "",
			"artifact declares kind %s but is validated against template %s", declared, tpl.Kind)
		mismatch.Source = artifactPath
		extra = append(extra, mismatch)
	}
	if len(extra) > 0 {
		res.Issues = append(res.Issues, extra...)
		diagnostics.Sort(res.Issues)
		res.Status = statusOf(res.Issues, opts)
	}

	logging.WithArtifactContext(s.logger, artifactPath, tpl.Kind).Info("artifact.validated",
		"status", res.Status,
		"issues", len(res.Issues),
		"definitions", len(res.Definitions),
		"references", len(res.References),
	)
	return res, nil
}

func statusOf(issues []Issue, opts engine.Options) Status {
	if opts.FailOnWarnings && diagnostics.Count(issues, diagnostics.SeverityWarning) > 0 {
		return StatusFail
	}
	return diagnostics.StatusOf(issues)
}

// ValidateProject discovers templates and artifacts under root and runs
// per-artifact and cross-document validation. An empty root falls back to
// Config.Workspace.Root.
func (s *Service) ValidateProject(ctx context.Context, root string) (*ProjectReport, error) {
	if strings.TrimSpace(root) == "" {
		root = s.cfg.Workspace.Root
	}
	if !s.customFS {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("workspace %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("workspace %s: %w", root, ErrNotDirectory)
		}
	}

	severity := diagnostics.SeverityError
	if s.cfg.OrphanIsWarning() {
		severity = diagnostics.SeverityWarning
	}
	ws := s.cfg.Workspace
	return project.Run(ctx, s.openFS(root), project.Options{
		Workspace: workspace.Config{
			Root:            root,
			TemplateDir:     ws.TemplateDir,
			TemplatePattern: ws.TemplatePattern,
			ArtifactPattern: ws.ArtifactPattern,
			Recursive:       ws.Recursive,
			Kinds:           ws.Kinds,
			Prefix:          s.cfg.Markers.Prefix,
		},
		ExternalNamespaces: s.cfg.Validation.ExternalNamespaces,
		OrphanSeverity:     severity,
		Workers:            s.cfg.Validation.Workers,
		FailOnWarnings:     s.cfg.Validation.FailOnWarnings,
		CodeTraces:         s.codeTraces,
		History:            s.history,
		Provider:           s.provider,
	})
}

// ErrNotDirectory is returned when a project root is a regular file.
var ErrNotDirectory = errors.New("docmark: workspace root is not a directory")

// LintTemplate parses a template on its own and reports header and marker
// findings.
func (s *Service) LintTemplate(ctx context.Context, path string) (*Template, []Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	tpl, issues, err := templates.LoadTemplate(path, s.parseOptions(path))
	if err != nil {
		return nil, nil, fmt.Errorf("template %s: %w", path, err)
	}
	for i := range issues {
		if issues[i].Source == "" {
			issues[i].Source = path
		}
	}
	s.logger.Info("template.linted", "path", path, "kind", tpl.Kind, "issues", len(issues))
	return tpl, issues, nil
}
