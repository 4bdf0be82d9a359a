package checkcmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-docmark/internal/commands"
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/engine"
	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/marker"
	"github.com/goliatone/go-docmark/internal/project"
	"github.com/goliatone/go-docmark/internal/templates"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// Service is the validation surface the handlers drive.
type Service interface {
	ValidateFile(ctx context.Context, templatePath, artifactPath string) (engine.Result, error)
	ValidateProject(ctx context.Context, root string) (*project.Report, error)
	LintTemplate(ctx context.Context, templatePath string) (*templates.Template, []diagnostics.Issue, error)
}

var (
	_ command.Commander[ValidateArtifactCommand] = (*ValidateArtifactHandler)(nil)
	_ command.Commander[CheckProjectCommand]     = (*CheckProjectHandler)(nil)
	_ command.Commander[LintTemplateCommand]     = (*LintTemplateHandler)(nil)
)

// ErrServiceRequired is returned when a handler is built without a service.
var ErrServiceRequired = errors.New("check command: service is required")

// ValidateArtifactHandler runs single-artifact validation.
type ValidateArtifactHandler struct {
	inner *commands.Handler[ValidateArtifactCommand]
}

// NewValidateArtifactHandler binds the handler to service.
func NewValidateArtifactHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[ValidateArtifactCommand]) *ValidateArtifactHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ValidateArtifactCommand) error {
		if service == nil {
			return ErrServiceRequired
		}
		res, err := service.ValidateFile(ctx, msg.TemplatePath, msg.ArtifactPath)
		if err != nil {
			return tagError(err, "artifact could not be validated")
		}
		logging.WithFields(baseLogger, map[string]any{
			"status":      string(res.Status),
			"issue_count": len(res.Issues),
		}).Info("check.command.validate_artifact.completed")
		if msg.ResultCallback != nil {
			msg.ResultCallback(res)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ValidateArtifactCommand]{
		commands.WithLogger[ValidateArtifactCommand](baseLogger),
		commands.WithOperation[ValidateArtifactCommand]("check.validate_artifact"),
		commands.WithMessageFields(func(msg ValidateArtifactCommand) map[string]any {
			return map[string]any{
				"template_path": msg.TemplatePath,
				"artifact_path": msg.ArtifactPath,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ValidateArtifactCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ValidateArtifactHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ValidateArtifactCommand].
func (h *ValidateArtifactHandler) Execute(ctx context.Context, msg ValidateArtifactCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CheckProjectHandler runs a whole-workspace check.
type CheckProjectHandler struct {
	inner *commands.Handler[CheckProjectCommand]
}

// NewCheckProjectHandler binds the handler to service.
func NewCheckProjectHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[CheckProjectCommand]) *CheckProjectHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CheckProjectCommand) error {
		if service == nil {
			return ErrServiceRequired
		}
		report, err := service.ValidateProject(ctx, msg.Root)
		if err != nil {
			return tagError(err, "project could not be checked")
		}
		logging.WithFields(baseLogger, map[string]any{
			"run_id":    report.RunID,
			"status":    string(report.Status()),
			"artifacts": len(report.Artifacts),
			"orphaned":  len(report.Crossref.Orphaned),
		}).Info("check.command.project.completed")
		if msg.ResultCallback != nil {
			msg.ResultCallback(report)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CheckProjectCommand]{
		commands.WithLogger[CheckProjectCommand](baseLogger),
		commands.WithOperation[CheckProjectCommand]("check.project"),
		commands.WithMessageFields(func(msg CheckProjectCommand) map[string]any {
			return map[string]any{"root": msg.Root}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CheckProjectCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CheckProjectHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CheckProjectCommand].
func (h *CheckProjectHandler) Execute(ctx context.Context, msg CheckProjectCommand) error {
	return h.inner.Execute(ctx, msg)
}

// LintTemplateHandler parses a template on its own.
type LintTemplateHandler struct {
	inner *commands.Handler[LintTemplateCommand]
}

// NewLintTemplateHandler binds the handler to service.
func NewLintTemplateHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[LintTemplateCommand]) *LintTemplateHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg LintTemplateCommand) error {
		if service == nil {
			return ErrServiceRequired
		}
		tpl, issues, err := service.LintTemplate(ctx, msg.TemplatePath)
		if err != nil {
			return tagError(err, "template could not be parsed")
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(TemplateLint{Template: tpl, Issues: issues})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[LintTemplateCommand]{
		commands.WithLogger[LintTemplateCommand](baseLogger),
		commands.WithOperation[LintTemplateCommand]("check.lint_template"),
		commands.WithMessageFields(func(msg LintTemplateCommand) map[string]any {
			return map[string]any{"template_path": msg.TemplatePath}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &LintTemplateHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[LintTemplateCommand].
func (h *LintTemplateHandler) Execute(ctx context.Context, msg LintTemplateCommand) error {
	return h.inner.Execute(ctx, msg)
}

// tagError keeps context errors untouched so the handler can classify them.
func tagError(err error, message string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if IsParseFailure(err) {
		return commands.ParseError(err, message)
	}
	return commands.WorkspaceError(err, message)
}

// IsParseFailure reports whether err comes from a malformed template or
// artifact rather than from the filesystem.
func IsParseFailure(err error) bool {
	var parseErr *marker.ParseError
	return errors.As(err, &parseErr) ||
		errors.Is(err, templates.ErrHeaderMissing) ||
		errors.Is(err, templates.ErrHeaderInvalid)
}
