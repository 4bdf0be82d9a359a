package checkcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/engine"
	"github.com/goliatone/go-docmark/internal/project"
	"github.com/goliatone/go-docmark/internal/templates"
)

const (
	validateArtifactMessageType = "docmark.check.validate_artifact"
	checkProjectMessageType     = "docmark.check.project"
	lintTemplateMessageType     = "docmark.check.lint_template"
)

func requiredPath(code, message string) validation.Rule {
	return validation.By(func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, message)
		}
		return nil
	})
}

// ValidateArtifactCommand validates one artifact file against a template file.
type ValidateArtifactCommand struct {
	TemplatePath string `json:"template_path"`
	ArtifactPath string `json:"artifact_path"`
	// ResultCallback receives the validation result when parsing succeeded.
	ResultCallback func(engine.Result) `json:"-"`
}

// Type implements command.Message.
func (ValidateArtifactCommand) Type() string { return validateArtifactMessageType }

// Validate ensures both paths are present.
func (cmd ValidateArtifactCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.TemplatePath, validation.Required,
			requiredPath("docmark.check.validate_artifact.template_required", "template path is required")),
		validation.Field(&cmd.ArtifactPath, validation.Required,
			requiredPath("docmark.check.validate_artifact.artifact_required", "artifact path is required")),
	)
}

// CheckProjectCommand validates every artifact under Root and cross-checks
// their identifiers.
type CheckProjectCommand struct {
	Root           string                 `json:"root"`
	ResultCallback func(*project.Report) `json:"-"`
}

// Type implements command.Message.
func (CheckProjectCommand) Type() string { return checkProjectMessageType }

// Validate ensures a root directory is present.
func (cmd CheckProjectCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Root, validation.Required,
			requiredPath("docmark.check.project.root_required", "root directory is required")),
	)
}

// TemplateLint is the outcome of LintTemplateCommand.
type TemplateLint struct {
	Template *templates.Template
	Issues   []diagnostics.Issue
}

// LintTemplateCommand parses a template and reports its header and marker issues.
type LintTemplateCommand struct {
	TemplatePath   string             `json:"template_path"`
	ResultCallback func(TemplateLint) `json:"-"`
}

// Type implements command.Message.
func (LintTemplateCommand) Type() string { return lintTemplateMessageType }

// Validate ensures the template path is present.
func (cmd LintTemplateCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.TemplatePath, validation.Required,
			requiredPath("docmark.check.lint_template.template_required", "template path is required")),
	)
}
