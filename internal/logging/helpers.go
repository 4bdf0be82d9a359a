package logging

import (
	"maps"
	"strings"

	"github.com/goliatone/go-docmark/pkg/interfaces"
)

const (
	fieldRunID    = "run_id"
	fieldArtifact = "artifact_path"
	fieldTemplate = "template_kind"
	fieldRoot     = "workspace_root"
)

// WithFields attaches fields when the logger implements FieldsLogger and
// returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}
	return logger
}

// WithArtifactContext adds the artifact path and template kind. Empty
// values are skipped.
func WithArtifactContext(logger interfaces.Logger, path, templateKind string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldArtifact] = trimmed
	}
	if trimmed := strings.TrimSpace(templateKind); trimmed != "" {
		fields[fieldTemplate] = trimmed
	}
	return WithFields(logger, fields)
}

// WithWorkspace adds the workspace root.
func WithWorkspace(logger interfaces.Logger, root string) interfaces.Logger {
	if strings.TrimSpace(root) == "" {
		return logger
	}
	return WithFields(logger, map[string]any{fieldRoot: root})
}
