package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrMarkerPrefixInvalid = errors.New("docmark config: marker prefix must be alphanumeric and start with a letter")
var ErrOrphanSeverityInvalid = errors.New("docmark config: orphan severity must be warn or error")
var ErrWorkersInvalid = errors.New("docmark config: workers must be zero or positive")
var ErrWorkspaceRootRequired = errors.New("docmark config: workspace root is required")
var ErrWorkspacePatternInvalid = errors.New("docmark config: workspace pattern is invalid")
var ErrLoggingProviderRequired = errors.New("docmark config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("docmark config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("docmark config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("docmark config: logging format is invalid")

// ErrHistoryDriverUnknown is returned when history is enabled with a driver
// other than memory, sqlite or postgres.
var ErrHistoryDriverUnknown = errors.New("docmark config: history driver is invalid")

// ErrHistoryDSNRequired guards the database-backed history drivers.
var ErrHistoryDSNRequired = errors.New("docmark config: history dsn is required for database drivers")

// Config aggregates the settings the CLI and the Service read.
// Zero values are filled by DefaultConfig; LoadFile overlays a YAML file on top.
type Config struct {
	Markers    MarkersConfig    `yaml:"markers"`
	Validation ValidationConfig `yaml:"validation"`
	Workspace  WorkspaceConfig  `yaml:"workspace"`
	Logging    LoggingConfig    `yaml:"logging"`
	History    HistoryConfig    `yaml:"history"`
}

// MarkersConfig controls the marker tokenizer. An empty prefix accepts any.
type MarkersConfig struct {
	Prefix string `yaml:"prefix"`
}

// ValidationConfig captures cross-document validation behaviour.
type ValidationConfig struct {
	ExternalNamespaces []string `yaml:"external_namespaces"`
	OrphanSeverity     string   `yaml:"orphan_severity"`
	Workers            int      `yaml:"workers"`
	FailOnWarnings     bool     `yaml:"fail_on_warnings"`
}

// WorkspaceConfig describes where templates and artifacts live.
type WorkspaceConfig struct {
	Root            string `yaml:"root"`
	TemplateDir     string `yaml:"template_dir"`
	TemplatePattern string `yaml:"template_pattern"`
	ArtifactPattern string `yaml:"artifact_pattern"`
	Recursive       bool   `yaml:"recursive"`
	// Kinds maps artifact path globs to template kinds for artifacts that do
	// not declare a kind in their frontmatter.
	Kinds map[string]string `yaml:"kinds"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// HistoryConfig selects the run history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Markers: MarkersConfig{
			Prefix: "cpt",
		},
		Validation: ValidationConfig{
			OrphanSeverity: "error",
		},
		Workspace: WorkspaceConfig{
			Root:            ".",
			TemplateDir:     "templates",
			TemplatePattern: "*.template.md",
			ArtifactPattern: "*.md",
			Recursive:       true,
			Kinds:           map[string]string{},
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		History: HistoryConfig{
			Driver: "memory",
		},
	}
}

// LoadFile reads a YAML config file over DefaultConfig and validates it.
func LoadFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("docmark config: read %s: %w", filename, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes over DefaultConfig and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("docmark config: decode: %w", err)
	}
	if cfg.Workspace.Kinds == nil {
		cfg.Workspace.Kinds = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if prefix := strings.TrimSpace(cfg.Markers.Prefix); prefix != "" && !isIdentifier(prefix) {
		return fmt.Errorf("%w: %q", ErrMarkerPrefixInvalid, prefix)
	}
	switch normalize(cfg.Validation.OrphanSeverity) {
	case "", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: %s", ErrOrphanSeverityInvalid, cfg.Validation.OrphanSeverity)
	}
	if cfg.Validation.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrWorkersInvalid, cfg.Validation.Workers)
	}
	if strings.TrimSpace(cfg.Workspace.Root) == "" {
		return ErrWorkspaceRootRequired
	}
	for _, pattern := range cfg.workspacePatterns() {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("%w: %q", ErrWorkspacePatternInvalid, pattern)
		}
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	if cfg.History.Enabled {
		driver := normalize(cfg.History.Driver)
		switch driver {
		case "", "memory":
		case "sqlite", "sqlite3", "postgres":
			if strings.TrimSpace(cfg.History.DSN) == "" {
				return fmt.Errorf("%w: %s", ErrHistoryDSNRequired, driver)
			}
		default:
			return fmt.Errorf("%w: %s", ErrHistoryDriverUnknown, driver)
		}
	}
	return nil
}

// OrphanIsWarning reports whether orphaned references are downgraded.
func (cfg Config) OrphanIsWarning() bool {
	switch normalize(cfg.Validation.OrphanSeverity) {
	case "warn", "warning":
		return true
	}
	return false
}

func (cfg Config) workspacePatterns() []string {
	patterns := []string{cfg.Workspace.TemplatePattern, cfg.Workspace.ArtifactPattern}
	for glob := range cfg.Workspace.Kinds {
		patterns = append(patterns, glob)
	}
	out := patterns[:0]
	for _, p := range patterns {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isIdentifier(value string) bool {
	for i, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_'):
		default:
			return false
		}
	}
	return true
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "text", "pretty":
		return true
	default:
		return false
	}
}
