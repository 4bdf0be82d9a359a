package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-docmark"
	checkcmd "github.com/goliatone/go-docmark/internal/commands/check"
	"github.com/goliatone/go-docmark/internal/history"
	"github.com/goliatone/go-docmark/internal/identifiers"
	"github.com/goliatone/go-docmark/internal/printer"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// Exit codes: 0 when everything passes, 1 when validation fails or a
// document cannot be parsed, 2 for usage, config and IO errors.
const (
	ExitPass  = 0
	ExitFail  = 1
	ExitUsage = 2
)

// DefaultConfigFile is picked up from the working directory when --config
// is not given.
const DefaultConfigFile = "docmark.yaml"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type service interface {
	checkcmd.Service
	History() history.Repository
	LoggerProvider() interfaces.LoggerProvider
	Close() error
}

var serviceBuilder = func(cfg docmark.Config, opts ...docmark.Option) (service, error) {
	svc, err := docmark.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// SetVersionInfo sets the version reported by --version.
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

type rootOptions struct {
	configPath     string
	prefix         string
	jsonOutput     bool
	failOnWarnings bool
	workers        int
	external       []string
	historyDB      string
	logLevel       string
	orphans        string

	out    io.Writer
	errOut io.Writer
}

// NewRootCommand builds the command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "docmark",
		Short: "Validate marker-annotated Markdown against templates",
		Long: `docmark checks Markdown artifacts against templates built from typed
HTML-comment markers, and cross-checks identifier definitions and
references across a workspace.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors:      true,
		SilenceUsage:       true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file (defaults to ./"+DefaultConfigFile+" when present)")
	flags.StringVar(&opts.prefix, "prefix", "", "Marker prefix, e.g. cpt")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	flags.BoolVar(&opts.failOnWarnings, "fail-on-warnings", false, "Treat warnings as failures")
	flags.IntVar(&opts.workers, "workers", 0, "Concurrent artifact workers (0 uses every CPU)")
	flags.StringSliceVar(&opts.external, "external", nil, "External identifier namespaces exempt from orphan checks")
	flags.StringVar(&opts.historyDB, "history-db", "", "Record runs in this SQLite database")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn or error")

	root.AddCommand(
		newValidateCommand(opts),
		newCheckCommand(opts),
		newTemplateCommand(opts),
		newHistoryCommand(opts),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string, out, errOut io.Writer) int {
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	err := root.Execute()
	code := exitCode(err)
	if err != nil && !isSilent(err) {
		p := printer.NewWithWriters(out, errOut, false, !color.NoColor)
		_ = p.Error(errorTitle(code), explain(err), nil)
	}
	return code
}

// explain adds the underlying cause when a wrapper hides it.
func explain(err error) string {
	msg := err.Error()
	if cause := errors.Unwrap(err); cause != nil && !strings.Contains(msg, cause.Error()) {
		return msg + ": " + cause.Error()
	}
	return msg
}

func (o *rootOptions) printer() *printer.Printer {
	return printer.NewWithWriters(o.out, o.errOut, o.jsonOutput, !color.NoColor)
}

func (o *rootOptions) loadConfig(cmd *cobra.Command) (docmark.Config, error) {
	cfg := docmark.DefaultConfig()
	fromFile := false
	switch {
	case o.configPath != "":
		loaded, err := docmark.LoadConfig(o.configPath)
		if err != nil {
			return cfg, usageError(err)
		}
		cfg, fromFile = loaded, true
	default:
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			loaded, err := docmark.LoadConfig(DefaultConfigFile)
			if err != nil {
				return cfg, usageError(err)
			}
			cfg, fromFile = loaded, true
		}
	}

	flags := cmd.Flags()
	if flags.Changed("prefix") {
		cfg.Markers.Prefix = o.prefix
	}
	if flags.Changed("fail-on-warnings") {
		cfg.Validation.FailOnWarnings = o.failOnWarnings
	}
	if flags.Changed("workers") {
		cfg.Validation.Workers = o.workers
	}
	if flags.Changed("external") {
		cfg.Validation.ExternalNamespaces = o.external
	}
	if flags.Changed("orphans") {
		cfg.Validation.OrphanSeverity = o.orphans
	}
	if flags.Changed("history-db") {
		cfg.History = docmark.HistoryConfig{Enabled: true, Driver: "sqlite", DSN: o.historyDB}
	}
	switch {
	case flags.Changed("log-level"):
		cfg.Logging.Level = o.logLevel
	case !fromFile:
		cfg.Logging.Level = "warn"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, usageError(err)
	}
	return cfg, nil
}

func (o *rootOptions) openService(cmd *cobra.Command, extra ...docmark.Option) (service, docmark.Config, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	svc, err := serviceBuilder(cfg, extra...)
	if err != nil {
		return nil, cfg, usageError(err)
	}
	return svc, cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// readTraces loads identifiers found in code, one or more per line.
// Tokens that are not identifiers are skipped.
func readTraces(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, usageError(fmt.Errorf("traces: %w", err))
	}
	defer file.Close()

	ids := []string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		for _, token := range strings.Fields(scanner.Text()) {
			token = strings.Trim(token, "`'\",;()[]")
			if identifiers.Valid(token) {
				ids = append(ids, token)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, usageError(fmt.Errorf("traces: %w", err))
	}
	return ids, nil
}

func errorTitle(code int) string {
	if code == ExitFail {
		return "Validation failed"
	}
	return "docmark error"
}

var errValidationFailed = errors.New("validation failed")
