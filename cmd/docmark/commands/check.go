package commands

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-docmark"
	cmdsupport "github.com/goliatone/go-docmark/internal/commands"
	checkcmd "github.com/goliatone/go-docmark/internal/commands/check"
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/project"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	var tracesPath string

	cmd := &cobra.Command{
		Use:   "check [ROOT]",
		Short: "Validate every artifact in a workspace and cross-check identifiers",
		Long: `check discovers templates under the template directory, validates every
artifact against the template of its declared kind, then checks that
every identifier reference resolves to a definition.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []docmark.Option
			if tracesPath != "" {
				ids, err := readTraces(tracesPath)
				if err != nil {
					return err
				}
				extra = append(extra, docmark.WithCodeTraces(ids))
			}
			svc, cfg, err := opts.openService(cmd, extra...)
			if err != nil {
				return err
			}
			defer svc.Close()

			root := cfg.Workspace.Root
			if len(args) == 1 {
				root = args[0]
			}

			var report *project.Report
			handler := checkcmd.NewCheckProjectHandler(svc, cmdsupport.CommandLogger(svc.LoggerProvider(), "check"))
			err = handler.Execute(commandContext(cmd), checkcmd.CheckProjectCommand{
				Root:           root,
				ResultCallback: func(r *project.Report) { report = r },
			})
			if err != nil {
				return err
			}
			if err := opts.printer().ProjectReport(report); err != nil {
				return usageError(err)
			}
			if report == nil || report.Status() != diagnostics.StatusPass {
				return failed()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.orphans, "orphans", "", "Severity of orphaned references: warn or error")
	cmd.Flags().StringVar(&tracesPath, "traces", "", "File listing identifiers found in code; enables the to_code check")
	return cmd
}
