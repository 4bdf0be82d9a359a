package commands

import (
	"github.com/spf13/cobra"

	cmdsupport "github.com/goliatone/go-docmark/internal/commands"
	checkcmd "github.com/goliatone/go-docmark/internal/commands/check"
	"github.com/goliatone/go-docmark/internal/diagnostics"
)

func newTemplateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Inspect templates",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "lint TEMPLATE...",
		Short: "Parse templates and report header and marker problems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := opts.openService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			handler := checkcmd.NewLintTemplateHandler(svc, cmdsupport.CommandLogger(svc.LoggerProvider(), "template"))
			p := opts.printer()
			pass := true
			for _, path := range args {
				var lint checkcmd.TemplateLint
				err := handler.Execute(commandContext(cmd), checkcmd.LintTemplateCommand{
					TemplatePath:   path,
					ResultCallback: func(l checkcmd.TemplateLint) { lint = l },
				})
				if err != nil {
					return err
				}
				if err := p.TemplateLint(path, lint.Template, lint.Issues); err != nil {
					return usageError(err)
				}
				if diagnostics.StatusOf(lint.Issues) != diagnostics.StatusPass {
					pass = false
				}
			}
			if !pass {
				return failed()
			}
			return nil
		},
	})
	return cmd
}
