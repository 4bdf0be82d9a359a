package commands

import (
	"github.com/spf13/cobra"

	cmdsupport "github.com/goliatone/go-docmark/internal/commands"
	checkcmd "github.com/goliatone/go-docmark/internal/commands/check"
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/engine"
)

func newValidateCommand(opts *rootOptions) *cobra.Command {
	var templatePath string

	cmd := &cobra.Command{
		Use:   "validate --template TEMPLATE ARTIFACT",
		Short: "Validate one artifact against one template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := opts.openService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			var res engine.Result
			handler := checkcmd.NewValidateArtifactHandler(svc, cmdsupport.CommandLogger(svc.LoggerProvider(), "check"))
			err = handler.Execute(commandContext(cmd), checkcmd.ValidateArtifactCommand{
				TemplatePath:   templatePath,
				ArtifactPath:   args[0],
				ResultCallback: func(r engine.Result) { res = r },
			})
			if err != nil {
				return err
			}
			if err := opts.printer().ArtifactResult(res); err != nil {
				return usageError(err)
			}
			if res.Status != diagnostics.StatusPass {
				return failed()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template the artifact is validated against")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}
