package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

var errHistoryDisabled = errors.New("run history is disabled; pass --history-db or set history.enabled in the config")

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [ROOT]",
		Short: "List recorded check runs for a workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := opts.openService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			repo := svc.History()
			if repo == nil {
				return usageError(errHistoryDisabled)
			}
			root := cfg.Workspace.Root
			if len(args) == 1 {
				root = args[0]
			}
			records, err := repo.List(commandContext(cmd), root, limit)
			if err != nil {
				return err
			}
			if err := opts.printer().Runs(records); err != nil {
				return usageError(err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show (0 for all)")
	return cmd
}
