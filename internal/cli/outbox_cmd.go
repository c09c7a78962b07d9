package cli

import (
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newOutboxCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and deliver stored spend events",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "drain",
		Short: "Deliver pending and failed spend events",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.Outbox.DispatchPending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDrainResult(res))
			return nil
		},
	})
	return cmd
}
