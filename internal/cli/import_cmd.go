package cli

import (
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newImportCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <plan.toml>",
		Short: "Create a project and its phases from a TOML plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.Import.ImportProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImportResult(res))
			return nil
		},
	}
}
