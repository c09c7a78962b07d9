package cli

import (
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/cli/formatter"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/spf13/cobra"
)

func newCapitalCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capital",
		Short: "Track invested and used project capital",
	}

	cmd.AddCommand(
		newCapitalRecordCmd(a, "invest", "Record capital invested in a project", domain.CapitalInvestment),
		newCapitalRecordCmd(a, "use", "Record capital drawn by a project", domain.CapitalUsage),
		newCapitalCheckCmd(a),
		newCapitalListCmd(a),
	)

	return cmd
}

func newCapitalRecordCmd(a *App, use, short string, kind domain.CapitalKind) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   use + " <project> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := a.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			entry, err := a.Capital.Record(ctx, app.RecordCapitalRequest{
				ProjectID: project.ID,
				Kind:      kind,
				Amount:    amount,
				Note:      note,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s of %s for %s\n",
				entry.Kind, formatter.Money(entry.Amount), project.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Free-text note")
	return cmd
}

func newCapitalCheckCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check <project> <amount>",
		Short: "Check an amount against available capital",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := a.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			check, err := a.Capital.ValidateCapital(ctx, project.ID, amount)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCapitalCheck(check))
			return nil
		},
	}
}

func newCapitalListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project>",
		Short: "List a project's capital ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := a.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			entries, err := a.Capital.ListByProject(ctx, project.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCapitalEntries(entries))
			return nil
		},
	}
}
