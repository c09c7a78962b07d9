package cli

import (
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/cli/formatter"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/spf13/cobra"
)

func newSpendCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spend",
		Short: "Record material, expense, equipment and labour costs",
	}

	cmd.AddCommand(
		newSpendRecordCmd(a),
		newSpendStatusCmd(a),
		newSpendListCmd(a),
	)

	return cmd
}

func newSpendRecordCmd(a *App) *cobra.Command {
	var category, description, quantity, unitCost, status string

	cmd := &cobra.Command{
		Use:   "record <phase>",
		Short: "Record a cost against a phase",
		Long: `Record a cost against a phase.

Cost is quantity x unit cost: units of material, days of equipment hire or
hours of labour. Status decides how the cost counts: approved as actual,
committed as committed, pending as estimated. The phase summary is
recalculated before the command returns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolvePhase(ctx, a, args[0])
			if err != nil {
				return err
			}
			qty, err := parseAmount("qty", quantity)
			if err != nil {
				return err
			}
			unit, err := parseAmount("unit-cost", unitCost)
			if err != nil {
				return err
			}
			res, err := a.Spend.Record(ctx, app.RecordSpendRequest{
				PhaseID:     p.ID,
				Category:    domain.CostCategory(category),
				Description: description,
				Quantity:    qty,
				UnitCost:    unit,
				Status:      domain.SpendStatus(status),
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSpendResult(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "materials, expenses, equipment or labour")
	cmd.Flags().StringVar(&description, "desc", "", "Description")
	cmd.Flags().StringVar(&quantity, "qty", "1", "Quantity, days or hours")
	cmd.Flags().StringVar(&unitCost, "unit-cost", "", "Cost per unit, day or hour")
	cmd.Flags().StringVar(&status, "status", "", "pending, committed, approved or rejected (default pending)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("unit-cost")

	return cmd
}

func newSpendStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <entry-id> <status>",
		Short: "Move a spend entry to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.Spend.SetStatus(cmd.Context(), args[0], domain.SpendStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSpendResult(res))
			return nil
		},
	}
}

func newSpendListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <phase>",
		Short: "List the spend entries of a phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolvePhase(ctx, a, args[0])
			if err != nil {
				return err
			}
			entries, err := a.Spend.ListByPhase(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSpendList(entries))
			return nil
		},
	}
}
