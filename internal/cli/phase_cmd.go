package cli

import (
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/cli/formatter"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newPhaseCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Manage project phases",
		Long: `Manage project phases.

Phases are referenced as CODE#seq (for example KIS01#2) or by id.`,
	}

	cmd.AddCommand(
		newPhaseAddCmd(a),
		newPhaseListCmd(a),
		newPhaseShowCmd(a),
		newPhaseSummaryCmd(a),
		newPhaseRecalcCmd(a),
		newPhaseRemoveCmd(a),
	)

	return cmd
}

func newPhaseAddCmd(a *App) *cobra.Command {
	var (
		name, status, start, end                                        string
		total, materials, labour, equipment, subcontractors, contingency string
		dependsOn                                                        []string
	)

	cmd := &cobra.Command{
		Use:   "add <project>",
		Short: "Add a phase to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := a.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}

			var alloc domain.BudgetAllocation
			for _, f := range []struct {
				flag string
				raw  string
				dst  *decimal.Decimal
			}{
				{"budget", total, &alloc.Total},
				{"materials", materials, &alloc.Materials},
				{"labour", labour, &alloc.Labour},
				{"equipment", equipment, &alloc.Equipment},
				{"subcontractors", subcontractors, &alloc.Subcontractors},
				{"contingency", contingency, &alloc.Contingency},
			} {
				if *f.dst, err = amountOrZero(cmd, f.flag, f.raw); err != nil {
					return err
				}
			}

			startDate, err := optDate("start", start)
			if err != nil {
				return err
			}
			endDate, err := optDate("end", end)
			if err != nil {
				return err
			}
			deps, err := resolvePhaseIDs(ctx, a, project, dependsOn)
			if err != nil {
				return err
			}

			p, err := a.Phases.Create(ctx, app.CreatePhaseRequest{
				ProjectID:      project.ID,
				Name:           name,
				Status:         domain.PhaseStatus(status),
				Allocation:     alloc,
				DependsOn:      deps,
				StartDate:      startDate,
				PlannedEndDate: endDate,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added phase %s#%d %s with allocation %s\n",
				project.Code, p.Sequence, p.Name, formatter.Money(p.Allocation.Total))
			if p.CanStartAfter != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Can start after %s\n", formatter.HumanDate(*p.CanStartAfter))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Phase name")
	cmd.Flags().StringVar(&status, "status", "", "not_started, in_progress, on_hold or completed")
	cmd.Flags().StringVar(&total, "budget", "", "Allocation total")
	cmd.Flags().StringVar(&materials, "materials", "", "Materials share")
	cmd.Flags().StringVar(&labour, "labour", "", "Labour share")
	cmd.Flags().StringVar(&equipment, "equipment", "", "Equipment share")
	cmd.Flags().StringVar(&subcontractors, "subcontractors", "", "Subcontractors share")
	cmd.Flags().StringVar(&contingency, "contingency", "", "Contingency share")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Planned end date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&dependsOn, "depends-on", nil, "Phases this one waits for (#seq, CODE#seq or id)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPhaseListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project>",
		Short: "List the phases of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := a.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			phases, err := a.Phases.ListByProject(ctx, project.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPhaseList(project, phases))
			return nil
		},
	}
}

func newPhaseShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <phase>",
		Short: "Show a phase's allocation and stored figures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolvePhase(ctx, a, args[0])
			if err != nil {
				return err
			}
			siblings, err := a.Phases.ListByProject(ctx, p.ProjectID)
			if err != nil {
				return err
			}
			byID := make(map[string]*domain.Phase, len(siblings))
			for _, s := range siblings {
				byID[s.ID] = s
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPhaseDetail(p, byID))
			return nil
		},
	}
}

func newPhaseSummaryCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <phase>",
		Short: "Compute a phase's financial summary from current spend",
		Long: `Compute a phase's financial summary from current spend.

The summary is derived on demand and is not stored; use "phase recalc" to
persist it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolvePhase(ctx, a, args[0])
			if err != nil {
				return err
			}
			summary, err := a.Summary.GetPhaseFinancialSummary(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSummary(p.Label(), summary))
			return nil
		},
	}
}

func newPhaseRecalcCmd(a *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "recalc [phase]",
		Short: "Recalculate and store phase spending",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if projectRef != "" {
				project, err := a.Projects.Resolve(ctx, projectRef)
				if err != nil {
					return err
				}
				summaries, err := a.Recalc.RecalculateProject(ctx, project.ID)
				if err != nil {
					return err
				}
				labels, err := phaseLabels(ctx, a, project.ID)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatRecalculated(labels, summaries))
				return nil
			}

			if len(args) == 0 {
				return app.InvalidInput("give a phase or --project")
			}
			p, err := resolvePhase(ctx, a, args[0])
			if err != nil {
				return err
			}
			summary, err := a.Recalc.RecalculatePhase(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatSummary(p.Label(), summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Recalculate every phase of this project")
	return cmd
}

func newPhaseRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <phase>",
		Short: "Soft-delete a phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolvePhase(ctx, a, args[0])
			if err != nil {
				return err
			}
			if err := a.Phases.Delete(ctx, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed phase %s\n", p.Label())
			return nil
		},
	}
}
