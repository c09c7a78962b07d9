package cli

import (
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/cli/formatter"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(a),
		newProjectListCmd(a),
		newProjectShowCmd(a),
		newProjectTotalsCmd(a),
		newProjectRemoveCmd(a),
	)

	return cmd
}

func newProjectAddCmd(a *App) *cobra.Command {
	var code, name, status, total, materials, labour, contingency string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.CreateProjectRequest{
				Code:   code,
				Name:   name,
				Status: domain.ProjectStatus(status),
			}
			var err error
			if req.Total, err = optAmount(cmd, "budget", total); err != nil {
				return err
			}
			if req.Materials, err = optAmount(cmd, "materials", materials); err != nil {
				return err
			}
			if req.Labour, err = optAmount(cmd, "labour", labour); err != nil {
				return err
			}
			if req.Contingency, err = optAmount(cmd, "contingency", contingency); err != nil {
				return err
			}

			p, err := a.Projects.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s [%s] with budget %s\n",
				p.Name, p.Code, formatter.Money(p.Budget.Total))
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Project code (2-6 letters + 2-4 digits, e.g. TWR01)")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&status, "status", "", "planning, active, on_hold or completed (default active)")
	cmd.Flags().StringVar(&total, "budget", "", "Total budget")
	cmd.Flags().StringVar(&materials, "materials", "", "Materials share")
	cmd.Flags().StringVar(&labour, "labour", "", "Labour share")
	cmd.Flags().StringVar(&contingency, "contingency", "", "Contingency share")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCmd(a *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.Projects.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include deleted projects")
	return cmd
}

func newProjectShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <code|id>",
		Short: "Show a project and its phases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			phases, err := a.Phases.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectDetail(p, phases))
			return nil
		},
	}
}

func newProjectTotalsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "totals <code|id>",
		Short: "Roll phase figures up to the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			totals, err := a.Recalc.CalculateProjectTotals(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectTotals(p, totals))
			return nil
		},
	}
}

func newProjectRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <code|id>",
		Short: "Soft-delete a project and its phases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.Projects.Delete(ctx, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed project %s [%s]\n", p.Name, p.Code)
			return nil
		},
	}
}
