package cli

import (
	"fmt"
	"strings"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/cli/formatter"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/spf13/cobra"
)

func newReallocCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "realloc",
		Aliases: []string{"reallocation"},
		Short:   "Request, approve and review budget reallocations",
	}

	cmd.AddCommand(
		newReallocRequestCmd(a),
		newReallocApproveCmd(a),
		newReallocRejectCmd(a),
		newReallocListCmd(a),
		newReallocShowCmd(a),
	)

	return cmd
}

// inferReallocationType picks the type from which sides are given when
// --type is omitted.
func inferReallocationType(explicit, from, to string) domain.ReallocationType {
	if explicit != "" {
		return domain.ReallocationType(strings.ToUpper(strings.ReplaceAll(explicit, "-", "_")))
	}
	switch {
	case from != "" && to != "":
		return domain.PhaseToPhase
	case to != "":
		return domain.ProjectToPhase
	default:
		return domain.PhaseToProject
	}
}

func newReallocRequestCmd(a *App) *cobra.Command {
	var typ, from, to, amount, reason, by string

	cmd := &cobra.Command{
		Use:   "request <project>",
		Short: "Create a PENDING reallocation request",
		Long: `Create a PENDING reallocation request.

Budgets are not checked until approval. Without --type the type follows from
the sides given: --from and --to move between phases, --to alone draws from
the project's unallocated budget, --from alone returns budget to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := a.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			amt, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			req := app.CreateReallocationRequest{
				ProjectID:   project.ID,
				Type:        inferReallocationType(typ, from, to),
				Amount:      amt,
				Reason:      reason,
				RequestedBy: by,
			}
			if from != "" {
				ids, err := resolvePhaseIDs(ctx, a, project, []string{from})
				if err != nil {
					return err
				}
				req.FromPhaseID = &ids[0]
			}
			if to != "" {
				ids, err := resolvePhaseIDs(ctx, a, project, []string{to})
				if err != nil {
					return err
				}
				req.ToPhaseID = &ids[0]
			}

			r, err := a.Reallocations.Create(ctx, req)
			if err != nil {
				return err
			}
			labels, err := phaseLabels(ctx, a, project.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requested %s %s (%s)\nID: %s\n",
				formatter.Money(r.Amount), labels.Route(r), r.Type, r.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "PHASE_TO_PHASE, PROJECT_TO_PHASE or PHASE_TO_PROJECT")
	cmd.Flags().StringVar(&from, "from", "", "Source phase (#seq, CODE#seq or id)")
	cmd.Flags().StringVar(&to, "to", "", "Target phase (#seq, CODE#seq or id)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to move")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the money is needed")
	cmd.Flags().StringVar(&by, "by", "", "Requesting user")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}

func newReallocApproveCmd(a *App) *cobra.Command {
	var by, notes string
	var yes bool

	cmd := &cobra.Command{
		Use:   "approve <request-id>",
		Short: "Approve and execute a pending reallocation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := a.Reallocations.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			labels, err := phaseLabels(ctx, a, r.ProjectID)
			if err != nil {
				return err
			}

			if !yes {
				if !a.interactive() {
					return app.InvalidInput("approval needs confirmation: pass --yes when not on a terminal")
				}
				ok, err := a.confirm(fmt.Sprintf("Move %s %s?", formatter.Money(r.Amount), labels.Route(r)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			resp, err := a.Reallocations.Approve(ctx, app.ApproveReallocationRequest{
				RequestID:  r.ID,
				ApproverID: by,
				Notes:      notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatApproval(resp, labels))
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "Approving user")
	cmd.Flags().StringVar(&notes, "notes", "", "Approval notes")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}

func newReallocRejectCmd(a *App) *cobra.Command {
	var by, reason string

	cmd := &cobra.Command{
		Use:   "reject <request-id>",
		Short: "Reject a pending reallocation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.Reallocations.Reject(cmd.Context(), app.RejectReallocationRequest{
				RequestID:  args[0],
				RejectorID: by,
				Reason:     reason,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rejected request %s (%s)\n", formatter.TruncID(r.ID), formatter.Money(r.Amount))
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "Rejecting user")
	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}

func newReallocListCmd(a *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list <project>",
		Short: "List reallocation requests of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, err := a.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			req := app.ListReallocationsRequest{ProjectID: project.ID}
			if status != "" {
				s := domain.ReallocationStatus(strings.ToUpper(status))
				req.Status = &s
			}
			reqs, err := a.Reallocations.List(ctx, req)
			if err != nil {
				return err
			}
			labels, err := phaseLabels(ctx, a, project.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatReallocationList(reqs, labels))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only PENDING, EXECUTED or REJECTED requests")
	return cmd
}

func newReallocShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <request-id>",
		Short: "Show a request and its audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := a.Reallocations.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			trail, err := a.Reallocations.AuditTrail(ctx, r.ID)
			if err != nil {
				return err
			}
			labels, err := phaseLabels(ctx, a, r.ProjectID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatReallocationDetail(r, labels, trail))
			return nil
		},
	}
}
