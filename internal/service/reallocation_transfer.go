package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/finance"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"github.com/shopspring/decimal"
)

// transfer is a validated reallocation bound to freshly loaded records.
type transfer struct {
	request *domain.BudgetReallocationRequest
	project *domain.Project
	source  *domain.Phase
	target  *domain.Phase
}

// planTransfer loads the phases a request touches and checks that the
// giving side can afford the amount. Nothing is written.
func planTransfer(ctx context.Context, phases repository.PhaseRepo, project *domain.Project, r *domain.BudgetReallocationRequest) (*transfer, error) {
	t := &transfer{request: r, project: project}
	var err error

	switch r.Type {
	case domain.PhaseToPhase:
		if t.source, err = loadTransferPhase(ctx, phases, project, r.FromPhaseID, "source"); err != nil {
			return nil, err
		}
		if t.target, err = loadTransferPhase(ctx, phases, project, r.ToPhaseID, "target"); err != nil {
			return nil, err
		}
		if t.source.ID == t.target.ID {
			return nil, app.InconsistentData("reallocation %s names phase %s as both source and target", r.ID, t.source.ID)
		}
		if err := checkSource(t.source, r.Amount); err != nil {
			return nil, err
		}

	case domain.ProjectToPhase:
		if t.target, err = loadTransferPhase(ctx, phases, project, r.ToPhaseID, "target"); err != nil {
			return nil, err
		}
		live, err := phases.ListByProject(ctx, project.ID, false)
		if err != nil {
			return nil, fmt.Errorf("listing phases of project %s: %w", project.ID, err)
		}
		chk := finance.CheckProjectToPhase(project.Budget.Total, finance.TotalAllocations(live), r.Amount)
		if !chk.OK {
			what := fmt.Sprintf("project %s unallocated budget", project.DisplayID())
			if chk.Rule == finance.RuleProjectCeiling {
				unallocated := project.Budget.Total.Sub(finance.TotalAllocations(live))
				what = fmt.Sprintf("project %s budget ceiling after transfer (the project total also drops by the amount, so at most half of the %s unallocated can move)",
					project.DisplayID(), unallocated.StringFixed(2))
			}
			return nil, app.InsufficientBudget(what, chk.Requested, chk.Available)
		}

	case domain.PhaseToProject:
		if t.source, err = loadTransferPhase(ctx, phases, project, r.FromPhaseID, "source"); err != nil {
			return nil, err
		}
		if err := checkSource(t.source, r.Amount); err != nil {
			return nil, err
		}

	default:
		return nil, app.InconsistentData("reallocation %s has unknown type %q", r.ID, r.Type)
	}
	return t, nil
}

func loadTransferPhase(ctx context.Context, phases repository.PhaseRepo, project *domain.Project, ref *string, role string) (*domain.Phase, error) {
	if ref == nil || *ref == "" {
		return nil, app.InconsistentData("reallocation is missing its %s phase", role)
	}
	p, err := loadLivePhase(ctx, phases, *ref)
	if err != nil {
		return nil, err
	}
	if p.ProjectID != project.ID {
		return nil, app.InconsistentData("%s phase %s belongs to project %s, not %s",
			role, p.ID, p.ProjectID, project.ID)
	}
	return p, nil
}

func checkSource(p *domain.Phase, amount decimal.Decimal) error {
	chk := finance.CheckPhaseSource(p, amount)
	if !chk.OK {
		return app.InsufficientBudget(fmt.Sprintf("source phase %s available budget", p.Label()),
			chk.Requested, chk.Available)
	}
	return nil
}

// apply writes both sides of the transfer. It must run inside the same
// transaction as planTransfer so the checks and the writes see one state.
func (t *transfer) apply(ctx context.Context, phases repository.PhaseRepo, projects repository.ProjectRepo) error {
	amount := t.request.Amount
	switch t.request.Type {
	case domain.PhaseToPhase:
		if err := adjustAllocation(ctx, phases, t.source, amount.Neg()); err != nil {
			return err
		}
		return adjustAllocation(ctx, phases, t.target, amount)

	case domain.ProjectToPhase:
		if err := adjustAllocation(ctx, phases, t.target, amount); err != nil {
			return err
		}
		return adjustProjectBudget(ctx, projects, t.project, amount.Neg())

	case domain.PhaseToProject:
		if err := adjustAllocation(ctx, phases, t.source, amount.Neg()); err != nil {
			return err
		}
		return adjustProjectBudget(ctx, projects, t.project, amount)
	}
	return app.InconsistentData("reallocation %s has unknown type %q", t.request.ID, t.request.Type)
}

// phaseIDs lists the phases whose summaries the transfer invalidated.
func (t *transfer) phaseIDs() []string {
	var ids []string
	if t.source != nil {
		ids = append(ids, t.source.ID)
	}
	if t.target != nil {
		ids = append(ids, t.target.ID)
	}
	return ids
}

// adjustAllocation moves the phase ceiling by delta and recomputes remaining
// from the figures already on the record.
func adjustAllocation(ctx context.Context, phases repository.PhaseRepo, p *domain.Phase, delta decimal.Decimal) error {
	p.Allocation = p.Allocation.WithTotalDelta(delta)
	p.Financial.Remaining = finance.Remaining(p.Allocation.Total, p.Actual.Total, p.Financial.Committed)
	if err := phases.UpdateAllocation(ctx, p); err != nil {
		return writeErr(err, "phase", p.ID)
	}
	return nil
}

func adjustProjectBudget(ctx context.Context, projects repository.ProjectRepo, p *domain.Project, delta decimal.Decimal) error {
	p.Budget = p.Budget.WithTotalDelta(delta)
	if err := projects.UpdateBudget(ctx, p); err != nil {
		return writeErr(err, "project", p.ID)
	}
	return nil
}

func writeErr(err error, what, id string) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return app.Conflict(err, "%s %s was modified concurrently", what, id)
	}
	return fmt.Errorf("updating %s %s: %w", what, id, err)
}
