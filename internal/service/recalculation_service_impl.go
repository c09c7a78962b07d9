package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/finance"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"github.com/Victorkib/kisheka-construction-sub013/internal/retry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecalcConfig bounds recalculation fan-out and conflict retries.
type RecalcConfig struct {
	Concurrency int
	MaxRetries  int
	BaseDelay   time.Duration
}

func (c RecalcConfig) withDefaults() RecalcConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 10 * time.Millisecond
	}
	return c
}

type recalculationService struct {
	uow      db.UnitOfWork
	phases   repository.PhaseRepo
	projects repository.ProjectRepo
	capital  repository.CapitalLedger
	cfg      RecalcConfig
	opts     options
}

func NewRecalculationService(
	uow db.UnitOfWork,
	phases repository.PhaseRepo,
	projects repository.ProjectRepo,
	capital repository.CapitalLedger,
	cfg RecalcConfig,
	opts ...Option,
) RecalculationService {
	return &recalculationService{
		uow:      uow,
		phases:   phases,
		projects: projects,
		capital:  capital,
		cfg:      cfg.withDefaults(),
		opts:     buildOptions(opts),
	}
}

// RecalculatePhase recomputes the phase summary from the spend domains and
// persists it. An unchanged summary is not written, so repeated calls leave
// the row and its version alone.
func (s *recalculationService) RecalculatePhase(ctx context.Context, phaseID string) (summary finance.Summary, err error) {
	ctx, span := s.opts.tracer.Start(ctx, "recalculation.phase",
		trace.WithAttributes(attribute.String("phase.id", phaseID)))
	defer func() { endSpan(span, err) }()

	policy := retry.Policy{
		MaxAttempts: s.cfg.MaxRetries,
		BaseDelay:   s.cfg.BaseDelay,
		Retryable: func(err error) bool {
			return errors.Is(err, repository.ErrVersionConflict)
		},
	}

	err = retry.Do(ctx, policy, func(ctx context.Context) error {
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			phases := repository.NewSQLitePhaseRepo(tx)

			p, err := phases.GetByID(ctx, phaseID)
			if err != nil {
				return err
			}
			if p.IsDeleted() {
				return app.NotFound("phase %s not found", phaseID)
			}

			fresh, err := computeSummary(ctx, repository.CostAggregators(tx), p)
			if err != nil {
				return err
			}
			summary = fresh
			if storedSummary(p).Equal(fresh) {
				return nil
			}
			fresh.ApplyToPhase(p)
			return phases.UpdateFinancials(ctx, p)
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			s.opts.logger.Warn("phase recalculation lost every version race",
				zap.String("phase_id", phaseID), zap.Int("attempts", s.cfg.MaxRetries))
			return finance.Summary{}, app.Conflict(err, "phase %s changed during recalculation", phaseID)
		}
		return finance.Summary{}, translateRepoErr(err, "phase", phaseID)
	}
	span.SetAttributes(attribute.String("phase.budget_status", string(summary.Status)))
	return summary, nil
}

// RecalculateProject recalculates every live phase of the project, at most
// Concurrency at a time. Summaries come back in phase sequence order.
func (s *recalculationService) RecalculateProject(ctx context.Context, projectID string) (summaries []finance.Summary, err error) {
	ctx, span := s.opts.tracer.Start(ctx, "recalculation.project",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer func() { endSpan(span, err) }()

	if _, err := loadLiveProject(ctx, s.projects, projectID); err != nil {
		return nil, err
	}
	phases, err := s.phases.ListByProject(ctx, projectID, false)
	if err != nil {
		return nil, fmt.Errorf("listing phases of project %s: %w", projectID, err)
	}

	summaries = make([]finance.Summary, len(phases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, p := range phases {
		g.Go(func() error {
			sum, err := s.RecalculatePhase(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("recalculating phase %s: %w", p.Label(), err)
			}
			summaries[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("project.phase_count", len(phases)))
	return summaries, nil
}

func (s *recalculationService) CalculateTotalPhaseBudgets(ctx context.Context, projectID string) (decimal.Decimal, error) {
	if _, err := loadLiveProject(ctx, s.projects, projectID); err != nil {
		return decimal.Zero, err
	}
	phases, err := s.phases.ListByProject(ctx, projectID, false)
	if err != nil {
		return decimal.Zero, fmt.Errorf("listing phases of project %s: %w", projectID, err)
	}
	return finance.TotalAllocations(phases), nil
}

// CalculateProjectTotals rolls phase figures up and attaches the capital
// position exactly as the ledger reports it.
func (s *recalculationService) CalculateProjectTotals(ctx context.Context, projectID string) (*app.ProjectTotals, error) {
	project, err := loadLiveProject(ctx, s.projects, projectID)
	if err != nil {
		return nil, err
	}
	phases, err := s.phases.ListByProject(ctx, projectID, false)
	if err != nil {
		return nil, fmt.Errorf("listing phases of project %s: %w", projectID, err)
	}
	snap, err := s.capital.GetCapitalSnapshot(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("reading capital snapshot for project %s: %w", projectID, err)
	}

	totals := &app.ProjectTotals{
		ProjectID:         projectID,
		PhaseCount:        len(phases),
		BudgetTotal:       project.Budget.Total,
		TotalPhaseBudgets: finance.TotalAllocations(phases),
		TotalInvested:     snap.TotalInvested,
		TotalUsed:         snap.TotalUsed,
		CapitalAvailable:  snap.Available(),
	}
	totals.Unallocated = project.Budget.Total.Sub(totals.TotalPhaseBudgets)
	for _, p := range phases {
		totals.TotalActual = totals.TotalActual.Add(p.Actual.Total)
		totals.TotalCommitted = totals.TotalCommitted.Add(p.Financial.Committed)
		totals.TotalEstimated = totals.TotalEstimated.Add(p.Financial.Estimated)
		totals.TotalRemaining = totals.TotalRemaining.Add(p.Financial.Remaining)
	}
	return totals, nil
}

// loadLiveProject treats a soft-deleted project as missing.
func loadLiveProject(ctx context.Context, projects repository.ProjectRepo, projectID string) (*domain.Project, error) {
	p, err := projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, translateRepoErr(err, "project", projectID)
	}
	if p.IsDeleted() {
		return nil, app.NotFound("project %s not found", projectID)
	}
	return p, nil
}

// loadLivePhase treats a soft-deleted phase as missing.
func loadLivePhase(ctx context.Context, phases repository.PhaseRepo, phaseID string) (*domain.Phase, error) {
	p, err := phases.GetByID(ctx, phaseID)
	if err != nil {
		return nil, translateRepoErr(err, "phase", phaseID)
	}
	if p.IsDeleted() {
		return nil, app.NotFound("phase %s not found", phaseID)
	}
	return p, nil
}
