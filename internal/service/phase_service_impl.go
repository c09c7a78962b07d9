package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"github.com/google/uuid"
)

type phaseService struct {
	uow      db.UnitOfWork
	projects repository.ProjectRepo
	phases   repository.PhaseRepo
	opts     options
}

func NewPhaseService(uow db.UnitOfWork, projects repository.ProjectRepo, phases repository.PhaseRepo, opts ...Option) PhaseService {
	return &phaseService{uow: uow, projects: projects, phases: phases, opts: buildOptions(opts)}
}

// Create allocates the next sequence number and stores the phase with no
// spend and its whole allocation remaining. Allocations are not checked
// against the project ceiling here; only reallocations enforce it.
func (s *phaseService) Create(ctx context.Context, req app.CreatePhaseRequest) (p *domain.Phase, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": req.ProjectID}
	defer observe(ctx, s.opts.observer, "create-phase", startedAt, fields, &err)

	now := s.opts.now().Truncate(time.Second)
	p = &domain.Phase{
		ID:             uuid.New().String(),
		ProjectID:      req.ProjectID,
		Name:           strings.TrimSpace(req.Name),
		Status:         domain.PhaseStatus(domain.CoalesceStr(string(req.Status), string(domain.PhaseNotStarted))),
		Allocation:     req.Allocation,
		StartDate:      req.StartDate,
		PlannedEndDate: req.PlannedEndDate,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, dep := range req.DependsOn {
		dep = strings.TrimSpace(dep)
		if dep != "" && !slices.Contains(p.DependsOn, dep) {
			p.DependsOn = append(p.DependsOn, dep)
		}
	}
	if err := p.Validate(); err != nil {
		return nil, app.InvalidInput("%s", err.Error())
	}
	if !domain.ValidPhaseStatuses[string(p.Status)] {
		return nil, app.InvalidInput("unknown phase status %q", p.Status)
	}
	a := p.Allocation
	if err := checkNonNegative("allocation",
		namedAmount{"materials", a.Materials},
		namedAmount{"labour", a.Labour},
		namedAmount{"equipment", a.Equipment},
		namedAmount{"subcontractors", a.Subcontractors},
		namedAmount{"contingency", a.Contingency},
	); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		phases := repository.NewSQLitePhaseRepo(tx)
		seqs := repository.NewSQLiteProjectSequenceRepo(tx)

		if _, err := loadLiveProject(ctx, projects, p.ProjectID); err != nil {
			return err
		}

		deps := make([]*domain.Phase, 0, len(p.DependsOn))
		for _, id := range p.DependsOn {
			dep, err := loadLivePhase(ctx, phases, id)
			if err != nil {
				return err
			}
			if dep.ProjectID != p.ProjectID {
				return app.InvalidInput("dependency %s belongs to another project", dep.Label())
			}
			deps = append(deps, dep)
		}
		p.DeriveCanStartAfter(deps)

		seq, err := seqs.NextPhaseSeq(ctx, p.ProjectID)
		if err != nil {
			return err
		}
		p.Sequence = seq
		p.InitFinancials()

		if err := phases.Create(ctx, p); err != nil {
			return fmt.Errorf("creating phase %q: %w", p.Name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["phase_id"] = p.ID
	return p, nil
}

func (s *phaseService) GetByID(ctx context.Context, id string) (*domain.Phase, error) {
	return loadLivePhase(ctx, s.phases, id)
}

func (s *phaseService) ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error) {
	if _, err := loadLiveProject(ctx, s.projects, projectID); err != nil {
		return nil, err
	}
	return s.phases.ListByProject(ctx, projectID, false)
}

// Delete refuses to remove a phase that a live phase still depends on.
func (s *phaseService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	defer observe(ctx, s.opts.observer, "delete-phase", startedAt, map[string]any{"phase_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		phases := repository.NewSQLitePhaseRepo(tx)

		p, err := loadLivePhase(ctx, phases, id)
		if err != nil {
			return err
		}
		siblings, err := phases.ListByProject(ctx, p.ProjectID, false)
		if err != nil {
			return fmt.Errorf("listing phases of project %s: %w", p.ProjectID, err)
		}
		for _, other := range siblings {
			if slices.Contains(other.DependsOn, id) {
				return app.InvalidState("phase %s is a dependency of %s", p.Label(), other.Label())
			}
		}
		if err := phases.SoftDelete(ctx, id, s.opts.now()); err != nil {
			return translateRepoErr(err, "phase", id)
		}
		return nil
	})
}
