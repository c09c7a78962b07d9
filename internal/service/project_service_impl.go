package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type projectService struct {
	uow      db.UnitOfWork
	projects repository.ProjectRepo
	opts     options
}

func NewProjectService(uow db.UnitOfWork, projects repository.ProjectRepo, opts ...Option) ProjectService {
	return &projectService{uow: uow, projects: projects, opts: buildOptions(opts)}
}

func (s *projectService) Create(ctx context.Context, req app.CreateProjectRequest) (p *domain.Project, err error) {
	startedAt := time.Now()
	fields := map[string]any{"code": req.Code}
	defer observe(ctx, s.opts.observer, "create-project", startedAt, fields, &err)

	now := s.opts.now().Truncate(time.Second)
	p = &domain.Project{
		ID:        uuid.New().String(),
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:      strings.TrimSpace(req.Name),
		Status:    domain.ProjectStatus(domain.CoalesceStr(string(req.Status), string(domain.ProjectActive))),
		Budget:    domain.NewBudget(req.Total, req.Materials, req.Labour, req.Contingency),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.ValidateCode(); err != nil {
		return nil, app.InvalidInput("%s", err.Error())
	}
	if p.Name == "" {
		return nil, app.InvalidInput("project name is required")
	}
	if !validProjectStatus(p.Status) {
		return nil, app.InvalidInput("unknown project status %q", p.Status)
	}
	if err := checkNonNegative("budget",
		namedAmount{"total", p.Budget.Total},
		namedAmount{"materials", p.Budget.Materials},
		namedAmount{"labour", p.Budget.Labour},
		namedAmount{"contingency", p.Budget.Contingency},
	); err != nil {
		return nil, err
	}

	existing, err := s.projects.GetByCode(ctx, p.Code)
	switch {
	case err == nil:
		return nil, app.InvalidInput("project code %s is already used by %q", p.Code, existing.Name)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("checking project code %s: %w", p.Code, err)
	}

	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	fields["project_id"] = p.ID
	return p, nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return loadLiveProject(ctx, s.projects, id)
}

func (s *projectService) GetByCode(ctx context.Context, code string) (*domain.Project, error) {
	p, err := s.projects.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, translateRepoErr(err, "project", code)
	}
	if p.IsDeleted() {
		return nil, app.NotFound("project %s not found", code)
	}
	return p, nil
}

func (s *projectService) Resolve(ctx context.Context, ref string) (*domain.Project, error) {
	p, err := s.GetByCode(ctx, ref)
	if err == nil || !app.IsCode(err, app.ErrCodeNotFound) {
		return p, err
	}
	return s.GetByID(ctx, ref)
}

func (s *projectService) List(ctx context.Context, includeDeleted bool) ([]*domain.Project, error) {
	return s.projects.List(ctx, includeDeleted)
}

// Delete soft-deletes the project together with its live phases.
func (s *projectService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	defer observe(ctx, s.opts.observer, "delete-project", startedAt, map[string]any{"project_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		phases := repository.NewSQLitePhaseRepo(tx)

		if _, err := loadLiveProject(ctx, projects, id); err != nil {
			return err
		}
		live, err := phases.ListByProject(ctx, id, false)
		if err != nil {
			return fmt.Errorf("listing phases of project %s: %w", id, err)
		}
		now := s.opts.now()
		for _, ph := range live {
			if err := phases.SoftDelete(ctx, ph.ID, now); err != nil {
				return fmt.Errorf("deleting phase %s: %w", ph.Label(), err)
			}
		}
		if err := projects.SoftDelete(ctx, id, now); err != nil {
			return translateRepoErr(err, "project", id)
		}
		return nil
	})
}

type namedAmount struct {
	name  string
	value decimal.Decimal
}

func checkNonNegative(prefix string, amounts ...namedAmount) error {
	for _, a := range amounts {
		if a.value.IsNegative() {
			return app.InvalidInput("%s %s must not be negative, got %s", prefix, a.name, a.value)
		}
	}
	return nil
}

func validProjectStatus(s domain.ProjectStatus) bool {
	switch s {
	case domain.ProjectPlanning, domain.ProjectActive, domain.ProjectOnHold, domain.ProjectCompleted:
		return true
	}
	return false
}
