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
	"github.com/Victorkib/kisheka-construction-sub013/internal/importer"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
)

type importService struct {
	uow  db.UnitOfWork
	opts options
}

func NewImportService(uow db.UnitOfWork, opts ...Option) ImportService {
	return &importService{uow: uow, opts: buildOptions(opts)}
}

func (s *importService) ImportProject(ctx context.Context, filePath string) (*app.ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, app.InvalidInput("loading import file: %v", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *importService) ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*app.ImportResult, error) {
	return s.importSchema(ctx, schema)
}

// importSchema persists the project and every phase in one transaction.
// Phases are inserted dependencies-first.
func (s *importService) importSchema(ctx context.Context, schema *importer.ImportSchema) (res *app.ImportResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"code": schema.Project.Code}
	defer observe(ctx, s.opts.observer, "import-project", startedAt, fields, &err)

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	plan := importer.Convert(schema)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		phases := repository.NewSQLitePhaseRepo(tx)

		existing, err := projects.GetByCode(ctx, plan.Project.Code)
		switch {
		case err == nil:
			return app.InvalidInput("project code %s is already used by %q", plan.Project.Code, existing.Name)
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("checking project code %s: %w", plan.Project.Code, err)
		}

		if err := projects.Create(ctx, plan.Project); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		for _, ph := range dependencyOrder(plan.Phases) {
			if err := phases.Create(ctx, ph); err != nil {
				return fmt.Errorf("creating phase %q: %w", ph.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["project_id"] = plan.Project.ID
	fields["phase_count"] = len(plan.Phases)
	return &app.ImportResult{
		Project:         plan.Project,
		PhaseCount:      len(plan.Phases),
		DependencyCount: plan.DependencyCount(),
	}, nil
}

// dependencyOrder returns phases so that every phase follows the phases it
// depends on, keeping file order otherwise. The input must be acyclic.
func dependencyOrder(phases []*domain.Phase) []*domain.Phase {
	placed := make(map[string]bool, len(phases))
	ordered := make([]*domain.Phase, 0, len(phases))
	for len(ordered) < len(phases) {
		progressed := false
		for _, p := range phases {
			if placed[p.ID] {
				continue
			}
			ready := true
			for _, dep := range p.DependsOn {
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				placed[p.ID] = true
				ordered = append(ordered, p)
				progressed = true
			}
		}
		if !progressed {
			// A cycle slipped past validation; let the foreign key report it.
			for _, p := range phases {
				if !placed[p.ID] {
					ordered = append(ordered, p)
				}
			}
			break
		}
	}
	return ordered
}

func formatValidationErrors(errs []error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return app.InvalidInput("%s", b.String())
}
