package importer

import (
	"strings"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan is a converted import ready for persistence. Phases are in file
// order with sequences 1..n.
type Plan struct {
	Project *domain.Project
	Phases  []*domain.Phase
}

// DependencyCount is the number of depends_on edges in the plan.
func (p *Plan) DependencyCount() int {
	n := 0
	for _, ph := range p.Phases {
		n += len(ph.DependsOn)
	}
	return n
}

// Convert transforms a validated ImportSchema into domain objects.
// Call ValidateImportSchema first; Convert assumes the schema is valid.
func Convert(schema *ImportSchema) *Plan {
	now := time.Now().UTC().Truncate(time.Second)

	b := schema.Project.Budget
	project := &domain.Project{
		ID:        uuid.New().String(),
		Code:      strings.ToUpper(strings.TrimSpace(schema.Project.Code)),
		Name:      schema.Project.Name,
		Status:    domain.ProjectStatus(domain.CoalesceStr(schema.Project.Status, string(domain.ProjectActive))),
		Budget:    domain.NewBudget(b.Total.Value(), b.Materials.Value(), b.Labour.Value(), b.Contingency.Value()),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	keyMap := make(map[string]*domain.Phase, len(schema.Phases))
	phases := make([]*domain.Phase, 0, len(schema.Phases))
	for i, ph := range schema.Phases {
		a := ph.Allocation
		phase := &domain.Phase{
			ID:        uuid.New().String(),
			ProjectID: project.ID,
			Sequence:  i + 1,
			Name:      ph.Name,
			Status:    domain.PhaseStatus(domain.CoalesceStr(ph.Status, string(domain.PhaseNotStarted))),
			Allocation: domain.BudgetAllocation{
				Total:          domain.DecimalFromPtrWithDefault(decimal.Zero, a.Total.Value()),
				Materials:      domain.DecimalFromPtrWithDefault(decimal.Zero, a.Materials.Value()),
				Labour:         domain.DecimalFromPtrWithDefault(decimal.Zero, a.Labour.Value()),
				Equipment:      domain.DecimalFromPtrWithDefault(decimal.Zero, a.Equipment.Value()),
				Subcontractors: domain.DecimalFromPtrWithDefault(decimal.Zero, a.Subcontractors.Value()),
				Contingency:    domain.DecimalFromPtrWithDefault(decimal.Zero, a.Contingency.Value()),
			},
			StartDate:      parseOptionalDate(ph.StartDate),
			PlannedEndDate: parseOptionalDate(ph.PlannedEndDate),
			Version:        1,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		phase.InitFinancials()
		keyMap[ph.Key] = phase
		phases = append(phases, phase)
	}

	for i, ph := range schema.Phases {
		phase := phases[i]
		deps := make([]*domain.Phase, 0, len(ph.DependsOn))
		for _, key := range ph.DependsOn {
			if dep, ok := keyMap[key]; ok {
				phase.DependsOn = append(phase.DependsOn, dep.ID)
				deps = append(deps, dep)
			}
		}
		phase.DeriveCanStartAfter(deps)
	}

	return &Plan{Project: project, Phases: phases}
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}
