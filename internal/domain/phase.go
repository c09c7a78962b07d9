package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Phase struct {
	ID        string
	ProjectID string
	Sequence  int
	Name      string
	Status    PhaseStatus

	Allocation BudgetAllocation
	Actual     ActualSpending
	Financial  FinancialStates

	// Scheduling
	DependsOn      []string
	StartDate      *time.Time
	PlannedEndDate *time.Time
	CanStartAfter  *time.Time

	Version   int64
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Phase) IsDeleted() bool {
	return p.DeletedAt != nil
}

// Label renders "#3 Roofing" for messages.
func (p *Phase) Label() string {
	return fmt.Sprintf("#%d %s", p.Sequence, p.Name)
}

// Validate checks creation-time invariants.
func (p *Phase) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("phase name is required")
	}
	if p.Allocation.Total.IsNegative() {
		return fmt.Errorf("phase allocation must not be negative, got %s", p.Allocation.Total)
	}
	if p.StartDate != nil && p.PlannedEndDate != nil && p.PlannedEndDate.Before(*p.StartDate) {
		return fmt.Errorf("planned end %s is before start %s",
			p.PlannedEndDate.Format("2006-01-02"), p.StartDate.Format("2006-01-02"))
	}
	for _, dep := range p.DependsOn {
		if dep == p.ID {
			return fmt.Errorf("phase cannot depend on itself")
		}
	}
	return nil
}

// InitFinancials resets derived figures for a freshly created phase: no
// spend, and the whole allocation remaining.
func (p *Phase) InitFinancials() {
	p.Actual = ActualSpending{}
	p.Financial = FinancialStates{Remaining: ClampAtZero(p.Allocation.Total)}
}

// DeriveCanStartAfter sets CanStartAfter to the latest planned end among
// deps. Dependencies without a planned end do not constrain the date.
func (p *Phase) DeriveCanStartAfter(deps []*Phase) {
	var latest *time.Time
	for _, d := range deps {
		if d.PlannedEndDate == nil {
			continue
		}
		if latest == nil || d.PlannedEndDate.After(*latest) {
			end := *d.PlannedEndDate
			latest = &end
		}
	}
	p.CanStartAfter = latest
}

// Available is the portion of the allocation not yet spent or committed.
func (p *Phase) Available() decimal.Decimal {
	return ClampAtZero(p.Allocation.Total.Sub(p.Actual.Total).Sub(p.Financial.Committed))
}
