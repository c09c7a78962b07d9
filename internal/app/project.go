package app

import (
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateProjectRequest leaves budget figures nil when absent; they default
// to zero.
type CreateProjectRequest struct {
	Code        string
	Name        string
	Status      domain.ProjectStatus
	Total       *decimal.Decimal
	Materials   *decimal.Decimal
	Labour      *decimal.Decimal
	Contingency *decimal.Decimal
}

type CreatePhaseRequest struct {
	ProjectID      string
	Name           string
	Status         domain.PhaseStatus
	Allocation     domain.BudgetAllocation
	DependsOn      []string
	StartDate      *time.Time
	PlannedEndDate *time.Time
}

// ProjectTotals rolls phase figures up to the project. Capital figures are
// read from the financing ledger as-is.
type ProjectTotals struct {
	ProjectID         string
	PhaseCount        int
	BudgetTotal       decimal.Decimal
	TotalPhaseBudgets decimal.Decimal
	Unallocated       decimal.Decimal
	TotalActual       decimal.Decimal
	TotalCommitted    decimal.Decimal
	TotalEstimated    decimal.Decimal
	TotalRemaining    decimal.Decimal
	TotalInvested     decimal.Decimal
	TotalUsed         decimal.Decimal
	CapitalAvailable  decimal.Decimal
}
