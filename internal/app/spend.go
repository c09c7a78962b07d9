package app

import (
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

type RecordSpendRequest struct {
	PhaseID     string
	Category    domain.CostCategory
	Description string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Status      domain.SpendStatus
}

type SpendResult struct {
	Entry    *domain.SpendEntry
	Warnings []Warning
}

type RecordCapitalRequest struct {
	ProjectID string
	Kind      domain.CapitalKind
	Amount    decimal.Decimal
	Note      string
}

type ImportResult struct {
	Project         *domain.Project
	PhaseCount      int
	DependencyCount int
}
