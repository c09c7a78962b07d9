// Package finance holds the pure budget arithmetic used by the services:
// remaining/status derivation for phases, availability checks for
// reallocations, and the advisory capital check. Nothing here performs I/O.
package finance

import (
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

// ApproachingRatio is the share of the allocation that actual spend must
// exceed before a phase is reported as approaching its budget.
var ApproachingRatio = decimal.RequireFromString("0.9")

// SummaryInput is everything needed to derive a phase's financial summary.
type SummaryInput struct {
	PhaseID    string
	ProjectID  string
	Allocation decimal.Decimal
	Actual     domain.ActualSpending
	Committed  decimal.Decimal
	Estimated  decimal.Decimal
}

// Summary is the derived financial position of one phase.
type Summary struct {
	PhaseID          string
	ProjectID        string
	BudgetAllocation decimal.Decimal
	ActualSpending   domain.ActualSpending
	Committed        decimal.Decimal
	Estimated        decimal.Decimal
	Remaining        decimal.Decimal
	Status           domain.BudgetStatus
}

// Equal reports whether two summaries carry identical figures.
func (s Summary) Equal(o Summary) bool {
	return s.PhaseID == o.PhaseID && s.ProjectID == o.ProjectID &&
		s.BudgetAllocation.Equal(o.BudgetAllocation) &&
		s.ActualSpending.Equal(o.ActualSpending) &&
		s.Committed.Equal(o.Committed) && s.Estimated.Equal(o.Estimated) &&
		s.Remaining.Equal(o.Remaining) && s.Status == o.Status
}

// Remaining is max(0, allocation - actual - committed).
func Remaining(allocation, actual, committed decimal.Decimal) decimal.Decimal {
	return domain.ClampAtZero(allocation.Sub(actual).Sub(committed))
}

// ClassifyStatus applies the status rules in priority order; the first match
// wins.
func ClassifyStatus(allocation, actual, committed, estimated decimal.Decimal) domain.BudgetStatus {
	switch {
	case actual.GreaterThan(allocation):
		return domain.StatusOverBudget
	case committed.GreaterThan(allocation):
		return domain.StatusCommittedOverBudget
	case estimated.GreaterThan(allocation):
		return domain.StatusEstimatedOverBudget
	case actual.GreaterThan(allocation.Mul(ApproachingRatio)):
		return domain.StatusApproachingBudget
	default:
		return domain.StatusWithinBudget
	}
}

// Summarize derives remaining and status from raw figures.
func Summarize(in SummaryInput) Summary {
	return Summary{
		PhaseID:          in.PhaseID,
		ProjectID:        in.ProjectID,
		BudgetAllocation: in.Allocation,
		ActualSpending:   in.Actual,
		Committed:        in.Committed,
		Estimated:        in.Estimated,
		Remaining:        Remaining(in.Allocation, in.Actual.Total, in.Committed),
		Status:           ClassifyStatus(in.Allocation, in.Actual.Total, in.Committed, in.Estimated),
	}
}

// ApplyToPhase copies derived figures onto the phase record.
func (s Summary) ApplyToPhase(p *domain.Phase) {
	p.Actual = s.ActualSpending
	p.Financial = domain.FinancialStates{
		Committed: s.Committed,
		Estimated: s.Estimated,
		Remaining: s.Remaining,
	}
}
