package app

import (
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/finance"
	"github.com/shopspring/decimal"
)

type CreateReallocationRequest struct {
	ProjectID   string
	Type        domain.ReallocationType
	FromPhaseID *string
	ToPhaseID   *string
	Amount      decimal.Decimal
	Reason      string
	RequestedBy string
}

type ApproveReallocationRequest struct {
	RequestID  string
	ApproverID string
	Notes      string
}

// ApproveReallocationResponse is returned once the transfer has committed.
// Summaries holds the post-commit recalculation of every affected phase
// that succeeded; failures show up in Warnings instead.
type ApproveReallocationResponse struct {
	Request   *domain.BudgetReallocationRequest
	Capital   finance.CapitalCheck
	Summaries []finance.Summary
	Warnings  []Warning
}

type RejectReallocationRequest struct {
	RequestID  string
	RejectorID string
	Reason     string
}

type ListReallocationsRequest struct {
	ProjectID string
	Status    *domain.ReallocationStatus
}
