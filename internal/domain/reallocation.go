package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRequestNotPending is returned when a transition is attempted on a
// request that already reached a terminal status.
var ErrRequestNotPending = errors.New("reallocation request is not pending")

// BudgetReallocationRequest moves budget ceiling between two buckets of one
// project. Amount is fixed at creation.
type BudgetReallocationRequest struct {
	ID          string
	ProjectID   string
	Type        ReallocationType
	FromPhaseID *string
	ToPhaseID   *string
	Amount      decimal.Decimal
	Reason      string
	RequestedBy string
	Status      ReallocationStatus

	ApprovedBy    *string
	ApprovalNotes *string
	ApprovedAt    *time.Time
	ExecutedAt    *time.Time

	RejectedBy      *string
	RejectionReason *string
	RejectedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the request's shape: a positive amount and phase
// references that match the reallocation type.
func (r *BudgetReallocationRequest) Validate() error {
	if !ValidReallocationTypes[string(r.Type)] {
		return fmt.Errorf("unknown reallocation type %q", r.Type)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", r.Amount)
	}
	from, to := derefOrEmpty(r.FromPhaseID), derefOrEmpty(r.ToPhaseID)
	switch r.Type {
	case PhaseToPhase:
		if from == "" || to == "" {
			return fmt.Errorf("%s requires both source and target phases", r.Type)
		}
		if from == to {
			return fmt.Errorf("source and target phase must differ")
		}
	case ProjectToPhase:
		if to == "" {
			return fmt.Errorf("%s requires a target phase", r.Type)
		}
		if from != "" {
			return fmt.Errorf("%s must not name a source phase", r.Type)
		}
	case PhaseToProject:
		if from == "" {
			return fmt.Errorf("%s requires a source phase", r.Type)
		}
		if to != "" {
			return fmt.Errorf("%s must not name a target phase", r.Type)
		}
	}
	return nil
}

func (r *BudgetReallocationRequest) IsTerminal() bool {
	return r.Status == ReallocationExecuted || r.Status == ReallocationRejected
}

// MarkExecuted transitions PENDING -> EXECUTED, stamping the approval fields
// with one timestamp.
func (r *BudgetReallocationRequest) MarkExecuted(approverID, notes string, now time.Time) error {
	if r.Status != ReallocationPending {
		return fmt.Errorf("%w: status is %s", ErrRequestNotPending, r.Status)
	}
	r.Status = ReallocationExecuted
	r.ApprovedBy = &approverID
	r.ApprovalNotes = &notes
	r.ApprovedAt = &now
	r.ExecutedAt = &now
	r.UpdatedAt = now
	return nil
}

// MarkRejected transitions PENDING -> REJECTED.
func (r *BudgetReallocationRequest) MarkRejected(rejectorID, reason string, now time.Time) error {
	if r.Status != ReallocationPending {
		return fmt.Errorf("%w: status is %s", ErrRequestNotPending, r.Status)
	}
	r.Status = ReallocationRejected
	r.RejectedBy = &rejectorID
	r.RejectionReason = &reason
	r.RejectedAt = &now
	r.UpdatedAt = now
	return nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
