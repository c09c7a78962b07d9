package repository

import (
	"context"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	// GetByID returns soft-deleted projects too; callers decide whether a
	// deleted project counts as missing.
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByCode(ctx context.Context, code string) (*domain.Project, error)
	List(ctx context.Context, includeDeleted bool) ([]*domain.Project, error)
	// UpdateBudget writes p.Budget if p.Version still matches the stored
	// version, then bumps p.Version.
	UpdateBudget(ctx context.Context, p *domain.Project) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

type PhaseRepo interface {
	Create(ctx context.Context, p *domain.Phase) error
	GetByID(ctx context.Context, id string) (*domain.Phase, error)
	ListByProject(ctx context.Context, projectID string, includeDeleted bool) ([]*domain.Phase, error)
	// UpdateAllocation writes the allocation and the remaining figure
	// derived from it. Version-checked.
	UpdateAllocation(ctx context.Context, p *domain.Phase) error
	// UpdateFinancials writes actual spending and financial states.
	// Version-checked.
	UpdateFinancials(ctx context.Context, p *domain.Phase) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

type ProjectSequenceRepo interface {
	NextPhaseSeq(ctx context.Context, projectID string) (int, error)
}

type ReallocationRepo interface {
	Create(ctx context.Context, r *domain.BudgetReallocationRequest) error
	GetByID(ctx context.Context, id string) (*domain.BudgetReallocationRequest, error)
	ListByProject(ctx context.Context, projectID string, status *domain.ReallocationStatus) ([]*domain.BudgetReallocationRequest, error)
	// Transition persists r's status and stamps only if the stored status is
	// still from. Returns ErrStatusConflict otherwise.
	Transition(ctx context.Context, r *domain.BudgetReallocationRequest, from domain.ReallocationStatus) error
}

// CostAggregator sums one spend domain's costs for a phase.
type CostAggregator interface {
	Category() domain.CostCategory
	SumApprovedCost(ctx context.Context, phaseID string) (decimal.Decimal, error)
	SumCommittedCost(ctx context.Context, phaseID string) (decimal.Decimal, error)
	SumEstimatedCost(ctx context.Context, phaseID string) (decimal.Decimal, error)
}

type SpendRepo interface {
	Create(ctx context.Context, e *domain.SpendEntry) error
	GetByID(ctx context.Context, id string) (*domain.SpendEntry, error)
	ListByPhase(ctx context.Context, phaseID string) ([]*domain.SpendEntry, error)
	UpdateStatus(ctx context.Context, id string, status domain.SpendStatus, at time.Time) error
}

// CapitalLedger is the read side of the financing ledger.
type CapitalLedger interface {
	GetCapitalSnapshot(ctx context.Context, projectID string) (domain.CapitalSnapshot, error)
}

type CapitalRepo interface {
	CapitalLedger
	Append(ctx context.Context, e *domain.CapitalEntry) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.CapitalEntry, error)
}

type AuditRepo interface {
	Record(ctx context.Context, rec *domain.AuditRecord) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditRecord, error)
}
