package service

import (
	"context"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/finance"
	"github.com/Victorkib/kisheka-construction-sub013/internal/importer"
	"github.com/shopspring/decimal"
)

type ProjectService interface {
	Create(ctx context.Context, req app.CreateProjectRequest) (*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByCode(ctx context.Context, code string) (*domain.Project, error)
	// Resolve accepts a project code or id.
	Resolve(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context, includeDeleted bool) ([]*domain.Project, error)
	// Delete soft-deletes the project and all of its phases.
	Delete(ctx context.Context, id string) error
}

type PhaseService interface {
	Create(ctx context.Context, req app.CreatePhaseRequest) (*domain.Phase, error)
	GetByID(ctx context.Context, id string) (*domain.Phase, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error)
	Delete(ctx context.Context, id string) error
}

// SummaryService derives a phase's financial position without writing it.
type SummaryService interface {
	GetPhaseFinancialSummary(ctx context.Context, phaseID string) (finance.Summary, error)
}

// RecalculationService is the only writer of a phase's actual spending and
// financial states.
type RecalculationService interface {
	RecalculatePhase(ctx context.Context, phaseID string) (finance.Summary, error)
	RecalculateProject(ctx context.Context, projectID string) ([]finance.Summary, error)
	CalculateTotalPhaseBudgets(ctx context.Context, projectID string) (decimal.Decimal, error)
	CalculateProjectTotals(ctx context.Context, projectID string) (*app.ProjectTotals, error)
}

type CapitalService interface {
	// ValidateCapital is advisory. It only fails when the project or the
	// ledger cannot be read.
	ValidateCapital(ctx context.Context, projectID string, amount decimal.Decimal) (finance.CapitalCheck, error)
	Record(ctx context.Context, req app.RecordCapitalRequest) (*domain.CapitalEntry, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.CapitalEntry, error)
}

// ReallocationService is the only writer of phase allocation totals and
// project budget totals.
type ReallocationService interface {
	Create(ctx context.Context, req app.CreateReallocationRequest) (*domain.BudgetReallocationRequest, error)
	Approve(ctx context.Context, req app.ApproveReallocationRequest) (*app.ApproveReallocationResponse, error)
	Reject(ctx context.Context, req app.RejectReallocationRequest) (*domain.BudgetReallocationRequest, error)
	GetByID(ctx context.Context, id string) (*domain.BudgetReallocationRequest, error)
	List(ctx context.Context, req app.ListReallocationsRequest) ([]*domain.BudgetReallocationRequest, error)
	AuditTrail(ctx context.Context, requestID string) ([]*domain.AuditRecord, error)
}

type SpendService interface {
	Record(ctx context.Context, req app.RecordSpendRequest) (*app.SpendResult, error)
	SetStatus(ctx context.Context, entryID string, status domain.SpendStatus) (*app.SpendResult, error)
	ListByPhase(ctx context.Context, phaseID string) ([]*domain.SpendEntry, error)
}

type ImportService interface {
	ImportProject(ctx context.Context, filePath string) (*app.ImportResult, error)
	ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*app.ImportResult, error)
}
