package domain

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
)

type PhaseStatus string

const (
	PhaseNotStarted PhaseStatus = "not_started"
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseOnHold     PhaseStatus = "on_hold"
	PhaseCompleted  PhaseStatus = "completed"
)

// ValidPhaseStatuses is the canonical set of accepted phase status strings.
var ValidPhaseStatuses = map[string]bool{
	"not_started": true, "in_progress": true, "on_hold": true, "completed": true,
}

type ReallocationType string

const (
	PhaseToPhase   ReallocationType = "PHASE_TO_PHASE"
	ProjectToPhase ReallocationType = "PROJECT_TO_PHASE"
	PhaseToProject ReallocationType = "PHASE_TO_PROJECT"
)

// ValidReallocationTypes is the canonical set of accepted reallocation types.
var ValidReallocationTypes = map[string]bool{
	"PHASE_TO_PHASE": true, "PROJECT_TO_PHASE": true, "PHASE_TO_PROJECT": true,
}

type ReallocationStatus string

const (
	ReallocationPending  ReallocationStatus = "PENDING"
	ReallocationExecuted ReallocationStatus = "EXECUTED"
	ReallocationRejected ReallocationStatus = "REJECTED"
)

// BudgetStatus classifies a phase's spend against its allocation.
type BudgetStatus string

const (
	StatusOverBudget          BudgetStatus = "over_budget"
	StatusCommittedOverBudget BudgetStatus = "committed_over_budget"
	StatusEstimatedOverBudget BudgetStatus = "estimated_over_budget"
	StatusApproachingBudget   BudgetStatus = "approaching_budget"
	StatusWithinBudget        BudgetStatus = "within_budget"
)

// CostCategory names the external spend domain a cost comes from.
type CostCategory string

const (
	CostMaterials CostCategory = "materials"
	CostExpenses  CostCategory = "expenses"
	CostEquipment CostCategory = "equipment"
	CostLabour    CostCategory = "labour"
)

// CostCategories lists every spend domain in reporting order.
var CostCategories = []CostCategory{CostMaterials, CostExpenses, CostEquipment, CostLabour}

// SpendStatus is the approval state of a spend entry.
//
//	pending   -> counted as estimated
//	committed -> counted as committed (approved/ordered, not yet realized)
//	approved  -> counted as actual spend
//	rejected  -> ignored
type SpendStatus string

const (
	SpendPending   SpendStatus = "pending"
	SpendCommitted SpendStatus = "committed"
	SpendApproved  SpendStatus = "approved"
	SpendRejected  SpendStatus = "rejected"
)

// ValidSpendStatuses is the canonical set of accepted spend status strings.
var ValidSpendStatuses = map[string]bool{
	"pending": true, "committed": true, "approved": true, "rejected": true,
}

type CapitalKind string

const (
	CapitalInvestment CapitalKind = "investment"
	CapitalUsage      CapitalKind = "usage"
)
