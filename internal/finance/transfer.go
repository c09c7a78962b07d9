package finance

import (
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

// Rule names identify which availability check rejected a transfer.
const (
	RulePhaseAvailable   = "phase_available"
	RuleProjectAvailable = "project_unallocated"
	RuleProjectCeiling   = "project_ceiling"
)

// Sufficiency is the outcome of one availability check.
type Sufficiency struct {
	OK        bool
	Rule      string
	Requested decimal.Decimal
	Available decimal.Decimal
}

// TotalAllocations sums allocation totals over phases that are not deleted.
func TotalAllocations(phases []*domain.Phase) decimal.Decimal {
	total := decimal.Zero
	for _, p := range phases {
		if p.IsDeleted() {
			continue
		}
		total = total.Add(p.Allocation.Total)
	}
	return total
}

// CheckPhaseSource verifies a phase can give up amount from its unspent,
// uncommitted allocation.
func CheckPhaseSource(p *domain.Phase, amount decimal.Decimal) Sufficiency {
	available := p.Available()
	return Sufficiency{
		OK:        amount.LessThanOrEqual(available),
		Rule:      RulePhaseAvailable,
		Requested: amount,
		Available: available,
	}
}

// CheckProjectToPhase runs both checks guarding a project-to-phase transfer.
//
// The first compares amount with the unallocated project budget. The second
// re-verifies the ceiling on the post-transfer figures: the project total
// shrinks by amount while the phase allocations grow by amount, so the
// transfer may not push allocations above what will remain of the total.
func CheckProjectToPhase(projectTotal, totalPhaseBudgets, amount decimal.Decimal) Sufficiency {
	unallocated := projectTotal.Sub(totalPhaseBudgets)
	if amount.GreaterThan(unallocated) {
		return Sufficiency{
			Rule:      RuleProjectAvailable,
			Requested: amount,
			Available: domain.ClampAtZero(unallocated),
		}
	}

	allocationsAfter := totalPhaseBudgets.Add(amount)
	totalAfter := domain.ClampAtZero(projectTotal.Sub(amount))
	if allocationsAfter.GreaterThan(totalAfter) {
		return Sufficiency{
			Rule:      RuleProjectCeiling,
			Requested: amount,
			Available: domain.ClampAtZero(unallocated.Div(decimal.NewFromInt(2))),
		}
	}

	return Sufficiency{
		OK:        true,
		Rule:      RuleProjectAvailable,
		Requested: amount,
		Available: unallocated,
	}
}
