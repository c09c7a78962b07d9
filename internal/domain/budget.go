package domain

import "github.com/shopspring/decimal"

// Budget is a project's top-level ceiling. The category shares are advisory
// and are not required to add up to Total. The zero value is an empty budget.
type Budget struct {
	Total       decimal.Decimal
	Materials   decimal.Decimal
	Labour      decimal.Decimal
	Contingency decimal.Decimal
}

// NewBudget builds a Budget from optionally-present figures; absent figures
// default to zero.
func NewBudget(total, materials, labour, contingency *decimal.Decimal) Budget {
	return Budget{
		Total:       DecimalFromPtrWithDefault(decimal.Zero, total),
		Materials:   DecimalFromPtrWithDefault(decimal.Zero, materials),
		Labour:      DecimalFromPtrWithDefault(decimal.Zero, labour),
		Contingency: DecimalFromPtrWithDefault(decimal.Zero, contingency),
	}
}

func (b Budget) TotalAmount() decimal.Decimal      { return b.Total }
func (b Budget) MaterialsShare() decimal.Decimal   { return b.Materials }
func (b Budget) LabourShare() decimal.Decimal      { return b.Labour }
func (b Budget) ContingencyShare() decimal.Decimal { return b.Contingency }

// WithTotalDelta returns a copy with Total adjusted by delta. A delta that
// would take Total below zero leaves it at zero.
func (b Budget) WithTotalDelta(delta decimal.Decimal) Budget {
	b.Total = ClampAtZero(b.Total.Add(delta))
	return b
}

// BudgetAllocation is the ceiling assigned to a phase. The category fields
// are advisory; only Total participates in ceiling and availability checks.
type BudgetAllocation struct {
	Total          decimal.Decimal
	Materials      decimal.Decimal
	Labour         decimal.Decimal
	Equipment      decimal.Decimal
	Subcontractors decimal.Decimal
	Contingency    decimal.Decimal
}

// WithTotalDelta returns a copy with Total adjusted by delta, clamped at zero.
func (a BudgetAllocation) WithTotalDelta(delta decimal.Decimal) BudgetAllocation {
	a.Total = ClampAtZero(a.Total.Add(delta))
	return a
}

// CategorySum adds the advisory category fields.
func (a BudgetAllocation) CategorySum() decimal.Decimal {
	return SumDecimals(a.Materials, a.Labour, a.Equipment, a.Subcontractors, a.Contingency)
}

// ActualSpending is realized cost attributed to a phase, split by source.
type ActualSpending struct {
	Total     decimal.Decimal
	Materials decimal.Decimal
	Labour    decimal.Decimal
	Equipment decimal.Decimal
	Expenses  decimal.Decimal
}

// Add attributes amount to category and to the total.
func (s ActualSpending) Add(category CostCategory, amount decimal.Decimal) ActualSpending {
	switch category {
	case CostMaterials:
		s.Materials = s.Materials.Add(amount)
	case CostLabour:
		s.Labour = s.Labour.Add(amount)
	case CostEquipment:
		s.Equipment = s.Equipment.Add(amount)
	case CostExpenses:
		s.Expenses = s.Expenses.Add(amount)
	}
	s.Total = s.Total.Add(amount)
	return s
}

// Equal reports whether every figure matches exactly.
func (s ActualSpending) Equal(o ActualSpending) bool {
	return s.Total.Equal(o.Total) && s.Materials.Equal(o.Materials) &&
		s.Labour.Equal(o.Labour) && s.Equipment.Equal(o.Equipment) &&
		s.Expenses.Equal(o.Expenses)
}

// FinancialStates holds the derived figures the recalculation engine keeps on
// a phase. Remaining is a clamped residual and is never negative.
type FinancialStates struct {
	Committed decimal.Decimal
	Estimated decimal.Decimal
	Remaining decimal.Decimal
}
