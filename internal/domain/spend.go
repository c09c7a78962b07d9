package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SpendEntry is one cost line from an external spend domain: a material
// request, an expense, equipment hire (days x daily rate) or a labour entry
// (hours x rate).
type SpendEntry struct {
	ID          string
	PhaseID     string
	Category    CostCategory
	Description string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Status      SpendStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Cost is quantity times unit cost.
func (e *SpendEntry) Cost() decimal.Decimal {
	return e.Quantity.Mul(e.UnitCost)
}

func (e *SpendEntry) Validate() error {
	switch e.Category {
	case CostMaterials, CostExpenses, CostEquipment, CostLabour:
	default:
		return fmt.Errorf("unknown cost category %q", e.Category)
	}
	if !ValidSpendStatuses[string(e.Status)] {
		return fmt.Errorf("unknown spend status %q", e.Status)
	}
	if !e.Quantity.IsPositive() {
		return fmt.Errorf("quantity must be positive, got %s", e.Quantity)
	}
	if e.UnitCost.IsNegative() {
		return fmt.Errorf("unit cost must not be negative, got %s", e.UnitCost)
	}
	return nil
}
