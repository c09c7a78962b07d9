package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CapitalEntry is one line of a project's financing ledger.
type CapitalEntry struct {
	ID        string
	ProjectID string
	Kind      CapitalKind
	Amount    decimal.Decimal
	Note      string
	CreatedAt time.Time
}

// CapitalSnapshot is the invested/used capital position of one project.
type CapitalSnapshot struct {
	ProjectID     string
	TotalInvested decimal.Decimal
	TotalUsed     decimal.Decimal
}

// Available is invested minus used. It may be negative when a project has
// drawn more than was invested.
func (s CapitalSnapshot) Available() decimal.Decimal {
	return s.TotalInvested.Sub(s.TotalUsed)
}
