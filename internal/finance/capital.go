package finance

import (
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

// CapitalWarningRatio is the share of available capital above which a
// reallocation draws an advisory warning.
var CapitalWarningRatio = decimal.RequireFromString("0.8")

type CapitalCheck struct {
	ProjectID        string
	Requested        decimal.Decimal
	TotalInvested    decimal.Decimal
	TotalUsed        decimal.Decimal
	Available        decimal.Decimal
	WarningThreshold decimal.Decimal
	IsValid          bool
	// Warning is set when Requested exceeds WarningThreshold. It never
	// blocks a reallocation.
	Warning bool
}

func CheckCapital(snapshot domain.CapitalSnapshot, requested decimal.Decimal) CapitalCheck {
	available := snapshot.Available()
	threshold := available.Mul(CapitalWarningRatio)
	return CapitalCheck{
		ProjectID:        snapshot.ProjectID,
		Requested:        requested,
		TotalInvested:    snapshot.TotalInvested,
		TotalUsed:        snapshot.TotalUsed,
		Available:        available,
		WarningThreshold: threshold,
		IsValid:          requested.LessThanOrEqual(available),
		Warning:          requested.GreaterThan(threshold),
	}
}
