package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AuditEntityReallocation = "reallocation"

	AuditActionExecuted = "executed"
	AuditActionRejected = "rejected"
)

// AuditRecord captures one state transition for later review.
type AuditRecord struct {
	ID         string
	EntityType string
	EntityID   string
	Action     string
	Actor      string
	OldStatus  string
	NewStatus  string
	Amount     decimal.Decimal
	Details    map[string]string
	CreatedAt  time.Time
}
