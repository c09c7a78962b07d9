package outbox

import (
	"context"
	"time"
)

// Repository persists outbox events. Create is called with a
// transaction-scoped implementation so the event commits with its cause.
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// ListDispatchable returns PENDING events and FAILED events that still
	// have attempts left, oldest first.
	ListDispatchable(ctx context.Context, limit, maxAttempts int) ([]*Event, error)
	// Claim moves a dispatchable event to PROCESSING and counts the attempt.
	// Returns ErrClaimLost if another dispatcher got there first.
	Claim(ctx context.Context, id string, at time.Time) error
	MarkPublished(ctx context.Context, id string, at time.Time) error
	// MarkFailed records errMsg and moves the event to FAILED, or to INVALID
	// once attempts reach maxAttempts.
	MarkFailed(ctx context.Context, id string, errMsg string, maxAttempts int, at time.Time) error
	MarkInvalid(ctx context.Context, id string, errMsg string, at time.Time) error
}
