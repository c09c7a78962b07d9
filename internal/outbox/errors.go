package outbox

import "errors"

var (
	ErrEventRequired        = errors.New("outbox event is required")
	ErrEventTypeRequired    = errors.New("event type is required")
	ErrAggregateIDRequired  = errors.New("aggregate id is required")
	ErrPayloadNotJSON       = errors.New("outbox event payload must be valid JSON")
	ErrHandlerRequired      = errors.New("event handler is required")
	ErrHandlerRegistered    = errors.New("event handler already registered")
	ErrHandlerNotRegistered = errors.New("event handler is not registered")
	ErrRepositoryRequired   = errors.New("outbox repository is required")
	ErrStatusInvalid        = errors.New("invalid outbox status")
	ErrClaimLost            = errors.New("outbox event already claimed or finished")
	ErrEventNotFound        = errors.New("outbox event not found")
)
