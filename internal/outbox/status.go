package outbox

import "fmt"

// Status is an outbox event lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusPublished  Status = "PUBLISHED"
	StatusFailed     Status = "FAILED"
	StatusInvalid    Status = "INVALID"
)

// ParseStatus validates and converts a raw string status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrStatusInvalid, raw)
	}
	return s, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusPublished, StatusFailed, StatusInvalid:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a transition from s to next is allowed.
// PUBLISHED and INVALID are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending, StatusFailed:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusPublished || next == StatusFailed || next == StatusInvalid
	default:
		return false
	}
}

// Dispatchable reports whether an event in status s may be claimed.
func (s Status) Dispatchable() bool {
	return s.CanTransitionTo(StatusProcessing)
}
