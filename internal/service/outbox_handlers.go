package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/outbox"
)

// ErrMalformedEvent marks an event whose payload cannot be used.
var ErrMalformedEvent = errors.New("malformed outbox event")

// RegisterSpendChangedHandler makes recalc the consumer of SpendChanged
// events.
func RegisterSpendChangedHandler(registry *outbox.HandlerRegistry, recalc RecalculationService) error {
	return registry.Register(outbox.EventSpendChanged, func(ctx context.Context, ev *outbox.Event) error {
		var payload outbox.SpendChanged
		if err := ev.Decode(&payload); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
		}
		if payload.PhaseID == "" {
			return fmt.Errorf("%w: event %s has no phase id", ErrMalformedEvent, ev.ID)
		}
		_, err := recalc.RecalculatePhase(ctx, payload.PhaseID)
		return err
	})
}

// IsPermanentDispatchError reports errors that retrying cannot fix: a bad
// payload, or a phase that no longer exists.
func IsPermanentDispatchError(err error) bool {
	if errors.Is(err, ErrMalformedEvent) {
		return true
	}
	switch app.ErrorCodeOf(err) {
	case app.ErrCodeNotFound, app.ErrCodeInvalidInput, app.ErrCodeInconsistentData:
		return true
	}
	return false
}
