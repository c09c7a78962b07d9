package service

import (
	"errors"
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
)

// translateRepoErr maps repository sentinels onto use-case errors and wraps
// anything else with context. Errors that already carry a code pass through.
func translateRepoErr(err error, what string, id string) error {
	if err == nil {
		return nil
	}
	var be *app.BudgetError
	switch {
	case errors.As(err, &be):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return app.NotFound("%s %s not found", what, id)
	case errors.Is(err, repository.ErrVersionConflict):
		return app.Conflict(err, "%s %s was modified concurrently", what, id)
	default:
		return fmt.Errorf("%s %s: %w", what, id, err)
	}
}
