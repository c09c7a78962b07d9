package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/outbox"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventDispatcher delivers one stored outbox event.
type EventDispatcher interface {
	DispatchEvent(ctx context.Context, id string) error
}

type spendService struct {
	uow        db.UnitOfWork
	phases     repository.PhaseRepo
	spend      repository.SpendRepo
	dispatcher EventDispatcher
	opts       options
}

// NewSpendService wires spend recording to the outbox. With a nil
// dispatcher events are only stored, to be delivered by a later drain.
func NewSpendService(uow db.UnitOfWork, phases repository.PhaseRepo, spend repository.SpendRepo, dispatcher EventDispatcher, opts ...Option) SpendService {
	return &spendService{
		uow:        uow,
		phases:     phases,
		spend:      spend,
		dispatcher: dispatcher,
		opts:       buildOptions(opts),
	}
}

// Record stores a spend entry and its SpendChanged event in one
// transaction, then delivers the event so the phase summary is current
// before returning.
func (s *spendService) Record(ctx context.Context, req app.RecordSpendRequest) (res *app.SpendResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"phase_id": req.PhaseID, "category": string(req.Category)}
	defer observe(ctx, s.opts.observer, "record-spend", startedAt, fields, &err)

	now := s.opts.now().Truncate(time.Second)
	entry := &domain.SpendEntry{
		ID:          uuid.New().String(),
		PhaseID:     req.PhaseID,
		Category:    domain.CostCategory(strings.ToLower(string(req.Category))),
		Description: strings.TrimSpace(req.Description),
		Quantity:    req.Quantity,
		UnitCost:    req.UnitCost,
		Status:      domain.SpendStatus(domain.CoalesceStr(string(req.Status), string(domain.SpendPending))),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := entry.Validate(); err != nil {
		return nil, app.InvalidInput("%s", err.Error())
	}

	var eventID string
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		phases := repository.NewSQLitePhaseRepo(tx)
		spend := repository.NewSQLiteSpendRepo(tx)
		events := repository.NewSQLiteOutboxRepo(tx)

		if _, err := loadLivePhase(ctx, phases, entry.PhaseID); err != nil {
			return err
		}
		if err := spend.Create(ctx, entry); err != nil {
			return fmt.Errorf("storing spend entry: %w", err)
		}
		ev, err := outbox.NewSpendChanged(entry.PhaseID, entry.ID, "recorded")
		if err != nil {
			return err
		}
		if err := events.Create(ctx, ev); err != nil {
			return fmt.Errorf("storing spend event: %w", err)
		}
		eventID = ev.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["spend_id"] = entry.ID

	return &app.SpendResult{Entry: entry, Warnings: s.deliver(ctx, eventID, entry.PhaseID)}, nil
}

// SetStatus moves an entry between pending, committed, approved and
// rejected. Setting the current status again is a no-op and emits nothing.
func (s *spendService) SetStatus(ctx context.Context, entryID string, status domain.SpendStatus) (res *app.SpendResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"spend_id": entryID, "status": string(status)}
	defer observe(ctx, s.opts.observer, "set-spend-status", startedAt, fields, &err)

	status = domain.SpendStatus(strings.ToLower(string(status)))
	if !domain.ValidSpendStatuses[string(status)] {
		return nil, app.InvalidInput("unknown spend status %q", status)
	}

	var (
		entry   *domain.SpendEntry
		eventID string
	)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		spend := repository.NewSQLiteSpendRepo(tx)
		events := repository.NewSQLiteOutboxRepo(tx)

		e, err := spend.GetByID(ctx, entryID)
		if err != nil {
			return translateRepoErr(err, "spend entry", entryID)
		}
		entry = e
		if e.Status == status {
			return nil
		}

		from := e.Status
		now := s.opts.now().Truncate(time.Second)
		if err := spend.UpdateStatus(ctx, e.ID, status, now); err != nil {
			return translateRepoErr(err, "spend entry", entryID)
		}
		e.Status = status
		e.UpdatedAt = now

		ev, err := outbox.NewSpendChanged(e.PhaseID, e.ID, fmt.Sprintf("status %s -> %s", from, status))
		if err != nil {
			return err
		}
		if err := events.Create(ctx, ev); err != nil {
			return fmt.Errorf("storing spend event: %w", err)
		}
		eventID = ev.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	res = &app.SpendResult{Entry: entry}
	if eventID != "" {
		res.Warnings = s.deliver(ctx, eventID, entry.PhaseID)
	}
	return res, nil
}

func (s *spendService) ListByPhase(ctx context.Context, phaseID string) ([]*domain.SpendEntry, error) {
	if _, err := loadLivePhase(ctx, s.phases, phaseID); err != nil {
		return nil, err
	}
	return s.spend.ListByPhase(ctx, phaseID)
}

// deliver dispatches a committed event. A failure leaves the event stored
// for a later drain and is reported as a warning.
func (s *spendService) deliver(ctx context.Context, eventID, phaseID string) []app.Warning {
	if s.dispatcher == nil {
		return nil
	}
	if err := s.dispatcher.DispatchEvent(ctx, eventID); err != nil {
		s.opts.logger.Warn("spend recorded but phase recalculation failed",
			zap.String("phase_id", phaseID),
			zap.String("event_id", eventID),
			zap.Error(err))
		return []app.Warning{{
			Code:    app.WarnPartialFailure,
			PhaseID: phaseID,
			Message: fmt.Sprintf("spend recorded but phase summary is stale: %v", err),
		}}
	}
	return nil
}
