package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultBatchSize       = 100
	defaultMaxAttempts     = 5
	defaultPublishAttempts = 3
	defaultPublishBackoff  = 20 * time.Millisecond
	maxStoredErrorLen      = 512
)

// Config bounds one dispatch cycle.
type Config struct {
	// BatchSize caps the events handled by DispatchPending.
	BatchSize int
	// MaxAttempts is how many claims an event gets before it is INVALID.
	MaxAttempts int
	// PublishAttempts is how many times a handler is retried inside one
	// claim before the claim is marked FAILED.
	PublishAttempts int
	PublishBackoff  time.Duration
}

// Result counts the outcome of one dispatch cycle.
type Result struct {
	Processed int
	Published int
	Failed    int
	Skipped   int
}

// Dispatcher delivers stored events to registered handlers. It runs
// synchronously when called; there is no background loop.
type Dispatcher struct {
	repo         Repository
	handlers     *HandlerRegistry
	logger       *zap.Logger
	tracer       trace.Tracer
	cfg          Config
	nonRetryable func(error) bool
	now          func() time.Time
}

type DispatcherOption func(*Dispatcher)

func WithConfig(cfg Config) DispatcherOption {
	return func(d *Dispatcher) { d.cfg = cfg }
}

// WithNonRetryable marks errors that should send an event straight to
// INVALID instead of FAILED.
func WithNonRetryable(fn func(error) bool) DispatcherOption {
	return func(d *Dispatcher) { d.nonRetryable = fn }
}

func WithTracer(t trace.Tracer) DispatcherOption {
	return func(d *Dispatcher) { d.tracer = t }
}

func NewDispatcher(repo Repository, handlers *HandlerRegistry, logger *zap.Logger, opts ...DispatcherOption) (*Dispatcher, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if handlers == nil {
		handlers = NewHandlerRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		repo:     repo,
		handlers: handlers,
		logger:   logger,
		tracer:   otel.Tracer("kisheka/outbox"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cfg.BatchSize <= 0 {
		d.cfg.BatchSize = defaultBatchSize
	}
	if d.cfg.MaxAttempts <= 0 {
		d.cfg.MaxAttempts = defaultMaxAttempts
	}
	if d.cfg.PublishAttempts <= 0 {
		d.cfg.PublishAttempts = defaultPublishAttempts
	}
	if d.cfg.PublishBackoff <= 0 {
		d.cfg.PublishBackoff = defaultPublishBackoff
	}
	return d, nil
}

// DispatchPending handles up to BatchSize dispatchable events, oldest first.
func (d *Dispatcher) DispatchPending(ctx context.Context) (Result, error) {
	ctx, span := d.tracer.Start(ctx, "outbox.dispatch")
	defer span.End()

	events, err := d.repo.ListDispatchable(ctx, d.cfg.BatchSize, d.cfg.MaxAttempts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing events")
		return Result{}, fmt.Errorf("listing dispatchable events: %w", err)
	}
	span.SetAttributes(attribute.Int("outbox.batch", len(events)))

	var res Result
	for _, ev := range events {
		if ctx.Err() != nil {
			break
		}
		err := d.dispatch(ctx, ev)
		switch {
		case errors.Is(err, ErrClaimLost):
			res.Skipped++
			continue
		case err != nil:
			res.Failed++
		default:
			res.Published++
		}
		res.Processed++
	}
	span.SetAttributes(
		attribute.Int("outbox.published", res.Published),
		attribute.Int("outbox.failed", res.Failed),
	)
	return res, nil
}

// DispatchEvent handles one event by id and returns the handler's error if
// delivery failed. The event stays stored for a later DispatchPending.
func (d *Dispatcher) DispatchEvent(ctx context.Context, id string) error {
	ctx, span := d.tracer.Start(ctx, "outbox.dispatch_event", trace.WithAttributes(attribute.String("outbox.event_id", id)))
	defer span.End()

	ev, err := d.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "loading event")
		return err
	}
	if err := d.dispatch(ctx, ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatching event")
		return err
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, ev *Event) error {
	if !ev.Status.Dispatchable() {
		return fmt.Errorf("%w: event %s is %s", ErrClaimLost, ev.ID, ev.Status)
	}
	if err := d.repo.Claim(ctx, ev.ID, d.now()); err != nil {
		return err
	}

	log := d.logger.With(
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.EventType),
		zap.String("aggregate_id", ev.AggregateID),
	)

	handleErr := retry.Do(ctx, retry.Policy{
		MaxAttempts: d.cfg.PublishAttempts,
		BaseDelay:   d.cfg.PublishBackoff,
		Retryable:   func(err error) bool { return !d.isNonRetryable(err) },
	}, func(ctx context.Context) error {
		return d.handlers.Handle(ctx, ev)
	})

	if handleErr == nil {
		if err := d.repo.MarkPublished(ctx, ev.ID, d.now()); err != nil {
			// The handler ran; the event may be delivered again.
			log.Error("outbox event handled but PUBLISHED state not persisted", zap.Error(err))
		}
		return nil
	}

	msg := truncate(handleErr.Error(), maxStoredErrorLen)
	if d.isNonRetryable(handleErr) {
		log.Warn("outbox event invalid", zap.Error(handleErr))
		if err := d.repo.MarkInvalid(ctx, ev.ID, msg, d.now()); err != nil {
			log.Error("failed to mark outbox event invalid", zap.Error(err))
		}
		return handleErr
	}

	log.Warn("outbox event delivery failed", zap.Error(handleErr), zap.Int("attempts", ev.Attempts+1))
	if err := d.repo.MarkFailed(ctx, ev.ID, msg, d.cfg.MaxAttempts, d.now()); err != nil {
		log.Error("failed to mark outbox event failed", zap.Error(err))
	}
	return handleErr
}

func (d *Dispatcher) isNonRetryable(err error) bool {
	if errors.Is(err, ErrHandlerNotRegistered) {
		return true
	}
	return d.nonRetryable != nil && d.nonRetryable(err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
