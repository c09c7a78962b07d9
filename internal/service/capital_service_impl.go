package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/finance"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type capitalService struct {
	projects repository.ProjectRepo
	capital  repository.CapitalRepo
	opts     options
}

func NewCapitalService(projects repository.ProjectRepo, capital repository.CapitalRepo, opts ...Option) CapitalService {
	return &capitalService{
		projects: projects,
		capital:  capital,
		opts:     buildOptions(opts),
	}
}

func (s *capitalService) ValidateCapital(ctx context.Context, projectID string, amount decimal.Decimal) (check finance.CapitalCheck, err error) {
	ctx, span := s.opts.tracer.Start(ctx, "capital.validate", trace.WithAttributes(
		attribute.String("project.id", projectID),
		attribute.String("capital.amount", amount.String()),
	))
	defer func() { endSpan(span, err) }()

	if _, err := loadLiveProject(ctx, s.projects, projectID); err != nil {
		return finance.CapitalCheck{}, err
	}
	check, err = checkCapital(ctx, s.capital, s.opts.logger, projectID, amount)
	if err != nil {
		return finance.CapitalCheck{}, err
	}
	span.SetAttributes(attribute.Bool("capital.warning", check.Warning))
	return check, nil
}

func (s *capitalService) Record(ctx context.Context, req app.RecordCapitalRequest) (entry *domain.CapitalEntry, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": req.ProjectID, "kind": string(req.Kind)}
	defer observe(ctx, s.opts.observer, "record-capital", startedAt, fields, &err)

	switch req.Kind {
	case domain.CapitalInvestment, domain.CapitalUsage:
	default:
		return nil, app.InvalidInput("unknown capital entry kind %q", req.Kind)
	}
	if !req.Amount.IsPositive() {
		return nil, app.InvalidInput("capital amount must be positive, got %s", req.Amount)
	}
	if _, err := loadLiveProject(ctx, s.projects, req.ProjectID); err != nil {
		return nil, err
	}

	entry = &domain.CapitalEntry{
		ID:        uuid.New().String(),
		ProjectID: req.ProjectID,
		Kind:      req.Kind,
		Amount:    req.Amount,
		Note:      strings.TrimSpace(req.Note),
		CreatedAt: s.opts.now().Truncate(time.Second),
	}
	if err := s.capital.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording capital entry: %w", err)
	}
	return entry, nil
}

func (s *capitalService) ListByProject(ctx context.Context, projectID string) ([]*domain.CapitalEntry, error) {
	if _, err := loadLiveProject(ctx, s.projects, projectID); err != nil {
		return nil, err
	}
	return s.capital.ListByProject(ctx, projectID)
}

// checkCapital runs the advisory capital check against ledger, which may be
// transaction-scoped. A result over the warning threshold is logged and
// returned; it is never turned into an error.
func checkCapital(ctx context.Context, ledger repository.CapitalLedger, logger *zap.Logger, projectID string, amount decimal.Decimal) (finance.CapitalCheck, error) {
	snap, err := ledger.GetCapitalSnapshot(ctx, projectID)
	if err != nil {
		return finance.CapitalCheck{}, fmt.Errorf("reading capital snapshot for project %s: %w", projectID, err)
	}
	check := finance.CheckCapital(snap, amount)
	if check.Warning {
		logger.Warn("amount exceeds capital warning threshold",
			zap.String("project_id", projectID),
			zap.String("amount", amount.String()),
			zap.String("available", check.Available.String()),
			zap.String("warning_threshold", check.WarningThreshold.String()),
		)
	}
	return check, nil
}

func capitalWarning(check finance.CapitalCheck) app.Warning {
	return app.Warning{
		Code: app.WarnCapitalThreshold,
		Message: fmt.Sprintf("amount %s is above %s%% of available capital %s (threshold %s)",
			check.Requested.StringFixed(2),
			finance.CapitalWarningRatio.Shift(2).String(),
			check.Available.StringFixed(2),
			check.WarningThreshold.StringFixed(2)),
	}
}
