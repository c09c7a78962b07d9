package service

import (
	"context"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/finance"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type summaryService struct {
	phases      repository.PhaseRepo
	aggregators []repository.CostAggregator
	opts        options
}

func NewSummaryService(phases repository.PhaseRepo, aggregators []repository.CostAggregator, opts ...Option) SummaryService {
	return &summaryService{
		phases:      phases,
		aggregators: aggregators,
		opts:        buildOptions(opts),
	}
}

func (s *summaryService) GetPhaseFinancialSummary(ctx context.Context, phaseID string) (summary finance.Summary, err error) {
	ctx, span := s.opts.tracer.Start(ctx, "summary.phase",
		trace.WithAttributes(attribute.String("phase.id", phaseID)))
	defer func() { endSpan(span, err) }()

	p, err := s.phases.GetByID(ctx, phaseID)
	if err != nil {
		return finance.Summary{}, translateRepoErr(err, "phase", phaseID)
	}
	if p.IsDeleted() {
		return finance.Summary{}, app.NotFound("phase %s not found", phaseID)
	}
	return computeSummary(ctx, s.aggregators, p)
}
