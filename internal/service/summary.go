package service

import (
	"context"
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/finance"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"github.com/shopspring/decimal"
)

// computeSummary asks every spend domain for its figures and derives the
// phase summary from them.
func computeSummary(ctx context.Context, aggregators []repository.CostAggregator, p *domain.Phase) (finance.Summary, error) {
	var actual domain.ActualSpending
	committed := decimal.Zero
	estimated := decimal.Zero

	for _, agg := range aggregators {
		approved, err := agg.SumApprovedCost(ctx, p.ID)
		if err != nil {
			return finance.Summary{}, fmt.Errorf("aggregating %s actual cost: %w", agg.Category(), err)
		}
		actual = actual.Add(agg.Category(), approved)

		c, err := agg.SumCommittedCost(ctx, p.ID)
		if err != nil {
			return finance.Summary{}, fmt.Errorf("aggregating %s committed cost: %w", agg.Category(), err)
		}
		committed = committed.Add(c)

		e, err := agg.SumEstimatedCost(ctx, p.ID)
		if err != nil {
			return finance.Summary{}, fmt.Errorf("aggregating %s estimated cost: %w", agg.Category(), err)
		}
		estimated = estimated.Add(e)
	}

	return finance.Summarize(finance.SummaryInput{
		PhaseID:    p.ID,
		ProjectID:  p.ProjectID,
		Allocation: p.Allocation.Total,
		Actual:     actual,
		Committed:  committed,
		Estimated:  estimated,
	}), nil
}

// storedSummary is the summary implied by the figures already on the phase
// record.
func storedSummary(p *domain.Phase) finance.Summary {
	return finance.Summary{
		PhaseID:          p.ID,
		ProjectID:        p.ProjectID,
		BudgetAllocation: p.Allocation.Total,
		ActualSpending:   p.Actual,
		Committed:        p.Financial.Committed,
		Estimated:        p.Financial.Estimated,
		Remaining:        p.Financial.Remaining,
		Status: finance.ClassifyStatus(p.Allocation.Total, p.Actual.Total,
			p.Financial.Committed, p.Financial.Estimated),
	}
}
