package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"github.com/Victorkib/kisheka-construction-sub013/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRecalculatePhase_PersistsSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Substructure", testutil.WithAllocation("10000"))
	env.seedSpend(t, ph.ID, domain.CostMaterials, "1200", domain.SpendApproved)
	env.seedSpend(t, ph.ID, domain.CostLabour, "800", domain.SpendApproved)
	env.seedSpend(t, ph.ID, domain.CostEquipment, "1000", domain.SpendCommitted)
	env.seedSpend(t, ph.ID, domain.CostExpenses, "300", domain.SpendPending)
	env.seedSpend(t, ph.ID, domain.CostLabour, "5000", domain.SpendRejected)

	summary, err := env.recalcService().RecalculatePhase(ctx, ph.ID)
	require.NoError(t, err)
	assert.True(t, testutil.Dec("7000").Equal(summary.Remaining))
	assert.Equal(t, domain.StatusWithinBudget, summary.Status)

	stored := env.phase(t, ph.ID)
	assert.True(t, testutil.Dec("2000").Equal(stored.Actual.Total), "actual: %s", stored.Actual.Total)
	assert.True(t, testutil.Dec("1200").Equal(stored.Actual.Materials))
	assert.True(t, testutil.Dec("800").Equal(stored.Actual.Labour))
	assert.True(t, stored.Actual.Equipment.IsZero())
	assert.True(t, testutil.Dec("1000").Equal(stored.Financial.Committed))
	assert.True(t, testutil.Dec("300").Equal(stored.Financial.Estimated))
	assert.True(t, testutil.Dec("7000").Equal(stored.Financial.Remaining))
	assert.True(t, testutil.Dec("10000").Equal(stored.Allocation.Total), "allocation untouched")
	assert.Equal(t, ph.Version+1, stored.Version)
}

func TestRecalculatePhase_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Substructure", testutil.WithAllocation("10000"))
	env.seedSpend(t, ph.ID, domain.CostMaterials, "2000", domain.SpendApproved)
	svc := env.recalcService()

	first, err := svc.RecalculatePhase(ctx, ph.ID)
	require.NoError(t, err)
	afterFirst := env.phase(t, ph.ID)

	second, err := svc.RecalculatePhase(ctx, ph.ID)
	require.NoError(t, err)
	afterSecond := env.phase(t, ph.ID)

	assert.True(t, first.Equal(second))
	assert.Equal(t, afterFirst.Version, afterSecond.Version, "unchanged summary is not rewritten")
}

func TestRecalculatePhase_OverBudgetClampsRemaining(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Roofing", testutil.WithAllocation("1000"))
	env.seedSpend(t, ph.ID, domain.CostMaterials, "1500", domain.SpendApproved)

	summary, err := env.recalcService().RecalculatePhase(context.Background(), ph.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOverBudget, summary.Status)
	assert.True(t, summary.Remaining.IsZero(), "remaining: %s", summary.Remaining)
	assert.True(t, env.phase(t, ph.ID).Financial.Remaining.IsZero())
}

func TestRecalculatePhase_MissingOrDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.recalcService()

	_, err := svc.RecalculatePhase(ctx, "no-such-phase")
	requireCode(t, err, app.ErrCodeNotFound)

	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Roofing", testutil.WithAllocation("1000"))
	require.NoError(t, env.phases.SoftDelete(ctx, ph.ID, time.Now()))
	_, err = svc.RecalculatePhase(ctx, ph.ID)
	requireCode(t, err, app.ErrCodeNotFound)
}

// conflictUoW loses every optimistic write.
type conflictUoW struct {
	calls atomic.Int32
}

func (u *conflictUoW) WithinTx(context.Context, db.TxFunc) error {
	u.calls.Add(1)
	return fmt.Errorf("phase p1: %w", repository.ErrVersionConflict)
}

func TestRecalculatePhase_ConflictAfterRetries(t *testing.T) {
	env := newTestEnv(t)
	uow := &conflictUoW{}
	logger, logs := observedLogger()
	svc := NewRecalculationService(uow, env.phases, env.projects, env.capital,
		RecalcConfig{MaxRetries: 3, BaseDelay: time.Microsecond}, WithLogger(logger))

	_, err := svc.RecalculatePhase(context.Background(), "p1")
	be := requireCode(t, err, app.ErrCodeConflict)
	assert.ErrorIs(t, be, repository.ErrVersionConflict)
	assert.Equal(t, int32(3), uow.calls.Load())
	assert.Equal(t, 1, logs.FilterMessage("phase recalculation lost every version race").Len())
}

func TestRecalculatePhase_RecordsSpan(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Roofing", testutil.WithAllocation("1000"))
	env.seedSpend(t, ph.ID, domain.CostMaterials, "950", domain.SpendApproved)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, err := env.recalcService(WithTracer(tp.Tracer("test"))).RecalculatePhase(context.Background(), ph.ID)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "recalculation.phase", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("phase.id", ph.ID))
	assert.Contains(t, spans[0].Attributes(), attribute.String("phase.budget_status", string(domain.StatusApproachingBudget)))
}

func TestRecalculateProject_AllPhasesInSequenceOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)
	var ids []string
	for i, name := range []string{"Earthworks", "Foundations", "Frame", "Envelope", "Fit-out", "Handover"} {
		ph := env.seedPhase(t, project.ID, name, testutil.WithAllocation("1000"), testutil.WithSequence(i+1))
		env.seedSpend(t, ph.ID, domain.CostMaterials, fmt.Sprintf("%d", (i+1)*100), domain.SpendApproved)
		ids = append(ids, ph.ID)
	}
	deleted := env.seedPhase(t, project.ID, "Cancelled", testutil.WithAllocation("1000"), testutil.WithSequence(99))
	require.NoError(t, env.phases.SoftDelete(ctx, deleted.ID, time.Now()))

	svc := NewRecalculationService(env.uow, env.phases, env.projects, env.capital,
		RecalcConfig{Concurrency: 2, BaseDelay: time.Millisecond})
	summaries, err := svc.RecalculateProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, summaries, len(ids))

	for i, s := range summaries {
		assert.Equal(t, ids[i], s.PhaseID)
		want := testutil.Dec(fmt.Sprintf("%d", (i+1)*100))
		assert.True(t, want.Equal(s.ActualSpending.Total), "phase %d actual %s", i, s.ActualSpending.Total)
		assert.True(t, want.Equal(env.phase(t, ids[i]).Actual.Total))
	}
}

func TestRecalculateProject_UnknownProject(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.recalcService().RecalculateProject(context.Background(), "nope")
	requireCode(t, err, app.ErrCodeNotFound)
}

func TestCalculateTotalPhaseBudgets_ExcludesDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)
	env.seedPhase(t, project.ID, "Earthworks", testutil.WithAllocation("12000.50"))
	env.seedPhase(t, project.ID, "Frame", testutil.WithAllocation("30000"))
	gone := env.seedPhase(t, project.ID, "Cancelled", testutil.WithAllocation("5000"))
	require.NoError(t, env.phases.SoftDelete(ctx, gone.ID, time.Now()))

	total, err := env.recalcService().CalculateTotalPhaseBudgets(ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, testutil.Dec("42000.50").Equal(total), "total: %s", total)
}

func TestCalculateProjectTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t, testutil.WithProjectBudget("100000"))
	a := env.seedPhase(t, project.ID, "Earthworks", testutil.WithAllocation("20000"))
	b := env.seedPhase(t, project.ID, "Frame", testutil.WithAllocation("30000"))
	env.seedSpend(t, a.ID, domain.CostMaterials, "5000", domain.SpendApproved)
	env.seedSpend(t, b.ID, domain.CostLabour, "2000", domain.SpendCommitted)
	env.seedSpend(t, b.ID, domain.CostLabour, "700", domain.SpendPending)
	env.seedCapital(t, project.ID, domain.CapitalInvestment, "60000")
	env.seedCapital(t, project.ID, domain.CapitalUsage, "15000")

	svc := env.recalcService()
	_, err := svc.RecalculateProject(ctx, project.ID)
	require.NoError(t, err)

	totals, err := svc.CalculateProjectTotals(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.PhaseCount)
	assert.True(t, testutil.Dec("100000").Equal(totals.BudgetTotal))
	assert.True(t, testutil.Dec("50000").Equal(totals.TotalPhaseBudgets))
	assert.True(t, testutil.Dec("50000").Equal(totals.Unallocated))
	assert.True(t, testutil.Dec("5000").Equal(totals.TotalActual))
	assert.True(t, testutil.Dec("2000").Equal(totals.TotalCommitted))
	assert.True(t, testutil.Dec("700").Equal(totals.TotalEstimated))
	assert.True(t, testutil.Dec("43000").Equal(totals.TotalRemaining), "remaining: %s", totals.TotalRemaining)
	assert.True(t, testutil.Dec("60000").Equal(totals.TotalInvested))
	assert.True(t, testutil.Dec("15000").Equal(totals.TotalUsed))
	assert.True(t, testutil.Dec("45000").Equal(totals.CapitalAvailable))
}
