package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/finance"
	"github.com/Victorkib/kisheka-construction-sub013/internal/outbox"
	"github.com/Victorkib/kisheka-construction-sub013/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (e *testEnv) dispatcher(t *testing.T, recalc RecalculationService) *outbox.Dispatcher {
	t.Helper()
	registry := outbox.NewHandlerRegistry()
	if recalc != nil {
		require.NoError(t, RegisterSpendChangedHandler(registry, recalc))
	}
	d, err := outbox.NewDispatcher(e.events, registry, zap.NewNop(),
		outbox.WithConfig(outbox.Config{PublishAttempts: 1, PublishBackoff: time.Millisecond}),
		outbox.WithNonRetryable(IsPermanentDispatchError))
	require.NoError(t, err)
	return d
}

func TestRecordSpend_RecalculatesPhase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Frame", testutil.WithAllocation("10000"))
	svc := NewSpendService(env.uow, env.phases, env.spend, env.dispatcher(t, env.recalcService()))

	res, err := svc.Record(ctx, app.RecordSpendRequest{
		PhaseID: ph.ID, Category: "MATERIALS", Description: " rebar Y12 ",
		Quantity: testutil.Dec("40"), UnitCost: testutil.Dec("55.5"), Status: domain.SpendApproved,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, domain.CostMaterials, res.Entry.Category)
	assert.Equal(t, "rebar Y12", res.Entry.Description)

	stored := env.phase(t, ph.ID)
	assert.True(t, testutil.Dec("2220").Equal(stored.Actual.Total), "actual: %s", stored.Actual.Total)
	assert.True(t, testutil.Dec("2220").Equal(stored.Actual.Materials))
	assert.True(t, testutil.Dec("7780").Equal(stored.Financial.Remaining))

	pending, err := env.events.ListDispatchable(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, pending, "delivered event is not dispatchable again")
}

func TestRecordSpend_DefaultsToPendingAsEstimate(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Frame", testutil.WithAllocation("1000"))
	svc := NewSpendService(env.uow, env.phases, env.spend, env.dispatcher(t, env.recalcService()))

	res, err := svc.Record(context.Background(), app.RecordSpendRequest{
		PhaseID: ph.ID, Category: domain.CostLabour, Quantity: testutil.Dec("1"), UnitCost: testutil.Dec("1200"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SpendPending, res.Entry.Status)

	stored := env.phase(t, ph.ID)
	assert.True(t, testutil.Dec("1200").Equal(stored.Financial.Estimated))
	assert.True(t, stored.Actual.Total.IsZero())
	assert.True(t, testutil.Dec("1000").Equal(stored.Financial.Remaining))
}

func TestRecordSpend_DeliveryFailureIsPartialFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Frame", testutil.WithAllocation("10000"))
	logger, logs := observedLogger()
	// No SpendChanged handler is registered.
	svc := NewSpendService(env.uow, env.phases, env.spend, env.dispatcher(t, nil), WithLogger(logger))

	res, err := svc.Record(ctx, app.RecordSpendRequest{
		PhaseID: ph.ID, Category: domain.CostEquipment, Quantity: testutil.Dec("1"),
		UnitCost: testutil.Dec("900"), Status: domain.SpendApproved,
	})
	require.NoError(t, err, "the entry committed")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, app.WarnPartialFailure, res.Warnings[0].Code)
	assert.Equal(t, ph.ID, res.Warnings[0].PhaseID)

	entries, err := svc.ListByPhase(ctx, ph.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.True(t, env.phase(t, ph.ID).Actual.Total.IsZero(), "summary is stale until redelivery")
	assert.Equal(t, 1, logs.FilterMessage("spend recorded but phase recalculation failed").Len())
}

func TestRecordSpend_StoredEventsDrainLater(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Frame", testutil.WithAllocation("10000"))
	svc := NewSpendService(env.uow, env.phases, env.spend, nil)

	for _, amount := range []string{"100", "250"} {
		res, err := svc.Record(ctx, app.RecordSpendRequest{
			PhaseID: ph.ID, Category: domain.CostExpenses, Quantity: testutil.Dec("1"),
			UnitCost: testutil.Dec(amount), Status: domain.SpendApproved,
		})
		require.NoError(t, err)
		assert.Empty(t, res.Warnings)
	}
	assert.True(t, env.phase(t, ph.ID).Actual.Total.IsZero())

	res, err := env.dispatcher(t, env.recalcService()).DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Published)
	assert.Equal(t, 0, res.Failed)

	stored := env.phase(t, ph.ID)
	assert.True(t, testutil.Dec("350").Equal(stored.Actual.Total))
	assert.True(t, testutil.Dec("350").Equal(stored.Actual.Expenses))
}

type flakyRecalc struct {
	RecalculationService
	failures int
}

func (f *flakyRecalc) RecalculatePhase(ctx context.Context, phaseID string) (finance.Summary, error) {
	if f.failures > 0 {
		f.failures--
		return finance.Summary{}, errors.New("database is locked")
	}
	return f.RecalculationService.RecalculatePhase(ctx, phaseID)
}

func TestRecordSpend_TransientFailureRecoversOnDrain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Frame", testutil.WithAllocation("10000"))
	d := env.dispatcher(t, &flakyRecalc{RecalculationService: env.recalcService(), failures: 1})
	svc := NewSpendService(env.uow, env.phases, env.spend, d)

	res, err := svc.Record(ctx, app.RecordSpendRequest{
		PhaseID: ph.ID, Category: domain.CostMaterials, Quantity: testutil.Dec("2"),
		UnitCost: testutil.Dec("300"), Status: domain.SpendCommitted,
	})
	require.NoError(t, err)
	assert.Contains(t, warningCodes(res.Warnings), app.WarnPartialFailure)

	drained, err := d.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, drained.Published)
	assert.True(t, testutil.Dec("600").Equal(env.phase(t, ph.ID).Financial.Committed))
}

func TestRecordSpend_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Frame", testutil.WithAllocation("10000"))
	svc := NewSpendService(env.uow, env.phases, env.spend, nil)

	valid := app.RecordSpendRequest{
		PhaseID: ph.ID, Category: domain.CostMaterials, Quantity: testutil.Dec("1"), UnitCost: testutil.Dec("10"),
	}
	tests := []struct {
		name   string
		mutate func(r *app.RecordSpendRequest)
		code   app.BudgetErrorCode
	}{
		{"unknown category", func(r *app.RecordSpendRequest) { r.Category = "fuel" }, app.ErrCodeInvalidInput},
		{"zero quantity", func(r *app.RecordSpendRequest) { r.Quantity = testutil.Dec("0") }, app.ErrCodeInvalidInput},
		{"negative unit cost", func(r *app.RecordSpendRequest) { r.UnitCost = testutil.Dec("-1") }, app.ErrCodeInvalidInput},
		{"unknown status", func(r *app.RecordSpendRequest) { r.Status = "paid" }, app.ErrCodeInvalidInput},
		{"missing phase", func(r *app.RecordSpendRequest) { r.PhaseID = "ghost" }, app.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := svc.Record(ctx, req)
			requireCode(t, err, tt.code)
		})
	}

	entries, err := svc.ListByPhase(ctx, ph.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSetSpendStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Frame", testutil.WithAllocation("10000"))
	svc := NewSpendService(env.uow, env.phases, env.spend, env.dispatcher(t, env.recalcService()))

	res, err := svc.Record(ctx, app.RecordSpendRequest{
		PhaseID: ph.ID, Category: domain.CostLabour, Quantity: testutil.Dec("10"), UnitCost: testutil.Dec("150"),
	})
	require.NoError(t, err)
	entryID := res.Entry.ID
	assert.True(t, testutil.Dec("1500").Equal(env.phase(t, ph.ID).Financial.Estimated))

	res, err = svc.SetStatus(ctx, entryID, "Committed")
	require.NoError(t, err)
	assert.Equal(t, domain.SpendCommitted, res.Entry.Status)
	stored := env.phase(t, ph.ID)
	assert.True(t, stored.Financial.Estimated.IsZero())
	assert.True(t, testutil.Dec("1500").Equal(stored.Financial.Committed))

	_, err = svc.SetStatus(ctx, entryID, domain.SpendApproved)
	require.NoError(t, err)
	stored = env.phase(t, ph.ID)
	assert.True(t, stored.Financial.Committed.IsZero())
	assert.True(t, testutil.Dec("1500").Equal(stored.Actual.Labour))
	versionAfterApproval := stored.Version

	_, err = svc.SetStatus(ctx, entryID, domain.SpendApproved)
	require.NoError(t, err)
	assert.Equal(t, versionAfterApproval, env.phase(t, ph.ID).Version)

	_, err = svc.SetStatus(ctx, entryID, domain.SpendRejected)
	require.NoError(t, err)
	assert.True(t, env.phase(t, ph.ID).Actual.Total.IsZero())

	_, err = svc.SetStatus(ctx, entryID, "void")
	requireCode(t, err, app.ErrCodeInvalidInput)
	_, err = svc.SetStatus(ctx, "ghost", domain.SpendApproved)
	requireCode(t, err, app.ErrCodeNotFound)
}

func TestSetSpendStatus_SameStatusEmitsNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)
	ph := env.seedPhase(t, project.ID, "Frame", testutil.WithAllocation("10000"))
	entry := env.seedSpend(t, ph.ID, domain.CostMaterials, "100", domain.SpendApproved)
	svc := NewSpendService(env.uow, env.phases, env.spend, nil)

	res, err := svc.SetStatus(ctx, entry.ID, domain.SpendApproved)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	pending, err := env.events.ListDispatchable(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = svc.SetStatus(ctx, entry.ID, domain.SpendRejected)
	require.NoError(t, err)
	pending, err = env.events.ListDispatchable(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	var payload outbox.SpendChanged
	require.NoError(t, pending[0].Decode(&payload))
	assert.Equal(t, ph.ID, payload.PhaseID)
	assert.Equal(t, entry.ID, payload.SpendEntryID)
	assert.Equal(t, "status approved -> rejected", payload.Cause)
}
