package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpendRepo_CreateListAndUpdateStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	ph := testutil.NewTestPhase(proj.ID, "Foundation")
	require.NoError(t, NewSQLitePhaseRepo(db).Create(ctx, ph))

	repo := NewSQLiteSpendRepo(db)
	hire := testutil.NewTestSpendEntry(ph.ID, domain.CostEquipment, "3500",
		testutil.WithQuantity("4"), testutil.WithSpendStatus(domain.SpendPending))
	require.NoError(t, repo.Create(ctx, hire))

	fetched, err := repo.GetByID(ctx, hire.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Cost().Equal(testutil.Dec("14000")))
	assert.Equal(t, domain.SpendPending, fetched.Status)

	require.NoError(t, repo.UpdateStatus(ctx, hire.ID, domain.SpendApproved, time.Now()))
	list, err := repo.ListByPhase(ctx, ph.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.SpendApproved, list[0].Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", domain.SpendApproved, time.Now()), ErrNotFound)
}

func TestCostAggregator_SumsByStatusAndCategory(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	phases := NewSQLitePhaseRepo(db)
	ph := testutil.NewTestPhase(proj.ID, "Walls")
	other := testutil.NewTestPhase(proj.ID, "Roof")
	require.NoError(t, phases.Create(ctx, ph))
	require.NoError(t, phases.Create(ctx, other))

	spend := NewSQLiteSpendRepo(db)
	entries := []*domain.SpendEntry{
		testutil.NewTestSpendEntry(ph.ID, domain.CostMaterials, "1000.10"),
		testutil.NewTestSpendEntry(ph.ID, domain.CostMaterials, "0.20"),
		testutil.NewTestSpendEntry(ph.ID, domain.CostMaterials, "400", testutil.WithSpendStatus(domain.SpendCommitted)),
		testutil.NewTestSpendEntry(ph.ID, domain.CostMaterials, "250", testutil.WithSpendStatus(domain.SpendPending)),
		testutil.NewTestSpendEntry(ph.ID, domain.CostMaterials, "999", testutil.WithSpendStatus(domain.SpendRejected)),
		testutil.NewTestSpendEntry(ph.ID, domain.CostLabour, "80", testutil.WithQuantity("12.5")),
		testutil.NewTestSpendEntry(other.ID, domain.CostMaterials, "5000"),
	}
	for _, e := range entries {
		require.NoError(t, spend.Create(ctx, e))
	}

	materials := NewSQLiteCostAggregator(db, domain.CostMaterials)
	approved, err := materials.SumApprovedCost(ctx, ph.ID)
	require.NoError(t, err)
	assert.True(t, approved.Equal(testutil.Dec("1000.30")), "exact decimal sum, got %s", approved)

	committed, err := materials.SumCommittedCost(ctx, ph.ID)
	require.NoError(t, err)
	assert.True(t, committed.Equal(testutil.Dec("400")))

	estimated, err := materials.SumEstimatedCost(ctx, ph.ID)
	require.NoError(t, err)
	assert.True(t, estimated.Equal(testutil.Dec("250")))

	labour, err := NewSQLiteCostAggregator(db, domain.CostLabour).SumApprovedCost(ctx, ph.ID)
	require.NoError(t, err)
	assert.True(t, labour.Equal(testutil.Dec("1000")), "hours x rate")

	equipment, err := NewSQLiteCostAggregator(db, domain.CostEquipment).SumApprovedCost(ctx, ph.ID)
	require.NoError(t, err)
	assert.True(t, equipment.IsZero(), "no rows sums to zero")
}

func TestCostAggregators_OnePerCategory(t *testing.T) {
	db := testutil.NewTestDB(t)
	aggs := CostAggregators(db)
	require.Len(t, aggs, len(domain.CostCategories))
	for i, a := range aggs {
		assert.Equal(t, domain.CostCategories[i], a.Category())
	}
}
