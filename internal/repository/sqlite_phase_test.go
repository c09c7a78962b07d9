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

func seedProject(t *testing.T, ctx context.Context, repo *SQLiteProjectRepo, opts ...testutil.ProjectOption) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject("Seed", opts...)
	require.NoError(t, repo.Create(ctx, p))
	return p
}

func TestPhaseRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	repo := NewSQLitePhaseRepo(db)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	ph := testutil.NewTestPhase(proj.ID, "Foundation",
		testutil.WithAllocation("250000.75"),
		testutil.WithPlannedDates(start, end))
	ph.Allocation.Materials = testutil.Dec("150000")
	require.NoError(t, repo.Create(ctx, ph))

	fetched, err := repo.GetByID(ctx, ph.ID)
	require.NoError(t, err)
	assert.Equal(t, "Foundation", fetched.Name)
	assert.Equal(t, domain.PhaseNotStarted, fetched.Status)
	assert.True(t, fetched.Allocation.Total.Equal(testutil.Dec("250000.75")))
	assert.True(t, fetched.Allocation.Materials.Equal(testutil.Dec("150000")))
	assert.True(t, fetched.Financial.Remaining.Equal(testutil.Dec("250000.75")))
	assert.True(t, fetched.Actual.Total.IsZero())
	require.NotNil(t, fetched.PlannedEndDate)
	assert.Equal(t, end, *fetched.PlannedEndDate)
	assert.Empty(t, fetched.DependsOn)
}

func TestPhaseRepo_DependenciesRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	repo := NewSQLitePhaseRepo(db)

	foundation := testutil.NewTestPhase(proj.ID, "Foundation")
	walls := testutil.NewTestPhase(proj.ID, "Walls")
	roof := testutil.NewTestPhase(proj.ID, "Roof", testutil.WithDependsOn(foundation.ID, walls.ID))
	require.NoError(t, repo.Create(ctx, foundation))
	require.NoError(t, repo.Create(ctx, walls))
	require.NoError(t, repo.Create(ctx, roof))

	fetched, err := repo.GetByID(ctx, roof.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{foundation.ID, walls.ID}, fetched.DependsOn)

	list, err := repo.ListByProject(ctx, proj.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Roof", list[2].Name, "ordered by sequence")
	assert.ElementsMatch(t, []string{foundation.ID, walls.ID}, list[2].DependsOn)
	assert.Empty(t, list[0].DependsOn)
}

func TestPhaseRepo_DuplicateSequenceRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	repo := NewSQLitePhaseRepo(db)

	require.NoError(t, repo.Create(ctx, testutil.NewTestPhase(proj.ID, "A", testutil.WithSequence(1))))
	assert.Error(t, repo.Create(ctx, testutil.NewTestPhase(proj.ID, "B", testutil.WithSequence(1))))
}

func TestPhaseRepo_UnknownProjectRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePhaseRepo(db)

	err := repo.Create(context.Background(), testutil.NewTestPhase("no-such-project", "Orphan"))
	assert.Error(t, err, "foreign key enforced")
}

func TestPhaseRepo_UpdateAllocation(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	repo := NewSQLitePhaseRepo(db)

	ph := testutil.NewTestPhase(proj.ID, "Walls", testutil.WithAllocation("10000"))
	require.NoError(t, repo.Create(ctx, ph))

	ph.Allocation = ph.Allocation.WithTotalDelta(testutil.Dec("2500"))
	ph.Financial.Remaining = testutil.Dec("12500")
	require.NoError(t, repo.UpdateAllocation(ctx, ph))
	assert.Equal(t, int64(2), ph.Version)

	fetched, err := repo.GetByID(ctx, ph.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Allocation.Total.Equal(testutil.Dec("12500")))
	assert.True(t, fetched.Financial.Remaining.Equal(testutil.Dec("12500")))
	assert.Equal(t, int64(2), fetched.Version)
}

func TestPhaseRepo_UpdateFinancials_StaleVersionConflicts(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	repo := NewSQLitePhaseRepo(db)

	ph := testutil.NewTestPhase(proj.ID, "Roof", testutil.WithAllocation("8000"))
	require.NoError(t, repo.Create(ctx, ph))

	stale, err := repo.GetByID(ctx, ph.ID)
	require.NoError(t, err)

	ph.Actual = ph.Actual.Add(domain.CostLabour, testutil.Dec("1200"))
	ph.Financial.Remaining = testutil.Dec("6800")
	require.NoError(t, repo.UpdateFinancials(ctx, ph))

	stale.Financial.Committed = testutil.Dec("99")
	assert.ErrorIs(t, repo.UpdateFinancials(ctx, stale), ErrVersionConflict)

	fetched, err := repo.GetByID(ctx, ph.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Actual.Labour.Equal(testutil.Dec("1200")))
	assert.True(t, fetched.Financial.Committed.IsZero())
}

func TestPhaseRepo_SoftDeleteHidesFromList(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	repo := NewSQLitePhaseRepo(db)

	a := testutil.NewTestPhase(proj.ID, "A")
	b := testutil.NewTestPhase(proj.ID, "B")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.SoftDelete(ctx, b.ID, time.Now()))

	live, err := repo.ListByProject(ctx, proj.ID, false)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, a.ID, live[0].ID)

	all, err := repo.ListByProject(ctx, proj.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, repo.SoftDelete(ctx, "missing", time.Now()), ErrNotFound)
}

func TestProjectSequenceRepo_NextPhaseSeq(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	other := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	seqs := NewSQLiteProjectSequenceRepo(db)

	for want := 1; want <= 3; want++ {
		got, err := seqs.NextPhaseSeq(ctx, proj.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := seqs.NextPhaseSeq(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got, "sequences are per project")
}

func TestProjectSequenceRepo_SeedsFromExistingPhases(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	phases := NewSQLitePhaseRepo(db)

	require.NoError(t, phases.Create(ctx, testutil.NewTestPhase(proj.ID, "Imported", testutil.WithSequence(7))))

	got, err := NewSQLiteProjectSequenceRepo(db).NextPhaseSeq(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got)
}
