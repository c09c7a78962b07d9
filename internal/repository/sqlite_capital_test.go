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

func TestCapitalRepo_SnapshotSumsLedger(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := seedProject(t, ctx, NewSQLiteProjectRepo(db))
	repo := NewSQLiteCapitalRepo(db)

	empty, err := repo.GetCapitalSnapshot(ctx, proj.ID)
	require.NoError(t, err)
	assert.True(t, empty.TotalInvested.IsZero())
	assert.True(t, empty.Available().IsZero())

	for _, e := range []*domain.CapitalEntry{
		testutil.NewTestCapitalEntry(proj.ID, domain.CapitalInvestment, "60000"),
		testutil.NewTestCapitalEntry(proj.ID, domain.CapitalInvestment, "40000"),
		testutil.NewTestCapitalEntry(proj.ID, domain.CapitalUsage, "85000.50"),
	} {
		require.NoError(t, repo.Append(ctx, e))
	}

	snap, err := repo.GetCapitalSnapshot(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, proj.ID, snap.ProjectID)
	assert.True(t, snap.TotalInvested.Equal(testutil.Dec("100000")))
	assert.True(t, snap.TotalUsed.Equal(testutil.Dec("85000.50")))
	assert.True(t, snap.Available().Equal(testutil.Dec("14999.50")))

	list, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestAuditRepo_RecordAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteAuditRepo(db)

	rec := &domain.AuditRecord{
		ID:         "audit-1",
		EntityType: domain.AuditEntityReallocation,
		EntityID:   "req-1",
		Action:     domain.AuditActionExecuted,
		Actor:      "pm-1",
		OldStatus:  string(domain.ReallocationPending),
		NewStatus:  string(domain.ReallocationExecuted),
		Amount:     testutil.Dec("2500"),
		Details:    map[string]string{"type": "PHASE_TO_PHASE"},
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.Record(ctx, rec))
	require.NoError(t, repo.Record(ctx, &domain.AuditRecord{
		ID: "audit-2", EntityType: domain.AuditEntityReallocation, EntityID: "req-2",
		Action: domain.AuditActionRejected, CreatedAt: time.Now(),
	}))

	list, err := repo.ListByEntity(ctx, domain.AuditEntityReallocation, "req-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pm-1", list[0].Actor)
	assert.True(t, list[0].Amount.Equal(testutil.Dec("2500")))
	assert.Equal(t, "PHASE_TO_PHASE", list[0].Details["type"])

	other, err := repo.ListByEntity(ctx, domain.AuditEntityReallocation, "req-2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Empty(t, other[0].Details)
}
