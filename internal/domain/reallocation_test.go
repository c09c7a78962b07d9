package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func TestReallocation_Validate(t *testing.T) {
	cases := []struct {
		name    string
		req     BudgetReallocationRequest
		wantErr bool
	}{
		{"phase to phase", BudgetReallocationRequest{Type: PhaseToPhase, FromPhaseID: strPtr("a"), ToPhaseID: strPtr("b"), Amount: dec("10")}, false},
		{"phase to phase same phase", BudgetReallocationRequest{Type: PhaseToPhase, FromPhaseID: strPtr("a"), ToPhaseID: strPtr("a"), Amount: dec("10")}, true},
		{"phase to phase missing target", BudgetReallocationRequest{Type: PhaseToPhase, FromPhaseID: strPtr("a"), Amount: dec("10")}, true},
		{"project to phase", BudgetReallocationRequest{Type: ProjectToPhase, ToPhaseID: strPtr("b"), Amount: dec("10")}, false},
		{"project to phase with source", BudgetReallocationRequest{Type: ProjectToPhase, FromPhaseID: strPtr("a"), ToPhaseID: strPtr("b"), Amount: dec("10")}, true},
		{"phase to project", BudgetReallocationRequest{Type: PhaseToProject, FromPhaseID: strPtr("a"), Amount: dec("10")}, false},
		{"phase to project with target", BudgetReallocationRequest{Type: PhaseToProject, FromPhaseID: strPtr("a"), ToPhaseID: strPtr("b"), Amount: dec("10")}, true},
		{"zero amount", BudgetReallocationRequest{Type: ProjectToPhase, ToPhaseID: strPtr("b"), Amount: dec("0")}, true},
		{"negative amount", BudgetReallocationRequest{Type: ProjectToPhase, ToPhaseID: strPtr("b"), Amount: dec("-5")}, true},
		{"unknown type", BudgetReallocationRequest{Type: "SIDEWAYS", Amount: dec("5")}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReallocation_MarkExecutedStampsOneTimestamp(t *testing.T) {
	r := &BudgetReallocationRequest{Status: ReallocationPending}
	require.NoError(t, r.MarkExecuted("user-7", "approved at site meeting", testNow))

	assert.Equal(t, ReallocationExecuted, r.Status)
	assert.Equal(t, "user-7", *r.ApprovedBy)
	assert.Equal(t, "approved at site meeting", *r.ApprovalNotes)
	assert.Equal(t, testNow, *r.ApprovedAt)
	assert.Equal(t, testNow, *r.ExecutedAt)
	assert.Equal(t, testNow, r.UpdatedAt)
	assert.True(t, r.IsTerminal())
}

func TestReallocation_TerminalStatesAreFinal(t *testing.T) {
	for _, status := range []ReallocationStatus{ReallocationExecuted, ReallocationRejected} {
		r := &BudgetReallocationRequest{Status: status}
		assert.True(t, errors.Is(r.MarkExecuted("u", "", testNow), ErrRequestNotPending), "execute from %s", status)
		assert.True(t, errors.Is(r.MarkRejected("u", "", testNow), ErrRequestNotPending), "reject from %s", status)
		assert.Equal(t, status, r.Status)
	}
}

func TestReallocation_MarkRejected(t *testing.T) {
	r := &BudgetReallocationRequest{Status: ReallocationPending}
	require.NoError(t, r.MarkRejected("user-2", "budget frozen", testNow))
	assert.Equal(t, ReallocationRejected, r.Status)
	assert.Equal(t, "budget frozen", *r.RejectionReason)
	assert.Nil(t, r.ExecutedAt)
}
