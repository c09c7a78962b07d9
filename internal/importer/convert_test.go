package importer

import (
	"testing"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_BuildsProjectAndPhases(t *testing.T) {
	s := validMinimalSchema()
	s.Project.Code = "twr01"
	s.Project.Budget.Contingency = money("5000")
	s.Phases = []PhaseImport{
		{Key: "foundation", Name: "Foundation", PlannedEndDate: ptrStr("2026-04-30"),
			Allocation: AllocationImport{Total: money("40000"), Materials: money("25000")}},
		{Key: "walls", Name: "Walls", PlannedEndDate: ptrStr("2026-03-15"),
			Allocation: AllocationImport{Total: money("30000")}},
		{Key: "roof", Name: "Roof", Status: "on_hold", DependsOn: []string{"foundation", "walls"}},
	}
	require.Empty(t, ValidateImportSchema(s))

	plan := Convert(s)

	assert.Equal(t, "TWR01", plan.Project.Code, "code is upper-cased")
	assert.Equal(t, domain.ProjectActive, plan.Project.Status)
	assert.True(t, plan.Project.Budget.Total.Equal(money("100000").Decimal))
	assert.True(t, plan.Project.Budget.Contingency.Equal(money("5000").Decimal))
	assert.True(t, plan.Project.Budget.Labour.IsZero())

	require.Len(t, plan.Phases, 3)
	foundation, walls, roof := plan.Phases[0], plan.Phases[1], plan.Phases[2]

	assert.Equal(t, 1, foundation.Sequence)
	assert.Equal(t, 3, roof.Sequence)
	assert.Equal(t, plan.Project.ID, roof.ProjectID)
	assert.True(t, foundation.Allocation.Materials.Equal(money("25000").Decimal))
	assert.True(t, foundation.Financial.Remaining.Equal(money("40000").Decimal), "remaining starts at allocation")
	assert.True(t, roof.Allocation.Total.IsZero())
	assert.Equal(t, domain.PhaseOnHold, roof.Status)
	assert.Equal(t, domain.PhaseNotStarted, walls.Status)

	assert.Equal(t, []string{foundation.ID, walls.ID}, roof.DependsOn)
	require.NotNil(t, roof.CanStartAfter)
	assert.Equal(t, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), *roof.CanStartAfter)
	assert.Equal(t, 2, plan.DependencyCount())
}
