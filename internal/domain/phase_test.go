package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhase_Available(t *testing.T) {
	p := &Phase{
		Allocation: BudgetAllocation{Total: dec("10000")},
		Actual:     ActualSpending{Total: dec("2000")},
		Financial:  FinancialStates{Committed: dec("1000")},
	}
	assert.True(t, p.Available().Equal(dec("7000")))

	p.Actual.Total = dec("12000")
	assert.True(t, p.Available().IsZero(), "overspent phase has nothing available")
}

func TestPhase_DeriveCanStartAfter(t *testing.T) {
	early := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)

	p := &Phase{}
	p.DeriveCanStartAfter([]*Phase{
		{PlannedEndDate: &early},
		{PlannedEndDate: nil},
		{PlannedEndDate: &late},
	})
	if assert.NotNil(t, p.CanStartAfter) {
		assert.Equal(t, late, *p.CanStartAfter)
	}

	p.DeriveCanStartAfter(nil)
	assert.Nil(t, p.CanStartAfter)
}

func TestPhase_Validate(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	assert.Error(t, (&Phase{}).Validate(), "name required")
	assert.Error(t, (&Phase{Name: "Roof", Allocation: BudgetAllocation{Total: dec("-1")}}).Validate())
	assert.Error(t, (&Phase{Name: "Roof", StartDate: &start, PlannedEndDate: &end}).Validate())
	assert.Error(t, (&Phase{ID: "a", Name: "Roof", DependsOn: []string{"a"}}).Validate())
	assert.NoError(t, (&Phase{ID: "a", Name: "Roof", DependsOn: []string{"b"}}).Validate())
}

func TestPhase_InitFinancials(t *testing.T) {
	p := &Phase{
		Allocation: BudgetAllocation{Total: dec("4500")},
		Actual:     ActualSpending{Total: dec("1")},
	}
	p.InitFinancials()
	assert.True(t, p.Actual.Total.IsZero())
	assert.True(t, p.Financial.Remaining.Equal(dec("4500")))
}
