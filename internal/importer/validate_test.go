package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrStr(s string) *string { return &s }

func money(s string) *Money {
	return &Money{Decimal: decimal.RequireFromString(s)}
}

func validMinimalSchema() *ImportSchema {
	return &ImportSchema{
		Project: ProjectImport{
			Code:   "TWR01",
			Name:   "Riverside Tower",
			Budget: BudgetImport{Total: money("100000")},
		},
		Phases: []PhaseImport{
			{Key: "foundation", Name: "Foundation", Allocation: AllocationImport{Total: money("40000")}},
		},
	}
}

func errorsContain(errs []error, substr string) bool {
	for _, err := range errs {
		if strings.Contains(err.Error(), substr) {
			return true
		}
	}
	return false
}

func TestValidateImportSchema_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidateImportSchema(validMinimalSchema()))
}

func TestValidateImportSchema_LowercaseCodeAccepted(t *testing.T) {
	s := validMinimalSchema()
	s.Project.Code = " twr01 "
	assert.Empty(t, ValidateImportSchema(s))
}

func TestValidateImportSchema_ProjectFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *ImportSchema)
		wantMsg string
	}{
		{"missing code", func(s *ImportSchema) { s.Project.Code = "" }, "project.code is required"},
		{"bad code", func(s *ImportSchema) { s.Project.Code = "tower" }, "project.code"},
		{"missing name", func(s *ImportSchema) { s.Project.Name = "" }, "project.name is required"},
		{"bad status", func(s *ImportSchema) { s.Project.Status = "paused" }, "project.status"},
		{"missing total", func(s *ImportSchema) { s.Project.Budget.Total = nil }, "project.budget.total is required"},
		{"negative labour", func(s *ImportSchema) { s.Project.Budget.Labour = money("-1") }, "project.budget.labour must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validMinimalSchema()
			tt.mutate(s)
			errs := ValidateImportSchema(s)
			assert.True(t, errorsContain(errs, tt.wantMsg), "want %q in %v", tt.wantMsg, errs)
		})
	}
}

func TestValidateImportSchema_PhaseFields(t *testing.T) {
	s := validMinimalSchema()
	s.Phases = append(s.Phases,
		PhaseImport{Key: "foundation", Name: "Dup"},
		PhaseImport{Key: "walls", Name: "", Status: "started"},
		PhaseImport{Key: "roof", Name: "Roof", StartDate: ptrStr("2026-05-01"), PlannedEndDate: ptrStr("2026-04-01")},
		PhaseImport{Key: "site", Name: "Site", StartDate: ptrStr("01/05/2026")},
	)

	errs := ValidateImportSchema(s)
	assert.True(t, errorsContain(errs, `duplicate key "foundation"`))
	assert.True(t, errorsContain(errs, "phases[2].name is required"))
	assert.True(t, errorsContain(errs, "phases[2].status"))
	assert.True(t, errorsContain(errs, "is before start_date"))
	assert.True(t, errorsContain(errs, "invalid date format"))
}

func TestValidateImportSchema_Dependencies(t *testing.T) {
	s := validMinimalSchema()
	s.Phases = []PhaseImport{
		{Key: "a", Name: "A", DependsOn: []string{"c"}},
		{Key: "b", Name: "B", DependsOn: []string{"a", "ghost"}},
		{Key: "c", Name: "C", DependsOn: []string{"b"}},
		{Key: "d", Name: "D", DependsOn: []string{"d"}},
	}

	errs := ValidateImportSchema(s)
	assert.True(t, errorsContain(errs, `key "ghost" not found`))
	assert.True(t, errorsContain(errs, `phase "d" depends on itself`))
	assert.True(t, errorsContain(errs, "circular dependency"))
}

func TestValidateImportSchema_PhaseTotalsAboveCeiling(t *testing.T) {
	s := validMinimalSchema()
	s.Phases = append(s.Phases, PhaseImport{Key: "walls", Name: "Walls", Allocation: AllocationImport{Total: money("60000.01")}})

	errs := ValidateImportSchema(s)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "exceeds project budget 100000.00")
}

func TestParseImportSchema_AmountForms(t *testing.T) {
	schema, err := ParseImportSchema(`
[project]
code = "KSM24"
name = "Kisumu Mall"

[project.budget]
total = 250000
materials = "120,000.50"
labour = 80000.25

[[phases]]
key = "foundation"
name = "Foundation"
planned_end_date = "2026-05-01"

[phases.allocation]
total = "90000.10"

[[phases]]
key = "frame"
name = "Frame"
depends_on = ["foundation"]

[phases.allocation]
total = 60000
`)
	require.NoError(t, err)
	assert.Empty(t, ValidateImportSchema(schema))

	assert.True(t, schema.Project.Budget.Total.Equal(decimal.NewFromInt(250000)))
	assert.True(t, schema.Project.Budget.Materials.Equal(decimal.RequireFromString("120000.50")))
	assert.True(t, schema.Project.Budget.Labour.Equal(decimal.RequireFromString("80000.25")))
	assert.Nil(t, schema.Project.Budget.Contingency)
	require.Len(t, schema.Phases, 2)
	assert.True(t, schema.Phases[0].Allocation.Total.Equal(decimal.RequireFromString("90000.10")))
	assert.Equal(t, []string{"foundation"}, schema.Phases[1].DependsOn)
}

func TestParseImportSchema_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseImportSchema(`
[project]
code = "KSM24"
name = "Kisumu Mall"
budjet = 1
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project.budjet")
}

func TestParseImportSchema_RejectsBadAmount(t *testing.T) {
	_, err := ParseImportSchema(`
[project]
code = "KSM24"
name = "Kisumu Mall"

[project.budget]
total = "lots"
`)
	assert.Error(t, err)
}
