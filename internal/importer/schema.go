package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// ImportSchema is the top-level TOML structure for a project plan.
type ImportSchema struct {
	Project ProjectImport `toml:"project"`
	Phases  []PhaseImport `toml:"phases"`
}

// ProjectImport defines the project-level fields in the plan file.
type ProjectImport struct {
	Code   string       `toml:"code"`
	Name   string       `toml:"name"`
	Status string       `toml:"status,omitempty"`
	Budget BudgetImport `toml:"budget"`
}

type BudgetImport struct {
	Total       *Money `toml:"total"`
	Materials   *Money `toml:"materials,omitempty"`
	Labour      *Money `toml:"labour,omitempty"`
	Contingency *Money `toml:"contingency,omitempty"`
}

// PhaseImport defines one phase. Key is local to the file and is how
// depends_on refers to other phases.
type PhaseImport struct {
	Key            string           `toml:"key"`
	Name           string           `toml:"name"`
	Status         string           `toml:"status,omitempty"`
	Allocation     AllocationImport `toml:"allocation"`
	StartDate      *string          `toml:"start_date,omitempty"`
	PlannedEndDate *string          `toml:"planned_end_date,omitempty"`
	DependsOn      []string         `toml:"depends_on,omitempty"`
}

type AllocationImport struct {
	Total          *Money `toml:"total"`
	Materials      *Money `toml:"materials,omitempty"`
	Labour         *Money `toml:"labour,omitempty"`
	Equipment      *Money `toml:"equipment,omitempty"`
	Subcontractors *Money `toml:"subcontractors,omitempty"`
	Contingency    *Money `toml:"contingency,omitempty"`
}

// Money accepts a TOML integer, float or string and keeps it as an exact
// decimal. Quote amounts with cents ("1250.10") to avoid float rounding.
type Money struct {
	decimal.Decimal
}

func (m *Money) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		m.Decimal = decimal.NewFromInt(x)
	case float64:
		m.Decimal = decimal.RequireFromString(strconv.FormatFloat(x, 'f', -1, 64))
	case string:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(x), ",", ""))
		if err != nil {
			return fmt.Errorf("invalid amount %q", x)
		}
		m.Decimal = d
	default:
		return fmt.Errorf("amount must be a number or string, got %T", v)
	}
	return nil
}

// Value returns the amount or nil.
func (m *Money) Value() *decimal.Decimal {
	if m == nil {
		return nil
	}
	d := m.Decimal
	return &d
}

// LoadImportSchema reads and parses a project plan file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	var schema ImportSchema
	md, err := toml.DecodeFile(path, &schema)
	if err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	if err := rejectUndecoded(md); err != nil {
		return nil, err
	}
	return &schema, nil
}

// ParseImportSchema parses a project plan held in memory.
func ParseImportSchema(data string) (*ImportSchema, error) {
	var schema ImportSchema
	md, err := toml.Decode(data, &schema)
	if err != nil {
		return nil, fmt.Errorf("parsing import data: %w", err)
	}
	if err := rejectUndecoded(md); err != nil {
		return nil, err
	}
	return &schema, nil
}

func rejectUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	return fmt.Errorf("unknown keys in import file: %s", strings.Join(keys, ", "))
}
