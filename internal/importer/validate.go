package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

var validProjectStatuses = map[string]bool{"planning": true, "active": true, "on_hold": true, "completed": true}

// ValidateImportSchema checks the plan for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	errs = append(errs, validateProject(&schema.Project)...)

	keys := make(map[string]bool)
	errs = append(errs, validatePhases(schema.Phases, keys)...)
	errs = append(errs, validateDependencies(schema.Phases, keys)...)
	errs = append(errs, validateCeiling(schema)...)

	return errs
}

func validateProject(p *ProjectImport) []error {
	var errs []error

	code := strings.ToUpper(strings.TrimSpace(p.Code))
	if code == "" {
		errs = append(errs, fmt.Errorf("project.code is required"))
	} else if err := (&domain.Project{Code: code}).ValidateCode(); err != nil {
		errs = append(errs, fmt.Errorf("project.code: %w", err))
	}
	if p.Name == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}
	if p.Status != "" && !validProjectStatuses[p.Status] {
		errs = append(errs, fmt.Errorf("project.status: invalid value %q", p.Status))
	}
	if p.Budget.Total == nil {
		errs = append(errs, fmt.Errorf("project.budget.total is required"))
	}
	errs = append(errs, nonNegative("project.budget.total", p.Budget.Total)...)
	errs = append(errs, nonNegative("project.budget.materials", p.Budget.Materials)...)
	errs = append(errs, nonNegative("project.budget.labour", p.Budget.Labour)...)
	errs = append(errs, nonNegative("project.budget.contingency", p.Budget.Contingency)...)

	return errs
}

func validatePhases(phases []PhaseImport, keys map[string]bool) []error {
	var errs []error

	for i, ph := range phases {
		prefix := fmt.Sprintf("phases[%d]", i)

		if ph.Key == "" {
			errs = append(errs, fmt.Errorf("%s.key is required", prefix))
		} else if keys[ph.Key] {
			errs = append(errs, fmt.Errorf("%s.key: duplicate key %q", prefix, ph.Key))
		} else {
			keys[ph.Key] = true
		}

		if ph.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if ph.Status != "" && !domain.ValidPhaseStatuses[ph.Status] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, ph.Status))
		}

		a := ph.Allocation
		errs = append(errs, nonNegative(prefix+".allocation.total", a.Total)...)
		errs = append(errs, nonNegative(prefix+".allocation.materials", a.Materials)...)
		errs = append(errs, nonNegative(prefix+".allocation.labour", a.Labour)...)
		errs = append(errs, nonNegative(prefix+".allocation.equipment", a.Equipment)...)
		errs = append(errs, nonNegative(prefix+".allocation.subcontractors", a.Subcontractors)...)
		errs = append(errs, nonNegative(prefix+".allocation.contingency", a.Contingency)...)

		errs = append(errs, validateOptionalDate(prefix+".start_date", ph.StartDate)...)
		errs = append(errs, validateOptionalDate(prefix+".planned_end_date", ph.PlannedEndDate)...)
		if start, end := parseOptionalDate(ph.StartDate), parseOptionalDate(ph.PlannedEndDate); start != nil && end != nil && end.Before(*start) {
			errs = append(errs, fmt.Errorf("%s.planned_end_date %q is before start_date %q", prefix, *ph.PlannedEndDate, *ph.StartDate))
		}
	}

	return errs
}

func validateDependencies(phases []PhaseImport, keys map[string]bool) []error {
	var errs []error

	for i, ph := range phases {
		for j, dep := range ph.DependsOn {
			prefix := fmt.Sprintf("phases[%d].depends_on[%d]", i, j)
			switch {
			case dep == "":
				errs = append(errs, fmt.Errorf("%s is empty", prefix))
			case dep == ph.Key:
				errs = append(errs, fmt.Errorf("%s: phase %q depends on itself", prefix, dep))
			case !keys[dep]:
				errs = append(errs, fmt.Errorf("%s: key %q not found in phases", prefix, dep))
			}
		}
	}

	errs = append(errs, detectCycles(phases)...)
	return errs
}

func detectCycles(phases []PhaseImport) []error {
	graph := make(map[string][]string)
	for _, ph := range phases {
		for _, dep := range ph.DependsOn {
			if dep != "" && dep != ph.Key {
				graph[dep] = append(graph[dep], ph.Key)
			}
		}
	}

	const (
		white = 0 // unvisited
		gray  = 1 // in current path
		black = 2 // fully processed
	)

	color := make(map[string]int)
	var errs []error

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		for _, next := range graph[node] {
			if color[next] == gray {
				errs = append(errs, fmt.Errorf("circular dependency detected involving %q and %q", node, next))
				return true
			}
			if color[next] == white && visit(next) {
				return true
			}
		}
		color[node] = black
		return false
	}

	// Walk in file order so the reported cycle is deterministic.
	for _, ph := range phases {
		if color[ph.Key] == white {
			visit(ph.Key)
		}
	}
	return errs
}

// validateCeiling rejects plans whose phase allocations already exceed the
// project total.
func validateCeiling(schema *ImportSchema) []error {
	if schema.Project.Budget.Total == nil {
		return nil
	}
	total := decimal.Zero
	for _, ph := range schema.Phases {
		if v := ph.Allocation.Total.Value(); v != nil {
			total = total.Add(*v)
		}
	}
	ceiling := schema.Project.Budget.Total.Decimal
	if total.GreaterThan(ceiling) {
		return []error{fmt.Errorf("phase allocations total %s exceeds project budget %s",
			total.StringFixed(2), ceiling.StringFixed(2))}
	}
	return nil
}

func nonNegative(field string, m *Money) []error {
	if m != nil && m.IsNegative() {
		return []error{fmt.Errorf("%s must not be negative, got %s", field, m.String())}
	}
	return nil
}

func validateOptionalDate(field string, dateStr *string) []error {
	if dateStr == nil || *dateStr == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", *dateStr); err != nil {
		return []error{fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, *dateStr)}
	}
	return nil
}
