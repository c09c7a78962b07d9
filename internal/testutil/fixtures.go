package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	testCodeCounter  atomic.Int64
	testPhaseCounter atomic.Int64
)

// Dec parses a decimal literal, panicking on bad input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Project options
type ProjectOption func(*domain.Project)

func WithProjectBudget(total string) ProjectOption {
	return func(p *domain.Project) {
		p.Budget.Total = Dec(total)
	}
}

func WithBudgetShares(materials, labour, contingency string) ProjectOption {
	return func(p *domain.Project) {
		p.Budget.Materials = Dec(materials)
		p.Budget.Labour = Dec(labour)
		p.Budget.Contingency = Dec(contingency)
	}
}

func WithCode(code string) ProjectOption {
	return func(p *domain.Project) {
		p.Code = code
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func defaultCode(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	n := testCodeCounter.Add(1)
	return fmt.Sprintf("%s%02d", string(letters), n)
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Project{
		ID:        uuid.New().String(),
		Code:      defaultCode(name),
		Name:      name,
		Status:    domain.ProjectActive,
		Budget:    domain.Budget{Total: Dec("100000")},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Phase options
type PhaseOption func(*domain.Phase)

// WithAllocation sets the allocation total and resets remaining to match.
func WithAllocation(total string) PhaseOption {
	return func(ph *domain.Phase) {
		ph.Allocation.Total = Dec(total)
		ph.Financial.Remaining = Dec(total)
	}
}

// WithSpend sets stored actual and committed figures and the remaining
// derived from them. It does not create spend entries.
func WithSpend(actual, committed string) PhaseOption {
	return func(ph *domain.Phase) {
		ph.Actual.Total = Dec(actual)
		ph.Financial.Committed = Dec(committed)
		ph.Financial.Remaining = domain.ClampAtZero(ph.Allocation.Total.Sub(ph.Actual.Total).Sub(ph.Financial.Committed))
	}
}

func WithDependsOn(ids ...string) PhaseOption {
	return func(ph *domain.Phase) {
		ph.DependsOn = ids
	}
}

func WithPlannedDates(start, end time.Time) PhaseOption {
	return func(ph *domain.Phase) {
		ph.StartDate = &start
		ph.PlannedEndDate = &end
	}
}

func WithSequence(seq int) PhaseOption {
	return func(ph *domain.Phase) {
		ph.Sequence = seq
	}
}

func NewTestPhase(projectID, name string, opts ...PhaseOption) *domain.Phase {
	now := time.Now().UTC().Truncate(time.Second)
	ph := &domain.Phase{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Sequence:  int(testPhaseCounter.Add(1)),
		Name:      name,
		Status:    domain.PhaseNotStarted,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(ph)
	}
	return ph
}

// Spend options
type SpendOption func(*domain.SpendEntry)

func WithSpendStatus(s domain.SpendStatus) SpendOption {
	return func(e *domain.SpendEntry) {
		e.Status = s
	}
}

func WithQuantity(q string) SpendOption {
	return func(e *domain.SpendEntry) {
		e.Quantity = Dec(q)
	}
}

// NewTestSpendEntry creates a single-unit cost line for amount.
func NewTestSpendEntry(phaseID string, category domain.CostCategory, amount string, opts ...SpendOption) *domain.SpendEntry {
	now := time.Now().UTC().Truncate(time.Second)
	e := &domain.SpendEntry{
		ID:          uuid.New().String(),
		PhaseID:     phaseID,
		Category:    category,
		Description: fmt.Sprintf("%s line", category),
		Quantity:    decimal.NewFromInt(1),
		UnitCost:    Dec(amount),
		Status:      domain.SpendApproved,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reallocation options
type ReallocationOption func(*domain.BudgetReallocationRequest)

func WithFromPhase(id string) ReallocationOption {
	return func(r *domain.BudgetReallocationRequest) {
		r.FromPhaseID = &id
	}
}

func WithToPhase(id string) ReallocationOption {
	return func(r *domain.BudgetReallocationRequest) {
		r.ToPhaseID = &id
	}
}

func WithReallocationStatus(s domain.ReallocationStatus) ReallocationOption {
	return func(r *domain.BudgetReallocationRequest) {
		r.Status = s
	}
}

func NewTestReallocation(projectID string, typ domain.ReallocationType, amount string, opts ...ReallocationOption) *domain.BudgetReallocationRequest {
	now := time.Now().UTC().Truncate(time.Second)
	r := &domain.BudgetReallocationRequest{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Type:        typ,
		Amount:      Dec(amount),
		Reason:      "test reallocation",
		RequestedBy: "site-manager",
		Status:      domain.ReallocationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func NewTestCapitalEntry(projectID string, kind domain.CapitalKind, amount string) *domain.CapitalEntry {
	return &domain.CapitalEntry{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Kind:      kind,
		Amount:    Dec(amount),
		Note:      "test",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}
