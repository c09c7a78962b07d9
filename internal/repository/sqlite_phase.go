package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

// phaseColumns is the canonical SELECT column list for phases.
const phaseColumns = `id, project_id, sequence, name, status,
		alloc_total, alloc_materials, alloc_labour, alloc_equipment, alloc_subcontractors, alloc_contingency,
		actual_total, actual_materials, actual_labour, actual_equipment, actual_expenses,
		committed, estimated, remaining,
		start_date, planned_end_date, can_start_after,
		version, deleted_at, created_at, updated_at`

// SQLitePhaseRepo implements PhaseRepo using a SQLite database.
// Dependencies live in phase_dependencies and are loaded with each phase.
type SQLitePhaseRepo struct {
	db db.DBTX
}

// NewSQLitePhaseRepo creates a new SQLitePhaseRepo.
func NewSQLitePhaseRepo(conn db.DBTX) *SQLitePhaseRepo {
	return &SQLitePhaseRepo{db: conn}
}

func (r *SQLitePhaseRepo) Create(ctx context.Context, p *domain.Phase) error {
	if p.Version == 0 {
		p.Version = 1
	}
	query := `INSERT INTO phases (` + phaseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.ProjectID, p.Sequence, p.Name, string(p.Status),
		decimalText(p.Allocation.Total),
		decimalText(p.Allocation.Materials),
		decimalText(p.Allocation.Labour),
		decimalText(p.Allocation.Equipment),
		decimalText(p.Allocation.Subcontractors),
		decimalText(p.Allocation.Contingency),
		decimalText(p.Actual.Total),
		decimalText(p.Actual.Materials),
		decimalText(p.Actual.Labour),
		decimalText(p.Actual.Equipment),
		decimalText(p.Actual.Expenses),
		decimalText(p.Financial.Committed),
		decimalText(p.Financial.Estimated),
		decimalText(p.Financial.Remaining),
		nullableTimeToString(p.StartDate, dateLayout),
		nullableTimeToString(p.PlannedEndDate, dateLayout),
		nullableTimeToString(p.CanStartAfter, dateLayout),
		p.Version,
		nullableTimeToString(p.DeletedAt, time.RFC3339),
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting phase: %w", err)
	}

	for _, dep := range p.DependsOn {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO phase_dependencies (phase_id, depends_on_id) VALUES (?, ?)`, p.ID, dep); err != nil {
			return fmt.Errorf("inserting phase dependency %s -> %s: %w", p.ID, dep, err)
		}
	}
	return nil
}

func (r *SQLitePhaseRepo) GetByID(ctx context.Context, id string) (*domain.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE id = ?`
	p, err := scanPhase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	deps, err := r.loadDependencies(ctx, `WHERE d.phase_id = ?`, id)
	if err != nil {
		return nil, err
	}
	p.DependsOn = deps[id]
	return p, nil
}

func (r *SQLitePhaseRepo) ListByProject(ctx context.Context, projectID string, includeDeleted bool) ([]*domain.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE project_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY sequence`

	phases, err := r.queryPhases(ctx, query, projectID)
	if err != nil {
		return nil, err
	}

	deps, err := r.loadDependencies(ctx,
		`JOIN phases p ON p.id = d.phase_id WHERE p.project_id = ?`, projectID)
	if err != nil {
		return nil, err
	}
	for _, p := range phases {
		p.DependsOn = deps[p.ID]
	}
	return phases, nil
}

func (r *SQLitePhaseRepo) UpdateAllocation(ctx context.Context, p *domain.Phase) error {
	now := time.Now().UTC()
	query := `UPDATE phases
		SET alloc_total = ?, alloc_materials = ?, alloc_labour = ?, alloc_equipment = ?,
		    alloc_subcontractors = ?, alloc_contingency = ?, remaining = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		decimalText(p.Allocation.Total),
		decimalText(p.Allocation.Materials),
		decimalText(p.Allocation.Labour),
		decimalText(p.Allocation.Equipment),
		decimalText(p.Allocation.Subcontractors),
		decimalText(p.Allocation.Contingency),
		decimalText(p.Financial.Remaining),
		now.Format(time.RFC3339),
		p.ID, p.Version,
	)
	if err != nil {
		return fmt.Errorf("updating phase allocation: %w", err)
	}
	if err := versionedUpdateResult(ctx, r.db, res, "phases", p.ID, "phase"); err != nil {
		return err
	}
	p.Version++
	p.UpdatedAt = now.Truncate(time.Second)
	return nil
}

func (r *SQLitePhaseRepo) UpdateFinancials(ctx context.Context, p *domain.Phase) error {
	now := time.Now().UTC()
	query := `UPDATE phases
		SET actual_total = ?, actual_materials = ?, actual_labour = ?, actual_equipment = ?,
		    actual_expenses = ?, committed = ?, estimated = ?, remaining = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		decimalText(p.Actual.Total),
		decimalText(p.Actual.Materials),
		decimalText(p.Actual.Labour),
		decimalText(p.Actual.Equipment),
		decimalText(p.Actual.Expenses),
		decimalText(p.Financial.Committed),
		decimalText(p.Financial.Estimated),
		decimalText(p.Financial.Remaining),
		now.Format(time.RFC3339),
		p.ID, p.Version,
	)
	if err != nil {
		return fmt.Errorf("updating phase financials: %w", err)
	}
	if err := versionedUpdateResult(ctx, r.db, res, "phases", p.ID, "phase"); err != nil {
		return err
	}
	p.Version++
	p.UpdatedAt = now.Truncate(time.Second)
	return nil
}

func (r *SQLitePhaseRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	stamp := at.UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx,
		`UPDATE phases SET deleted_at = ?, updated_at = ?, version = version + 1
		 WHERE id = ? AND deleted_at IS NULL`, stamp, stamp, id)
	if err != nil {
		return fmt.Errorf("deleting phase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("phase %s: %w", id, ErrNotFound)
	}
	return nil
}

// queryPhases drains the result set before returning so follow-up queries
// never wait on a connection held by open rows.
func (r *SQLitePhaseRepo) queryPhases(ctx context.Context, query string, args ...any) ([]*domain.Phase, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing phases: %w", err)
	}
	defer rows.Close()

	var phases []*domain.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating phases: %w", err)
	}
	return phases, nil
}

// loadDependencies returns depends_on ids keyed by phase id. where is
// appended after "FROM phase_dependencies d".
func (r *SQLitePhaseRepo) loadDependencies(ctx context.Context, where string, args ...any) (map[string][]string, error) {
	query := `SELECT d.phase_id, d.depends_on_id FROM phase_dependencies d ` + where +
		` ORDER BY d.phase_id, d.depends_on_id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading phase dependencies: %w", err)
	}
	defer rows.Close()

	deps := make(map[string][]string)
	for rows.Next() {
		var phaseID, dependsOn string
		if err := rows.Scan(&phaseID, &dependsOn); err != nil {
			return nil, fmt.Errorf("scanning phase dependency: %w", err)
		}
		deps[phaseID] = append(deps[phaseID], dependsOn)
	}
	return deps, rows.Err()
}

func scanPhase(row scanner) (*domain.Phase, error) {
	var p domain.Phase
	var statusStr, createdAtStr, updatedAtStr string
	money := make([]string, 14)
	var startStr, endStr, canStartStr, deletedAtStr sql.NullString

	dest := []any{&p.ID, &p.ProjectID, &p.Sequence, &p.Name, &statusStr}
	for i := range money {
		dest = append(dest, &money[i])
	}
	dest = append(dest, &startStr, &endStr, &canStartStr, &p.Version, &deletedAtStr, &createdAtStr, &updatedAtStr)

	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("phase: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning phase: %w", err)
	}

	p.Status = domain.PhaseStatus(statusStr)
	names := strings.Fields(`alloc_total alloc_materials alloc_labour alloc_equipment alloc_subcontractors alloc_contingency
		actual_total actual_materials actual_labour actual_equipment actual_expenses
		committed estimated remaining`)
	if err := parseDecimals(names, money, []*decimal.Decimal{
		&p.Allocation.Total, &p.Allocation.Materials, &p.Allocation.Labour,
		&p.Allocation.Equipment, &p.Allocation.Subcontractors, &p.Allocation.Contingency,
		&p.Actual.Total, &p.Actual.Materials, &p.Actual.Labour, &p.Actual.Equipment, &p.Actual.Expenses,
		&p.Financial.Committed, &p.Financial.Estimated, &p.Financial.Remaining,
	}); err != nil {
		return nil, err
	}

	var err error
	p.CreatedAt, p.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, err
	}
	p.StartDate = parseNullableTime(startStr, dateLayout)
	p.PlannedEndDate = parseNullableTime(endStr, dateLayout)
	p.CanStartAfter = parseNullableTime(canStartStr, dateLayout)
	p.DeletedAt = parseNullableTime(deletedAtStr, time.RFC3339)

	return &p, nil
}
