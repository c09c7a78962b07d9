package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

const projectColumns = `id, code, name, status,
		budget_total, budget_materials, budget_labour, budget_contingency,
		version, deleted_at, created_at, updated_at`

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if p.Version == 0 {
		p.Version = 1
	}
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Code,
		p.Name,
		string(p.Status),
		decimalText(p.Budget.Total),
		decimalText(p.Budget.Materials),
		decimalText(p.Budget.Labour),
		decimalText(p.Budget.Contingency),
		p.Version,
		nullableTimeToString(p.DeletedAt, time.RFC3339),
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	return scanProject(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteProjectRepo) GetByCode(ctx context.Context, code string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE UPPER(code) = UPPER(?)`
	return scanProject(r.db.QueryRowContext(ctx, query, code))
}

func (r *SQLiteProjectRepo) List(ctx context.Context, includeDeleted bool) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at, code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) UpdateBudget(ctx context.Context, p *domain.Project) error {
	now := time.Now().UTC()
	query := `UPDATE projects
		SET budget_total = ?, budget_materials = ?, budget_labour = ?, budget_contingency = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		decimalText(p.Budget.Total),
		decimalText(p.Budget.Materials),
		decimalText(p.Budget.Labour),
		decimalText(p.Budget.Contingency),
		now.Format(time.RFC3339),
		p.ID,
		p.Version,
	)
	if err != nil {
		return fmt.Errorf("updating project budget: %w", err)
	}
	if err := versionedUpdateResult(ctx, r.db, res, "projects", p.ID, "project"); err != nil {
		return err
	}
	p.Version++
	p.UpdatedAt = now.Truncate(time.Second)
	return nil
}

func (r *SQLiteProjectRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	stamp := at.UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET deleted_at = ?, updated_at = ?, version = version + 1
		 WHERE id = ? AND deleted_at IS NULL`, stamp, stamp, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanProject(row scanner) (*domain.Project, error) {
	var p domain.Project
	var statusStr, createdAtStr, updatedAtStr string
	var total, materials, labour, contingency string
	var deletedAtStr sql.NullString

	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &statusStr,
		&total, &materials, &labour, &contingency,
		&p.Version, &deletedAtStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	p.Status = domain.ProjectStatus(statusStr)
	if err := parseDecimals(
		[]string{"budget_total", "budget_materials", "budget_labour", "budget_contingency"},
		[]string{total, materials, labour, contingency},
		[]*decimal.Decimal{&p.Budget.Total, &p.Budget.Materials, &p.Budget.Labour, &p.Budget.Contingency},
	); err != nil {
		return nil, err
	}
	p.CreatedAt, p.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, err
	}
	p.DeletedAt = parseNullableTime(deletedAtStr, time.RFC3339)

	return &p, nil
}
