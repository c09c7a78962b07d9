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

const spendColumns = `id, phase_id, category, description, quantity, unit_cost, status, created_at, updated_at`

// SQLiteSpendRepo stores the cost lines behind the per-domain aggregators.
type SQLiteSpendRepo struct {
	db db.DBTX
}

// NewSQLiteSpendRepo creates a new SQLiteSpendRepo.
func NewSQLiteSpendRepo(conn db.DBTX) *SQLiteSpendRepo {
	return &SQLiteSpendRepo{db: conn}
}

func (r *SQLiteSpendRepo) Create(ctx context.Context, e *domain.SpendEntry) error {
	query := `INSERT INTO spend_entries (` + spendColumns + `, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.PhaseID, string(e.Category), e.Description,
		decimalText(e.Quantity), decimalText(e.UnitCost), string(e.Status),
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.UpdatedAt.UTC().Format(time.RFC3339),
		decimalText(e.Cost()),
	)
	if err != nil {
		return fmt.Errorf("inserting spend entry: %w", err)
	}
	return nil
}

func (r *SQLiteSpendRepo) GetByID(ctx context.Context, id string) (*domain.SpendEntry, error) {
	query := `SELECT ` + spendColumns + ` FROM spend_entries WHERE id = ?`
	return scanSpend(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteSpendRepo) ListByPhase(ctx context.Context, phaseID string) ([]*domain.SpendEntry, error) {
	query := `SELECT ` + spendColumns + ` FROM spend_entries WHERE phase_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, phaseID)
	if err != nil {
		return nil, fmt.Errorf("listing spend entries: %w", err)
	}
	defer rows.Close()

	var out []*domain.SpendEntry
	for rows.Next() {
		e, err := scanSpend(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spend entries: %w", err)
	}
	return out, nil
}

func (r *SQLiteSpendRepo) UpdateStatus(ctx context.Context, id string, status domain.SpendStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE spend_entries SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating spend entry status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("spend entry %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanSpend(row scanner) (*domain.SpendEntry, error) {
	var e domain.SpendEntry
	var categoryStr, statusStr, qtyStr, unitStr, createdAtStr, updatedAtStr string
	err := row.Scan(&e.ID, &e.PhaseID, &categoryStr, &e.Description,
		&qtyStr, &unitStr, &statusStr, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("spend entry: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning spend entry: %w", err)
	}
	e.Category = domain.CostCategory(categoryStr)
	e.Status = domain.SpendStatus(statusStr)
	if err := parseDecimals([]string{"quantity", "unit_cost"}, []string{qtyStr, unitStr},
		[]*decimal.Decimal{&e.Quantity, &e.UnitCost}); err != nil {
		return nil, err
	}
	e.CreatedAt, e.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// SQLiteCostAggregator sums spend_entries of one category by status.
type SQLiteCostAggregator struct {
	db       db.DBTX
	category domain.CostCategory
}

// NewSQLiteCostAggregator creates an aggregator for one spend domain.
func NewSQLiteCostAggregator(conn db.DBTX, category domain.CostCategory) *SQLiteCostAggregator {
	return &SQLiteCostAggregator{db: conn, category: category}
}

// CostAggregators returns one aggregator per spend domain over conn.
func CostAggregators(conn db.DBTX) []CostAggregator {
	out := make([]CostAggregator, 0, len(domain.CostCategories))
	for _, c := range domain.CostCategories {
		out = append(out, NewSQLiteCostAggregator(conn, c))
	}
	return out
}

func (a *SQLiteCostAggregator) Category() domain.CostCategory { return a.category }

func (a *SQLiteCostAggregator) SumApprovedCost(ctx context.Context, phaseID string) (decimal.Decimal, error) {
	return a.sum(ctx, phaseID, domain.SpendApproved)
}

func (a *SQLiteCostAggregator) SumCommittedCost(ctx context.Context, phaseID string) (decimal.Decimal, error) {
	return a.sum(ctx, phaseID, domain.SpendCommitted)
}

func (a *SQLiteCostAggregator) SumEstimatedCost(ctx context.Context, phaseID string) (decimal.Decimal, error) {
	return a.sum(ctx, phaseID, domain.SpendPending)
}

func (a *SQLiteCostAggregator) sum(ctx context.Context, phaseID string, status domain.SpendStatus) (decimal.Decimal, error) {
	total, err := sumAmounts(ctx, a.db,
		`SELECT amount FROM spend_entries WHERE phase_id = ? AND category = ? AND status = ?`,
		phaseID, string(a.category), string(status))
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing %s %s cost: %w", status, a.category, err)
	}
	return total, nil
}
