package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

// SQLiteCapitalRepo is the financing ledger: an append-only list of
// investments into and usage out of a project's capital.
type SQLiteCapitalRepo struct {
	db db.DBTX
}

// NewSQLiteCapitalRepo creates a new SQLiteCapitalRepo.
func NewSQLiteCapitalRepo(conn db.DBTX) *SQLiteCapitalRepo {
	return &SQLiteCapitalRepo{db: conn}
}

func (r *SQLiteCapitalRepo) Append(ctx context.Context, e *domain.CapitalEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO capital_entries (id, project_id, kind, amount, note, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProjectID, string(e.Kind), decimalText(e.Amount), e.Note,
		e.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting capital entry: %w", err)
	}
	return nil
}

func (r *SQLiteCapitalRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.CapitalEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, kind, amount, note, created_at
		 FROM capital_entries WHERE project_id = ? ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing capital entries: %w", err)
	}
	defer rows.Close()

	var out []*domain.CapitalEntry
	for rows.Next() {
		var e domain.CapitalEntry
		var kind, amount, created string
		if err := rows.Scan(&e.ID, &e.ProjectID, &kind, &amount, &e.Note, &created); err != nil {
			return nil, fmt.Errorf("scanning capital entry: %w", err)
		}
		e.Kind = domain.CapitalKind(kind)
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parsing capital amount %q: %w", amount, err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating capital entries: %w", err)
	}
	return out, nil
}

// GetCapitalSnapshot sums the ledger. A project with no entries has a zero
// snapshot.
func (r *SQLiteCapitalRepo) GetCapitalSnapshot(ctx context.Context, projectID string) (domain.CapitalSnapshot, error) {
	snap := domain.CapitalSnapshot{ProjectID: projectID}
	query := `SELECT amount FROM capital_entries WHERE project_id = ? AND kind = ?`

	invested, err := sumAmounts(ctx, r.db, query, projectID, string(domain.CapitalInvestment))
	if err != nil {
		return snap, fmt.Errorf("summing invested capital: %w", err)
	}
	used, err := sumAmounts(ctx, r.db, query, projectID, string(domain.CapitalUsage))
	if err != nil {
		return snap, fmt.Errorf("summing used capital: %w", err)
	}
	snap.TotalInvested = invested
	snap.TotalUsed = used
	return snap, nil
}
