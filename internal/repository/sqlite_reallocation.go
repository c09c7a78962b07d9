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

const reallocationColumns = `id, project_id, reallocation_type, from_phase_id, to_phase_id, amount,
		reason, requested_by, status,
		approved_by, approval_notes, approved_at, executed_at,
		rejected_by, rejection_reason, rejected_at,
		created_at, updated_at`

// SQLiteReallocationRepo implements ReallocationRepo using a SQLite database.
type SQLiteReallocationRepo struct {
	db db.DBTX
}

// NewSQLiteReallocationRepo creates a new SQLiteReallocationRepo.
func NewSQLiteReallocationRepo(conn db.DBTX) *SQLiteReallocationRepo {
	return &SQLiteReallocationRepo{db: conn}
}

func (r *SQLiteReallocationRepo) Create(ctx context.Context, req *domain.BudgetReallocationRequest) error {
	query := `INSERT INTO reallocation_requests (` + reallocationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.ProjectID, string(req.Type),
		nullableString(req.FromPhaseID), nullableString(req.ToPhaseID),
		decimalText(req.Amount), req.Reason, req.RequestedBy, string(req.Status),
		nullableString(req.ApprovedBy), nullableString(req.ApprovalNotes),
		nullableTimeToString(req.ApprovedAt, time.RFC3339),
		nullableTimeToString(req.ExecutedAt, time.RFC3339),
		nullableString(req.RejectedBy), nullableString(req.RejectionReason),
		nullableTimeToString(req.RejectedAt, time.RFC3339),
		req.CreatedAt.UTC().Format(time.RFC3339),
		req.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting reallocation request: %w", err)
	}
	return nil
}

func (r *SQLiteReallocationRepo) GetByID(ctx context.Context, id string) (*domain.BudgetReallocationRequest, error) {
	query := `SELECT ` + reallocationColumns + ` FROM reallocation_requests WHERE id = ?`
	return scanReallocation(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteReallocationRepo) ListByProject(ctx context.Context, projectID string, status *domain.ReallocationStatus) ([]*domain.BudgetReallocationRequest, error) {
	query := `SELECT ` + reallocationColumns + ` FROM reallocation_requests WHERE project_id = ?`
	args := []any{projectID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reallocation requests: %w", err)
	}
	defer rows.Close()

	var out []*domain.BudgetReallocationRequest
	for rows.Next() {
		req, err := scanReallocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reallocation requests: %w", err)
	}
	return out, nil
}

// Transition is a compare-and-set on status: the row is written only while
// it still holds from, so two racing approvals cannot both succeed.
func (r *SQLiteReallocationRepo) Transition(ctx context.Context, req *domain.BudgetReallocationRequest, from domain.ReallocationStatus) error {
	query := `UPDATE reallocation_requests
		SET status = ?, approved_by = ?, approval_notes = ?, approved_at = ?, executed_at = ?,
		    rejected_by = ?, rejection_reason = ?, rejected_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(req.Status),
		nullableString(req.ApprovedBy), nullableString(req.ApprovalNotes),
		nullableTimeToString(req.ApprovedAt, time.RFC3339),
		nullableTimeToString(req.ExecutedAt, time.RFC3339),
		nullableString(req.RejectedBy), nullableString(req.RejectionReason),
		nullableTimeToString(req.RejectedAt, time.RFC3339),
		req.UpdatedAt.UTC().Format(time.RFC3339),
		req.ID, string(from),
	)
	if err != nil {
		return fmt.Errorf("transitioning reallocation request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("reallocation request %s no longer %s: %w", req.ID, from, ErrStatusConflict)
	}
	return nil
}

func scanReallocation(row scanner) (*domain.BudgetReallocationRequest, error) {
	var req domain.BudgetReallocationRequest
	var typeStr, statusStr, amountStr, createdAtStr, updatedAtStr string
	var fromID, toID, approvedBy, notes, rejectedBy, rejectionReason sql.NullString
	var approvedAt, executedAt, rejectedAt sql.NullString

	err := row.Scan(
		&req.ID, &req.ProjectID, &typeStr, &fromID, &toID, &amountStr,
		&req.Reason, &req.RequestedBy, &statusStr,
		&approvedBy, &notes, &approvedAt, &executedAt,
		&rejectedBy, &rejectionReason, &rejectedAt,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("reallocation request: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning reallocation request: %w", err)
	}

	req.Type = domain.ReallocationType(typeStr)
	req.Status = domain.ReallocationStatus(statusStr)
	if req.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", amountStr, err)
	}
	req.FromPhaseID = parseNullableString(fromID)
	req.ToPhaseID = parseNullableString(toID)
	req.ApprovedBy = parseNullableString(approvedBy)
	req.ApprovalNotes = parseNullableString(notes)
	req.ApprovedAt = parseNullableTime(approvedAt, time.RFC3339)
	req.ExecutedAt = parseNullableTime(executedAt, time.RFC3339)
	req.RejectedBy = parseNullableString(rejectedBy)
	req.RejectionReason = parseNullableString(rejectionReason)
	req.RejectedAt = parseNullableTime(rejectedAt, time.RFC3339)
	req.CreatedAt, req.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
