package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

// SQLiteAuditRepo appends state-transition records to audit_log.
type SQLiteAuditRepo struct {
	db db.DBTX
}

// NewSQLiteAuditRepo creates a new SQLiteAuditRepo.
func NewSQLiteAuditRepo(conn db.DBTX) *SQLiteAuditRepo {
	return &SQLiteAuditRepo{db: conn}
}

func (r *SQLiteAuditRepo) Record(ctx context.Context, rec *domain.AuditRecord) error {
	details := rec.Details
	if details == nil {
		details = map[string]string{}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encoding audit details: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, entity_type, entity_id, action, actor, old_status, new_status, amount, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EntityType, rec.EntityID, rec.Action, rec.Actor,
		rec.OldStatus, rec.NewStatus, decimalText(rec.Amount), string(payload),
		rec.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}
	return nil
}

func (r *SQLiteAuditRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entity_type, entity_id, action, actor, old_status, new_status, amount, details, created_at
		 FROM audit_log WHERE entity_type = ? AND entity_id = ? ORDER BY created_at, id`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing audit records: %w", err)
	}
	defer rows.Close()

	var out []*domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		var amount, details, created string
		if err := rows.Scan(&rec.ID, &rec.EntityType, &rec.EntityID, &rec.Action, &rec.Actor,
			&rec.OldStatus, &rec.NewStatus, &amount, &details, &created); err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parsing audit amount %q: %w", amount, err)
		}
		if err := json.Unmarshal([]byte(details), &rec.Details); err != nil {
			return nil, fmt.Errorf("decoding audit details: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit records: %w", err)
	}
	return out, nil
}
