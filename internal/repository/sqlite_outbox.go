package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/outbox"
)

const outboxColumns = `id, event_type, aggregate_id, payload, status, attempts, last_error,
		created_at, updated_at, published_at`

// SQLiteOutboxRepo implements outbox.Repository using a SQLite database.
type SQLiteOutboxRepo struct {
	db db.DBTX
}

var _ outbox.Repository = (*SQLiteOutboxRepo)(nil)

// NewSQLiteOutboxRepo creates a new SQLiteOutboxRepo.
func NewSQLiteOutboxRepo(conn db.DBTX) *SQLiteOutboxRepo {
	return &SQLiteOutboxRepo{db: conn}
}

func (r *SQLiteOutboxRepo) Create(ctx context.Context, e *outbox.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO outbox_events (`+outboxColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.EventType, e.AggregateID, string(e.Payload), string(e.Status), e.Attempts, e.LastError,
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.UpdatedAt.UTC().Format(time.RFC3339),
		nullableTimeToString(e.PublishedAt, time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting outbox event: %w", err)
	}
	return nil
}

func (r *SQLiteOutboxRepo) GetByID(ctx context.Context, id string) (*outbox.Event, error) {
	return scanOutboxEvent(r.db.QueryRowContext(ctx,
		`SELECT `+outboxColumns+` FROM outbox_events WHERE id = ?`, id))
}

func (r *SQLiteOutboxRepo) ListDispatchable(ctx context.Context, limit, maxAttempts int) ([]*outbox.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+outboxColumns+` FROM outbox_events
		 WHERE status = 'PENDING' OR (status = 'FAILED' AND attempts < ?)
		 ORDER BY created_at, id
		 LIMIT ?`, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("listing dispatchable outbox events: %w", err)
	}
	defer rows.Close()

	var out []*outbox.Event
	for rows.Next() {
		e, err := scanOutboxEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outbox events: %w", err)
	}
	return out, nil
}

func (r *SQLiteOutboxRepo) Claim(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET status = 'PROCESSING', attempts = attempts + 1, updated_at = ?
		 WHERE id = ? AND status IN ('PENDING', 'FAILED')`,
		at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("claiming outbox event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s: %w", id, outbox.ErrClaimLost)
	}
	return nil
}

func (r *SQLiteOutboxRepo) MarkPublished(ctx context.Context, id string, at time.Time) error {
	stamp := at.UTC().Format(time.RFC3339)
	return r.finish(ctx, id, `UPDATE outbox_events
		SET status = 'PUBLISHED', last_error = '', published_at = ?, updated_at = ?
		WHERE id = ? AND status = 'PROCESSING'`, stamp, stamp, id)
}

func (r *SQLiteOutboxRepo) MarkFailed(ctx context.Context, id string, errMsg string, maxAttempts int, at time.Time) error {
	return r.finish(ctx, id, `UPDATE outbox_events
		SET status = CASE WHEN attempts >= ? THEN 'INVALID' ELSE 'FAILED' END,
		    last_error = ?, updated_at = ?
		WHERE id = ? AND status = 'PROCESSING'`, maxAttempts, errMsg, at.UTC().Format(time.RFC3339), id)
}

func (r *SQLiteOutboxRepo) MarkInvalid(ctx context.Context, id string, errMsg string, at time.Time) error {
	return r.finish(ctx, id, `UPDATE outbox_events
		SET status = 'INVALID', last_error = ?, updated_at = ?
		WHERE id = ? AND status = 'PROCESSING'`, errMsg, at.UTC().Format(time.RFC3339), id)
}

func (r *SQLiteOutboxRepo) finish(ctx context.Context, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating outbox event %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s is not processing: %w", id, outbox.ErrClaimLost)
	}
	return nil
}

func scanOutboxEvent(row scanner) (*outbox.Event, error) {
	var e outbox.Event
	var payload, statusStr, createdAtStr, updatedAtStr string
	var publishedAt sql.NullString

	err := row.Scan(&e.ID, &e.EventType, &e.AggregateID, &payload, &statusStr, &e.Attempts,
		&e.LastError, &createdAtStr, &updatedAtStr, &publishedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("outbox event: %w", outbox.ErrEventNotFound)
		}
		return nil, fmt.Errorf("scanning outbox event: %w", err)
	}
	e.Payload = []byte(payload)
	if e.Status, err = outbox.ParseStatus(statusStr); err != nil {
		return nil, err
	}
	e.CreatedAt, e.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, err
	}
	e.PublishedAt = parseNullableTime(publishedAt, time.RFC3339)
	return &e, nil
}
