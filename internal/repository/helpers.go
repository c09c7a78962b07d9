package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// parseNullableTime parses a sql.NullString into a *time.Time using the given layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString converts a *time.Time to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil, otherwise returns the formatted string.
func nullableTimeToString(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(layout)
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func parseNullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// decimalText renders an amount for a TEXT money column.
func decimalText(d decimal.Decimal) string {
	return d.String()
}

// parseDecimals parses money columns in order, naming the first bad column.
func parseDecimals(names []string, raw []string, out []*decimal.Decimal) error {
	for i := range raw {
		d, err := decimal.NewFromString(raw[i])
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", names[i], raw[i], err)
		}
		*out[i] = d
	}
	return nil
}

func parseTimestamps(created, updated string) (time.Time, time.Time, error) {
	c, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing created_at: %w", err)
	}
	u, err := time.Parse(time.RFC3339, updated)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return c, u, nil
}

// sumAmounts adds every decimal string returned by query exactly.
func sumAmounts(ctx context.Context, conn db.DBTX, query string, args ...any) (decimal.Decimal, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing amount %q: %w", raw, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// versionedUpdateResult maps a zero-row optimistic update to ErrNotFound or
// ErrVersionConflict by checking whether the row still exists.
func versionedUpdateResult(ctx context.Context, conn db.DBTX, res sql.Result, table, id, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	var exists int
	err = conn.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking %s existence: %w", entity, err)
	}
	return fmt.Errorf("%s %s: %w", entity, id, ErrVersionConflict)
}
