package repository

import (
	"context"
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
)

// SQLiteProjectSequenceRepo allocates project-scoped phase sequence numbers
// atomically using the project_sequences table.
type SQLiteProjectSequenceRepo struct {
	db db.DBTX
}

// NewSQLiteProjectSequenceRepo creates a new SQLiteProjectSequenceRepo.
func NewSQLiteProjectSequenceRepo(conn db.DBTX) *SQLiteProjectSequenceRepo {
	return &SQLiteProjectSequenceRepo{db: conn}
}

// NextPhaseSeq returns the next phase sequence number for a project.
// Numbers are never reused, including after a phase is soft-deleted.
func (r *SQLiteProjectSequenceRepo) NextPhaseSeq(ctx context.Context, projectID string) (int, error) {
	seedQuery := `INSERT OR IGNORE INTO project_sequences (project_id, next_seq)
		SELECT ?, COALESCE(MAX(sequence), 0) + 1 FROM phases WHERE project_id = ?`
	if _, err := r.db.ExecContext(ctx, seedQuery, projectID, projectID); err != nil {
		return 0, fmt.Errorf("seeding phase sequence for %s: %w", projectID, err)
	}

	var next int
	allocQuery := `UPDATE project_sequences
		SET next_seq = next_seq + 1
		WHERE project_id = ?
		RETURNING next_seq - 1`
	if err := r.db.QueryRowContext(ctx, allocQuery, projectID).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating phase sequence for project %s: %w", projectID, err)
	}

	return next, nil
}
