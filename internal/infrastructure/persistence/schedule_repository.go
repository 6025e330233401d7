package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/pkg/constants"
)

// ScheduleRepository handles persistence for scheduled publishes
type ScheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Insert creates a new scheduled publish entry
func (r *ScheduleRepository) Insert(ctx context.Context, sp *models.ScheduledPublish) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_type, document_id, publish_at, schedule, last_run_at, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, constants.TableScheduledPublish)

	_, err := r.db.ExecContext(ctx, query,
		sp.ID, sp.DocumentType, sp.DocumentID, sp.PublishAt, sp.Schedule, sp.LastRunAt, sp.CreatedBy, sp.CreatedAt)
	return err
}

// List returns all scheduled publishes
func (r *ScheduleRepository) List(ctx context.Context) ([]models.ScheduledPublish, error) {
	query := fmt.Sprintf(`
		SELECT id, document_type, document_id, publish_at, schedule, last_run_at, created_by, created_at
		FROM %s ORDER BY created_at`, constants.TableScheduledPublish)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.ScheduledPublish, 0)
	for rows.Next() {
		var sp models.ScheduledPublish
		if err := rows.Scan(&sp.ID, &sp.DocumentType, &sp.DocumentID, &sp.PublishAt, &sp.Schedule, &sp.LastRunAt, &sp.CreatedBy, &sp.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, sp)
	}
	return entries, rows.Err()
}

// MarkRun records the last execution time of a schedule
func (r *ScheduleRepository) MarkRun(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf("UPDATE %s SET last_run_at = ? WHERE id = ?", constants.TableScheduledPublish)
	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}

// Delete removes a schedule (one-shot entries are deleted after firing)
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableScheduledPublish)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// DeleteByDocument removes all schedules for a document
func (r *ScheduleRepository) DeleteByDocument(ctx context.Context, tx *sql.Tx, documentID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE document_id = ?", constants.TableScheduledPublish)
	_, err := executor(r.db, tx).ExecContext(ctx, query, documentID)
	return err
}
