package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/pkg/constants"
)

// RevisionRepository is the append-only revision store for one document kind.
// The same implementation backs page revisions and collection item revisions;
// only the table and content column differ. Rows are inserted and trimmed,
// never updated.
type RevisionRepository struct {
	db            *sql.DB
	table         string
	contentColumn string
}

// NewPageRevisionRepository creates the revision store for pages
func NewPageRevisionRepository(db *sql.DB) *RevisionRepository {
	return &RevisionRepository{db: db, table: constants.TablePageRevision, contentColumn: constants.FieldContentJSON}
}

// NewItemRevisionRepository creates the revision store for collection items
func NewItemRevisionRepository(db *sql.DB) *RevisionRepository {
	return &RevisionRepository{db: db, table: constants.TableItemRevision, contentColumn: constants.FieldDataJSON}
}

// InsertTx appends a revision row. Must run inside the same transaction as
// the retention trim and the parent document update.
func (r *RevisionRepository) InsertTx(ctx context.Context, tx *sql.Tx, rev *models.Revision) error {
	if tx == nil {
		return fmt.Errorf("transaction required for revision insert")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, version, %s, note, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.table, r.contentColumn)

	_, err := tx.ExecContext(ctx, query,
		rev.ID,
		rev.DocumentID,
		rev.Version,
		[]byte(rev.Content),
		rev.Note,
		rev.CreatedBy,
		rev.CreatedAt,
	)
	return err
}

// MaxVersionTx returns the highest version for a document, 0 when none exist.
// Callers hold the parent document row locked (FOR UPDATE) so concurrent
// saves cannot allocate the same number.
func (r *RevisionRepository) MaxVersionTx(ctx context.Context, tx *sql.Tx, documentID string) (int, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction required for version allocation")
	}

	query := fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s WHERE document_id = ?", r.table)

	var max int
	if err := tx.QueryRowContext(ctx, query, documentID).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// TrimTx deletes the oldest revisions beyond keep, always by lowest version.
// Runs in the insert transaction so retention never needs a separate pass.
func (r *RevisionRepository) TrimTx(ctx context.Context, tx *sql.Tx, documentID string, keep int) error {
	if tx == nil {
		return fmt.Errorf("transaction required for revision trim")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE document_id = ?", r.table)
	var count int
	if err := tx.QueryRowContext(ctx, countQuery, documentID).Scan(&count); err != nil {
		return err
	}

	excess := count - keep
	if excess <= 0 {
		return nil
	}

	deleteQuery := fmt.Sprintf(
		"DELETE FROM %s WHERE document_id = ? ORDER BY version ASC LIMIT %d",
		r.table, excess)
	_, err := tx.ExecContext(ctx, deleteQuery, documentID)
	return err
}

// Latest returns the newest revision of a document, nil when none exist.
// Inside a transaction when tx is set.
func (r *RevisionRepository) Latest(ctx context.Context, tx *sql.Tx, documentID string) (*models.Revision, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version, %s, note, created_by, created_at
		FROM %s WHERE document_id = ? ORDER BY version DESC LIMIT 1`,
		r.contentColumn, r.table)

	rows, err := executor(r.db, tx).QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanRevision(rows)
}

// FindByVersion retrieves one revision of a document by version number
func (r *RevisionRepository) FindByVersion(ctx context.Context, tx *sql.Tx, documentID string, version int) (*models.Revision, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version, %s, note, created_by, created_at
		FROM %s WHERE document_id = ? AND version = ? LIMIT 1`,
		r.contentColumn, r.table)

	rows, err := executor(r.db, tx).QueryContext(ctx, query, documentID, version)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanRevision(rows)
}

// ListByDocument returns a document's revisions newest first
func (r *RevisionRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Revision, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version, %s, note, created_by, created_at
		FROM %s WHERE document_id = ? ORDER BY version DESC`,
		r.contentColumn, r.table)

	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revisions := make([]models.Revision, 0)
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, *rev)
	}
	return revisions, rows.Err()
}

// FindByID retrieves a single revision, inside a transaction when tx is set
func (r *RevisionRepository) FindByID(ctx context.Context, tx *sql.Tx, id string) (*models.Revision, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version, %s, note, created_by, created_at
		FROM %s WHERE id = ? LIMIT 1`,
		r.contentColumn, r.table)

	rows, err := executor(r.db, tx).QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanRevision(rows)
}

func scanRevision(rows *sql.Rows) (*models.Revision, error) {
	var rev models.Revision
	var content []byte
	if err := rows.Scan(
		&rev.ID,
		&rev.DocumentID,
		&rev.Version,
		&content,
		&rev.Note,
		&rev.CreatedBy,
		&rev.CreatedAt,
	); err != nil {
		return nil, err
	}
	rev.Content = content
	return &rev, nil
}
