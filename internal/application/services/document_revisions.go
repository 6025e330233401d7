package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/persistence"
	"github.com/sitewise/backend/pkg/constants"
	"github.com/sitewise/backend/pkg/utils"
)

// appendRevisionTx allocates the next version, inserts the snapshot and trims
// the tail in one pass. Must run inside the transaction that holds the parent
// document row locked; versions are strictly increasing and never reused, even
// after older revisions are trimmed.
func appendRevisionTx(ctx context.Context, tx *sql.Tx, revs *persistence.RevisionRepository,
	documentID string, content json.RawMessage, note *string, createdBy string) (*models.Revision, error) {

	maxVersion, err := revs.MaxVersionTx(ctx, tx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate revision version: %w", err)
	}

	rev := &models.Revision{
		ID:         utils.GenerateID(),
		DocumentID: documentID,
		Version:    maxVersion + 1,
		Content:    content,
		Note:       note,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now(),
	}
	if err := revs.InsertTx(ctx, tx, rev); err != nil {
		return nil, fmt.Errorf("failed to insert revision: %w", err)
	}

	if err := revs.TrimTx(ctx, tx, documentID, constants.RevisionRetentionCap); err != nil {
		return nil, fmt.Errorf("failed to trim revisions: %w", err)
	}

	return rev, nil
}

func rollbackNote(version int) *string {
	note := fmt.Sprintf("Rollback to version %d", version)
	return &note
}
