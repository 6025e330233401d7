package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/pkg/constants"
)

// SessionRepository handles database operations for login sessions
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert creates a new session in the database
func (r *SessionRepository) Insert(ctx context.Context, session *models.Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, expires_at, is_revoked, last_activity, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, constants.TableSession)

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.ExpiresAt, session.IsRevoked, session.LastActivity, session.CreatedAt)
	return err
}

// Get retrieves a session by its ID (the JWT ID claim)
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, expires_at, is_revoked, last_activity, created_at
		FROM %s WHERE id = ? LIMIT 1`, constants.TableSession)

	var s models.Session
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.ID, &s.UserID, &s.ExpiresAt, &s.IsRevoked, &s.LastActivity, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Revoke marks a session revoked (logout)
func (r *SessionRepository) Revoke(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf("UPDATE %s SET is_revoked = TRUE WHERE id = ?", constants.TableSession)
	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}

// Touch updates the session's last activity timestamp
func (r *SessionRepository) Touch(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf("UPDATE %s SET last_activity = ? WHERE id = ?", constants.TableSession)
	_, err := r.db.ExecContext(ctx, query, time.Now(), sessionID)
	return err
}
