package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/persistence"
	"github.com/sitewise/backend/pkg/auth"
	"github.com/sitewise/backend/pkg/constants"
	"github.com/sitewise/backend/pkg/errors"
	"github.com/sitewise/backend/pkg/utils"
)

// AuthService handles login, logout and session validation. It is a gate, not
// an authorization system; role checks beyond Admin/Editor live upstream.
type AuthService struct {
	users    *persistence.UserRepository
	sessions *persistence.SessionRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(users *persistence.UserRepository, sessions *persistence.SessionRepository) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	Token     string           `json:"token"`
	User      auth.UserSession `json:"user"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Login authenticates an editor and creates a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user == nil {
		log.Printf("⚠️ Login failed for %s: user not found", email)
		return nil, errors.NewUnauthorizedError("Invalid email or password")
	}
	if !user.IsActive {
		return nil, errors.NewUnauthorizedError("Account is disabled")
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		log.Printf("⚠️ Login failed for %s: invalid password", email)
		return nil, errors.NewUnauthorizedError("Invalid email or password")
	}

	userSession := auth.UserSession{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}

	token, err := auth.GenerateToken(userSession)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	// The session row is keyed by the token's jti claim
	claims, err := auth.DecodeToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	now := time.Now()
	session := &models.Session{
		ID:           claims.RegisteredClaims.ID,
		UserID:       user.ID,
		ExpiresAt:    claims.ExpiresAt.Time,
		IsRevoked:    false,
		LastActivity: now,
		CreatedAt:    now,
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	log.Printf("✅ Login: %s (%s)", user.Email, user.Role)
	return &LoginResult{Token: token, User: userSession, ExpiresAt: session.ExpiresAt}, nil
}

// ValidateSession verifies a token's signature and checks the session row for
// revocation and expiry. Returns the claims on success.
func (s *AuthService) ValidateSession(ctx context.Context, tokenString string) (*auth.Claims, error) {
	claims, err := auth.ValidateToken(tokenString)
	if err != nil {
		return nil, errors.NewUnauthorizedError("Invalid or expired token")
	}

	session, err := s.sessions.Get(ctx, claims.RegisteredClaims.ID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if session == nil {
		return nil, errors.NewUnauthorizedError("Session not found")
	}
	if session.IsRevoked {
		return nil, errors.NewUnauthorizedError("Session has been revoked")
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, errors.NewUnauthorizedError("Session expired")
	}

	// Best-effort activity tracking
	if err := s.sessions.Touch(ctx, session.ID); err != nil {
		log.Printf("⚠️ Failed to update session activity: %v", err)
	}

	return claims, nil
}

// Logout revokes the session behind the given token
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := auth.ValidateToken(tokenString)
	if err != nil {
		// An invalid token has no session to revoke
		return nil
	}
	return s.sessions.Revoke(ctx, claims.RegisteredClaims.ID)
}

// CreateUser registers a new editor account. Admin only, enforced by the caller.
func (s *AuthService) CreateUser(ctx context.Context, email, name, password string, role string) (*models.User, error) {
	if err := auth.ValidatePasswordStrength(password); err != nil {
		return nil, errors.NewValidationError("password", err.Error())
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("User", "email", email)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           utils.GenerateID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         normalizeRole(role),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("✅ Created user %s (%s)", user.Email, user.Role)
	return user, nil
}

// normalizeRole maps an arbitrary role string onto a known role, defaulting
// to editor
func normalizeRole(role string) constants.UserRole {
	if constants.UserRole(role) == constants.RoleAdmin {
		return constants.RoleAdmin
	}
	return constants.RoleEditor
}
