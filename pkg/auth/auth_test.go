package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewise/backend/pkg/constants"
)

func testSession() UserSession {
	return UserSession{
		ID:    "user-1",
		Name:  "Test Editor",
		Email: "editor@example.com",
		Role:  constants.RoleEditor,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(testSession())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.User.ID)
	assert.Equal(t, "editor@example.com", claims.User.Email)
	assert.Equal(t, constants.RoleEditor, claims.User.Role)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)

	_, err = ValidateToken("")
	assert.Error(t, err)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	token, err := GenerateToken(testSession())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ValidateToken(tampered)
	assert.Error(t, err)
}

func TestDecodeTokenReadsSessionID(t *testing.T) {
	token, err := GenerateToken(testSession())
	require.NoError(t, err)

	claims, err := DecodeToken(token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)

	validated, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, validated.RegisteredClaims.ID, claims.RegisteredClaims.ID)
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, UserSession{Role: constants.RoleAdmin}.IsAdmin())
	assert.False(t, UserSession{Role: constants.RoleEditor}.IsAdmin())
	assert.False(t, UserSession{Role: ""}.IsAdmin())
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, VerifyPassword("correct horse battery", hash))
	assert.False(t, VerifyPassword("wrong password", hash))
}

func TestValidatePasswordStrength(t *testing.T) {
	assert.Error(t, ValidatePasswordStrength("short"))
	assert.NoError(t, ValidatePasswordStrength("longenough"))

	long := make([]byte, 129)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidatePasswordStrength(string(long)))
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "editor@example.com", "first.last+tag@sub.domain.org"}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), email)
	}

	invalid := []string{"", "no-at-sign", "@example.com", "user@", "user@domain", "user@domain.c"}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), email)
	}
}
