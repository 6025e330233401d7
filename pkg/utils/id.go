package utils

import "github.com/google/uuid"

// GenerateID returns a new random UUID string, used as the primary key for
// every system table row.
func GenerateID() string {
	return uuid.NewString()
}

// IsValidUUID reports whether s parses as a UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
