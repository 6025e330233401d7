package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sitewise/backend/internal/application/services"
	"github.com/sitewise/backend/pkg/constants"
	"github.com/sitewise/backend/pkg/errors"
)

// InitializeSystemData ensures a usable starting state: one admin account and
// one default site. Runs on every startup and is idempotent.
func InitializeSystemData(sm *services.ServiceManager) error {
	log.Println("🔧 Initializing system data...")
	ctx := context.Background()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@sitewise.local"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123!"
		log.Println("⚠️ ADMIN_PASSWORD not set, using the default. Change it before going live.")
	}

	_, err := sm.Auth.CreateUser(ctx, adminEmail, "Administrator", adminPassword, string(constants.RoleAdmin))
	if err != nil && !errors.IsConflict(err) {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}
	if err == nil {
		log.Printf("   ✅ Created admin user %s", adminEmail)
	}

	_, err = sm.Sites.Create(ctx, "default", "Default Site")
	if err != nil && !errors.IsConflict(err) {
		return fmt.Errorf("failed to ensure default site: %w", err)
	}
	if err == nil {
		log.Println("   ✅ Created default site")
	}

	return nil
}
