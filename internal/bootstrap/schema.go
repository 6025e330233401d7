package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/sitewise/backend/internal/infrastructure/database"
	"github.com/sitewise/backend/pkg/constants"
)

// InitializeSchema creates the system tables if they do not exist. The set is
// fixed; collection schemas and builder content live in JSON columns, so no
// DDL ever runs after startup.
func InitializeSchema(db *database.Connection) error {
	log.Println("🔧 Initializing schema...")

	ctx := context.Background()
	for _, ddl := range tableDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	log.Printf("✅ Schema ready (%d tables)", len(tableDDL))
	return nil
}

var tableDDL = []string{
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		slug VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uniq_site_slug (slug)
	)`, constants.TableSite),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		site_id VARCHAR(36) NOT NULL,
		slug VARCHAR(255) NOT NULL,
		title VARCHAR(255) NOT NULL,
		status VARCHAR(20) NOT NULL,
		latest_version INT NOT NULL DEFAULT 0,
		published_revision_id VARCHAR(36) NULL,
		published_at DATETIME NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uniq_page_slug (site_id, slug),
		KEY idx_page_site (site_id)
	)`, constants.TablePage),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		document_id VARCHAR(36) NOT NULL,
		version INT NOT NULL,
		content_json JSON NOT NULL,
		note VARCHAR(500) NULL,
		created_by VARCHAR(36) NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE KEY uniq_page_rev (document_id, version)
	)`, constants.TablePageRevision),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		site_id VARCHAR(36) NOT NULL,
		slug VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		schema_json JSON NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uniq_collection_slug (site_id, slug)
	)`, constants.TableCollection),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		collection_id VARCHAR(36) NOT NULL,
		status VARCHAR(20) NOT NULL,
		latest_version INT NOT NULL DEFAULT 0,
		published_revision_id VARCHAR(36) NULL,
		published_at DATETIME NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		KEY idx_item_collection (collection_id)
	)`, constants.TableCollectionItem),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		document_id VARCHAR(36) NOT NULL,
		version INT NOT NULL,
		data_json JSON NOT NULL,
		note VARCHAR(500) NULL,
		created_by VARCHAR(36) NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE KEY uniq_item_rev (document_id, version)
	)`, constants.TableItemRevision),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		collection_id VARCHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		cond TEXT NOT NULL,
		error_message VARCHAR(500) NOT NULL,
		KEY idx_rule_collection (collection_id)
	)`, constants.TableValidationRule),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		document_type VARCHAR(10) NOT NULL,
		document_id VARCHAR(36) NOT NULL,
		publish_at DATETIME NULL,
		schedule VARCHAR(100) NULL,
		last_run_at DATETIME NULL,
		created_by VARCHAR(36) NOT NULL,
		created_at DATETIME NOT NULL,
		KEY idx_schedule_document (document_id)
	)`, constants.TableScheduledPublish),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uniq_user_email (email)
	)`, constants.TableUser),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		expires_at DATETIME NOT NULL,
		is_revoked BOOLEAN NOT NULL DEFAULT FALSE,
		last_activity DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		KEY idx_session_user (user_id)
	)`, constants.TableSession),
}
