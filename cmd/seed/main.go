package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/sitewise/backend/internal/application/services"
	"github.com/sitewise/backend/internal/bootstrap"
	"github.com/sitewise/backend/internal/domain/content"
	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/database"
	"github.com/sitewise/backend/pkg/constants"
)

// Seeds a demo site with a published landing page and a small blog
// collection. Run after the schema exists; safe to run repeatedly, existing
// slugs are skipped.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	if err := bootstrap.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	svcMgr := services.NewServiceManager(db)
	if err := bootstrap.InitializeSystemData(svcMgr); err != nil {
		log.Fatalf("Failed to initialize system data: %v", err)
	}

	ctx := context.Background()

	admin, err := svcMgr.Auth.Login(ctx, envOr("ADMIN_EMAIL", "admin@sitewise.local"), envOr("ADMIN_PASSWORD", "admin123!"))
	if err != nil {
		log.Fatalf("Failed to log in as admin: %v", err)
	}
	user := admin.User

	site, err := svcMgr.Sites.GetBySlug(ctx, "default")
	if err != nil {
		log.Fatalf("Default site missing: %v", err)
	}

	// Landing page with a couple of blocks, published
	page, err := svcMgr.Pages.Create(ctx, site.ID, "home", "Home", user)
	if err != nil {
		log.Printf("⏭️ Skipping page seed: %v", err)
	} else {
		envelope := content.BuilderContent{
			SchemaVersion: content.CurrentSchemaVersion,
			Data: content.PuckData{
				Content: []content.ContentBlock{
					{Type: "hero", Props: map[string]interface{}{
						"id":       "hero-1",
						"title":    "Welcome to Sitewise",
						"subtitle": "Build, version, publish.",
					}},
					{Type: "text-block", Props: map[string]interface{}{
						"id":   "text-1",
						"text": "Every save is a revision. Every publish is a pointer.",
					}},
				},
				Root: map[string]interface{}{"title": "Home"},
			},
		}
		if _, err := svcMgr.Pages.SaveDraft(ctx, page.ID, mustRaw(envelope), nil, user); err != nil {
			log.Fatalf("Failed to seed page content: %v", err)
		}
		if _, err := svcMgr.Pages.Publish(ctx, page.ID, nil, "", user); err != nil {
			log.Fatalf("Failed to publish seeded page: %v", err)
		}
		log.Println("✅ Seeded and published home page")
	}

	// Blog collection with one published post
	coll, err := svcMgr.Collections.Create(ctx, site.ID, "posts", "Posts", []models.CollectionField{
		{Key: "title", Label: "Title", Type: constants.FieldTypeText, Required: true},
		{Key: "body", Label: "Body", Type: constants.FieldTypeRichText},
		{Key: "published_on", Label: "Published on", Type: constants.FieldTypeDate},
		{Key: "category", Label: "Category", Type: constants.FieldTypeSelect, Options: []string{"news", "engineering", "product"}},
	})
	if err != nil {
		log.Printf("⏭️ Skipping collection seed: %v", err)
		return
	}

	if _, err := svcMgr.Collections.CreateRule(ctx, coll.ID, "title-length", "LEN(title) >= 3", "Title must be at least 3 characters"); err != nil {
		log.Fatalf("Failed to seed validation rule: %v", err)
	}

	result, err := svcMgr.Items.Create(ctx, coll.ID, map[string]interface{}{
		"title":        "Hello, world",
		"body":         "<p>First post.</p>",
		"published_on": "2026-01-15",
		"category":     "news",
	}, user)
	if err != nil {
		log.Fatalf("Failed to seed item: %v", err)
	}
	if _, err := svcMgr.Items.Publish(ctx, result.Item.ID, nil, "", user); err != nil {
		log.Fatalf("Failed to publish seeded item: %v", err)
	}
	log.Println("✅ Seeded posts collection with one published item")
}

func mustRaw(c content.BuilderContent) interface{} {
	raw, err := c.Serialize()
	if err != nil {
		log.Fatalf("Failed to serialize seed content: %v", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Fatalf("Failed to decode seed content: %v", err)
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
