package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/sitewise/backend/internal/infrastructure/database"
	"github.com/sitewise/backend/pkg/constants"
)

// Drops every system table. Development helper; there is no confirmation
// prompt, so keep it away from anything resembling production.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	log.Println("🧹 Wiping Sitewise tables...")

	for _, table := range constants.AllTables {
		log.Printf("🔥 Dropping table: %s", table)
		if _, err := db.DB().Exec("DROP TABLE IF EXISTS `" + table + "`"); err != nil {
			log.Printf("⚠️ Warning: Failed to drop table %s: %v", table, err)
		}
	}

	log.Println("✅ Done")
}
