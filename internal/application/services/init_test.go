package services

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env for integration tests. Depending on where go test runs from,
	// the file sits a few directories up.
	paths := []string{
		"../../../.env",
		"../../.env",
		"../.env",
		".env",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				log.Printf("📁 Loaded .env from %s for tests", p)
				return
			}
		}
	}

	log.Println("⚠️  No .env file found for tests - database tests may fail")
}
