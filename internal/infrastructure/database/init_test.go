package database_test

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func init() {
	// integration DSNs live in the repo root .env
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

	log.Println("⚠️  No .env file found for tests - integration tests will skip")
}
