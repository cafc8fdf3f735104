package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/repository/postgres"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	sourceURL := os.Getenv("MIGRATIONS_PATH")
	if sourceURL == "" {
		sourceURL = "file://migrations"
	}

	fmt.Printf("Running migrations against %s:%d...\n", cfg.Database.Host, cfg.Database.Port)

	if err := postgres.RunMigrations(cfg.Database.DSN(), sourceURL); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}
}
