// Backfill recomputes daily analytics rows for the last N days.
// Safe to re-run: days that already have a row are skipped.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/karloscodes/cartridge"

	"pulseboard/internal/config"
	"pulseboard/internal/database"
	"pulseboard/internal/rollup"
)

func main() {
	days := flag.Int("days", 30, "number of past days to backfill (yesterday backwards)")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := config.GetConfig()
	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := dbManager.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := dbManager.GetConnection()
	loc := cfg.GetReferenceLocation()

	created, err := rollup.Backfill(db, logger, time.Now().UTC(), *days, loc)
	if err != nil {
		log.Fatalf("Backfill failed after creating %d rows: %v", created, err)
	}

	log.Printf("Backfill complete: %d rows created over %d days", created, *days)
}
