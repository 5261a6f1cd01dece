// Seed fills a development database with demo data.
package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/karloscodes/cartridge"

	"pulseboard/internal/config"
	"pulseboard/internal/database"
	"pulseboard/internal/seeder"
)

func main() {
	days := flag.Int("days", 14, "number of past days to seed")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := config.GetConfig()
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := dbManager.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	s := seeder.NewSeeder(dbManager, logger, *days, cfg.GetReferenceLocation())
	if err := s.Run(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
