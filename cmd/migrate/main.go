package main

import (
	"flag"
	"log"
	"os"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

func main() {
	dir := flag.String("dir", database.DefaultMigrationsDir, "directory holding the sql-migrate files")
	steps := flag.Int("steps", 0, "maximum number of migrations to apply (0 means all; down defaults to 1)")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	switch command {
	case "up":
		if _, err := database.Migrate(db, *dir, migrate.Up, *steps); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	case "down":
		limit := *steps
		if limit == 0 {
			limit = 1
		}
		if _, err := database.Migrate(db, *dir, migrate.Down, limit); err != nil {
			log.Fatalf("Failed to roll back migrations: %v", err)
		}
	case "status":
		records, err := database.MigrationStatus(db)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		if len(records) == 0 {
			log.Println("No migrations applied yet")
		}
		for _, r := range records {
			log.Printf("✅ %s applied at %s", r.Id, r.AppliedAt.Format("2006-01-02 15:04:05"))
		}
	default:
		log.Printf("unknown command %q (expected up, down or status)", command)
		os.Exit(2)
	}
}
