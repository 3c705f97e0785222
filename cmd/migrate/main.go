// Command migrate applies or reverts the PostgreSQL schema migrations using
// the database settings from config.toml and its environment overlay.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/webcarros/internal/config"
	"github.com/JaimeStill/webcarros/internal/migrations"
	"github.com/JaimeStill/webcarros/pkg/database"
)

func main() {
	steps := flag.Int("steps", 1, "Number of migrations to revert with down")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-steps n] up|down")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if !cfg.Backend.UsesDatabase() {
		log.Fatalf("backend %q has no database to migrate", cfg.Backend.Provider)
	}

	db, err := sql.Open("pgx", cfg.Database.Dsn())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	switch flag.Arg(0) {
	case "up":
		if err := database.Migrate(db, migrations.FS); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		fmt.Println("migrations applied")
	case "down":
		if *steps < 1 {
			log.Fatalf("steps must be at least 1, got %d", *steps)
		}
		if err := database.Rollback(db, migrations.FS, *steps); err != nil {
			log.Fatalf("rollback failed: %v", err)
		}
		fmt.Printf("reverted %d migration(s)\n", *steps)
	default:
		flag.Usage()
		os.Exit(2)
	}
}
