package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"storefront-be/internal/config"
	"storefront-be/internal/db"

	"github.com/golang-migrate/migrate/v4"
)

// migrator is the subset of *migrate.Migrate the runner drives.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
}

func main() {
	mode := flag.String("mode", "up", "migration mode: up, down or status")
	steps := flag.Int("steps", 0, "number of migrations to apply (up) or roll back (down); 0 means all for up, 1 for down")
	flag.Parse()

	cfg := config.LoadConfig()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	m, err := db.NewMigrator(database, cfg.MigrationsPath)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(m, *mode, *steps); err != nil {
		log.Fatal(err)
	}
}

func run(m migrator, mode string, steps int) error {
	switch mode {
	case "up":
		return runUp(m, steps)
	case "down":
		return runDown(m, steps)
	case "status":
		return printStatus(m)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up', 'down' or 'status')", mode)
	}
}

func runUp(m migrator, steps int) error {
	var err error
	if steps > 0 {
		err = m.Steps(steps)
	} else {
		err = m.Up()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No new migrations to apply.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("All new migrations applied successfully.")
	return printStatus(m)
}

func runDown(m migrator, steps int) error {
	if steps <= 0 {
		steps = 1
	}

	err := m.Steps(-steps)
	if errors.Is(err, migrate.ErrNoChange) || errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations to roll back.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	fmt.Println("Rollback successful.")
	return printStatus(m)
}

func printStatus(m migrator) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("Schema version: none")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	fmt.Printf("Schema version: %d (dirty=%t)\n", version, dirty)
	return nil
}
