package main

import (
	"os"

	"github.com/uptrace/bun"

	"nft-ticketing/internal/database/migrations"
)

// runMigrations applies any pending schema migrations before the server
// starts accepting traffic.
func runMigrations(bunDB *bun.DB) error {
	opts := migrations.DefaultOptions()
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		opts.MigrationsDir = dir
	}

	runner := migrations.NewRunner(bunDB, opts)
	return runner.RunMigrations()
}
