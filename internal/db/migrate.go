package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"job_tracker/internal/db/migrations"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
	"github.com/sirupsen/logrus"
)

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	// The API and the worker may both migrate on startup; the advisory lock
	// makes the second one wait and then find nothing to apply.
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return fmt.Errorf("create migration lock: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys, goose.WithSessionLocker(locker))
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		logrus.WithField("migration", r.Source.Path).Debug("Applied migration")
	}
	return nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := gooseUp(ctx, db, migrations.FS); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	logrus.Info("Database migrations applied")
	return nil
}
