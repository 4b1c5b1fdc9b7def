package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"job_tracker/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

const maxConnectAttempts = 5

// Init opens the pgx-backed pool and waits for the server to answer a ping.
func Init(ctx context.Context, cfg *config.DBConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 0; i < maxConnectAttempts; i++ {
		db, err = sql.Open("pgx", cfg.DSN())
		if err != nil {
			logrus.WithError(err).Warnf("Failed to open database connection (attempt %d/%d)", i+1, maxConnectAttempts)
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}

		if err = db.PingContext(ctx); err != nil {
			logrus.WithError(err).Warnf("Failed to ping database (attempt %d/%d)", i+1, maxConnectAttempts)
			if err := db.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close database connection")
			}
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}

		break
	}

	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", maxConnectAttempts, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(5 * time.Minute)

	logrus.Info("Database connection established successfully")
	return db, nil
}

// DBTX is the subset of database/sql used by repositories.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
