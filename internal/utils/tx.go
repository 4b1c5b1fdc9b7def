package utils

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// WithTransaction runs fn inside a transaction. The transaction is rolled
// back when fn returns an error or panics, and committed otherwise.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	logrus.Debug("Transaction started")

	defer func() {
		if r := recover(); r != nil {
			logrus.Warn("Panic occurred, rolling back transaction")
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logrus.WithError(rbErr).Warn("Failed to roll back transaction")
		}
		logrus.Debug("Error occurred, rolling back transaction")
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	logrus.Debug("Transaction committed successfully")
	return nil
}
