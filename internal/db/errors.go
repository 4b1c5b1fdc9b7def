package db

import (
	"database/sql"
	"errors"

	"job_tracker/internal/common"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the service reacts to.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeStringTooLong       = "22001"
	codeInvalidText         = "22P02"
)

// Classify converts a driver error into a common error kind.
// sql.ErrNoRows is returned unchanged so callers can pick their own
// not-found message. Errors raised by the server for reasons other than the
// codes above are returned as-is and end up as 500s; everything that never
// reached the server (dial, pool, context) is reported as unavailable.
func Classify(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return common.Conflict("Username already exists", err)
		case codeForeignKeyViolation:
			return &common.Error{Kind: common.ErrNotFound, Message: "User not found", Err: err}
		case codeStringTooLong, codeInvalidText:
			return &common.Error{Kind: common.ErrValidation, Message: pgErr.Message, Err: err}
		default:
			return err
		}
	}

	return common.Unavailable(err)
}
