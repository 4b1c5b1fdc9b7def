package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"job_tracker/internal/common"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    error
		message string
	}{
		{
			name:    "unique violation",
			err:     &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"},
			kind:    common.ErrConflict,
			message: "Username already exists",
		},
		{
			name:    "wrapped unique violation",
			err:     fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}),
			kind:    common.ErrConflict,
			message: "Username already exists",
		},
		{
			name:    "foreign key violation",
			err:     &pgconn.PgError{Code: "23503"},
			kind:    common.ErrNotFound,
			message: "User not found",
		},
		{
			name:    "value too long",
			err:     &pgconn.PgError{Code: "22001", Message: "value too long for type character varying(255)"},
			kind:    common.ErrValidation,
			message: "value too long for type character varying(255)",
		},
		{
			name:    "connection refused",
			err:     errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			kind:    common.ErrUnavailable,
			message: "Service temporarily unavailable",
		},
		{
			name:    "pool wait cancelled",
			err:     context.DeadlineExceeded,
			kind:    common.ErrUnavailable,
			message: "Service temporarily unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)

			assert.ErrorIs(t, got, tt.kind)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.message, got.Error())
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	assert.NoError(t, Classify(nil))
	assert.Equal(t, sql.ErrNoRows, Classify(sql.ErrNoRows))

	syntax := &pgconn.PgError{Code: "42601", Message: "syntax error"}
	assert.Same(t, syntax, Classify(syntax))
}
