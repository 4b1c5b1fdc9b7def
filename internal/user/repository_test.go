package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"job_tracker/internal/common"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "password", "email", "created_at"}

func newRepoWithMock(t *testing.T) (UserRepositoryInterface, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(), mock, db
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users.*RETURNING\s+id,\s*created_at`).
		WithArgs("alice", "$2a$10$hash", "alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, createdAt))

	u := &User{Username: "alice", Password: "$2a$10$hash", Email: "alice@example.com"}
	err := repo.Create(context.Background(), db, u)

	require.NoError(t, err)
	assert.Equal(t, 7, u.ID)
	assert.Equal(t, createdAt, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateUsername(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	err := repo.Create(context.Background(), db, &User{Username: "alice", Password: "x"})

	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "Username already exists", err.Error())
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT\s+id,\s*username,\s*password,\s*email,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(7, "alice", "hash", "a@example.com", time.Now()))

	got, err := repo.GetByID(context.Background(), db, 7)

	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash", got.Password)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id`).WithArgs(99).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), db, 99)

	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "User not found", err.Error())
}

func TestUserRepository_GetByUsername_ConnectionLost(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+username`).
		WithArgs("alice").
		WillReturnError(errors.New("driver: bad connection"))

	_, err := repo.GetByUsername(context.Background(), db, "alice")

	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestUserRepository_List(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT.*FROM\s+users\s+ORDER\s+BY\s+id`).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(1, "alice", "h1", "", time.Now()).
			AddRow(2, "bob", "h2", "bob@example.com", time.Now()))

	users, err := repo.List(context.Background(), db)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[1].Username)
}

func TestUserRepository_List_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+users`).WillReturnRows(sqlmock.NewRows(userRowColumns))

	users, err := repo.List(context.Background(), db)

	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserRepository_Update(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET\s+username\s*=\s*\$1,\s*email\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$3\s+RETURNING`).
		WithArgs("alice2", "new@example.com", 7).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(7, "alice2", "hash", "new@example.com", time.Now()))

	got, err := repo.Update(context.Background(), db, 7, UpdateInput{Username: "alice2", Email: "new@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.Equal(t, "hash", got.Password, "password is returned but never changed")
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE\s+users`).WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.Update(context.Background(), db, 7, UpdateInput{Username: "x"})

	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"existing user", 1, true},
		{"missing user", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)

			mock.ExpectExec(`DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
				WithArgs(7).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			deleted, err := repo.Delete(context.Background(), db, 7)

			require.NoError(t, err)
			assert.Equal(t, tt.want, deleted)
		})
	}
}
