package user

import (
	"context"
	"database/sql"
	"errors"

	"job_tracker/internal/common"
	"job_tracker/internal/db"

	"github.com/sirupsen/logrus"
)

var errUserNotFound = common.NotFound("User not found")

type UserRepository struct{}

type UserRepositoryInterface interface {
	Create(ctx context.Context, q db.DBTX, user *User) error
	GetByID(ctx context.Context, q db.DBTX, id int) (*User, error)
	GetByUsername(ctx context.Context, q db.DBTX, username string) (*User, error)
	List(ctx context.Context, q db.DBTX) ([]*User, error)
	Update(ctx context.Context, q db.DBTX, id int, input UpdateInput) (*User, error)
	Delete(ctx context.Context, q db.DBTX, id int) (bool, error)
}

func NewUserRepository() UserRepositoryInterface {
	return &UserRepository{}
}

const userColumns = `id, username, password, email, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.Email,
		&user.CreatedAt,
	)
	return user, err
}

// Create inserts user and fills in the generated id and creation time.
func (r *UserRepository) Create(ctx context.Context, q db.DBTX, user *User) error {
	query := `
		INSERT INTO users (
			username, password, email, created_at
		)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRowContext(ctx, query,
		user.Username,
		user.Password,
		user.Email,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		logrus.WithError(err).WithField("username", user.Username).Error("Failed to create user")
		return db.Classify(err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User created successfully")

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, q db.DBTX, id int) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logrus.WithField("user_id", id).Warn("User not found")
			return nil, errUserNotFound
		}
		logrus.WithError(err).Error("Failed to get user by ID")
		return nil, db.Classify(err)
	}

	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, q db.DBTX, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(q.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logrus.WithField("username", username).Warn("User not found")
			return nil, errUserNotFound
		}
		logrus.WithError(err).Error("Failed to get user by username")
		return nil, db.Classify(err)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context, q db.DBTX) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		logrus.WithError(err).Error("Failed to list users")
		return nil, db.Classify(err)
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, db.Classify(err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, db.Classify(err)
	}

	return users, nil
}

// Update replaces username and email and returns the stored row.
func (r *UserRepository) Update(ctx context.Context, q db.DBTX, id int, input UpdateInput) (*User, error) {
	query := `
		UPDATE users
		SET username = $1, email = $2
		WHERE id = $3
		RETURNING ` + userColumns

	user, err := scanUser(q.QueryRowContext(ctx, query, input.Username, input.Email, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errUserNotFound
		}
		logrus.WithError(err).WithField("user_id", id).Error("Failed to update user")
		return nil, db.Classify(err)
	}

	logrus.WithField("user_id", id).Info("User updated successfully")
	return user, nil
}

// Delete removes the user and, through the foreign key, their jobs. It
// reports whether a row was deleted.
func (r *UserRepository) Delete(ctx context.Context, q db.DBTX, id int) (bool, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("Failed to delete user")
		return false, db.Classify(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, db.Classify(err)
	}

	return rowsAffected > 0, nil
}
