package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"job_tracker/internal/auth"
	"job_tracker/internal/common"
	"job_tracker/internal/observability"
	"job_tracker/internal/queue"
	"job_tracker/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type TokenIssuer interface {
	Issue(userID int) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event queue.Event) error
}

// JobCachePurger drops cached job reads of a deleted user.
type JobCachePurger interface {
	InvalidateOwner(ctx context.Context, ownerID int) error
}

type UserServiceInterface interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	ListUsers(ctx context.Context) ([]*User, error)
	GetUser(ctx context.Context, id int) (*User, error)
	UpdateUser(ctx context.Context, id int, input UpdateInput) (*User, error)
	DeleteUser(ctx context.Context, id int) error
}

type UserService struct {
	repo    UserRepositoryInterface
	db      *sql.DB
	tokens  TokenIssuer
	events  EventPublisher
	cache   JobCachePurger
	metrics *observability.Metrics
}

func NewUserService(
	repo UserRepositoryInterface,
	db *sql.DB,
	tokens TokenIssuer,
	events EventPublisher,
	cache JobCachePurger,
	metrics *observability.Metrics,
) UserServiceInterface {
	return &UserService{
		repo:    repo,
		db:      db,
		tokens:  tokens,
		events:  events,
		cache:   cache,
		metrics: metrics,
	}
}

// Register stores a new user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, common.Validation("Username and password are required")
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, common.Validation("Password must not exceed 72 bytes")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username: input.Username,
		Password: hashedPassword,
		Email:    input.Email,
	}

	if err := utils.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		return s.repo.Create(ctx, tx, user)
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, queue.NewUserEvent(queue.EventUserRegistered, user.ID))
	return user, nil
}

// Login checks the credentials and issues an access token. An unknown
// username and a wrong password produce different errors.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.repo.GetByUsername(ctx, s.db, input.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.metrics.Login("user_not_found")
		}
		return nil, err
	}

	if err := auth.CheckPassword(user.Password, input.Password); err != nil {
		s.metrics.Login("incorrect_password")
		logrus.WithField("user_id", user.ID).Warn("Login with incorrect password")
		return nil, common.Validation("Incorrect password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.Login("success")
	return &LoginResult{Token: token, User: user}, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx, s.db)
}

func (s *UserService) GetUser(ctx context.Context, id int) (*User, error) {
	return s.repo.GetByID(ctx, s.db, id)
}

func (s *UserService) UpdateUser(ctx context.Context, id int, input UpdateInput) (*User, error) {
	if input.Username == "" {
		return nil, common.Validation("Username is required")
	}
	return s.repo.Update(ctx, s.db, id, input)
}

// DeleteUser removes the user and their jobs. Deleting a missing user is
// not an error.
func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	deleted, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}

	if err := s.cache.InvalidateOwner(ctx, id); err != nil {
		logrus.WithError(err).WithField("user_id", id).Warn("Failed to purge job cache of deleted user")
	}

	s.publish(ctx, queue.NewUserEvent(queue.EventUserDeleted, id))
	return nil
}

// publish never fails the request; the write is already committed.
func (s *UserService) publish(ctx context.Context, event queue.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event_type": event.Type,
			"user_id":    event.UserID,
		}).Warn("Failed to publish event")
	}
}
