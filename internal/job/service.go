package job

import (
	"context"
	"database/sql"

	"job_tracker/internal/common"
	"job_tracker/internal/observability"
	"job_tracker/internal/queue"
	"job_tracker/internal/utils"

	"github.com/sirupsen/logrus"
)

// Cache is the owner-scoped read cache. cache.JobCache and cache.NoopCache
// satisfy it.
type Cache interface {
	Generation(ctx context.Context, ownerID int) (int64, error)
	GetList(ctx context.Context, ownerID int, filter string, dest any) (bool, error)
	SetList(ctx context.Context, ownerID int, gen int64, filter string, value any) error
	GetJob(ctx context.Context, ownerID, jobID int, dest any) (bool, error)
	SetJob(ctx context.Context, ownerID, jobID int, gen int64, value any) error
	InvalidateOwner(ctx context.Context, ownerID int) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event queue.Event) error
}

type JobServiceInterface interface {
	CreateJob(ctx context.Context, ownerID int, input JobInput) (*Job, error)
	ListJobs(ctx context.Context, ownerID int, filter ListFilter) ([]*Job, error)
	GetJob(ctx context.Context, ownerID, jobID int) (*Job, error)
	UpdateJob(ctx context.Context, ownerID, jobID int, input JobUpdate) (*Job, error)
	DeleteJob(ctx context.Context, ownerID, jobID int) error
}

type JobService struct {
	repo    JobRepositoryInterface
	db      *sql.DB
	cache   Cache
	events  EventPublisher
	metrics *observability.Metrics
}

func NewJobService(
	repo JobRepositoryInterface,
	db *sql.DB,
	cache Cache,
	events EventPublisher,
	metrics *observability.Metrics,
) JobServiceInterface {
	return &JobService{
		repo:    repo,
		db:      db,
		cache:   cache,
		events:  events,
		metrics: metrics,
	}
}

func (s *JobService) CreateJob(ctx context.Context, ownerID int, input JobInput) (*Job, error) {
	if input.Title == "" {
		return nil, common.Validation("Title is required")
	}

	job := &Job{
		UserID:       ownerID,
		Title:        input.Title,
		Company:      input.Company,
		Location:     input.Location,
		Description:  input.Description,
		Requirements: input.Requirements,
	}

	if err := utils.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		return s.repo.Create(ctx, tx, job)
	}); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "create", queue.NewJobEvent(queue.EventJobCreated, ownerID, job.ID))
	return job, nil
}

// ListJobs returns the owner's jobs, newest first.
func (s *JobService) ListJobs(ctx context.Context, ownerID int, filter ListFilter) ([]*Job, error) {
	field := filter.CacheField()

	var cached []*Job
	hit, err := s.cache.GetList(ctx, ownerID, field, &cached)
	if err != nil {
		logrus.WithError(err).WithField("user_id", ownerID).Warn("Failed to read job list cache")
	}
	if hit {
		logrus.WithField("user_id", ownerID).Debug("Cache hit for job list")
		return cached, nil
	}

	gen, genErr := s.cache.Generation(ctx, ownerID)

	jobs, err := s.repo.List(ctx, s.db, ownerID, filter)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if err := s.cache.SetList(ctx, ownerID, gen, field, jobs); err != nil {
			logrus.WithError(err).Warn("Failed to set cache for job list")
		}
	}

	return jobs, nil
}

func (s *JobService) GetJob(ctx context.Context, ownerID, jobID int) (*Job, error) {
	var cached Job
	hit, err := s.cache.GetJob(ctx, ownerID, jobID, &cached)
	if err != nil {
		logrus.WithError(err).WithField("job_id", jobID).Warn("Failed to read job cache")
	}
	if hit {
		logrus.WithField("job_id", jobID).Debug("Cache hit for job")
		return &cached, nil
	}

	gen, genErr := s.cache.Generation(ctx, ownerID)

	job, err := s.repo.GetByID(ctx, s.db, ownerID, jobID)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if err := s.cache.SetJob(ctx, ownerID, jobID, gen, job); err != nil {
			logrus.WithError(err).Warn("Failed to set cache for job")
		}
	}

	return job, nil
}

func (s *JobService) UpdateJob(ctx context.Context, ownerID, jobID int, input JobUpdate) (*Job, error) {
	if input.Title == "" {
		return nil, common.Validation("Title is required")
	}

	job, err := s.repo.Update(ctx, s.db, ownerID, jobID, input)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "update", queue.NewJobEvent(queue.EventJobUpdated, ownerID, jobID))
	return job, nil
}

// DeleteJob succeeds whether or not the job existed.
func (s *JobService) DeleteJob(ctx context.Context, ownerID, jobID int) error {
	deleted, err := s.repo.Delete(ctx, s.db, ownerID, jobID)
	if err != nil {
		return err
	}

	if deleted {
		s.afterWrite(ctx, "delete", queue.NewJobEvent(queue.EventJobDeleted, ownerID, jobID))
	}
	return nil
}

// afterWrite runs once the write is committed. Its failures are logged and
// never change the response.
func (s *JobService) afterWrite(ctx context.Context, operation string, event queue.Event) {
	s.metrics.JobWrite(operation)

	if err := s.cache.InvalidateOwner(ctx, event.UserID); err != nil {
		logrus.WithError(err).WithField("user_id", event.UserID).Warn("Failed to invalidate job cache")
	}

	if err := s.events.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event_type": event.Type,
			"user_id":    event.UserID,
		}).Warn("Failed to publish event")
	}
}
