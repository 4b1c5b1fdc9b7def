package worker

import (
	"context"

	"job_tracker/internal/db"
	"job_tracker/internal/queue"

	"github.com/sirupsen/logrus"
)

type ActivityRepository struct{}

type ActivityRepositoryInterface interface {
	Insert(ctx context.Context, q db.DBTX, event queue.Event) (int64, error)
}

func NewActivityRepository() ActivityRepositoryInterface {
	return &ActivityRepository{}
}

// Insert appends event to the audit trail and returns the new row id.
func (r *ActivityRepository) Insert(ctx context.Context, q db.DBTX, event queue.Event) (int64, error) {
	query := `
		INSERT INTO activity_log (
			event_type, user_id, job_id, occurred_at, recorded_at
		)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`

	var jobID any
	if event.JobID != nil {
		jobID = *event.JobID
	}

	var id int64
	err := q.QueryRowContext(ctx, query,
		string(event.Type),
		event.UserID,
		jobID,
		event.OccurredAt,
	).Scan(&id)
	if err != nil {
		logrus.WithError(err).WithField("event_type", event.Type).Error("Failed to record activity")
		return 0, db.Classify(err)
	}

	return id, nil
}
