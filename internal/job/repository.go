package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"job_tracker/internal/common"
	"job_tracker/internal/db"

	"github.com/sirupsen/logrus"
)

var errJobNotFound = common.NotFound("Job not found")

// JobRepository runs every statement with the owner id in its WHERE clause.
type JobRepository struct{}

type JobRepositoryInterface interface {
	Create(ctx context.Context, q db.DBTX, job *Job) error
	List(ctx context.Context, q db.DBTX, ownerID int, filter ListFilter) ([]*Job, error)
	GetByID(ctx context.Context, q db.DBTX, ownerID, jobID int) (*Job, error)
	Update(ctx context.Context, q db.DBTX, ownerID, jobID int, input JobUpdate) (*Job, error)
	Delete(ctx context.Context, q db.DBTX, ownerID, jobID int) (bool, error)
}

func NewJobRepository() JobRepositoryInterface {
	return &JobRepository{}
}

const jobColumns = `id, user_id, title, company, location, description, requirements, is_applied, posted_at, updated_at`

func scanJob(row interface{ Scan(dest ...any) error }) (*Job, error) {
	job := &Job{}
	var updatedAt sql.NullTime
	err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.Title,
		&job.Company,
		&job.Location,
		&job.Description,
		&job.Requirements,
		&job.IsApplied,
		&job.PostedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		job.UpdatedAt = &updatedAt.Time
	}
	return job, nil
}

// Create inserts job for job.UserID and replaces job with the stored row.
func (r *JobRepository) Create(ctx context.Context, q db.DBTX, job *Job) error {
	query := `
		INSERT INTO jobs (
			user_id, title, company, location, description, requirements, posted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING ` + jobColumns

	stored, err := scanJob(q.QueryRowContext(ctx, query,
		job.UserID,
		job.Title,
		job.Company,
		job.Location,
		job.Description,
		job.Requirements,
	))
	if err != nil {
		logrus.WithError(err).WithField("user_id", job.UserID).Error("Failed to create job")
		return db.Classify(err)
	}

	*job = *stored
	logrus.WithFields(logrus.Fields{
		"job_id":  job.ID,
		"user_id": job.UserID,
	}).Info("Job created successfully")

	return nil
}

// escapeLike makes LIKE metacharacters in term match literally.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// buildListQuery composes the listing statement. Optional predicates are
// appended with the next positional placeholder.
func buildListQuery(ownerID int, filter ListFilter) (string, []any) {
	var sb strings.Builder
	args := []any{ownerID}

	sb.WriteString(`SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1`)

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		fmt.Fprintf(&sb, ` AND title ILIKE $%d`, len(args))
	}

	sb.WriteString(` ORDER BY posted_at DESC, id DESC`)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}

	return sb.String(), args
}

func (r *JobRepository) List(ctx context.Context, q db.DBTX, ownerID int, filter ListFilter) ([]*Job, error) {
	query, args := buildListQuery(ownerID, filter)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		logrus.WithError(err).WithField("user_id", ownerID).Error("Failed to list jobs")
		return nil, db.Classify(err)
	}
	defer rows.Close()

	jobs := make([]*Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, db.Classify(err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, db.Classify(err)
	}

	return jobs, nil
}

func (r *JobRepository) GetByID(ctx context.Context, q db.DBTX, ownerID, jobID int) (*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1 AND id = $2`

	job, err := scanJob(q.QueryRowContext(ctx, query, ownerID, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errJobNotFound
		}
		logrus.WithError(err).WithField("job_id", jobID).Error("Failed to get job")
		return nil, db.Classify(err)
	}

	return job, nil
}

func (r *JobRepository) Update(ctx context.Context, q db.DBTX, ownerID, jobID int, input JobUpdate) (*Job, error) {
	query := `
		UPDATE jobs
		SET title = $1, company = $2, location = $3, description = $4,
			requirements = $5, is_applied = $6, updated_at = COALESCE($7::timestamptz, NOW())
		WHERE user_id = $8 AND id = $9
		RETURNING ` + jobColumns

	var updatedAt any
	if input.UpdatedAt != nil {
		updatedAt = *input.UpdatedAt
	}

	job, err := scanJob(q.QueryRowContext(ctx, query,
		input.Title,
		input.Company,
		input.Location,
		input.Description,
		input.Requirements,
		input.IsApplied,
		updatedAt,
		ownerID,
		jobID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errJobNotFound
		}
		logrus.WithError(err).WithField("job_id", jobID).Error("Failed to update job")
		return nil, db.Classify(err)
	}

	logrus.WithFields(logrus.Fields{
		"job_id":  jobID,
		"user_id": ownerID,
	}).Info("Job updated successfully")

	return job, nil
}

// Delete reports whether a row was removed.
func (r *JobRepository) Delete(ctx context.Context, q db.DBTX, ownerID, jobID int) (bool, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM jobs WHERE user_id = $1 AND id = $2`, ownerID, jobID)
	if err != nil {
		logrus.WithError(err).WithField("job_id", jobID).Error("Failed to delete job")
		return false, db.Classify(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, db.Classify(err)
	}

	return rowsAffected > 0, nil
}
