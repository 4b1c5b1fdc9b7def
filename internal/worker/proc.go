package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"job_tracker/internal/queue"
	"job_tracker/internal/utils"

	"github.com/sirupsen/logrus"
)

func decodeEvent(body []byte) (queue.Event, error) {
	var event queue.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return queue.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return queue.Event{}, err
	}
	return event, nil
}

func (w *Worker) handleEvent(ctx context.Context, event queue.Event) error {
	return utils.WithTransaction(ctx, w.db, func(tx *sql.Tx) error {
		id, err := w.repo.Insert(ctx, tx, event)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"worker_id":   w.id,
			"activity_id": id,
			"event_type":  event.Type,
			"user_id":     event.UserID,
		}).Info("Activity recorded")
		return nil
	})
}
