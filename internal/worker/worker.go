package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"job_tracker/internal/common"
	"job_tracker/internal/observability"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	maxRetries       = 3
	retryCountHeader = "x-retry-count"
)

// Republisher is the part of *amqp.Channel used to requeue a failed delivery.
type Republisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Worker consumes lifecycle events and writes them to the activity log.
type Worker struct {
	id        int
	db        *sql.DB
	repo      ActivityRepositoryInterface
	metrics   *observability.Metrics
	queueName string
}

func NewWorker(id int, db *sql.DB, repo ActivityRepositoryInterface, metrics *observability.Metrics, queueName string) *Worker {
	return &Worker{
		id:        id,
		db:        db,
		repo:      repo,
		metrics:   metrics,
		queueName: queueName,
	}
}

// Run opens a channel on conn and consumes until ctx is cancelled or the
// broker closes the delivery stream.
func (w *Worker) Run(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("worker %d open channel: %w", w.id, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d set QoS: %w", w.id, err)
	}

	msgs, err := ch.Consume(
		w.queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("worker %d consume: %w", w.id, err)
	}

	logrus.Infof("Worker %d started", w.id)
	return w.consume(ctx, ch, msgs)
}

func (w *Worker) consume(ctx context.Context, pub Republisher, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			logrus.Infof("Worker %d stopping", w.id)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("worker %d: delivery channel closed", w.id)
			}
			w.process(ctx, pub, msg)
		}
	}
}

func (w *Worker) process(ctx context.Context, pub Republisher, msg amqp.Delivery) {
	w.metrics.Consumed(w.queueName)

	event, err := decodeEvent(msg.Body)
	if err != nil {
		logrus.WithError(err).Errorf("Worker %d received invalid payload", w.id)
		w.metrics.EventFailed(msg.Type, "invalid_payload")
		_ = msg.Nack(false, false)
		return
	}

	retryCount := retryCountOf(msg)

	if err := w.handleEvent(ctx, event); err != nil {
		logrus.WithError(err).WithField("retry", retryCount).Errorf("Worker %d failed to record %s", w.id, event.Type)
		w.metrics.EventFailed(string(event.Type), "record_error")

		// Rejected values will be rejected again.
		if retryCount >= maxRetries || errors.Is(err, common.ErrValidation) {
			w.metrics.EventFailed(string(event.Type), "max_retries")
			_ = msg.Nack(false, false)
			return
		}

		logrus.Infof("Worker %d: requeuing event (retry %d/%d)", w.id, retryCount+1, maxRetries)
		if err := republishWithRetry(ctx, pub, &msg, retryCount+1); err != nil {
			logrus.WithError(err).Error("Failed to republish message")
			w.metrics.EventFailed(string(event.Type), "republish_error")
			_ = msg.Nack(false, true)
			return
		}

		w.metrics.Published(w.queueName)
		_ = msg.Ack(false)
		return
	}

	_ = msg.Ack(false)
}

func retryCountOf(msg amqp.Delivery) int32 {
	if msg.Headers == nil {
		return 0
	}
	switch v := msg.Headers[retryCountHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	}
	return 0
}

func republishWithRetry(ctx context.Context, pub Republisher, msg *amqp.Delivery, retryCount int32) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[retryCountHeader] = retryCount

	return pub.PublishWithContext(
		ctx,
		"",             // exchange
		msg.RoutingKey, // routing key (queue name)
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Persistent,
			Type:         msg.Type,
			Body:         msg.Body,
			Headers:      headers,
		},
	)
}
