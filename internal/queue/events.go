package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"job_tracker/internal/observability"

	amqp "github.com/rabbitmq/amqp091-go"
)

type EventType string

const (
	EventUserRegistered EventType = "user.registered"
	EventUserDeleted    EventType = "user.deleted"
	EventJobCreated     EventType = "job.created"
	EventJobUpdated     EventType = "job.updated"
	EventJobDeleted     EventType = "job.deleted"
)

// Event is the lifecycle message published after a successful write.
type Event struct {
	Type       EventType `json:"type"`
	UserID     int       `json:"user_id"`
	JobID      *int      `json:"job_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewUserEvent(t EventType, userID int) Event {
	return Event{Type: t, UserID: userID, OccurredAt: time.Now().UTC()}
}

func NewJobEvent(t EventType, userID, jobID int) Event {
	return Event{Type: t, UserID: userID, JobID: &jobID, OccurredAt: time.Now().UTC()}
}

func (e Event) Validate() error {
	switch e.Type {
	case EventUserRegistered, EventUserDeleted:
	case EventJobCreated, EventJobUpdated, EventJobDeleted:
		if e.JobID == nil {
			return fmt.Errorf("event %s without job id", e.Type)
		}
	default:
		return fmt.Errorf("unknown event type: %q", e.Type)
	}

	if e.UserID <= 0 {
		return fmt.Errorf("event %s without user id", e.Type)
	}
	return nil
}

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends events to a single queue over one channel. AMQP channels
// are not safe for concurrent use, so publishes are serialized.
type Publisher struct {
	mu      sync.Mutex
	ch      Channel
	queue   string
	metrics *observability.Metrics
}

func NewPublisher(ch Channel, queueName string, metrics *observability.Metrics) *Publisher {
	return &Publisher{ch: ch, queue: queueName, metrics: metrics}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		p.metrics.EventFailed(string(event.Type), "invalid")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.metrics.EventFailed(string(event.Type), "encode")
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	err = p.ch.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         string(event.Type),
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	p.mu.Unlock()

	if err != nil {
		p.metrics.EventFailed(string(event.Type), "publish")
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.metrics.Published(p.queue)
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
