package queue

import (
	"fmt"
	"time"

	"job_tracker/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const maxDialAttempts = 5

// SetupRabbitMQ dials the broker, retrying with a linear backoff.
func SetupRabbitMQ(rabbitMQCfg *config.RabbitMQConfig) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error

	for i := 0; i < maxDialAttempts; i++ {
		conn, err = amqp.Dial(rabbitMQCfg.URL)
		if err != nil {
			logrus.WithError(err).Warnf("Failed to connect to RabbitMQ (attempt %d/%d)", i+1, maxDialAttempts)
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}

		break
	}

	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ after %d attempts: %w", maxDialAttempts, err)
	}

	logrus.Info("RabbitMQ connection established successfully")
	return conn, nil
}

func CreateChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	return ch, nil
}

// QueueDeclarer is the part of *amqp.Channel needed to declare a queue.
type QueueDeclarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

func DeclareQueue(ch QueueDeclarer, queueName string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue: %w", err)
	}

	return q, nil
}
