package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"quiz-intake-service/internal/domain"
)

// AMQPConfig points at the broker and the queue that receives submission events.
type AMQPConfig struct {
	URL   string
	Queue string
}

// DefaultSubmissionQueue is used when AMQPConfig.Queue is empty.
const DefaultSubmissionQueue = "quiz.submissions"

type publishChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher hands each submission to a downstream mail worker through RabbitMQ.
type AMQPPublisher struct {
	conn      *amqp.Connection
	channel   publishChannel
	queue     string
	recipient string
}

// SubmissionEvent is the message body published for each submission.
type SubmissionEvent struct {
	Type       string            `json:"type"`
	Submission domain.Submission `json:"submission"`
	Recipient  string            `json:"recipient,omitempty"`
}

// NewAMQPPublisher dials the broker and declares the durable submission queue.
// recipient is copied into every event for the consuming mail worker.
func NewAMQPPublisher(cfg AMQPConfig, recipient string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	p, err := newAMQPPublisher(channel, cfg.Queue, recipient)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(channel publishChannel, queue, recipient string) (*AMQPPublisher, error) {
	if queue == "" {
		queue = DefaultSubmissionQueue
	}
	_, err := channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	return &AMQPPublisher{channel: channel, queue: queue, recipient: recipient}, nil
}

// Publish sends one persistent JSON message. The submission id doubles as the
// message id so consumers can drop redeliveries.
func (p *AMQPPublisher) Publish(ctx context.Context, event SubmissionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.Submission.ID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: publish %s: %v", domain.ErrNotificationFailed, event.Submission.ID, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *AMQPPublisher) NotifySubmission(ctx context.Context, submission domain.Submission) error {
	return p.Publish(ctx, SubmissionEvent{
		Type:       "quiz.submission.created",
		Submission: submission,
		Recipient:  p.recipient,
	})
}
