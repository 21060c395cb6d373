// Package events publishes claim lifecycle notifications so that clients and
// other services can react to transitions without polling the thread.
package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"FindIt/internal/core/claim"
)

// QueueName is the durable queue claim events are routed to.
const QueueName = "claims.events"

// ClaimEvent describes one accepted change of a claim.
type ClaimEvent struct {
	ClaimID    string       `json:"claim_id"`
	ItemID     string       `json:"item_id"`
	FinderID   int64        `json:"finder_id"`
	ClaimantID int64        `json:"claimant_id"`
	From       claim.Status `json:"from,omitempty"`
	To         claim.Status `json:"to"`
	Event      string       `json:"event"`
	At         time.Time    `json:"at"`
}

// Publisher delivers claim events. Delivery is best effort: callers log
// failures and never roll back a committed transition because of them.
type Publisher interface {
	Publish(ctx context.Context, ev ClaimEvent) error
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ClaimEvent) error { return nil }

// AMQPPublisher sends events to RabbitMQ. A connection is opened per publish;
// claim transitions are rare enough for that to be acceptable.
type AMQPPublisher struct {
	URL    string
	Logger *zap.SugaredLogger
}

// NewAMQPPublisher returns a publisher for url.
func NewAMQPPublisher(url string, logger *zap.SugaredLogger) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Logger: logger}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev ClaimEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Logger.Warnw("rabbitmq: dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Logger.Warnw("rabbitmq: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		p.Logger.Warnw("rabbitmq: queue declare failed", "error", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.At,
		Type:         ev.Event,
		Body:         body,
	})
	if err != nil {
		p.Logger.Warnw("rabbitmq: publish failed", "error", err, "claim_id", ev.ClaimID)
		return err
	}
	return nil
}
