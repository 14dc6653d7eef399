package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"research-rag/internal/model"
)

// InsightPublisher enqueues answered insights for asynchronous persistence.
type InsightPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewInsightPublisher(conn *amqp.Connection, queueName string) *InsightPublisher {
	return &InsightPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *InsightPublisher) Publish(ctx context.Context, record model.InsightRecord) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal insight payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish insight failed: %w", err)
	}
	return nil
}

// DeclareQueue declares the durable persist queue shared by publisher and worker.
func DeclareQueue(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare queue %q failed: %w", name, err)
	}
	return nil
}
