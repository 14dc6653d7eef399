package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"research-rag/internal/model"
	"research-rag/internal/platform/rabbitmq"
)

type InsightStore interface {
	Create(ctx context.Context, record *model.InsightRecord) error
}

// InsightPersistWorker drains the insight queue into MySQL. Malformed or
// unsaveable deliveries are dropped without requeue.
type InsightPersistWorker struct {
	conn      *amqp.Connection
	store     InsightStore
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewInsightPersistWorker(conn *amqp.Connection, store InsightStore, queueName string) *InsightPersistWorker {
	return &InsightPersistWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
	}
}

func (w *InsightPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					log.Error().Err(err).Str("queue", w.queueName).Msg("persist insight failed")
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *InsightPersistWorker) handle(ctx context.Context, body []byte) error {
	var record model.InsightRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return fmt.Errorf("decode insight payload failed: %w", err)
	}
	if record.UserID == 0 {
		return fmt.Errorf("insight payload has no user id")
	}
	// the database assigns ids; a replayed payload must not collide
	record.ID = 0
	return w.store.Create(ctx, &record)
}

func (w *InsightPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
