package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const dialTimeout = 3 * time.Second

// New dials the broker and opens one channel to confirm the session is usable.
func New(ctx context.Context, url string) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	_ = ch.Close()

	go watchClose(conn)
	log.Info().Msg("rabbitmq connected")
	return conn, nil
}

func watchClose(conn *amqp.Connection) {
	if amqpErr, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1)); ok && amqpErr != nil {
		log.Error().Int("code", amqpErr.Code).Str("reason", amqpErr.Reason).Msg("rabbitmq connection closed")
	}
}
