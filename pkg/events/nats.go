package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Publisher broadcasts domain events over NATS. Consumers (notification
// fan-out, analytics) subscribe to presta.> subjects.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// Connect dials the NATS server and returns a publisher.
func Connect(url string, logger zerolog.Logger) (*Publisher, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}

	conn, err := nats.Connect(url, nats.Name("presta-api"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "events").Logger(),
	}, nil
}

// Publish serializes the payload as JSON and publishes it on the subject.
func (p *Publisher) Publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug().Str("subject", subject).Msg("event published")

	return nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
