package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"

	"brokerage/internal/domain/service"
	"brokerage/internal/errors"

	"github.com/nats-io/nats.go"
)

const defaultNatsSubject = "brokerage.properties"

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// NewNatsPublisher publishes every event on one subject. Consumers filter on
// the event_type header.
func NewNatsPublisher(url, subject string, logger *slog.Logger) (service.EventPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("brokerage"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to NATS")
	}
	if subject == "" {
		subject = defaultNatsSubject
	}

	logger.Info("Using NATS publisher",
		slog.String("url", conn.ConnectedUrlRedacted()),
		slog.String("subject", subject),
	)

	return &natsPublisher{conn: conn, subject: subject, logger: logger}, nil
}

func (p *natsPublisher) PublishPropertyEvent(ctx context.Context, event *service.PropertyEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	for k, v := range eventAttributes(event) {
		msg.Header.Set(k, v)
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		return errors.Wrapf(err, "failed to publish %s", event.Type)
	}

	p.logger.DebugContext(ctx, "[NATS] Event published",
		slog.String("subject", p.subject),
		slog.String("event_type", string(event.Type)),
	)

	return nil
}

// Close drains buffered messages before closing the connection.
func (p *natsPublisher) Close() error {
	return errors.WithStack(p.conn.Drain())
}
