package broker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const (
	subjectFinished  = "finished"
	subjectAbandoned = "abandoned"

	maxReconnects = -1
	reconnectWait = 2 * time.Second
)

// Publisher announces match outcomes on <prefix>.finished and <prefix>.abandoned.
// A Publisher without a connection drops every event.
type Publisher struct {
	logger *slog.Logger
	conn   *nats.Conn
	prefix string
}

// Connect dials the server at url.
func Connect(logger *slog.Logger, url, prefix string) (*Publisher, error) {
	log := logger.With("component", "nats")

	conn, err := nats.Connect(url,
		nats.Name("gomoku-backend"),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Error("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			log.Info("NATS reconnected", "url", conn.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		logger: log,
		conn:   conn,
		prefix: prefix,
	}, nil
}

// Disabled returns a publisher that drops every event.
func Disabled(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger.With("component", "nats")}
}

func (that *Publisher) Enabled() bool {
	return that.conn != nil
}

func (that *Publisher) PublishMatchFinished(event entity.MatchFinished) error {
	return that.publish(subjectFinished, event)
}

func (that *Publisher) PublishMatchAbandoned(event entity.MatchAbandoned) error {
	return that.publish(subjectAbandoned, event)
}

func (that *Publisher) Close() {
	if that.conn == nil {
		return
	}

	if err := that.conn.Drain(); err != nil {
		that.logger.Error("failed to drain NATS connection", "error", err)
	}
}

func (that *Publisher) publish(subject string, event any) error {
	if that.conn == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal %s event: %w", subject, err)
	}

	subject = that.prefix + "." + subject
	if err = that.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	that.logger.Debug("event published", "subject", subject)

	return nil
}
