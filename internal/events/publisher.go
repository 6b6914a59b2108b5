// Package events announces archived flights to other services.
package events

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"flighttrack/internal/models"
	"flighttrack/internal/providers"
	"flighttrack/internal/structures"
)

type Publisher interface {
	PublishArchived(ctx context.Context, event models.ArchivedFlightEvent) error
	Close()
}

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

// NatsPublisher publishes archive events as JSON on a single subject.
type NatsPublisher struct {
	nc      conn
	subject string
	logger  providers.Logger
}

func (p *NatsPublisher) PublishArchived(ctx context.Context, event models.ArchivedFlightEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal archive event: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return nil
}

func (p *NatsPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.logger.Warnf(providers.TypeApp, "NATS drain failed: %s", err)
		p.nc.Close()
	}
}

type noopPublisher struct{}

func (n *noopPublisher) PublishArchived(_ context.Context, _ models.ArchivedFlightEvent) error {
	return nil
}
func (n *noopPublisher) Close() {}

// NewPublisher connects to NATS when events are enabled, otherwise returns a no-op publisher.
func NewPublisher(conf *structures.Config, logger providers.Logger) (Publisher, func(), error) {
	if !conf.Events.Enabled {
		return &noopPublisher{}, func() {}, nil
	}

	nc, err := nats.Connect(conf.Events.URL,
		nats.Name(conf.AppName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warnf(providers.TypeApp, "NATS disconnected: %s", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Infof(providers.TypeApp, "NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats %s: %w", conf.Events.URL, err)
	}
	logger.Infof(providers.TypeApp, "Publishing archive events to %s on %s", conf.Events.Subject, nc.ConnectedUrl())

	p := &NatsPublisher{nc: nc, subject: conf.Events.Subject, logger: logger}
	return p, p.Close, nil
}
