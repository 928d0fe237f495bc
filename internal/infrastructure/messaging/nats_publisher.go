package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"campusfinder/internal/domain/entity"
	"campusfinder/pkg/logger"
)

// NatsPublisher announces newly created reports on a NATS subject.
type NatsPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNatsPublisher(url, subject string) (*NatsPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("campusfinder-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: conn, subject: subject}, nil
}

func (p *NatsPublisher) PublishReportCreated(ctx context.Context, report *entity.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity.NewReportCreatedEvent(report))
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, data)
}

func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
