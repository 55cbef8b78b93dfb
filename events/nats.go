package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"edpharma/logger"
	"edpharma/models"
)

const publishAttempts = 3

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
}

type NatsPublisher struct {
	nc     conn
	close  func()
	logger *logger.Logger
	retry  time.Duration
}

func NewNatsPublisher(url string, log *logger.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("edpharma"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("Connected to NATS", "url", url)
	return &NatsPublisher{nc: nc, close: nc.Close, logger: log, retry: time.Second}, nil
}

func (p *NatsPublisher) OrderCreated(ctx context.Context, order models.Order) error {
	return p.publish(ctx, SubjectOrderCreated, order.ID, NewOrderCreated(order))
}

func (p *NatsPublisher) OrderStatusChanged(ctx context.Context, order models.Order, from models.OrderStatus) error {
	return p.publish(ctx, SubjectOrderStatusChanged, order.ID, NewOrderStatusChanged(order, from))
}

func (p *NatsPublisher) publish(ctx context.Context, subject, orderID string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	for i := 0; i < publishAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.retry):
			}
		}

		if err = p.nc.Publish(subject, data); err != nil {
			p.logger.Warn("Failed to publish to NATS", "subject", subject, "attempt", i+1, "error", err)
			continue
		}
		if err = p.nc.FlushTimeout(2 * time.Second); err != nil {
			p.logger.Warn("Failed to flush NATS connection", "subject", subject, "error", err)
			continue
		}

		p.logger.Debug("Published event", "subject", subject, "order_id", orderID)
		return nil
	}
	return fmt.Errorf("failed to publish %s after %d attempts: %w", subject, publishAttempts, err)
}

func (p *NatsPublisher) Close() {
	if p.close != nil {
		p.close()
		p.logger.Info("NATS connection closed")
	}
}
