// Package queue fans domain events out to RabbitMQ so services outside this
// process (analytics, search indexers) can follow marketplace activity.
package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"evea/internal/config"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey, messageID string, body []byte) error
	Close() error
}

// New returns an AMQP publisher when AMQP_URL is set and a no-op otherwise.
func New(cfg config.AMQPConfig, log *zap.Logger) Publisher {
	if cfg.URL == "" {
		return Noop{}
	}
	return NewAMQPPublisher(cfg.URL, cfg.Exchange, log)
}

type Noop struct{}

func (Noop) Publish(context.Context, string, string, []byte) error { return nil }
func (Noop) Close() error                                          { return nil }

type Published struct {
	RoutingKey string
	MessageID  string
	Body       []byte
}

// Recorder keeps published messages in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Published
}

func (r *Recorder) Publish(_ context.Context, routingKey, messageID string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Published{RoutingKey: routingKey, MessageID: messageID, Body: append([]byte(nil), body...)})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Messages() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.msgs...)
}
