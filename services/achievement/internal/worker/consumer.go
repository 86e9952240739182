// Package worker runs the achievement JetStream pull consumers.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/game-platform/internal/platform/natsconn"
)

const (
	Stream         = "ACHIEVEMENT"
	StreamSubjects = "achievement.>"

	SubjectSyncRequested = "achievement.sync.requested"
	SubjectProgress      = "achievement.progress"
)

// Config mirrors the service's worker settings.
type Config struct {
	BatchSize     int
	BatchInterval time.Duration
}

// outcome tells the fetch loop how to settle a message.
type outcome int

const (
	ack outcome = iota
	// nak asks for redelivery.
	nak
	// term drops a message that can never succeed.
	term
)

func (o outcome) String() string {
	switch o {
	case ack:
		return "ack"
	case nak:
		return "nak"
	default:
		return "term"
	}
}

type handleFunc func(ctx context.Context, data []byte) outcome

// Consumer fetches batches from one durable pull subscription and settles
// each message by the outcome of its handler.
type Consumer struct {
	name      string
	sub       *nats.Subscription
	handle    handleFunc
	batchSize int
	wait      time.Duration
	log       *zap.Logger
}

// EnsureStream creates the ACHIEVEMENT stream when missing.
func EnsureStream(js nats.JetStreamContext) error {
	return natsconn.EnsureStream(js, Stream, StreamSubjects)
}

func newConsumer(js nats.JetStreamContext, subject, durable string, h handleFunc, cfg Config, log *zap.Logger) (*Consumer, error) {
	sub, err := js.PullSubscribe(subject, durable, nats.BindStream(Stream))
	if err != nil {
		return nil, err
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchInterval <= 0 {
		cfg.BatchInterval = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{
		name:      durable,
		sub:       sub,
		handle:    h,
		batchSize: cfg.BatchSize,
		wait:      cfg.BatchInterval,
		log:       log.With(zap.String("consumer", durable)),
	}, nil
}

// Run processes messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.sub.Fetch(c.batchSize, nats.MaxWait(c.wait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			c.log.Error("fetch", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, m := range msgs {
			c.settle(m, c.handle(ctx, m.Data))
		}
	}
}

func (c *Consumer) settle(m *nats.Msg, o outcome) {
	var err error
	switch o {
	case ack:
		err = m.Ack()
	case nak:
		err = m.Nak()
	default:
		err = m.Term()
	}
	if err != nil {
		c.log.Warn("settle", zap.Stringer("outcome", o), zap.Error(err))
	}
}
