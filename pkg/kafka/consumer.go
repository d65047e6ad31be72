package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed message. A returned error makes the consumer
// retry the same message with backoff; later offsets are not fetched until it
// succeeds, so nothing past it is committed.
type Handler func(ctx context.Context, msg Message) error

// messageReader is the subset of *kafkago.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Config() kafkago.ReaderConfig
	Close() error
}

// Consumer reads a single topic as part of a consumer group.
type Consumer struct {
	reader       messageReader
	handler      Handler
	logger       *slog.Logger
	retryInitial time.Duration
	retryMax     time.Duration
}

// NewConsumer creates a group consumer for topic.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if cfg.ConsumerGroup == "" {
		return nil, errors.New("kafka: consumer group is required")
	}
	dialer, err := cfg.dialer()
	if err != nil {
		return nil, err
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10 * 1024 * 1024,
		Dialer:   dialer,
	})

	return newConsumer(reader, handler, logger), nil
}

func newConsumer(reader messageReader, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:       reader,
		handler:      handler,
		logger:       logger,
		retryInitial: 500 * time.Millisecond,
		retryMax:     30 * time.Second,
	}
}

// Run fetches and handles messages until ctx is canceled. A message is
// committed only after its handler succeeds.
func (c *Consumer) Run(ctx context.Context) error {
	cfg := c.reader.Config()
	c.logger.Info("consumer starting", "topic", cfg.Topic, "group", cfg.GroupID)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "topic", cfg.Topic)
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if err := c.handle(ctx, m); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping with message unhandled",
					"topic", m.Topic,
					"partition", m.Partition,
					"offset", m.Offset,
				)
				return nil
			}
			return fmt.Errorf("handling message at offset %d: %w", m.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// handle runs the handler until it succeeds or ctx is done.
func (c *Consumer) handle(ctx context.Context, m kafkago.Message) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInitial
	b.MaxInterval = c.retryMax
	b.MaxElapsedTime = 0

	msg := toMessage(m)
	return backoff.RetryNotify(
		func() error { return c.handler(ctx, msg) },
		backoff.WithContext(b, ctx),
		func(err error, wait time.Duration) {
			c.logger.Error("handler error, retrying",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"retry_in", wait,
				"error", err,
			)
		},
	)
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}

func toMessage(m kafkago.Message) Message {
	msg := Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
