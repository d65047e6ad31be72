package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message is a broker-agnostic Kafka record. Topic, Partition and Offset are
// set on consumed messages and ignored by Publish.
type Message struct {
	Headers   map[string]string
	Topic     string
	Key       []byte
	Value     []byte
	Partition int
	Offset    int64
}

// Producer publishes messages through one lazily created writer per topic.
type Producer struct {
	transport *kafkago.Transport
	writers   map[string]*kafkago.Writer
	brokers   []string
	mu        sync.Mutex
}

// NewProducer validates the connection settings and returns a Producer.
// No network traffic happens until the first Publish.
func NewProducer(cfg Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	transport, err := cfg.transport()
	if err != nil {
		return nil, err
	}
	return &Producer{
		transport: transport,
		writers:   make(map[string]*kafkago.Writer),
		brokers:   cfg.Brokers,
	}, nil
}

// Publish writes messages to topic, blocking until all replicas acknowledge.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	records := make([]kafkago.Message, 0, len(messages))
	for _, msg := range messages {
		record := kafkago.Message{Key: msg.Key, Value: msg.Value}
		for k, v := range msg.Headers {
			record.Headers = append(record.Headers, kafkago.Header{Key: k, Value: []byte(v)})
		}
		records = append(records, record)
	}

	if err := p.writer(topic).WriteMessages(ctx, records...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes every writer.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing writer for topic %s: %w", topic, err))
		}
	}
	p.writers = make(map[string]*kafkago.Writer)
	return errors.Join(errs...)
}

func (p *Producer) writer(topic string) *kafkago.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: false,
		Transport:              p.transport,
	}
	p.writers[topic] = w
	return w
}
