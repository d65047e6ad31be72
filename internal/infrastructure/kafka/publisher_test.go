package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/pkg/events"
	pkgkafka "github.com/bibbank/creditrisk/pkg/kafka"
)

type publishCall struct {
	topic    string
	messages []pkgkafka.Message
}

type fakeProducer struct {
	calls []publishCall
	err   error
}

func (f *fakeProducer) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	f.calls = append(f.calls, publishCall{topic: topic, messages: messages})
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func highRiskEvents(assessmentID, tenantID uuid.UUID) []events.DomainEvent {
	el := decimal.RequireFromString("5400.00")
	return []events.DomainEvent{
		event.NewAssessmentCompleted(assessmentID, tenantID, "CUST-1", "High Risk", "fs1-abc",
			0.6, decimal.NewFromInt(10000), el),
		event.NewHighRiskDetected(assessmentID, tenantID, "CUST-1", 0.6, el),
	}
}

func TestPublisher_RoutesByEventType(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewPublisher(producer, discardLogger())

	assessmentID, tenantID := uuid.New(), uuid.New()
	require.NoError(t, pub.Publish(context.Background(), highRiskEvents(assessmentID, tenantID)...))

	require.Len(t, producer.calls, 2)
	assert.Equal(t, event.EventTypeAssessmentCompleted, producer.calls[0].topic)
	assert.Equal(t, event.EventTypeHighRiskDetected, producer.calls[1].topic)

	msg := producer.calls[0].messages[0]
	assert.Equal(t, assessmentID.String(), string(msg.Key))
	assert.Equal(t, event.EventTypeAssessmentCompleted, msg.Headers["event_type"])
	assert.Equal(t, tenantID.String(), msg.Headers["tenant_id"])
	assert.NotEmpty(t, msg.Headers["event_id"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "CUST-1", payload["customer_ref"])
	assert.Equal(t, "High Risk", payload["risk_level"])
}

func TestPublisher_NoEvents(t *testing.T) {
	producer := &fakeProducer{}
	require.NoError(t, NewPublisher(producer, discardLogger()).Publish(context.Background()))
	assert.Empty(t, producer.calls)
}

func TestPublisher_ProducerError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("leader not available")}
	pub := NewPublisher(producer, discardLogger())

	err := pub.Publish(context.Background(), highRiskEvents(uuid.New(), uuid.New())...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), event.EventTypeAssessmentCompleted)
	assert.Len(t, producer.calls, 1)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, pub.Publish(context.Background(), highRiskEvents(uuid.New(), uuid.New())...))
	assert.Contains(t, buf.String(), event.EventTypeHighRiskDetected)
}
