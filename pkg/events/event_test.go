package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	tenantID := uuid.New()

	before := time.Now().UTC()
	event := NewBaseEvent("creditrisk.assessment.completed", aggregateID, "RiskAssessment", tenantID)
	after := time.Now().UTC()

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "creditrisk.assessment.completed", event.EventType())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "RiskAssessment", event.AggregateType())
	assert.Equal(t, tenantID, event.TenantID())
	assert.False(t, event.OccurredAt().Before(before))
	assert.False(t, event.OccurredAt().After(after))
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestBaseEventJSONEnvelope(t *testing.T) {
	event := NewBaseEvent("Scored", uuid.New(), "RiskAssessment", uuid.New())

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &parsed))
	assert.Equal(t, "Scored", parsed["event_type"])
	assert.Equal(t, event.EventID().String(), parsed["event_id"])
	assert.Equal(t, "RiskAssessment", parsed["aggregate_type"])
}

func TestEventCollectorRecord(t *testing.T) {
	collector := &EventCollector{}
	aggregateID := uuid.New()

	collector.Record(NewBaseEvent("Event1", aggregateID, "Aggregate", uuid.Nil))
	collector.Record(NewBaseEvent("Event2", aggregateID, "Aggregate", uuid.Nil))

	events := collector.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Event1", events[0].EventType())
	assert.Equal(t, "Event2", events[1].EventType())
}

func TestEventCollectorEventsDoesNotClear(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", uuid.New(), "Aggregate", uuid.Nil))

	_ = collector.Events()

	assert.Len(t, collector.Events(), 1)
}

func TestEventCollectorClearEvents(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", uuid.New(), "Aggregate", uuid.Nil))
	collector.Record(NewBaseEvent("Event2", uuid.New(), "Aggregate", uuid.Nil))

	cleared := collector.ClearEvents()

	assert.Len(t, cleared, 2)
	assert.Empty(t, collector.Events())
	assert.Nil(t, collector.ClearEvents())
}
