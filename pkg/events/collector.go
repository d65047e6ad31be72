package events

// EventCollector is embedded in aggregates to gather events raised during state transitions.
type EventCollector struct {
	events []DomainEvent
}

// Record appends an event.
func (c *EventCollector) Record(event DomainEvent) {
	c.events = append(c.events, event)
}

// Events returns the recorded events without clearing them.
func (c *EventCollector) Events() []DomainEvent {
	return c.events
}

// ClearEvents hands over the recorded events and resets the collector.
func (c *EventCollector) ClearEvents() []DomainEvent {
	collected := c.events
	c.events = nil
	return collected
}
