package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/location-manager/zone-service/pkg/logging"
)

// EventFactory creates CloudEvents for zone-service domain events
type EventFactory struct {
	source string
	now    func() time.Time
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source, now: time.Now}
}

// CreateEvent builds an event, picking the correlation id up from ctx when present
func (f *EventFactory) CreateEvent(ctx context.Context, eventType, subject string, data interface{}) *ZoneCloudEvent {
	event := &ZoneCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            f.now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
	if id, ok := logging.CorrelationID(ctx); ok {
		event.CorrelationID = id
	}
	return event
}
