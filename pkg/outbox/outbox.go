// Package outbox stores domain events next to the records they describe and
// relays them to Kafka from a background poller.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/location-manager/zone-service/pkg/cloudevents"
)

const (
	DefaultMaxAttempts    = 10
	DefaultRetryBaseDelay = 2 * time.Second
	DefaultRetryMaxDelay  = 5 * time.Minute
)

// Message is a CloudEvent waiting for, or past, delivery. Its id is the
// CloudEvent id, so appending the same event twice is rejected by the store.
type Message struct {
	ID            string          `bson:"_id" json:"id"`
	AggregateType string          `bson:"aggregateType" json:"aggregateType"`
	AggregateID   string          `bson:"aggregateId" json:"aggregateId"`
	EventType     string          `bson:"eventType" json:"eventType"`
	Topic         string          `bson:"topic" json:"topic"`
	Payload       json.RawMessage `bson:"payload" json:"payload"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	NextAttemptAt time.Time       `bson:"nextAttemptAt" json:"nextAttemptAt"`
	Attempts      int             `bson:"attempts" json:"attempts"`
	LastError     string          `bson:"lastError,omitempty" json:"lastError,omitempty"`
	Abandoned     bool            `bson:"abandoned,omitempty" json:"abandoned,omitempty"`
	PublishedAt   *time.Time      `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
}

func newMessage(aggregateType, aggregateID, topic string, event *cloudevents.ZoneCloudEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	now := time.Now().UTC()
	return &Message{
		ID:            event.ID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     event.Type,
		Topic:         topic,
		Payload:       payload,
		CreatedAt:     now,
		NextAttemptAt: now,
	}, nil
}

// Published reports whether the message reached Kafka
func (m *Message) Published() bool {
	return m.PublishedAt != nil
}

// Event decodes the stored CloudEvent
func (m *Message) Event() (*cloudevents.ZoneCloudEvent, error) {
	var event cloudevents.ZoneCloudEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, fmt.Errorf("decode outbox message %s: %w", m.ID, err)
	}
	return &event, nil
}

// retryDelay doubles from base for every failed attempt, capped at max
func retryDelay(attempts int, base, max time.Duration) time.Duration {
	delay := base
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	return delay
}
