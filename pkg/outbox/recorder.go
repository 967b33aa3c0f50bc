package outbox

import (
	"context"

	"github.com/location-manager/zone-service/pkg/cloudevents"
)

// Recorder turns domain changes into outbox messages on one topic
type Recorder struct {
	repo    Repository
	factory *cloudevents.EventFactory
	topic   string
}

func NewRecorder(repo Repository, factory *cloudevents.EventFactory, topic string) *Recorder {
	return &Recorder{repo: repo, factory: factory, topic: topic}
}

// Record appends one event whose subject is "<aggregateType>/<aggregateID>"
func (r *Recorder) Record(ctx context.Context, aggregateType, aggregateID, eventType string, data interface{}) error {
	event := r.factory.CreateEvent(ctx, eventType, aggregateType+"/"+aggregateID, data)

	msg, err := newMessage(aggregateType, aggregateID, r.topic, event)
	if err != nil {
		return err
	}
	return r.repo.Append(ctx, msg)
}
