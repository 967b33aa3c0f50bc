package application

import (
	"context"
	"strconv"

	"github.com/location-manager/zone-service/pkg/logging"
)

// recordEvent writes an event to the outbox. The write is not part of the record's
// own write, so a failure is logged and the operation still succeeds.
func recordEvent(ctx context.Context, recorder EventRecorder, logger *logging.Logger, aggregateType string, id int64, eventType string, data interface{}) {
	if recorder == nil {
		return
	}
	if err := recorder.Record(ctx, aggregateType, strconv.FormatInt(id, 10), eventType, data); err != nil {
		logger.WithError(err).Warn("Failed to record event", "eventType", eventType, "aggregateId", id)
	}
}
