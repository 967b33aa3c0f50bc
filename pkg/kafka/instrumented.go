package kafka

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/location-manager/zone-service/pkg/cloudevents"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/metrics"
)

// EventPublisher is satisfied by *Producer and by InstrumentedProducer itself
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.ZoneCloudEvent) error
	Close() error
}

// InstrumentedProducer decorates a publisher with a producer span, the
// publish metrics and a log line per event.
type InstrumentedProducer struct {
	next    EventPublisher
	metrics *metrics.Metrics
	logger  *logging.Logger
	tracer  trace.Tracer
}

// NewInstrumentedProducer wraps next; m and logger may be nil
func NewInstrumentedProducer(next EventPublisher, m *metrics.Metrics, logger *logging.Logger) *InstrumentedProducer {
	return &InstrumentedProducer{
		next:    next,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("github.com/location-manager/zone-service/pkg/kafka"),
	}
}

func publishAttributes(topic string, event *cloudevents.ZoneCloudEvent) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.MessagingSystemKey.String("kafka"),
		semconv.MessagingDestinationNameKey.String(topic),
		semconv.MessagingOperationKey.String("publish"),
		semconv.MessagingMessageIDKey.String(event.ID),
		attribute.String("cloudevents.event_type", event.Type),
	}
	if event.Subject != "" {
		attrs = append(attrs, semconv.MessagingKafkaMessageKeyKey.String(event.Subject))
	}
	if event.CorrelationID != "" {
		attrs = append(attrs, attribute.String("zones.correlation_id", event.CorrelationID))
	}
	return attrs
}

func (p *InstrumentedProducer) PublishEvent(ctx context.Context, topic string, event *cloudevents.ZoneCloudEvent) error {
	ctx, span := p.tracer.Start(ctx, topic+" publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(publishAttributes(topic, event)...),
	)
	defer span.End()

	start := time.Now()
	err := p.next.PublishEvent(ctx, topic, event)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, event.Type, err == nil, elapsed)
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, topic, event.Type, err == nil, elapsed)
	}
	return err
}

func (p *InstrumentedProducer) Close() error {
	return p.next.Close()
}
