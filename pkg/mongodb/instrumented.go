package mongodb

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/metrics"
)

// Observer wraps repository operations with a span, metrics and a debug log line
type Observer struct {
	database string
	metrics  *metrics.Metrics
	logger   *logging.Logger
	tracer   trace.Tracer
}

// NewObserver creates an Observer. m and logger may be nil.
func NewObserver(database string, m *metrics.Metrics, logger *logging.Logger) *Observer {
	return &Observer{
		database: database,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("mongodb"),
	}
}

// Track runs fn inside a "mongodb.<collection>.<operation>" span
func (o *Observer) Track(ctx context.Context, collection, operation string, fn func(ctx context.Context) error) error {
	if o == nil {
		return fn(ctx)
	}

	ctx, span := o.tracer.Start(ctx, "mongodb."+collection+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemMongoDB,
			semconv.DBNameKey.String(o.database),
			semconv.DBMongoDBCollectionKey.String(collection),
			semconv.DBOperationKey.String(operation),
		),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if o.metrics != nil {
		o.metrics.RecordMongoDBOperation(collection, operation, err == nil, duration)
	}
	if o.logger != nil {
		o.logger.DatabaseQuery(ctx, collection, operation, duration, err == nil)
	}

	return err
}
