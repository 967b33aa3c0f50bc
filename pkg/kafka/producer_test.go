package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/location-manager/zone-service/pkg/cloudevents"
	"github.com/location-manager/zone-service/pkg/logging"
)

type recordingWriter struct {
	err  error
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func headerMap(msg kafka.Message) map[string]string {
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return headers
}

func TestEncode(t *testing.T) {
	ctx := logging.ContextWithCorrelationID(context.Background(), "corr-9")
	event := cloudevents.NewEventFactory(cloudevents.SourceZoneService).
		CreateEvent(ctx, cloudevents.ZoneCreated, "zone/12", cloudevents.EntityData{ID: 12})

	msg, err := encode(cloudevents.TopicZoneEvents, event)
	require.NoError(t, err)

	assert.Equal(t, cloudevents.TopicZoneEvents, msg.Topic)
	assert.Equal(t, "zone/12", string(msg.Key))

	headers := headerMap(msg)
	assert.Equal(t, "1.0", headers["ce-specversion"])
	assert.Equal(t, cloudevents.ZoneCreated, headers["ce-type"])
	assert.Equal(t, event.ID, headers["ce-id"])
	assert.Equal(t, "zone/12", headers["ce-subject"])
	assert.Equal(t, "corr-9", headers["ce-correlationid"])

	var decoded cloudevents.ZoneCloudEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
}

func TestEncode_OmitsEmptyOptionalHeaders(t *testing.T) {
	event := cloudevents.NewEventFactory(cloudevents.SourceZoneService).
		CreateEvent(context.Background(), cloudevents.ConfigUpdated, "", nil)

	msg, err := encode(cloudevents.TopicZoneEvents, event)
	require.NoError(t, err)

	headers := headerMap(msg)
	assert.NotContains(t, headers, "ce-correlationid")
	assert.NotContains(t, headers, "ce-subject")
}

func TestParseAcks(t *testing.T) {
	for raw, want := range map[string]Acks{"all": AcksAll, "-1": AcksAll, "Leader": AcksLeader, "1": AcksLeader, "none": AcksNone, "0": AcksNone} {
		got, err := ParseAcks(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseAcks("quorum")
	assert.Error(t, err)
	assert.Equal(t, kafka.RequireAll, Acks("").required())
}

func TestInstrumentedProducer(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	writer := &recordingWriter{}
	producer := NewInstrumentedProducer(&Producer{writer: writer}, nil, logging.NewNop())
	event := cloudevents.NewEventFactory(cloudevents.SourceZoneService).
		CreateEvent(context.Background(), cloudevents.TariffUpserted, "tariff/2", nil)

	require.NoError(t, producer.PublishEvent(context.Background(), cloudevents.TopicZoneEvents, event))
	require.Len(t, writer.msgs, 1)

	writer.err = errors.New("leader not available")
	err := producer.PublishEvent(context.Background(), cloudevents.TopicZoneEvents, event)
	assert.ErrorContains(t, err, "leader not available")

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, cloudevents.TopicZoneEvents+" publish", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.NoError(t, producer.Close())
}
