// Package kafka publishes zone CloudEvents with segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/location-manager/zone-service/pkg/cloudevents"
)

// messageWriter is the part of *kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes CloudEvents in binary content mode. One writer serves every
// topic; the topic travels on each message.
type Producer struct {
	writer messageWriter
}

func NewProducer(config *Config) *Producer {
	transport := &kafka.Transport{ClientID: config.ClientID}
	return &Producer{writer: &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           config.Acks.required(),
		BatchSize:              config.BatchSize,
		BatchTimeout:           config.BatchTimeout,
		WriteTimeout:           config.WriteTimeout,
		Transport:              transport,
		AllowAutoTopicCreation: true,
	}}
}

// encode keys the message by subject so every event of one record lands on
// the same partition in order.
func encode(topic string, event *cloudevents.ZoneCloudEvent) (kafka.Message, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	headers := []kafka.Header{
		{Key: "ce-specversion", Value: []byte(event.SpecVersion)},
		{Key: "ce-id", Value: []byte(event.ID)},
		{Key: "ce-type", Value: []byte(event.Type)},
		{Key: "ce-source", Value: []byte(event.Source)},
		{Key: "ce-time", Value: []byte(event.Time.Format(time.RFC3339Nano))},
		{Key: "content-type", Value: []byte(event.DataContentType)},
	}
	if event.Subject != "" {
		headers = append(headers, kafka.Header{Key: "ce-subject", Value: []byte(event.Subject)})
	}
	if event.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "ce-correlationid", Value: []byte(event.CorrelationID)})
	}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(event.Subject),
		Value:   body,
		Headers: headers,
	}, nil
}

// PublishEvent writes event to topic and waits for the configured acks
func (p *Producer) PublishEvent(ctx context.Context, topic string, event *cloudevents.ZoneCloudEvent) error {
	msg, err := encode(topic, event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Type, topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
