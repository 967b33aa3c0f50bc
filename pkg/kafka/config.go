package kafka

import (
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Acks is the acknowledgement level a write waits for: "all", "leader" or "none"
type Acks string

const (
	AcksAll    Acks = "all"
	AcksLeader Acks = "leader"
	AcksNone   Acks = "none"
)

// ParseAcks accepts the names above, case-insensitively, and the numeric
// forms -1, 1 and 0.
func ParseAcks(raw string) (Acks, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "all", "-1":
		return AcksAll, nil
	case "leader", "1":
		return AcksLeader, nil
	case "none", "0":
		return AcksNone, nil
	}
	return "", fmt.Errorf("unknown kafka acks %q", raw)
}

func (a Acks) required() kafka.RequiredAcks {
	switch a {
	case AcksLeader:
		return kafka.RequireOne
	case AcksNone:
		return kafka.RequireNone
	default:
		return kafka.RequireAll
	}
}

// Config describes the brokers and write behaviour of the event producer
type Config struct {
	Brokers      []string
	ClientID     string
	Acks         Acks
	BatchSize    int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "zone-service",
		Acks:         AcksAll,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
}
