package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/location-manager/zone-service/internal/application"
)

// Defaults for the snapshot mirror
const (
	DefaultSnapshotKey = "zone-service:sites:snapshot"
	DefaultSnapshotTTL = 24 * time.Hour
)

// Config holds the redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration // 0 keeps the snapshot until overwritten
}

// NewClient opens a client for cfg. It returns nil when no address is configured.
func NewClient(cfg Config) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// SnapshotMirror stores the last good site snapshot under a single key.
// It implements application.SnapshotStore.
type SnapshotMirror struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewSnapshotMirror(client *redis.Client, key string, ttl time.Duration) *SnapshotMirror {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotMirror{client: client, key: key, ttl: ttl}
}

func (m *SnapshotMirror) Save(ctx context.Context, snapshot application.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode site snapshot: %w", err)
	}
	if err := m.client.Set(ctx, m.key, payload, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write site snapshot: %w", err)
	}
	return nil
}

// Load returns the mirrored snapshot, or nil when none has been saved
func (m *SnapshotMirror) Load(ctx context.Context) (*application.Snapshot, error) {
	payload, err := m.client.Get(ctx, m.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read site snapshot: %w", err)
	}

	var snapshot application.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode site snapshot: %w", err)
	}
	return &snapshot, nil
}

// HealthCheck pings the server
func (m *SnapshotMirror) HealthCheck(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}
