package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/location-manager/zone-service/internal/application"
)

func TestNewClient_RequiresAddress(t *testing.T) {
	assert.Nil(t, NewClient(Config{}))

	client := NewClient(Config{Addr: "127.0.0.1:6379", DB: 2})
	require.NotNil(t, client)
	assert.Equal(t, 2, client.Options().DB)
	_ = client.Close()
}

func TestSnapshotMirror_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	mirror := NewSnapshotMirror(client, "", 0)

	assert.Equal(t, DefaultSnapshotKey, mirror.key)

	err := mirror.Save(context.Background(), application.Snapshot{FetchedAt: time.Now()})
	assert.Error(t, err)

	snapshot, err := mirror.Load(context.Background())
	assert.Error(t, err)
	assert.Nil(t, snapshot)
}
