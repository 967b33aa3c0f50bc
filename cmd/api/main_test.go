package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/internal/infrastructure/clients"
	zoneredis "github.com/location-manager/zone-service/internal/infrastructure/redis"
	"github.com/location-manager/zone-service/pkg/kafka"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/metrics"
	"github.com/location-manager/zone-service/pkg/mongodb"
	"github.com/location-manager/zone-service/pkg/outbox"
	"github.com/location-manager/zone-service/pkg/tracing"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("ZONE_TEST_ENV", "value")

	assert.Equal(t, "value", getEnv("ZONE_TEST_ENV", "default"))
	assert.Equal(t, "default", getEnv("ZONE_MISSING_ENV", "default"))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("MONGODB_URI", "mongodb://example:27017")
	t.Setenv("MONGODB_DATABASE", "zones_test")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KAFKA_ACKS", "leader")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("EXCLUDED_SITE_IDS", "18, 14,,20")
	t.Setenv("SITE_CACHE_TTL", "300")
	t.Setenv("SITE_CACHE_RETRY_BACKOFF", "90s")
	t.Setenv("GOOGLE_MAPS_API_KEY", "key")
	t.Setenv("CARGO_ENV", "prod")
	t.Setenv("CARGO_USER_TOKEN", "token")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_SAMPLE_RATE", "0.2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com,https://shop.example.com")

	cfg, err := loadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, "mongodb://example:27017", cfg.MongoDB.URI)
	assert.Equal(t, "zones_test", cfg.MongoDB.Database)
	assert.Equal(t, 10*time.Second, cfg.MongoDB.ConnectTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, kafka.AcksLeader, cfg.Kafka.Acks)
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, zoneredis.DefaultSnapshotKey, cfg.Redis.Key)
	assert.Equal(t, []int64{18, 14, 20}, cfg.SiteCache.Filter.ExcludedIDs)
	assert.ElementsMatch(t, domain.AllowedTimezones(), cfg.SiteCache.Filter.AllowedTimezones)
	assert.Equal(t, 300*time.Second, cfg.SiteCache.TTL)
	assert.Equal(t, 90*time.Second, cfg.SiteCache.RetryBackoff)
	assert.Equal(t, "key", cfg.GoogleMapsAPIKey)
	assert.Equal(t, clients.DefaultGeocodingURL, cfg.GeocodingURL)
	assert.Equal(t, clients.CargoConfig{Env: "prod", UserToken: "token"}, cfg.Cargo)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.2, cfg.Tracing.SampleRate)
	assert.Equal(t, []string{"https://admin.example.com", "https://shop.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"SITE_CACHE_TTL", "SITE_CACHE_RETRY_BACKOFF", "EXCLUDED_SITE_IDS", "EVENTS_ENABLED", "REDIS_ADDR", "REDIS_DB"} {
		t.Setenv(key, "")
	}

	cfg, err := loadConfig()

	require.NoError(t, err)
	assert.Equal(t, application.DefaultSiteCacheTTL, cfg.SiteCache.TTL)
	assert.Equal(t, application.DefaultSiteCacheRetryBackoff, cfg.SiteCache.RetryBackoff)
	assert.Empty(t, cfg.SiteCache.Filter.ExcludedIDs)
	assert.True(t, cfg.EventsEnabled)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"EXCLUDED_SITE_IDS", "18,abc"},
		{"SITE_CACHE_TTL", "soon"},
		{"SITE_CACHE_RETRY_BACKOFF", "-"},
		{"REDIS_DB", "one"},
		{"TRACING_SAMPLE_RATE", "half"},
		{"KAFKA_ACKS", "quorum"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := loadConfig()

			assert.Error(t, err)
		})
	}
}

type fakeTracerProvider struct {
	shutdownCalls int
}

func (f *fakeTracerProvider) Shutdown(ctx context.Context) error {
	f.shutdownCalls++
	return nil
}

type fakeMongoStore struct {
	closeCalls  int
	healthCalls int
}

func (f *fakeMongoStore) Database() *mongo.Database {
	return nil
}

func (f *fakeMongoStore) Close(ctx context.Context) error {
	f.closeCalls++
	return nil
}

func (f *fakeMongoStore) HealthCheck(ctx context.Context) error {
	f.healthCalls++
	return nil
}

type fakeIndexer struct {
	calls int
	err   error
}

func (f *fakeIndexer) EnsureIndexes(ctx context.Context) error {
	f.calls++
	return f.err
}

type fakeOutboxPublisher struct {
	startCalls int
	stopCalls  int
	startErr   error
}

func (f *fakeOutboxPublisher) Start(ctx context.Context) error {
	f.startCalls++
	return f.startErr
}

func (f *fakeOutboxPublisher) Stop() error {
	f.stopCalls++
	return nil
}

type fakeSiteCache struct {
	warmCalls  int
	startCalls int
	stopCalls  int
	warmErr    error
	opts       application.SiteCacheOptions
}

func (f *fakeSiteCache) GetAvailableSites(ctx context.Context, forceRefresh bool) ([]domain.Site, error) {
	return []domain.Site{}, nil
}

func (f *fakeSiteCache) Warm(ctx context.Context) error {
	f.warmCalls++
	return f.warmErr
}

func (f *fakeSiteCache) Start(ctx context.Context) error {
	f.startCalls++
	return nil
}

func (f *fakeSiteCache) Stop() error {
	f.stopCalls++
	return nil
}

type fakeServer struct {
	listenCalls   int
	shutdownCalls int
	listenErr     error
	handler       http.Handler
}

func (f *fakeServer) ListenAndServe() error {
	f.listenCalls++
	if f.listenErr != nil {
		return f.listenErr
	}
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdownCalls++
	return nil
}

type fakeMirror struct {
	closeCalls int
	healthErr  error
}

func (f *fakeMirror) Save(ctx context.Context, snapshot application.Snapshot) error { return nil }

func (f *fakeMirror) Load(ctx context.Context) (*application.Snapshot, error) { return nil, nil }

func (f *fakeMirror) HealthCheck(ctx context.Context) error { return f.healthErr }

func (f *fakeMirror) Close() error {
	f.closeCalls++
	return nil
}

type fixture struct {
	tracer    *fakeTracerProvider
	store     *fakeMongoStore
	indexer   *fakeIndexer
	publisher *fakeOutboxPublisher
	cache     *fakeSiteCache
	server    *fakeServer
	mirror    *fakeMirror
	deps      appDependencies
}

func newFixture() *fixture {
	f := &fixture{
		tracer:    &fakeTracerProvider{},
		store:     &fakeMongoStore{},
		indexer:   &fakeIndexer{},
		publisher: &fakeOutboxPublisher{},
		cache:     &fakeSiteCache{},
		server:    &fakeServer{},
		mirror:    &fakeMirror{},
	}
	f.deps = appDependencies{
		initTracing: func(ctx context.Context, cfg *tracing.Config) (tracerProvider, error) {
			return f.tracer, nil
		},
		connectMongo: func(ctx context.Context, cfg *mongodb.Config) (mongoStore, error) {
			return f.store, nil
		},
		newRepositories: func(db *mongo.Database, observer *mongodb.Observer) *repositories {
			return &repositories{indexes: []indexer{f.indexer, f.indexer}}
		},
		newOutboxPublisher: func(repo outbox.Repository, producer outbox.EventPublisher, logger *logging.Logger, m *metrics.Metrics, cfg *outbox.PublisherConfig) outboxPublisher {
			return f.publisher
		},
		newSnapshotMirror: func(cfg zoneredis.Config) snapshotMirror {
			return f.mirror
		},
		newCollaborators: func(cfg *Config, opts clients.Options) *collaborators {
			return &collaborators{}
		},
		newSiteCache: func(source application.SitesSource, pickupPoints domain.PickupPointRepository, provider application.PickupPointProvider, cfg application.SiteCacheConfig, opts application.SiteCacheOptions, logger *logging.Logger) siteCache {
			f.cache.opts = opts
			return f.cache
		},
		newHTTPServer: func(addr string, handler http.Handler) httpServer {
			f.server.handler = handler
			return f.server
		},
	}
	return f
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := loadConfig()
	require.NoError(t, err)
	cfg.LogLevel = "error"
	return cfg
}

func terminated() chan os.Signal {
	signalCh := make(chan os.Signal, 1)
	signalCh <- syscall.SIGTERM
	return signalCh
}

func TestRunSuccess(t *testing.T) {
	f := newFixture()
	cfg := testConfig(t)
	cfg.EventsEnabled = true

	require.NoError(t, run(context.Background(), cfg, f.deps, terminated()))

	assert.Equal(t, 1, f.tracer.shutdownCalls)
	assert.Equal(t, 1, f.store.closeCalls)
	assert.Equal(t, 2, f.indexer.calls)
	assert.Equal(t, 1, f.publisher.startCalls)
	assert.Equal(t, 1, f.publisher.stopCalls)
	assert.Equal(t, 1, f.cache.warmCalls)
	assert.Equal(t, 1, f.cache.startCalls)
	assert.Equal(t, 1, f.cache.stopCalls)
	assert.NotNil(t, f.cache.opts.Recorder)
	assert.NotNil(t, f.cache.opts.Mirror)
	assert.Equal(t, 1, f.mirror.closeCalls)
	assert.Equal(t, 1, f.server.listenCalls)
	assert.Equal(t, 1, f.server.shutdownCalls)
}

func TestRunRoutes(t *testing.T) {
	f := newFixture()
	f.mirror.healthErr = errors.New("redis down")
	cfg := testConfig(t)
	cfg.EventsEnabled = false

	require.NoError(t, run(context.Background(), cfg, f.deps, terminated()))
	require.NotNil(t, f.server.handler)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/sites", http.StatusOK},
		{http.MethodGet, "/api/locations/abc", http.StatusBadRequest},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		f.server.handler.ServeHTTP(rec, req)
		assert.Equal(t, tt.status, rec.Code, tt.path)
	}
	assert.Equal(t, 1, f.store.healthCalls)

	rec := httptest.NewRecorder()
	f.server.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), "redis down")
}

func TestRunEventsDisabled(t *testing.T) {
	f := newFixture()
	f.deps.newOutboxPublisher = func(repo outbox.Repository, producer outbox.EventPublisher, logger *logging.Logger, m *metrics.Metrics, cfg *outbox.PublisherConfig) outboxPublisher {
		t.Fatal("outbox publisher must not be created when events are disabled")
		return nil
	}
	cfg := testConfig(t)
	cfg.EventsEnabled = false

	require.NoError(t, run(context.Background(), cfg, f.deps, terminated()))

	assert.Nil(t, f.cache.opts.Recorder)
}

func TestRunWithoutMirror(t *testing.T) {
	f := newFixture()
	f.deps.newSnapshotMirror = func(cfg zoneredis.Config) snapshotMirror { return nil }
	cfg := testConfig(t)
	cfg.EventsEnabled = false

	require.NoError(t, run(context.Background(), cfg, f.deps, terminated()))

	assert.Nil(t, f.cache.opts.Mirror)
}

func TestRunWarmFailureKeepsServing(t *testing.T) {
	f := newFixture()
	f.cache.warmErr = errors.New("sites source down")
	cfg := testConfig(t)
	cfg.EventsEnabled = false

	require.NoError(t, run(context.Background(), cfg, f.deps, terminated()))

	assert.Equal(t, 1, f.cache.startCalls)
	assert.Equal(t, 1, f.server.listenCalls)
}

func TestRunServerFailure(t *testing.T) {
	f := newFixture()
	f.server.listenErr = errors.New("listen tcp :8000: address already in use")
	cfg := testConfig(t)
	cfg.EventsEnabled = false

	err := run(context.Background(), cfg, f.deps, make(chan os.Signal))

	assert.ErrorContains(t, err, "address already in use")
	assert.Equal(t, 1, f.server.listenCalls)
	assert.Equal(t, 1, f.server.shutdownCalls)
	assert.Equal(t, 1, f.cache.stopCalls)
	assert.Equal(t, 1, f.store.closeCalls)
}

func TestRunStartupErrors(t *testing.T) {
	t.Run("mongo", func(t *testing.T) {
		f := newFixture()
		f.deps.connectMongo = func(ctx context.Context, cfg *mongodb.Config) (mongoStore, error) {
			return nil, errors.New("connection refused")
		}

		err := run(context.Background(), testConfig(t), f.deps, terminated())

		assert.ErrorContains(t, err, "failed to connect to mongodb")
		assert.Zero(t, f.server.listenCalls)
	})

	t.Run("indexes", func(t *testing.T) {
		f := newFixture()
		f.indexer.err = errors.New("duplicate values")

		err := run(context.Background(), testConfig(t), f.deps, terminated())

		assert.ErrorContains(t, err, "failed to create indexes")
		assert.Equal(t, 1, f.store.closeCalls)
	})

	t.Run("outbox", func(t *testing.T) {
		f := newFixture()
		f.publisher.startErr = errors.New("already running")
		cfg := testConfig(t)
		cfg.EventsEnabled = true

		err := run(context.Background(), cfg, f.deps, terminated())

		assert.ErrorContains(t, err, "failed to start outbox publisher")
		assert.Zero(t, f.cache.startCalls)
	})
}
