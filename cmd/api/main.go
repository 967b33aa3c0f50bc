package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/location-manager/zone-service/internal/api/handlers"
	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/internal/infrastructure/clients"
	mongoRepo "github.com/location-manager/zone-service/internal/infrastructure/mongodb"
	zoneredis "github.com/location-manager/zone-service/internal/infrastructure/redis"
	"github.com/location-manager/zone-service/pkg/cloudevents"
	"github.com/location-manager/zone-service/pkg/kafka"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/metrics"
	"github.com/location-manager/zone-service/pkg/middleware"
	"github.com/location-manager/zone-service/pkg/mongodb"
	"github.com/location-manager/zone-service/pkg/outbox"
	outboxMongo "github.com/location-manager/zone-service/pkg/outbox/mongodb"
	"github.com/location-manager/zone-service/pkg/resilience"
	"github.com/location-manager/zone-service/pkg/tracing"
)

const serviceName = "zone-service"

func main() {
	_ = godotenv.Load(".env")

	config, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(context.Background(), config, appDependencies{}, signalCh); err != nil {
		os.Exit(1)
	}
}

type tracerProvider interface {
	Shutdown(ctx context.Context) error
}

type mongoStore interface {
	Database() *mongo.Database
	Close(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}

type outboxPublisher interface {
	Start(ctx context.Context) error
	Stop() error
}

type snapshotMirror interface {
	application.SnapshotStore
	HealthCheck(ctx context.Context) error
	Close() error
}

type siteCache interface {
	application.SiteProvider
	Warm(ctx context.Context) error
	Start(ctx context.Context) error
	Stop() error
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// logisticsProvider is the logistics API: address validation and pickup point registrations
type logisticsProvider interface {
	application.LogisticsValidator
	application.PickupPointProvider
}

// repositories groups the record stores of the service
type repositories struct {
	zones        domain.ZoneRepository
	locations    domain.LocationRepository
	tariffs      domain.TariffRepository
	pickupPoints domain.PickupPointRepository
	orders       domain.OrderRepository
	config       domain.ConfigRepository
	outbox       outbox.Repository
	indexes      []indexer
}

// collaborators groups the remote HTTP services
type collaborators struct {
	sites     application.SitesSource
	geocoder  application.Geocoder
	logistics logisticsProvider
}

// redisMirror owns the client behind a snapshot mirror
type redisMirror struct {
	*zoneredis.SnapshotMirror
	client *goredis.Client
}

func (m *redisMirror) Close() error {
	return m.client.Close()
}

type appDependencies struct {
	initTracing        func(ctx context.Context, cfg *tracing.Config) (tracerProvider, error)
	newMetrics         func(cfg *metrics.Config) *metrics.Metrics
	connectMongo       func(ctx context.Context, cfg *mongodb.Config) (mongoStore, error)
	newRepositories    func(db *mongo.Database, observer *mongodb.Observer) *repositories
	newKafkaProducer   func(cfg *kafka.Config) *kafka.Producer
	newOutboxPublisher func(repo outbox.Repository, producer outbox.EventPublisher, logger *logging.Logger, m *metrics.Metrics, cfg *outbox.PublisherConfig) outboxPublisher
	newSnapshotMirror  func(cfg zoneredis.Config) snapshotMirror
	newCollaborators   func(cfg *Config, opts clients.Options) *collaborators
	newSiteCache       func(source application.SitesSource, pickupPoints domain.PickupPointRepository, provider application.PickupPointProvider, cfg application.SiteCacheConfig, opts application.SiteCacheOptions, logger *logging.Logger) siteCache
	newHTTPServer      func(addr string, handler http.Handler) httpServer
}

func defaultDependencies() appDependencies {
	return appDependencies{
		initTracing: func(ctx context.Context, cfg *tracing.Config) (tracerProvider, error) {
			return tracing.Initialize(ctx, cfg)
		},
		newMetrics: metrics.New,
		connectMongo: func(ctx context.Context, cfg *mongodb.Config) (mongoStore, error) {
			return mongodb.NewClient(ctx, cfg)
		},
		newRepositories: func(db *mongo.Database, observer *mongodb.Observer) *repositories {
			zones := mongoRepo.NewZoneRepository(db, observer)
			locations := mongoRepo.NewLocationRepository(db, observer)
			tariffs := mongoRepo.NewTariffRepository(db, observer)
			pickupPoints := mongoRepo.NewPickupPointRepository(db, observer)
			orders := mongoRepo.NewOrderRepository(db, observer)
			outboxRepo := outboxMongo.NewOutboxRepository(db)
			return &repositories{
				zones:        zones,
				locations:    locations,
				tariffs:      tariffs,
				pickupPoints: pickupPoints,
				orders:       orders,
				config:       mongoRepo.NewConfigRepository(db, observer),
				outbox:       outboxRepo,
				indexes:      []indexer{zones, locations, tariffs, pickupPoints, orders, outboxRepo},
			}
		},
		newKafkaProducer: kafka.NewProducer,
		newOutboxPublisher: func(repo outbox.Repository, producer outbox.EventPublisher, logger *logging.Logger, m *metrics.Metrics, cfg *outbox.PublisherConfig) outboxPublisher {
			return outbox.NewPublisher(repo, producer, logger, m, cfg)
		},
		newSnapshotMirror: func(cfg zoneredis.Config) snapshotMirror {
			client := zoneredis.NewClient(cfg)
			if client == nil {
				return nil
			}
			return &redisMirror{
				SnapshotMirror: zoneredis.NewSnapshotMirror(client, cfg.Key, cfg.TTL),
				client:         client,
			}
		},
		newCollaborators: func(cfg *Config, opts clients.Options) *collaborators {
			return &collaborators{
				sites:     clients.NewSitesSource(cfg.SitesAPIURL, opts),
				geocoder:  clients.NewGoogleGeocoder(cfg.GoogleMapsAPIKey, cfg.GeocodingURL, opts),
				logistics: clients.NewCargoClient(cfg.Cargo, opts),
			}
		},
		newSiteCache: func(source application.SitesSource, pickupPoints domain.PickupPointRepository, provider application.PickupPointProvider, cfg application.SiteCacheConfig, opts application.SiteCacheOptions, logger *logging.Logger) siteCache {
			return application.NewSiteCache(source, pickupPoints, provider, cfg, opts, logger)
		},
		newHTTPServer: func(addr string, handler http.Handler) httpServer {
			return &http.Server{
				Addr:         addr,
				Handler:      handler,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 60 * time.Second,
			}
		},
	}
}

func (d appDependencies) withDefaults() appDependencies {
	def := defaultDependencies()
	if d.initTracing == nil {
		d.initTracing = def.initTracing
	}
	if d.newMetrics == nil {
		d.newMetrics = def.newMetrics
	}
	if d.connectMongo == nil {
		d.connectMongo = def.connectMongo
	}
	if d.newRepositories == nil {
		d.newRepositories = def.newRepositories
	}
	if d.newKafkaProducer == nil {
		d.newKafkaProducer = def.newKafkaProducer
	}
	if d.newOutboxPublisher == nil {
		d.newOutboxPublisher = def.newOutboxPublisher
	}
	if d.newSnapshotMirror == nil {
		d.newSnapshotMirror = def.newSnapshotMirror
	}
	if d.newCollaborators == nil {
		d.newCollaborators = def.newCollaborators
	}
	if d.newSiteCache == nil {
		d.newSiteCache = def.newSiteCache
	}
	if d.newHTTPServer == nil {
		d.newHTTPServer = def.newHTTPServer
	}
	return d
}

func run(ctx context.Context, config *Config, deps appDependencies, signalCh <-chan os.Signal) error {
	deps = deps.withDefaults()
	if config == nil {
		var err error
		if config, err = loadConfig(); err != nil {
			return err
		}
	}

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(config.LogLevel)
	logConfig.Environment = config.Environment
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting zone-service API")

	tracerProvider, err := deps.initTracing(ctx, config.Tracing)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", config.Tracing.OTLPEndpoint, "enabled", config.Tracing.Enabled)
	}

	m := deps.newMetrics(metrics.DefaultConfig(serviceName))

	store, err := deps.connectMongo(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer store.Close(context.Background())
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	observer := mongodb.NewObserver(config.MongoDB.Database, m, logger)
	repos := deps.newRepositories(store.Database(), observer)
	for _, idx := range repos.indexes {
		if err := idx.EnsureIndexes(ctx); err != nil {
			logger.WithError(err).Error("Failed to create indexes")
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}
	logger.Info("Indexes ensured")

	var recorder application.EventRecorder
	if config.EventsEnabled {
		producer := kafka.NewInstrumentedProducer(deps.newKafkaProducer(config.Kafka), m, logger)
		defer func() {
			_ = producer.Close()
		}()

		publisher := deps.newOutboxPublisher(repos.outbox, producer, logger, m, outbox.DefaultPublisherConfig())
		if err := publisher.Start(ctx); err != nil {
			logger.WithError(err).Error("Failed to start outbox publisher")
			return fmt.Errorf("failed to start outbox publisher: %w", err)
		}
		defer func() {
			_ = publisher.Stop()
		}()

		recorder = outbox.NewRecorder(repos.outbox, cloudevents.NewEventFactory(cloudevents.SourceZoneService), cloudevents.TopicZoneEvents)
		logger.Info("Event publishing enabled", "brokers", config.Kafka.Brokers, "topic", cloudevents.TopicZoneEvents)
	} else {
		logger.Info("Event publishing disabled")
	}

	breakers := resilience.NewRegistry(logger.Logger, m)
	remote := deps.newCollaborators(config, clients.Options{
		Breakers: breakers,
		Metrics:  m,
		Logger:   logger,
	})
	if config.GoogleMapsAPIKey == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY is not set, address checks will fail")
	}

	probes := []middleware.Probe{{Name: "mongodb", Check: store.HealthCheck}}

	cacheOpts := application.SiteCacheOptions{Recorder: recorder, Metrics: m}
	if mirror := deps.newSnapshotMirror(config.Redis); mirror != nil {
		cacheOpts.Mirror = mirror
		defer func() {
			_ = mirror.Close()
		}()
		probes = append(probes, middleware.Probe{Name: "redis", Check: mirror.HealthCheck, Optional: true})
		logger.Info("Site snapshot mirror enabled", "addr", config.Redis.Addr)
	}

	sites := deps.newSiteCache(remote.sites, repos.pickupPoints, remote.logistics, config.SiteCache, cacheOpts, logger)
	if err := sites.Warm(ctx); err != nil {
		logger.WithError(err).Warn("Initial site load failed, retrying in background")
	}
	if err := sites.Start(ctx); err != nil {
		return fmt.Errorf("failed to start site cache: %w", err)
	}
	defer func() {
		_ = sites.Stop()
	}()

	pricing := application.NewPricingService(repos.tariffs, m, logger)
	resolverService := application.NewResolverService(remote.geocoder, sites, repos.zones, repos.pickupPoints, repos.config, remote.logistics, pricing, m, logger)
	zoneService := application.NewZoneApplicationService(repos.zones, sites, recorder, logger)
	locationService := application.NewLocationApplicationService(repos.locations, repos.zones, recorder, logger)
	tariffService := application.NewTariffApplicationService(repos.tariffs, sites, repos.config, recorder, logger)
	pickupPointService := application.NewPickupPointApplicationService(repos.pickupPoints, sites, remote.logistics, recorder, m, logger)
	orderService := application.NewOrderApplicationService(repos.orders, repos.zones, sites, recorder, logger)
	configService := application.NewConfigApplicationService(repos.config, recorder, logger)
	siteService := application.NewSiteApplicationService(sites, logger)

	router := gin.New()
	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middlewareConfig.AllowedOrigins = config.AllowedOrigins
	middlewareConfig.Errors = handlers.ErrorMapper()
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.TracingMiddleware(middleware.DefaultTracingConfig(serviceName)))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, probes...))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api")
	handlers.NewCheckHandlers(resolverService, logger).RegisterRoutes(api)
	handlers.NewZoneHandlers(zoneService, logger).RegisterRoutes(api)
	handlers.NewLocationHandlers(locationService, logger).RegisterRoutes(api)
	handlers.NewTariffHandlers(tariffService, logger).RegisterRoutes(api)
	handlers.NewPickupPointHandlers(pickupPointService, logger).RegisterRoutes(api)
	handlers.NewOrderHandlers(orderService, logger).RegisterRoutes(api)
	handlers.NewConfigHandlers(configService, logger).RegisterRoutes(api)
	handlers.NewSiteHandlers(siteService, logger).RegisterRoutes(api)

	srv := deps.newHTTPServer(config.ServerAddr, router)

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.ListenAndServe()
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	if signalCh == nil {
		signalCh = make(chan os.Signal, 1)
	}
	var serveErr error
	served := false
	select {
	case <-signalCh:
	case <-ctx.Done():
	case serveErr = <-serveDone:
		served = true
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if !served {
		serveErr = <-serveDone
	}
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.WithError(serveErr).Error("Server error")
		return fmt.Errorf("http server: %w", serveErr)
	}

	logger.Info("Server stopped")
	return nil
}

// Config holds application configuration
type Config struct {
	ServerAddr       string
	AllowedOrigins   []string
	Environment      string
	LogLevel         string
	EventsEnabled    bool
	MongoDB          *mongodb.Config
	Kafka            *kafka.Config
	Redis            zoneredis.Config
	SitesAPIURL      string
	SiteCache        application.SiteCacheConfig
	GoogleMapsAPIKey string
	GeocodingURL     string
	Cargo            clients.CargoConfig
	Tracing          *tracing.Config
}

func loadConfig() (*Config, error) {
	excluded, err := domain.ParseSiteIDs(getEnv("EXCLUDED_SITE_IDS", ""))
	if err != nil {
		return nil, fmt.Errorf("EXCLUDED_SITE_IDS: %w", err)
	}
	ttl, err := getEnvDuration("SITE_CACHE_TTL", application.DefaultSiteCacheTTL)
	if err != nil {
		return nil, err
	}
	backoff, err := getEnvDuration("SITE_CACHE_RETRY_BACKOFF", application.DefaultSiteCacheRetryBackoff)
	if err != nil {
		return nil, err
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}

	acks, err := kafka.ParseAcks(getEnv("KAFKA_ACKS", "all"))
	if err != nil {
		return nil, fmt.Errorf("KAFKA_ACKS: %w", err)
	}

	siteCache := application.DefaultSiteCacheConfig()
	siteCache.TTL = ttl
	siteCache.RetryBackoff = backoff
	siteCache.Filter.ExcludedIDs = excluded

	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "false") == "true"
	if raw := getEnv("TRACING_SAMPLE_RATE", ""); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("TRACING_SAMPLE_RATE: %w", err)
		}
		tracingConfig.SampleRate = rate
	}

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8000"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		EventsEnabled:  getEnv("EVENTS_ENABLED", "true") == "true",
		MongoDB: &mongodb.Config{
			URI:                    getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:               getEnv("MONGODB_DATABASE", "zone_service"),
			AppName:                serviceName,
			ConnectTimeout:         10 * time.Second,
			ServerSelectionTimeout: 10 * time.Second,
			PingTimeout:            5 * time.Second,
			MaxPoolSize:            100,
			MinPoolSize:            10,
		},
		Kafka: &kafka.Config{
			Brokers:      splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			ClientID:     serviceName,
			Acks:         acks,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
		},
		Redis: zoneredis.Config{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Key:      zoneredis.DefaultSnapshotKey,
			TTL:      zoneredis.DefaultSnapshotTTL,
		},
		SitesAPIURL:      getEnv("SITES_API_URL", "https://backend.salchimonster.com/sites"),
		SiteCache:        siteCache,
		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeocodingURL:     getEnv("GEOCODING_API_URL", clients.DefaultGeocodingURL),
		Cargo: clients.CargoConfig{
			Env:       getEnv("CARGO_ENV", "dev"),
			BaseURL:   getEnv("CARGO_BASE_URL", ""),
			UserToken: getEnv("CARGO_USER_TOKEN", ""),
		},
		Tracing: tracingConfig,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("3m") or whole seconds ("180")
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
