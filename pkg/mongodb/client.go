// Package mongodb connects to the zone store and instruments repository calls.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const defaultPingTimeout = 5 * time.Second

// Config describes the zone store connection
type Config struct {
	URI      string
	Database string
	// AppName shows up in the server's connection metadata
	AppName                string
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	PingTimeout            time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
}

// DefaultConfig points at a local mongod
func DefaultConfig() *Config {
	return &Config{
		URI:                    "mongodb://localhost:27017",
		Database:               "zone_service",
		AppName:                "zone-service",
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 10 * time.Second,
		PingTimeout:            defaultPingTimeout,
		MaxPoolSize:            100,
		MinPoolSize:            10,
	}
}

// clientOptions builds driver options. Writes wait for a majority and are
// retried once by the driver so the one-zone-per-site index is not bypassed
// by a failover.
func clientOptions(config *Config) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(config.URI).
		SetRetryWrites(true).
		SetWriteConcern(writeconcern.Majority())

	if config.AppName != "" {
		opts.SetAppName(config.AppName)
	}
	if config.ConnectTimeout > 0 {
		opts.SetConnectTimeout(config.ConnectTimeout)
	}
	if config.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(config.ServerSelectionTimeout)
	}
	if config.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(config.MaxPoolSize)
	}
	if config.MinPoolSize > 0 {
		opts.SetMinPoolSize(config.MinPoolSize)
	}
	return opts
}

// Client owns the driver connection and the zone database handle
type Client struct {
	client      *mongo.Client
	database    *mongo.Database
	pingTimeout time.Duration
}

// NewClient connects and fails fast if the primary cannot be reached
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	if config.Database == "" {
		return nil, fmt.Errorf("mongodb: database name is required")
	}

	client, err := mongo.Connect(ctx, clientOptions(config))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect %s: %w", config.Database, err)
	}

	c := &Client{
		client:      client,
		database:    client.Database(config.Database),
		pingTimeout: config.PingTimeout,
	}
	if c.pingTimeout <= 0 {
		c.pingTimeout = defaultPingTimeout
	}

	if err := c.HealthCheck(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return c, nil
}

// Database returns the zone database
func (c *Client) Database() *mongo.Database {
	return c.database
}

// HealthCheck pings the primary within the configured ping timeout
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb ping: %w", err)
	}
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
