package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/location-manager/zone-service/internal/domain"
	pkgmongo "github.com/location-manager/zone-service/pkg/mongodb"
)

const configDocumentID = "app_config"

// ConfigRepository keeps the AppConfig singleton in a single document
type ConfigRepository struct {
	collection *mongo.Collection
	observer   *pkgmongo.Observer
}

func NewConfigRepository(db *mongo.Database, observer *pkgmongo.Observer) *ConfigRepository {
	return &ConfigRepository{
		collection: db.Collection(ConfigCollection),
		observer:   observer,
	}
}

func (r *ConfigRepository) Get(ctx context.Context) (*domain.AppConfig, error) {
	var cfg domain.AppConfig
	var found bool
	err := r.observer.Track(ctx, ConfigCollection, "find", func(ctx context.Context) error {
		var err error
		found, err = findOne(ctx, r.collection, bson.M{"_id": configDocumentID}, &cfg)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &cfg, nil
}

func (r *ConfigRepository) Save(ctx context.Context, cfg *domain.AppConfig) error {
	return r.observer.Track(ctx, ConfigCollection, "upsert", func(ctx context.Context) error {
		_, err := r.collection.ReplaceOne(ctx,
			bson.M{"_id": configDocumentID},
			cfg,
			options.Replace().SetUpsert(true),
		)
		return err
	})
}
