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

// TariffRepository implements domain.TariffRepository. Documents are keyed by site id.
type TariffRepository struct {
	collection *mongo.Collection
	observer   *pkgmongo.Observer
}

func NewTariffRepository(db *mongo.Database, observer *pkgmongo.Observer) *TariffRepository {
	return &TariffRepository{
		collection: db.Collection(TariffsCollection),
		observer:   observer,
	}
}

func (r *TariffRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "country", Value: 1}}},
	})
}

func (r *TariffRepository) Create(ctx context.Context, tariff *domain.Tariff) error {
	return r.observer.Track(ctx, TariffsCollection, "insert", func(ctx context.Context) error {
		_, err := r.collection.InsertOne(ctx, tariff)
		return uniqueViolation(err, domain.ErrSiteAlreadyHasTariff)
	})
}

func (r *TariffRepository) Update(ctx context.Context, tariff *domain.Tariff) error {
	return r.observer.Track(ctx, TariffsCollection, "replace", func(ctx context.Context) error {
		result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tariff.SiteID}, tariff)
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return domain.ErrTariffNotFound
		}
		return nil
	})
}

func (r *TariffRepository) FindBySiteID(ctx context.Context, siteID int64) (*domain.Tariff, error) {
	var tariff domain.Tariff
	var found bool
	err := r.observer.Track(ctx, TariffsCollection, "find_by_site", func(ctx context.Context) error {
		var err error
		found, err = findOne(ctx, r.collection, bson.M{"_id": siteID}, &tariff)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find tariff: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &tariff, nil
}

func (r *TariffRepository) FindAll(ctx context.Context) ([]domain.Tariff, error) {
	tariffs := make([]domain.Tariff, 0)
	err := r.observer.Track(ctx, TariffsCollection, "find", func(ctx context.Context) error {
		cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &tariffs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tariffs: %w", err)
	}
	return tariffs, nil
}

func (r *TariffRepository) Delete(ctx context.Context, siteID int64) error {
	return r.observer.Track(ctx, TariffsCollection, "delete", func(ctx context.Context) error {
		result, err := r.collection.DeleteOne(ctx, bson.M{"_id": siteID})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return domain.ErrTariffNotFound
		}
		return nil
	})
}
