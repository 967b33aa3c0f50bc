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

// PickupPointRepository implements domain.PickupPointRepository
type PickupPointRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	observer   *pkgmongo.Observer
}

func NewPickupPointRepository(db *mongo.Database, observer *pkgmongo.Observer) *PickupPointRepository {
	return &PickupPointRepository{
		db:         db,
		collection: db.Collection(PickupPointsCollection),
		observer:   observer,
	}
}

func (r *PickupPointRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "site_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "provider_id", Value: 1}}},
	})
}

func (r *PickupPointRepository) Create(ctx context.Context, pp *domain.PickupPoint) error {
	return r.observer.Track(ctx, PickupPointsCollection, "insert", func(ctx context.Context) error {
		id, err := pkgmongo.NextSequence(ctx, r.db, PickupPointsCollection)
		if err != nil {
			return err
		}
		pp.ID = id
		_, err = r.collection.InsertOne(ctx, pp)
		return uniqueViolation(err, domain.ErrSiteAlreadyHasPickupPoint)
	})
}

func (r *PickupPointRepository) Update(ctx context.Context, pp *domain.PickupPoint) error {
	return r.observer.Track(ctx, PickupPointsCollection, "replace", func(ctx context.Context) error {
		result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": pp.ID}, pp)
		if err != nil {
			return uniqueViolation(err, domain.ErrSiteAlreadyHasPickupPoint)
		}
		if result.MatchedCount == 0 {
			return domain.ErrPickupPointNotFound
		}
		return nil
	})
}

func (r *PickupPointRepository) FindByID(ctx context.Context, id int64) (*domain.PickupPoint, error) {
	return r.findOne(ctx, "find_by_id", bson.M{"_id": id})
}

func (r *PickupPointRepository) FindBySiteID(ctx context.Context, siteID int64) (*domain.PickupPoint, error) {
	return r.findOne(ctx, "find_by_site", bson.M{"site_id": siteID})
}

func (r *PickupPointRepository) FindAll(ctx context.Context) ([]domain.PickupPoint, error) {
	points := make([]domain.PickupPoint, 0)
	err := r.observer.Track(ctx, PickupPointsCollection, "find", func(ctx context.Context) error {
		cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &points)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pickup points: %w", err)
	}
	return points, nil
}

func (r *PickupPointRepository) Delete(ctx context.Context, id int64) error {
	return r.observer.Track(ctx, PickupPointsCollection, "delete", func(ctx context.Context) error {
		result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return domain.ErrPickupPointNotFound
		}
		return nil
	})
}

func (r *PickupPointRepository) findOne(ctx context.Context, operation string, filter bson.M) (*domain.PickupPoint, error) {
	var pp domain.PickupPoint
	var found bool
	err := r.observer.Track(ctx, PickupPointsCollection, operation, func(ctx context.Context) error {
		var err error
		found, err = findOne(ctx, r.collection, filter, &pp)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find pickup point: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &pp, nil
}
