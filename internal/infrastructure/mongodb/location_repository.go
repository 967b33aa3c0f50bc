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

// LocationRepository implements domain.LocationRepository
type LocationRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	observer   *pkgmongo.Observer
}

// NewLocationRepository creates a LocationRepository. observer may be nil.
func NewLocationRepository(db *mongo.Database, observer *pkgmongo.Observer) *LocationRepository {
	return &LocationRepository{
		db:         db,
		collection: db.Collection(LocationsCollection),
		observer:   observer,
	}
}

// EnsureIndexes indexes locations by zone for the filtered listing
func (r *LocationRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "polygon_id", Value: 1}, {Key: "_id", Value: 1}}},
	})
}

func (r *LocationRepository) Create(ctx context.Context, location *domain.Location) error {
	return r.observer.Track(ctx, LocationsCollection, "insert", func(ctx context.Context) error {
		id, err := pkgmongo.NextSequence(ctx, r.db, LocationsCollection)
		if err != nil {
			return err
		}
		location.ID = id
		_, err = r.collection.InsertOne(ctx, location)
		return err
	})
}

func (r *LocationRepository) Update(ctx context.Context, location *domain.Location) error {
	return r.observer.Track(ctx, LocationsCollection, "replace", func(ctx context.Context) error {
		result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": location.ID}, location)
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return domain.ErrLocationNotFound
		}
		return nil
	})
}

func (r *LocationRepository) FindByID(ctx context.Context, id int64) (*domain.Location, error) {
	var location domain.Location
	var found bool
	err := r.observer.Track(ctx, LocationsCollection, "find_by_id", func(ctx context.Context) error {
		var err error
		found, err = findOne(ctx, r.collection, bson.M{"_id": id}, &location)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find location: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &location, nil
}

func (r *LocationRepository) FindAll(ctx context.Context, zoneID *int64, skip, limit int) ([]domain.Location, error) {
	filter := bson.M{}
	if zoneID != nil {
		filter["polygon_id"] = *zoneID
	}

	locations := make([]domain.Location, 0)
	err := r.observer.Track(ctx, LocationsCollection, "find", func(ctx context.Context) error {
		opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
		if skip > 0 {
			opts.SetSkip(int64(skip))
		}
		if limit > 0 {
			opts.SetLimit(int64(limit))
		}
		cursor, err := r.collection.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &locations)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (r *LocationRepository) Delete(ctx context.Context, id int64) error {
	return r.observer.Track(ctx, LocationsCollection, "delete", func(ctx context.Context) error {
		result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return domain.ErrLocationNotFound
		}
		return nil
	})
}
