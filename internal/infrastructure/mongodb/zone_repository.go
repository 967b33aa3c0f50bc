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

// ZoneRepository implements domain.ZoneRepository
type ZoneRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	observer   *pkgmongo.Observer
}

// NewZoneRepository creates a ZoneRepository. observer may be nil.
func NewZoneRepository(db *mongo.Database, observer *pkgmongo.Observer) *ZoneRepository {
	return &ZoneRepository{
		db:         db,
		collection: db.Collection(ZonesCollection),
		observer:   observer,
	}
}

// EnsureIndexes creates the partial unique index that keeps a site on at most one zone
func (r *ZoneRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "site_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"site_id": bson.M{"$exists": true}}),
		},
		{Keys: bson.D{{Key: "country", Value: 1}}},
	})
}

func (r *ZoneRepository) Create(ctx context.Context, zone *domain.Zone) error {
	return r.observer.Track(ctx, ZonesCollection, "insert", func(ctx context.Context) error {
		id, err := pkgmongo.NextSequence(ctx, r.db, ZonesCollection)
		if err != nil {
			return err
		}
		zone.ID = id
		if _, err := r.collection.InsertOne(ctx, zone); err != nil {
			return uniqueViolation(err, domain.ErrSiteAlreadyHasZone)
		}
		return nil
	})
}

func (r *ZoneRepository) Update(ctx context.Context, zone *domain.Zone) error {
	return r.observer.Track(ctx, ZonesCollection, "replace", func(ctx context.Context) error {
		result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": zone.ID}, zone)
		if err != nil {
			return uniqueViolation(err, domain.ErrSiteAlreadyHasZone)
		}
		if result.MatchedCount == 0 {
			return domain.ErrZoneNotFound
		}
		return nil
	})
}

func (r *ZoneRepository) FindByID(ctx context.Context, id int64) (*domain.Zone, error) {
	return r.findOne(ctx, "find_by_id", bson.M{"_id": id})
}

func (r *ZoneRepository) FindBySiteID(ctx context.Context, siteID int64) (*domain.Zone, error) {
	return r.findOne(ctx, "find_by_site", bson.M{"site_id": siteID})
}

func (r *ZoneRepository) FindAll(ctx context.Context, skip, limit int) ([]domain.Zone, error) {
	zones := make([]domain.Zone, 0)
	err := r.observer.Track(ctx, ZonesCollection, "find", func(ctx context.Context) error {
		opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
		if skip > 0 {
			opts.SetSkip(int64(skip))
		}
		if limit > 0 {
			opts.SetLimit(int64(limit))
		}
		cursor, err := r.collection.Find(ctx, bson.M{}, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &zones)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	return zones, nil
}

func (r *ZoneRepository) Delete(ctx context.Context, id int64) error {
	return r.observer.Track(ctx, ZonesCollection, "delete", func(ctx context.Context) error {
		result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return domain.ErrZoneNotFound
		}
		return nil
	})
}

func (r *ZoneRepository) findOne(ctx context.Context, operation string, filter bson.M) (*domain.Zone, error) {
	var zone domain.Zone
	var found bool
	err := r.observer.Track(ctx, ZonesCollection, operation, func(ctx context.Context) error {
		var err error
		found, err = findOne(ctx, r.collection, filter, &zone)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find zone: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &zone, nil
}
