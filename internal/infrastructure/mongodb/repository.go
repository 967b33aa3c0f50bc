package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pkgmongo "github.com/location-manager/zone-service/pkg/mongodb"
)

// Collection names
const (
	ZonesCollection        = "zones"
	LocationsCollection    = "locations"
	TariffsCollection      = "tariffs"
	PickupPointsCollection = "pickup_points"
	OrdersCollection       = "orders"
	ConfigCollection       = "app_config"
)

// findOne decodes the first match into out and reports whether one existed
func findOne(ctx context.Context, coll *mongo.Collection, filter interface{}, out interface{}, opts ...*options.FindOneOptions) (bool, error) {
	err := coll.FindOne(ctx, filter, opts...).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// uniqueViolation maps a duplicate key error on the site index to the domain conflict
func uniqueViolation(err error, conflict error) error {
	if pkgmongo.IsDuplicateKey(err) {
		return fmt.Errorf("%w: %v", conflict, err)
	}
	return err
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", coll.Name(), err)
	}
	return nil
}
