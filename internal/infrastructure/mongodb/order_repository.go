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

// OrderRepository implements domain.OrderRepository
type OrderRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	observer   *pkgmongo.Observer
}

func NewOrderRepository(db *mongo.Database, observer *pkgmongo.Observer) *OrderRepository {
	return &OrderRepository{
		db:         db,
		collection: db.Collection(OrdersCollection),
		observer:   observer,
	}
}

func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_date", Value: -1}}},
	})
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.observer.Track(ctx, OrdersCollection, "insert", func(ctx context.Context) error {
		id, err := pkgmongo.NextSequence(ctx, r.db, OrdersCollection)
		if err != nil {
			return err
		}
		order.ID = id
		_, err = r.collection.InsertOne(ctx, order)
		return err
	})
}

// FindAll returns orders oldest first
func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	err := r.observer.Track(ctx, OrdersCollection, "find", func(ctx context.Context) error {
		cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &orders)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
