package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phillip/evently-go/models"
)

type OrderRepository struct {
	reg *Registry
	col *mongo.Collection
}

func NewOrderRepository(reg *Registry) *OrderRepository {
	return &OrderRepository{reg: reg, col: reg.mustCollection(SchemaOrder)}
}

func (r *OrderRepository) InsertOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Order{}, ErrDuplicate
		}
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

// ListOrderViews returns the buyer's orders newest first, each with its
// event populated.
func (r *OrderRepository) ListOrderViews(ctx context.Context, buyer primitive.ObjectID, page Page) ([]models.OrderView, error) {
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	cursor, err := r.col.Aggregate(ctx, OrderListPipeline(buyer, page))
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}
	views := []models.OrderView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return views, nil
}

func (r *OrderRepository) CountOrders(ctx context.Context, buyer primitive.ObjectID) (int64, error) {
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"buyer": buyer})
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func OrderListPipeline(buyer primitive.ObjectID, page Page) mongo.Pipeline {
	return populate(windowed(bson.D{{Key: "buyer", Value: buyer}}, page), EventJoin)
}
