package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SchemaUser     = "User"
	SchemaCategory = "Category"
	SchemaEvent    = "Event"
	SchemaOrder    = "Order"
)

// Schema describes one entity type: where it lives and which indexes it needs.
type Schema struct {
	Name       string
	Collection string
	Indexes    []mongo.IndexModel
}

var schemas = map[string]Schema{
	SchemaUser: {
		Name:       SchemaUser,
		Collection: "users",
		Indexes: []mongo.IndexModel{
			{Keys: bson.D{{Key: "clerkId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	},
	SchemaCategory: {
		Name:       SchemaCategory,
		Collection: "categories",
		Indexes: []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	},
	SchemaEvent: {
		Name:       SchemaEvent,
		Collection: "events",
		Indexes: []mongo.IndexModel{
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "organizer", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	},
	SchemaOrder: {
		Name:       SchemaOrder,
		Collection: "orders",
		Indexes: []mongo.IndexModel{
			{Keys: bson.D{{Key: "buyer", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "stripeId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
	},
}

// LookupSchema returns the descriptor registered under name.
func LookupSchema(name string) (Schema, error) {
	s, ok := schemas[name]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return s, nil
}

// Registry binds the schema descriptors to one database. Build it once at
// startup and share it; indexes are created on the first EnsureIndexes call.
type Registry struct {
	db      *mongo.Database
	timeout time.Duration

	once sync.Once
	err  error
}

func NewRegistry(db *mongo.Database, timeout time.Duration) *Registry {
	return &Registry{db: db, timeout: timeout}
}

func (r *Registry) EnsureIndexes(ctx context.Context) error {
	r.once.Do(func() {
		for _, s := range schemas {
			if len(s.Indexes) == 0 {
				continue
			}
			if _, err := r.db.Collection(s.Collection).Indexes().CreateMany(ctx, s.Indexes); err != nil {
				r.err = fmt.Errorf("create %s indexes: %w", s.Name, err)
				return
			}
		}
	})
	return r.err
}

func (r *Registry) Collection(name string) (*mongo.Collection, error) {
	s, err := LookupSchema(name)
	if err != nil {
		return nil, err
	}
	return r.db.Collection(s.Collection), nil
}

func (r *Registry) mustCollection(name string) *mongo.Collection {
	col, err := r.Collection(name)
	if err != nil {
		panic(err)
	}
	return col
}

func (r *Registry) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}
