package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/evently-go/models"
)

type CategoryRepository struct {
	reg *Registry
	col *mongo.Collection
}

func NewCategoryRepository(reg *Registry) *CategoryRepository {
	return &CategoryRepository{reg: reg, col: reg.mustCollection(SchemaCategory)}
}

func (r *CategoryRepository) InsertCategory(ctx context.Context, category models.Category) (models.Category, error) {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Category{}, ErrDuplicate
		}
		return models.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return category, nil
}

func (r *CategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) FindCategoryByName(ctx context.Context, name string) (models.Category, error) {
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	var category models.Category
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&category); err != nil {
		return models.Category{}, notFound(err)
	}
	return category, nil
}
