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

type UserRepository struct {
	reg *Registry
	col *mongo.Collection
}

func NewUserRepository(reg *Registry) *UserRepository {
	return &UserRepository{reg: reg, col: reg.mustCollection(SchemaUser)}
}

func (r *UserRepository) InsertUser(ctx context.Context, user models.User) (models.User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindUserByClerkID(ctx context.Context, clerkID string) (models.User, error) {
	return r.findOne(ctx, bson.M{"clerkId": clerkID})
}

func (r *UserRepository) UpdateUserProfile(ctx context.Context, clerkID string, profile models.UserProfile) (models.User, error) {
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	var user models.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"clerkId": clerkID},
		bson.M{"$set": profile},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, notFound(err)
	}
	return user, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := r.col.FindOne(ctx, filter).Decode(&user); err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}
