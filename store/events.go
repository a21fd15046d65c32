package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/evently-go/models"
)

type EventRepository struct {
	reg *Registry
	col *mongo.Collection
}

func NewEventRepository(reg *Registry) *EventRepository {
	return &EventRepository{reg: reg, col: reg.mustCollection(SchemaEvent)}
}

// EventUpdate carries the replaceable part of an event.
type EventUpdate struct {
	models.EventFields `bson:",inline"`
	Category           primitive.ObjectID `bson:"category"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

func (r *EventRepository) InsertEvent(ctx context.Context, event models.Event) (models.Event, error) {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, event); err != nil {
		return models.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) FindEventByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	var event models.Event
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		return models.Event{}, notFound(err)
	}
	return event, nil
}

func (r *EventRepository) FindEventViewByID(ctx context.Context, id primitive.ObjectID) (models.EventView, error) {
	pipeline := PopulateEvent(mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		{{Key: "$limit", Value: 1}},
	})
	views, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return models.EventView{}, err
	}
	if len(views) == 0 {
		return models.EventView{}, ErrNotFound
	}
	return views[0], nil
}

// ListEventViews returns populated events newest first.
func (r *EventRepository) ListEventViews(ctx context.Context, filter EventFilter, page Page) ([]models.EventView, error) {
	return r.aggregate(ctx, EventListPipeline(filter, page))
}

func (r *EventRepository) CountEvents(ctx context.Context, filter EventFilter) (int64, error) {
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter.Document())
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// UpdateEvent replaces the editable fields of the event owned by organizer
// and returns the stored result.
func (r *EventRepository) UpdateEvent(ctx context.Context, id, organizer primitive.ObjectID, update EventUpdate) (models.Event, error) {
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var event models.Event
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "organizer": organizer},
		bson.M{"$set": update},
		opts,
	).Decode(&event)
	if err != nil {
		return models.Event{}, notFound(err)
	}
	return event, nil
}

// DeleteEvent removes the event and returns what was removed. A non-nil
// organizer restricts the delete to that owner.
func (r *EventRepository) DeleteEvent(ctx context.Context, id primitive.ObjectID, organizer *primitive.ObjectID) (models.Event, error) {
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": id}
	if organizer != nil {
		filter["organizer"] = *organizer
	}
	var event models.Event
	if err := r.col.FindOneAndDelete(ctx, filter).Decode(&event); err != nil {
		return models.Event{}, notFound(err)
	}
	return event, nil
}

func (r *EventRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.EventView, error) {
	ctx, cancel := r.reg.withTimeout(ctx)
	defer cancel()

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate events: %w", err)
	}
	views := []models.EventView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return views, nil
}

// EventListPipeline is the populated, newest-first pipeline behind every
// event listing.
func EventListPipeline(filter EventFilter, page Page) mongo.Pipeline {
	return PopulateEvent(windowed(filter.Document(), page))
}
