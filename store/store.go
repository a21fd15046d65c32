// Package store persists users, categories, events and orders in MongoDB.
package store

import (
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrDuplicate     = errors.New("duplicate key")
	ErrUnknownSchema = errors.New("unknown schema")
)

// EventFilter selects events. Nil and empty fields are not applied.
type EventFilter struct {
	OrganizerID *primitive.ObjectID
	CategoryID  *primitive.ObjectID
	ExcludeID   *primitive.ObjectID
	TitleSearch string
}

// Document renders the filter as a Mongo query document.
func (f EventFilter) Document() bson.D {
	filter := bson.D{}
	if f.OrganizerID != nil {
		filter = append(filter, bson.E{Key: "organizer", Value: *f.OrganizerID})
	}
	if f.CategoryID != nil {
		filter = append(filter, bson.E{Key: "category", Value: *f.CategoryID})
	}
	if f.ExcludeID != nil {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: *f.ExcludeID}}})
	}
	if f.TitleSearch != "" {
		filter = append(filter, bson.E{Key: "title", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(f.TitleSearch),
			Options: "i",
		}})
	}
	return filter
}

// Page is a skip/limit window. A zero Limit means no limit.
type Page struct {
	Skip  int64
	Limit int64
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// windowed returns match, sort, skip and limit stages in that order.
func windowed(filter bson.D, page Page) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: newestFirst}},
	}
	if page.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: page.Skip}})
	}
	if page.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: page.Limit}})
	}
	return pipeline
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
