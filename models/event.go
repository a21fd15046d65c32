package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventFields are the organizer-editable attributes of an event.
type EventFields struct {
	Title         string    `bson:"title" json:"title" validate:"required,min=3"`
	Description   string    `bson:"description" json:"description" validate:"min=3,max=4000"`
	Location      string    `bson:"location" json:"location" validate:"min=3"`
	ImageURL      string    `bson:"imageUrl" json:"imageUrl"`
	StartDateTime time.Time `bson:"startDateTime" json:"startDateTime" validate:"required"`
	EndDateTime   time.Time `bson:"endDateTime" json:"endDateTime" validate:"required,gtefield=StartDateTime"`
	Price         string    `bson:"price" json:"price"`
	IsFree        bool      `bson:"isFree" json:"isFree"`
	URL           string    `bson:"url" json:"url" validate:"required,url"`
}

// Event is the stored document. Organizer and Category hold foreign ids.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	EventFields `bson:",inline"`
	Organizer   primitive.ObjectID `bson:"organizer" json:"organizer"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EventView is an event with its references resolved to reduced projections.
// A nil Organizer or Category means the referenced document no longer exists.
type EventView struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	EventFields `bson:",inline"`
	Organizer   *OrganizerSummary `bson:"organizer" json:"organizer"`
	Category    *CategorySummary  `bson:"category" json:"category"`
	CreatedAt   time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time         `bson:"updatedAt" json:"updatedAt"`
}
