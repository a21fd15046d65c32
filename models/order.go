package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order records a ticket purchase by Buyer for Event.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	StripeID    string             `bson:"stripeId,omitempty" json:"stripeId,omitempty"`
	TotalAmount string             `bson:"totalAmount" json:"totalAmount"`
	Event       primitive.ObjectID `bson:"event" json:"event"`
	Buyer       primitive.ObjectID `bson:"buyer" json:"buyer"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// OrderView is an order with its event resolved to a full EventView.
type OrderView struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	StripeID    string             `bson:"stripeId,omitempty" json:"stripeId,omitempty"`
	TotalAmount string             `bson:"totalAmount" json:"totalAmount"`
	Event       *EventView         `bson:"event" json:"event"`
	Buyer       primitive.ObjectID `bson:"buyer" json:"buyer"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
