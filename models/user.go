package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User mirrors an identity-provider account. ClerkID never changes once set.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ClerkID   string             `bson:"clerkId" json:"clerkId" validate:"required"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Username  string             `bson:"username" json:"username" validate:"required"`
	FirstName string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Photo     string             `bson:"photo" json:"photo" validate:"required"`
}

// UserProfile holds the mutable part of a User.
type UserProfile struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Username  string `bson:"username" json:"username" validate:"required"`
	Photo     string `bson:"photo" json:"photo" validate:"required"`
}

// OrganizerSummary is the reduced User projection embedded in event views.
type OrganizerSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
}
