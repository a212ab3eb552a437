package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleDonor        = "donor"
	RoleOrganization = "organization"
	RoleAdmin        = "admin"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Subscription statuses
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
)

type Subscription struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonorID      primitive.ObjectID `bson:"donor_id" json:"donor_id"`
	DonorEmail   string             `bson:"donor_email" json:"donor_email"`
	Amount       float64            `bson:"amount" json:"amount"`
	Currency     string             `bson:"currency" json:"currency"`
	Interval     string             `bson:"interval" json:"interval"` // monthly, quarterly, yearly
	TargetType   TargetType         `bson:"target_type" json:"target_type"`
	TargetID     string             `bson:"target_id,omitempty" json:"target_id,omitempty"`
	TargetName   string             `bson:"target_name,omitempty" json:"target_name,omitempty"`
	Status       string             `bson:"status" json:"status"`
	NextChargeAt time.Time          `bson:"next_charge_at" json:"next_charge_at"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
