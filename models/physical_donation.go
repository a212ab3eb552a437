package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PhysicalStatus string

const (
	PhysicalPending   PhysicalStatus = "pending"
	PhysicalConfirmed PhysicalStatus = "confirmed"
	PhysicalInTransit PhysicalStatus = "in_transit"
	PhysicalReceived  PhysicalStatus = "received"
	PhysicalCancelled PhysicalStatus = "cancelled"
	PhysicalDeclined  PhysicalStatus = "declined"
)

func (s PhysicalStatus) Valid() bool {
	switch s {
	case PhysicalPending, PhysicalConfirmed, PhysicalInTransit,
		PhysicalReceived, PhysicalCancelled, PhysicalDeclined:
		return true
	}
	return false
}

// Approved reports whether the organization has confirmed the donation,
// i.e. whether it counts toward received-value totals.
func (s PhysicalStatus) Approved() bool {
	return s == PhysicalConfirmed || s == PhysicalInTransit || s == PhysicalReceived
}

// PhysicalDonation is an in-kind donation. Items live in the "donation_items"
// collection and are joined on read.
type PhysicalDonation struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DonorID          primitive.ObjectID  `bson:"donor_id,omitempty" json:"donor_id,omitempty"`
	DonorName        string              `bson:"donor_name" json:"donor_name"`
	DonorEmail       string              `bson:"donor_email" json:"donor_email"`
	IsAnonymous      bool                `bson:"is_anonymous" json:"is_anonymous"`
	Message          string              `bson:"message,omitempty" json:"message,omitempty"`
	TargetType       TargetType          `bson:"target_type" json:"target_type"`
	TargetID         string              `bson:"target_id,omitempty" json:"target_id,omitempty"`
	TargetName       string              `bson:"target_name,omitempty" json:"target_name,omitempty"`
	OrganizationID   *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	CampaignID       *primitive.ObjectID `bson:"campaign_id,omitempty" json:"campaign_id,omitempty"`
	Status           PhysicalStatus      `bson:"status" json:"status"`
	PickupPreference string              `bson:"pickup_preference,omitempty" json:"pickup_preference,omitempty"` // pickup, dropoff
	PickupAddress    string              `bson:"pickup_address,omitempty" json:"pickup_address,omitempty"`
	PickupDate       *time.Time          `bson:"pickup_date,omitempty" json:"pickup_date,omitempty"`
	CoordinatorNotes string              `bson:"coordinator_notes,omitempty" json:"coordinator_notes,omitempty"`
	EstimatedValue   float64             `bson:"estimated_value" json:"estimated_value"`
	CreatedAt        time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time           `bson:"updated_at" json:"updated_at"`

	// Joined from donation_items
	Items []DonationItem `bson:"items,omitempty" json:"items,omitempty"`
}

type DonationItem struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PhysicalDonationID    primitive.ObjectID `bson:"physical_donation_id" json:"physical_donation_id"`
	ItemName              string             `bson:"item_name" json:"item_name"`
	Category              string             `bson:"category" json:"category"`
	Quantity              int                `bson:"quantity" json:"quantity"`
	Unit                  string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Condition             string             `bson:"condition,omitempty" json:"condition,omitempty"` // new, like_new, good, fair
	EstimatedValuePerUnit float64            `bson:"estimated_value_per_unit" json:"estimated_value_per_unit"`
	TotalEstimatedValue   float64            `bson:"total_estimated_value" json:"total_estimated_value"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
}
