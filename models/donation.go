package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TargetType string

const (
	TargetCampaign     TargetType = "campaign"
	TargetOrganization TargetType = "organization"
	TargetGeneral      TargetType = "general"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetCampaign, TargetOrganization, TargetGeneral:
		return true
	}
	return false
}

// Cash donation statuses
const (
	CashSucceeded  = "succeeded"
	CashPending    = "pending"
	CashFailed     = "failed"
	CashProcessing = "processing"
)

// Donation is a row of the "donations" collection (cash).
// OrganizationID and CampaignID are historical tags; older rows carry only one of them.
type Donation struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DonorID         primitive.ObjectID  `bson:"donor_id,omitempty" json:"donor_id,omitempty"`
	DonorName       string              `bson:"donor_name" json:"donor_name"`
	DonorEmail      string              `bson:"donor_email" json:"donor_email"`
	IsAnonymous     bool                `bson:"is_anonymous" json:"is_anonymous"`
	Amount          float64             `bson:"amount" json:"amount"`
	Currency        string              `bson:"currency" json:"currency"`
	Message         string              `bson:"message,omitempty" json:"message,omitempty"`
	TargetType      TargetType          `bson:"target_type" json:"target_type"`
	TargetID        string              `bson:"target_id,omitempty" json:"target_id,omitempty"`
	TargetName      string              `bson:"target_name,omitempty" json:"target_name,omitempty"`
	OrganizationID  *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	CampaignID      *primitive.ObjectID `bson:"campaign_id,omitempty" json:"campaign_id,omitempty"`
	Status          string              `bson:"status" json:"status"` // succeeded, pending, failed, processing
	PaymentIntentID string              `bson:"payment_intent_id,omitempty" json:"payment_intent_id,omitempty"`
	PaymentMethod   string              `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	TransactionID   string              `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	IsRecurring     bool                `bson:"is_recurring" json:"is_recurring"`
	SubscriptionID  *primitive.ObjectID `bson:"subscription_id,omitempty" json:"subscription_id,omitempty"`
	CreatedAt       time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `bson:"updated_at" json:"updated_at"`
}
