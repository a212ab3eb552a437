// Package store holds the persistence boundary of the donation platform: the
// interfaces the services depend on, a MongoDB implementation and an
// in-memory implementation used by tests and local runs.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/donation-hub-go/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// DonationReader is the read side consumed by the aggregation pipeline.
// Every method returns rows newest first.
type DonationReader interface {
	CashDonationsByDonor(ctx context.Context, donorID primitive.ObjectID, email string) ([]models.Donation, error)
	// CashDonationsByOrganization returns rows tagged with organization_id or
	// targeting the organization directly. Campaign-tagged rows are not included.
	CashDonationsByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Donation, error)
	CashDonationsByCampaigns(ctx context.Context, campaignIDs []primitive.ObjectID) ([]models.Donation, error)

	PhysicalDonationsByDonor(ctx context.Context, donorID primitive.ObjectID, email string) ([]models.PhysicalDonation, error)
	PhysicalDonationsByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.PhysicalDonation, error)
	PhysicalDonationsByCampaigns(ctx context.Context, campaignIDs []primitive.ObjectID) ([]models.PhysicalDonation, error)
}

type DonationWriter interface {
	InsertDonation(ctx context.Context, d *models.Donation) error
	// InsertPhysicalDonation stores the donation and its items.
	InsertPhysicalDonation(ctx context.Context, d *models.PhysicalDonation) error
	GetPhysicalDonation(ctx context.Context, id primitive.ObjectID) (*models.PhysicalDonation, error)
	UpdatePhysicalStatus(ctx context.Context, id primitive.ObjectID, status models.PhysicalStatus, notes string, at time.Time) error
}

type CampaignFilter struct {
	OrganizationID *primitive.ObjectID
	Status         string
	Query          string
}

type CampaignStore interface {
	InsertCampaign(ctx context.Context, c *models.Campaign) error
	GetCampaign(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, f CampaignFilter) ([]models.Campaign, error)
	CampaignsByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Campaign, error)
	ReplaceCampaign(ctx context.Context, c *models.Campaign) error
	DeleteCampaign(ctx context.Context, id primitive.ObjectID) error
	IncrementCampaignRaised(ctx context.Context, id primitive.ObjectID, amount float64) error
}

type OrganizationStore interface {
	InsertOrganization(ctx context.Context, o *models.Organization) error
	GetOrganization(ctx context.Context, id primitive.ObjectID) (*models.Organization, error)
	ListOrganizations(ctx context.Context, query string) ([]models.Organization, error)
	ReplaceOrganization(ctx context.Context, o *models.Organization) error
}

type SubscriptionStore interface {
	InsertSubscription(ctx context.Context, s *models.Subscription) error
	GetSubscription(ctx context.Context, id primitive.ObjectID) (*models.Subscription, error)
	SubscriptionsByDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) error
}

type UserStore interface {
	InsertUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store is everything the application needs from persistence.
type Store interface {
	DonationReader
	DonationWriter
	CampaignStore
	OrganizationStore
	SubscriptionStore
	UserStore
}
