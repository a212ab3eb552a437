package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"

	models "github.com/phillip/donation-hub-go/models"
	"github.com/phillip/donation-hub-go/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var baseTime = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func oidPtr(id primitive.ObjectID) *primitive.ObjectID { return &id }

func f64(v float64) *float64 { return &v }

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *store.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, ctx: context.Background(), store: store.NewMemory()}
}

func (f *fixture) user(name, email, role string) *models.User {
	f.t.Helper()
	u := &models.User{Name: name, Email: email, Role: role, CreatedAt: baseTime}
	require.NoError(f.t, f.store.InsertUser(f.ctx, u))
	return u
}

func (f *fixture) organization(owner primitive.ObjectID, name string) *models.Organization {
	f.t.Helper()
	o := &models.Organization{OwnerID: owner, Name: name, CreatedAt: baseTime}
	require.NoError(f.t, f.store.InsertOrganization(f.ctx, o))
	return o
}

func (f *fixture) campaign(orgID primitive.ObjectID, title string) *models.Campaign {
	f.t.Helper()
	c := &models.Campaign{OrganizationID: orgID, Title: title, Status: models.CampaignActive, CreatedAt: baseTime}
	require.NoError(f.t, f.store.InsertCampaign(f.ctx, c))
	return c
}

func (f *fixture) cash(d models.Donation) *models.Donation {
	f.t.Helper()
	if d.Status == "" {
		d.Status = models.CashSucceeded
	}
	if d.Currency == "" {
		d.Currency = "USD"
	}
	require.NoError(f.t, f.store.InsertDonation(f.ctx, &d))
	return &d
}

func (f *fixture) physical(d models.PhysicalDonation) *models.PhysicalDonation {
	f.t.Helper()
	if d.Status == "" {
		d.Status = models.PhysicalPending
	}
	require.NoError(f.t, f.store.InsertPhysicalDonation(f.ctx, &d))
	return &d
}

func item(name, category string, qty int, perUnit float64) models.DonationItem {
	return models.DonationItem{
		ItemName:              name,
		Category:              category,
		Quantity:              qty,
		EstimatedValuePerUnit: perUnit,
		TotalEstimatedValue:   float64(qty) * perUnit,
	}
}

// failingReader fails every cash query and delegates the rest.
type failingReader struct {
	*store.Memory
}

var errStoreDown = errors.New("connection refused")

func (failingReader) CashDonationsByDonor(context.Context, primitive.ObjectID, string) ([]models.Donation, error) {
	return nil, errStoreDown
}

func (failingReader) CashDonationsByOrganization(context.Context, primitive.ObjectID) ([]models.Donation, error) {
	return nil, errStoreDown
}

func (failingReader) CashDonationsByCampaigns(context.Context, []primitive.ObjectID) ([]models.Donation, error) {
	return nil, errStoreDown
}

// campaignQueryFailure fails only the campaign-tagged queries.
type campaignQueryFailure struct {
	*store.Memory
}

func (campaignQueryFailure) CashDonationsByCampaigns(context.Context, []primitive.ObjectID) ([]models.Donation, error) {
	return nil, errStoreDown
}

func (campaignQueryFailure) PhysicalDonationsByCampaigns(context.Context, []primitive.ObjectID) ([]models.PhysicalDonation, error) {
	return nil, errStoreDown
}

// unifiedCash and unifiedPhysical build an in-memory UnifiedDonation for pure-function tests.
func unifiedCash(id string, amount float64, at time.Time, donor string) models.UnifiedDonation {
	return models.UnifiedDonation{
		ID: id, Type: models.KindCash, DonorName: donor, Amount: f64(amount),
		TargetType: models.TargetOrganization, CreatedAt: at, Status: models.CashSucceeded,
	}
}

func unifiedPhysical(id string, at time.Time, donor string, items ...models.UnifiedItem) models.UnifiedDonation {
	var total float64
	for _, it := range items {
		total += it.TotalEstimatedValue
	}
	return models.UnifiedDonation{
		ID: id, Type: models.KindPhysical, DonorName: donor, EstimatedValue: f64(total),
		DonationItems: items, TargetType: models.TargetCampaign, CreatedAt: at,
		Status: string(models.PhysicalReceived),
	}
}

func uitem(category string, value float64) models.UnifiedItem {
	return models.UnifiedItem{ItemName: category + " item", Category: category, Quantity: 1,
		EstimatedValuePerUnit: value, TotalEstimatedValue: value}
}
