package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/donation-hub-go/models"
)

func seedOrgStats(t *testing.T, physicalStatus models.PhysicalStatus) (*fixture, *models.Organization) {
	f := newFixture(t)
	owner := f.user("Owner", "owner@example.org", models.RoleOrganization)
	org := f.organization(owner.ID, "Org One")
	camp := f.campaign(org.ID, "Camp One")

	for _, amount := range []float64{1000, 500} {
		f.cash(models.Donation{Amount: amount, TargetType: models.TargetOrganization,
			TargetID: org.ID.Hex(), OrganizationID: oidPtr(org.ID), CreatedAt: baseTime})
	}
	f.physical(models.PhysicalDonation{
		TargetType: models.TargetCampaign, TargetID: camp.ID.Hex(), CampaignID: oidPtr(camp.ID),
		Status: physicalStatus, CreatedAt: baseTime,
		Items: []models.DonationItem{item("Tent", "shelter", 2, 100), item("Stove", "kitchen", 1, 100)},
	})
	return f, org
}

func TestOrganizationStatsCountsCampaignTaggedRows(t *testing.T) {
	f, org := seedOrgStats(t, models.PhysicalReceived)
	svc := NewHistoryService(f.store, nil)

	stats, err := svc.GetOrganizationCampaignDonationsStats(f.ctx, org.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, org.ID.Hex(), stats.OrganizationID)
	assert.Equal(t, 1, stats.CampaignCount)
	assert.InDelta(t, 1500, stats.TotalCashAmount, 1e-9)
	assert.Equal(t, 2, stats.TotalCashDonations)
	assert.InDelta(t, 300, stats.TotalEstimatedValue, 1e-9)
	assert.Equal(t, 1, stats.TotalPhysicalDonations)
	assert.Len(t, stats.TopCategories, 2)
}

func TestOrganizationStatsExcludesUnapprovedPhysical(t *testing.T) {
	for _, status := range []models.PhysicalStatus{models.PhysicalPending, models.PhysicalDeclined, models.PhysicalCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f, org := seedOrgStats(t, status)
			svc := NewHistoryService(f.store, nil)

			stats, err := svc.GetOrganizationCampaignDonationsStats(f.ctx, org.ID.Hex())
			require.NoError(t, err)
			assert.Zero(t, stats.TotalEstimatedValue)
			assert.Zero(t, stats.TotalPhysicalDonations)
			assert.Empty(t, stats.TopCategories)
			assert.InDelta(t, 1500, stats.TotalCashAmount, 1e-9)
		})
	}
}

func TestOrganizationStatsCountsDualTaggedRowOnce(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Owner", "owner@example.org", models.RoleOrganization)
	org := f.organization(owner.ID, "Org One")
	camp := f.campaign(org.ID, "Camp One")
	f.cash(models.Donation{Amount: 250, TargetType: models.TargetCampaign, TargetID: camp.ID.Hex(),
		OrganizationID: oidPtr(org.ID), CampaignID: oidPtr(camp.ID), CreatedAt: baseTime})

	stats, err := NewHistoryService(f.store, nil).GetOrganizationCampaignDonationsStats(f.ctx, org.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCashDonations)
	assert.InDelta(t, 250, stats.TotalCashAmount, 1e-9)
}

func TestOrganizationStatsCountsOnlySucceededCash(t *testing.T) {
	f, org := seedOrgStats(t, models.PhysicalReceived)
	for _, status := range []string{models.CashFailed, models.CashPending, models.CashProcessing} {
		f.cash(models.Donation{Amount: 700, Status: status, TargetType: models.TargetOrganization,
			TargetID: org.ID.Hex(), OrganizationID: oidPtr(org.ID), CreatedAt: baseTime})
	}

	stats, err := NewHistoryService(f.store, nil).GetOrganizationCampaignDonationsStats(f.ctx, org.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCashDonations)
	assert.InDelta(t, 1500, stats.TotalCashAmount, 1e-9)
}

func TestOrganizationStatsUnknownOrganization(t *testing.T) {
	f := newFixture(t)
	svc := NewHistoryService(f.store, nil)

	stats, err := svc.GetOrganizationCampaignDonationsStats(f.ctx, primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalCashDonations)
	assert.NotNil(t, stats.TopCategories)

	_, err = svc.GetOrganizationCampaignDonationsStats(f.ctx, "org-1")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
