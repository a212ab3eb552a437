package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	models "github.com/phillip/donation-hub-go/models"
	"github.com/phillip/donation-hub-go/store"
)

type orgWorld struct {
	*fixture
	owner    *models.User
	donor    *models.User
	org      *models.Organization
	campaign *models.Campaign
	svc      *HistoryService
}

// newOrgWorld seeds one organization with a campaign, three cash donations
// (direct, campaign-tagged, and both) and two physical donations.
func newOrgWorld(t *testing.T) *orgWorld {
	f := newFixture(t)
	w := &orgWorld{fixture: f}
	w.owner = f.user("Org Owner", "owner@example.org", models.RoleOrganization)
	w.donor = f.user("Dana Donor", "dana@example.com", models.RoleDonor)
	w.org = f.organization(w.owner.ID, "Food Bank")
	w.campaign = f.campaign(w.org.ID, "Winter Drive")

	f.cash(models.Donation{
		DonorID: w.donor.ID, DonorName: "Dana Donor", DonorEmail: "dana@example.com",
		Amount: 1000, TargetType: models.TargetOrganization, TargetID: w.org.ID.Hex(),
		TargetName: w.org.Name, OrganizationID: oidPtr(w.org.ID), CreatedAt: baseTime,
	})
	f.cash(models.Donation{
		DonorID: w.donor.ID, DonorName: "Dana Donor", DonorEmail: "dana@example.com",
		Amount: 500, TargetType: models.TargetCampaign, TargetID: w.campaign.ID.Hex(),
		TargetName: w.campaign.Title, CampaignID: oidPtr(w.campaign.ID), CreatedAt: baseTime.Add(time.Hour),
	})
	f.cash(models.Donation{
		DonorName: "Sam", DonorEmail: "sam@example.com", IsAnonymous: true,
		Amount: 75, TargetType: models.TargetCampaign, TargetID: w.campaign.ID.Hex(),
		OrganizationID: oidPtr(w.org.ID), CampaignID: oidPtr(w.campaign.ID), CreatedAt: baseTime.Add(2 * time.Hour),
	})
	f.physical(models.PhysicalDonation{
		DonorID: w.donor.ID, DonorName: "Dana Donor", DonorEmail: "dana@example.com",
		TargetType: models.TargetCampaign, TargetID: w.campaign.ID.Hex(), CampaignID: oidPtr(w.campaign.ID),
		Status: models.PhysicalReceived, CreatedAt: baseTime.Add(3 * time.Hour),
		Items: []models.DonationItem{item("Coat", "clothing", 2, 100), item("Rice", "food", 10, 10)},
	})
	f.physical(models.PhysicalDonation{
		DonorName: "Pat", DonorEmail: "pat@example.com",
		TargetType: models.TargetOrganization, TargetID: w.org.ID.Hex(),
		Status: models.PhysicalPending, CreatedAt: baseTime.Add(4 * time.Hour),
		Items: []models.DonationItem{item("Blanket", "bedding", 1, 30)},
	})
	// unrelated organization
	other := f.organization(w.owner.ID, "Other")
	f.cash(models.Donation{Amount: 9, TargetType: models.TargetOrganization, TargetID: other.ID.Hex(),
		OrganizationID: oidPtr(other.ID), CreatedAt: baseTime})

	w.svc = NewHistoryService(f.store, zaptest.NewLogger(t))
	return w
}

func (w *orgWorld) ownerViewer() *Viewer {
	return &Viewer{UserID: w.owner.ID, Email: w.owner.Email, Role: w.owner.Role}
}

func (w *orgWorld) donorViewer() *Viewer {
	return &Viewer{UserID: w.donor.ID, Email: w.donor.Email, Role: w.donor.Role}
}

func TestHistoryOrganizationContextUnionsAndDedupes(t *testing.T) {
	w := newOrgWorld(t)

	res := w.svc.GetDonationHistory(w.ctx, HistoryQuery{
		OrganizationID: w.org.ID.Hex(),
		Viewer:         w.ownerViewer(),
	})

	require.Empty(t, res.Error)
	assert.Equal(t, 5, res.TotalCount)
	assert.Len(t, res.Donations, 5)
	assert.False(t, res.HasMore)

	seen := map[string]int{}
	for _, d := range res.Donations {
		seen[d.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "donation %s returned %d times", id, n)
	}

	// newest first by default
	assert.Equal(t, models.KindPhysical, res.Donations[0].Type)
	assert.Equal(t, "Pat", res.Donations[0].DonorName)

	assert.Equal(t, 3, res.Stats.TotalCashDonations)
	assert.Equal(t, 2, res.Stats.TotalPhysicalDonations)
	assert.InDelta(t, 1575, res.Stats.TotalCashAmount, 1e-9)
	assert.InDelta(t, 330, res.Stats.TotalEstimatedValue, 1e-9)
}

func TestHistoryHidesAnonymousDonorFromOrganization(t *testing.T) {
	w := newOrgWorld(t)

	res := w.svc.GetDonationHistory(w.ctx, HistoryQuery{
		OrganizationID: w.org.ID.Hex(),
		Viewer:         w.ownerViewer(),
		Filters:        Filters{MaxAmount: f64(75), DonationType: "cash"},
	})
	require.Len(t, res.Donations, 1)
	assert.Equal(t, anonymousDonorName, res.Donations[0].DonorName)
	assert.Empty(t, res.Donations[0].DonorEmail)
}

func TestHistoryCampaignContext(t *testing.T) {
	w := newOrgWorld(t)

	res := w.svc.GetDonationHistory(w.ctx, HistoryQuery{
		CampaignID: w.campaign.ID.Hex(),
		Viewer:     w.ownerViewer(),
	})
	assert.Equal(t, 3, res.TotalCount)
	for _, d := range res.Donations {
		assert.Equal(t, w.campaign.ID.Hex(), d.TargetID)
	}
}

func TestHistoryContextPrecedence(t *testing.T) {
	w := newOrgWorld(t)

	// organization wins over campaign and donor
	res := w.svc.GetDonationHistory(w.ctx, HistoryQuery{
		OrganizationID: w.org.ID.Hex(),
		CampaignID:     w.campaign.ID.Hex(),
		UserID:         w.donor.ID.Hex(),
		Viewer:         w.ownerViewer(),
	})
	assert.Equal(t, 5, res.TotalCount)

	// campaign wins over donor
	res = w.svc.GetDonationHistory(w.ctx, HistoryQuery{
		CampaignID: w.campaign.ID.Hex(),
		UserID:     w.donor.ID.Hex(),
		Viewer:     w.donorViewer(),
	})
	assert.Equal(t, 3, res.TotalCount)
}

func TestHistoryDonorContext(t *testing.T) {
	w := newOrgWorld(t)

	res := w.svc.GetDonationHistory(w.ctx, HistoryQuery{
		UserID:     w.donor.ID.Hex(),
		DonorEmail: w.donor.Email,
		Viewer:     w.donorViewer(),
	})
	require.Empty(t, res.Error)
	assert.Equal(t, 3, res.TotalCount)
	for _, d := range res.Donations {
		assert.Equal(t, "Dana Donor", d.DonorName)
	}
}

func TestHistoryDonorSeesOwnAnonymousDonations(t *testing.T) {
	f := newFixture(t)
	donor := f.user("Quiet", "quiet@example.com", models.RoleDonor)
	f.cash(models.Donation{DonorID: donor.ID, DonorName: "Quiet", DonorEmail: donor.Email,
		IsAnonymous: true, Amount: 10, TargetType: models.TargetGeneral, CreatedAt: baseTime})
	svc := NewHistoryService(f.store, nil)

	res := svc.GetDonationHistory(f.ctx, HistoryQuery{
		UserID: donor.ID.Hex(),
		Viewer: &Viewer{UserID: donor.ID, Email: donor.Email, Role: models.RoleDonor},
	})
	require.Len(t, res.Donations, 1)
	assert.Equal(t, "Quiet", res.Donations[0].DonorName)
	assert.Equal(t, donor.Email, res.Donations[0].DonorEmail)
}

func TestHistoryRequiresAuthenticationForDonorContext(t *testing.T) {
	w := newOrgWorld(t)

	res := w.svc.GetDonationHistory(w.ctx, HistoryQuery{UserID: w.donor.ID.Hex()})
	assert.Equal(t, ErrUnauthenticated.Error(), res.Error)
	assert.NotNil(t, res.Donations)
	assert.Empty(t, res.Donations)
	assert.Zero(t, res.TotalCount)
}

func TestHistoryRejectsOtherDonorsHistory(t *testing.T) {
	w := newOrgWorld(t)

	res := w.svc.GetDonationHistory(w.ctx, HistoryQuery{
		UserID: w.donor.ID.Hex(),
		Viewer: w.ownerViewer(),
	})
	assert.Equal(t, ErrForbidden.Error(), res.Error)
	assert.Empty(t, res.Donations)
}

func TestHistoryWithoutContextIsEmpty(t *testing.T) {
	w := newOrgWorld(t)

	res := w.svc.GetDonationHistory(w.ctx, HistoryQuery{Viewer: w.ownerViewer()})
	assert.Empty(t, res.Error)
	assert.Empty(t, res.Donations)
	assert.False(t, res.HasMore)
}

func TestHistoryInvalidIDs(t *testing.T) {
	w := newOrgWorld(t)

	res := w.svc.GetDonationHistory(w.ctx, HistoryQuery{OrganizationID: "org-1"})
	assert.Equal(t, "invalid organization id", res.Error)
	res = w.svc.GetDonationHistory(w.ctx, HistoryQuery{CampaignID: "nope"})
	assert.Equal(t, "invalid campaign id", res.Error)
}

func TestHistoryPaginationIsContiguous(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Owner", "o@example.org", models.RoleOrganization)
	org := f.organization(owner.ID, "Shelter")
	for i := 0; i < 9; i++ {
		f.cash(models.Donation{Amount: float64(10 + i), TargetType: models.TargetOrganization,
			TargetID: org.ID.Hex(), CreatedAt: baseTime.Add(time.Duration(i) * time.Minute)})
	}
	svc := NewHistoryService(f.store, nil)
	query := func(page, size int) HistoryResult {
		return svc.GetDonationHistory(f.ctx, HistoryQuery{
			OrganizationID: org.ID.Hex(), Page: page, PageSize: size,
			Sorting: Sorting{Field: SortAmount, Direction: SortAsc},
		})
	}

	p1, p2, both := query(1, 3), query(2, 3), query(1, 6)
	assert.Equal(t, ids(both.Donations), append(ids(p1.Donations), ids(p2.Donations)...))
	assert.True(t, p1.HasMore)
	assert.True(t, p2.HasMore)
	assert.Equal(t, 9, p1.TotalCount)

	last := query(3, 3)
	assert.Len(t, last.Donations, 3)
	assert.False(t, last.HasMore)

	beyond := query(4, 3)
	assert.Empty(t, beyond.Donations)
	assert.Equal(t, 9, beyond.Stats.TotalDonations, "stats describe the filtered set, not the page")
}

func TestHistoryFilterByTypeScenario(t *testing.T) {
	f := newFixture(t)
	donor := f.user("D", "d@example.com", models.RoleDonor)
	for i := 0; i < 3; i++ {
		f.cash(models.Donation{DonorID: donor.ID, Amount: 5, TargetType: models.TargetGeneral, CreatedAt: baseTime})
	}
	for i := 0; i < 2; i++ {
		f.physical(models.PhysicalDonation{DonorID: donor.ID, TargetType: models.TargetGeneral, CreatedAt: baseTime,
			Items: []models.DonationItem{item("Book", "books", 1, 3)}})
	}
	svc := NewHistoryService(f.store, nil)

	res := svc.GetDonationHistory(f.ctx, HistoryQuery{
		UserID:  donor.ID.Hex(),
		Viewer:  &Viewer{UserID: donor.ID, Email: donor.Email},
		Filters: Filters{DonationType: "physical"},
	})
	require.Len(t, res.Donations, 2)
	for _, d := range res.Donations {
		assert.Equal(t, models.KindPhysical, d.Type)
	}
	assert.Equal(t, 0, res.Stats.TotalCashDonations)
}

func TestHistorySwallowsSourceFailure(t *testing.T) {
	w := newOrgWorld(t)
	core, logs := observer.New(zap.ErrorLevel)
	svc := NewHistoryService(failingReader{w.store}, zap.New(core))

	res := svc.GetDonationHistory(w.ctx, HistoryQuery{
		OrganizationID: w.org.ID.Hex(),
		Viewer:         w.ownerViewer(),
	})

	assert.Empty(t, res.Error)
	assert.Equal(t, 2, res.TotalCount, "physical donations still returned")
	for _, d := range res.Donations {
		assert.Equal(t, models.KindPhysical, d.Type)
	}
	entries := logs.FilterMessage("cash donation fetch failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "organization", entries[0].ContextMap()["scope"])
}

func TestHistoryKeepsOrganizationRowsWhenCampaignQueryFails(t *testing.T) {
	w := newOrgWorld(t)
	core, logs := observer.New(zap.ErrorLevel)
	svc := NewHistoryService(campaignQueryFailure{w.store}, zap.New(core))

	res := svc.GetDonationHistory(w.ctx, HistoryQuery{
		OrganizationID: w.org.ID.Hex(),
		Viewer:         w.ownerViewer(),
	})

	assert.Empty(t, res.Error)
	assert.Equal(t, 3, res.TotalCount, "org-tagged cash and physical rows survive")
	assert.InDelta(t, 1075, res.Stats.TotalCashAmount, 1e-9)
	assert.InDelta(t, 30, res.Stats.TotalEstimatedValue, 1e-9)
	assert.Len(t, logs.FilterMessage("campaign cash donation fetch failed").All(), 1)
	assert.Len(t, logs.FilterMessage("campaign physical donation fetch failed").All(), 1)
	assert.Empty(t, logs.FilterMessage("cash donation fetch failed").All())
}

func TestHistoryHugePageIsEmpty(t *testing.T) {
	w := newOrgWorld(t)

	res := w.svc.GetDonationHistory(w.ctx, HistoryQuery{
		OrganizationID: w.org.ID.Hex(),
		Viewer:         w.ownerViewer(),
		Page:           1 << 62,
		PageSize:       100,
	})

	assert.Empty(t, res.Error)
	assert.Empty(t, res.Donations)
	assert.NotNil(t, res.Donations)
	assert.Equal(t, 5, res.TotalCount)
	assert.False(t, res.HasMore)
}

func TestHistoryPageSizeDefaultsAndCap(t *testing.T) {
	page, size := normalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	_, size = normalizePage(2, 10_000)
	assert.Equal(t, MaxPageSize, size)
}

func ExampleHistoryService_GetDonationHistory() {
	svc := NewHistoryService(store.NewMemory(), nil)
	res := svc.GetDonationHistory(context.Background(), HistoryQuery{})
	fmt.Println(res.TotalCount, res.Error == "")
	// Output: 0 true
}
