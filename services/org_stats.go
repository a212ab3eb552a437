package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/donation-hub-go/models"
)

// GetOrganizationCampaignDonationsStats totals everything an organization has
// received, whether a row was tagged with the organization directly or only
// with one of its campaigns. Rows found through both tags count once.
// Cash counts only once the payment succeeded and physical donations only
// once the organization approved them.
func (s *HistoryService) GetOrganizationCampaignDonationsStats(ctx context.Context, organizationID string) (models.OrganizationDonationStats, error) {
	orgID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return models.OrganizationDonationStats{}, invalid("invalid organization id")
	}

	campaignIDs := s.organizationCampaignIDs(ctx, orgID)
	sc := scope{kind: scopeOrganization, orgID: orgID, campaignIDs: campaignIDs}

	cash, physical := s.fetchRows(ctx, sc)
	return summarizeOrganization(orgID, len(campaignIDs), cash, physical), nil
}

func summarizeOrganization(orgID primitive.ObjectID, campaignCount int, cash []models.Donation, physical []models.PhysicalDonation) models.OrganizationDonationStats {
	out := models.OrganizationDonationStats{
		OrganizationID: orgID.Hex(),
		CampaignCount:  campaignCount,
	}

	var cashSum, physSum moneySum
	for _, d := range cash {
		if d.Status != models.CashSucceeded {
			continue
		}
		out.TotalCashDonations++
		cashSum.Add(d.Amount)
	}

	categories := models.CategoryBuckets{}
	for _, d := range physical {
		if !d.Status.Approved() {
			continue
		}
		u := FromPhysical(d, nil)
		out.TotalPhysicalDonations++
		physSum.Add(u.Value())
		for _, item := range u.DonationItems {
			categories.Add(models.CategoryBucket{
				Category:   categoryOf(item),
				Count:      1,
				TotalValue: item.TotalEstimatedValue,
			})
		}
	}

	out.TotalCashAmount = cashSum.Float()
	out.TotalEstimatedValue = physSum.Float()
	out.TopCategories = categories.Top(topCategoryLimit)
	return out
}
