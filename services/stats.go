package services

import (
	models "github.com/phillip/donation-hub-go/models"
)

const (
	topCategoryLimit  = 10
	uncategorized     = "other"
	monthBucketLayout = "2006-01"
)

func categoryOf(item models.UnifiedItem) string {
	if item.Category == "" {
		return uncategorized
	}
	return item.Category
}

// CalculateStats derives counts, sums, a monthly series and the top item
// categories from donations. It is pure and deterministic.
func CalculateStats(donations []models.UnifiedDonation) models.DonationStats {
	var (
		stats     models.DonationStats
		cashSum   moneySum
		physSum   moneySum
		months    = models.MonthlyBuckets{}
		catCounts = models.CategoryBuckets{}
	)

	for _, d := range donations {
		bucket := models.MonthlyBucket{Month: d.CreatedAt.UTC().Format(monthBucketLayout)}
		if d.Type == models.KindCash {
			stats.TotalCashDonations++
			cashSum.Add(d.Value())
			bucket.CashCount, bucket.CashAmount = 1, d.Value()
		} else {
			stats.TotalPhysicalDonations++
			physSum.Add(d.Value())
			bucket.PhysicalCount, bucket.PhysicalValue = 1, d.Value()
			for _, item := range d.DonationItems {
				catCounts.Add(models.CategoryBucket{
					Category:   categoryOf(item),
					Count:      1,
					TotalValue: item.TotalEstimatedValue,
				})
			}
		}
		months.Add(bucket)
	}

	stats.TotalDonations = len(donations)
	stats.TotalCashAmount = cashSum.Float()
	stats.TotalEstimatedValue = physSum.Float()
	stats.MonthlyBreakdown = months.Sorted()
	stats.TopCategories = catCounts.Top(topCategoryLimit)
	return stats
}
