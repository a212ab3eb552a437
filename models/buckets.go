package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// addMoney sums two currency values without binary float drift.
func addMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

// Merge combines two buckets of the same month. The receiver's Month wins.
func (b MonthlyBucket) Merge(o MonthlyBucket) MonthlyBucket {
	if b.Month == "" {
		b.Month = o.Month
	}
	b.CashCount += o.CashCount
	b.CashAmount = addMoney(b.CashAmount, o.CashAmount)
	b.PhysicalCount += o.PhysicalCount
	b.PhysicalValue = addMoney(b.PhysicalValue, o.PhysicalValue)
	return b
}

func (b CategoryBucket) Merge(o CategoryBucket) CategoryBucket {
	if b.Category == "" {
		b.Category = o.Category
	}
	b.Count += o.Count
	b.TotalValue = addMoney(b.TotalValue, o.TotalValue)
	return b
}

// MonthlyBuckets is keyed by YYYY-MM.
type MonthlyBuckets map[string]MonthlyBucket

func (m MonthlyBuckets) Add(b MonthlyBucket) {
	m[b.Month] = m[b.Month].Merge(b)
}

// MergeAll folds another bucket set into m.
func (m MonthlyBuckets) MergeAll(o MonthlyBuckets) {
	for _, b := range o {
		m.Add(b)
	}
}

// Sorted returns the buckets in ascending month order.
func (m MonthlyBuckets) Sorted() []MonthlyBucket {
	out := make([]MonthlyBucket, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// CategoryBuckets is keyed by item category.
type CategoryBuckets map[string]CategoryBucket

func (m CategoryBuckets) Add(b CategoryBucket) {
	m[b.Category] = m[b.Category].Merge(b)
}

func (m CategoryBuckets) MergeAll(o CategoryBuckets) {
	for _, b := range o {
		m.Add(b)
	}
}

// Top returns at most n buckets by count descending, ties broken by category name.
func (m CategoryBuckets) Top(n int) []CategoryBucket {
	out := make([]CategoryBucket, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
