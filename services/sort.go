package services

import (
	"cmp"
	"slices"
	"strings"

	models "github.com/phillip/donation-hub-go/models"
)

type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortAmount    SortField = "amount"
	SortDonorName SortField = "donor_name"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type Sorting struct {
	Field     SortField
	Direction SortDirection
}

// DefaultSorting is newest first.
var DefaultSorting = Sorting{Field: SortCreatedAt, Direction: SortDesc}

func (s Sorting) normalized() Sorting {
	switch s.Field {
	case SortCreatedAt, SortAmount, SortDonorName:
	default:
		s.Field = SortCreatedAt
	}
	if s.Direction != SortAsc {
		s.Direction = SortDesc
	}
	return s
}

func compareBy(field SortField) func(a, b models.UnifiedDonation) int {
	switch field {
	case SortAmount:
		return func(a, b models.UnifiedDonation) int { return cmp.Compare(a.Value(), b.Value()) }
	case SortDonorName:
		return func(a, b models.UnifiedDonation) int {
			return strings.Compare(strings.ToLower(a.DonorName), strings.ToLower(b.DonorName))
		}
	default:
		return func(a, b models.UnifiedDonation) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

// SortDonations returns a stably sorted copy; equal keys keep their input order
// in both directions.
func SortDonations(donations []models.UnifiedDonation, s Sorting) []models.UnifiedDonation {
	s = s.normalized()
	out := slices.Clone(donations)
	compare := compareBy(s.Field)
	if s.Direction == SortDesc {
		asc := compare
		compare = func(a, b models.UnifiedDonation) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

// hasMorePages reports whether items remain after the given page.
func hasMorePages(total, page, pageSize int) bool {
	if total == 0 || page < 1 || pageSize < 1 {
		return false
	}
	return page <= (total-1)/pageSize
}

// Paginate returns the 1-based page of items.
func Paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 || len(items) == 0 {
		return []T{}
	}
	// Compare page indexes before multiplying so huge pages cannot overflow.
	if page-1 > (len(items)-1)/pageSize {
		return []T{}
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	return items[start:end]
}
