package services

import (
	"time"

	models "github.com/phillip/donation-hub-go/models"
)

const filterAll = "all"

// DateRange bounds are inclusive; a zero bound is open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Filters are AND-ed; empty or "all" values are inactive.
type Filters struct {
	DonationType string // cash, physical, all
	Status       string
	TargetType   string // campaign, organization, general, all
	DateRange    *DateRange
	MinAmount    *float64
	MaxAmount    *float64
}

func active(v string) bool {
	return v != "" && v != filterAll
}

func (f Filters) match(d models.UnifiedDonation) bool {
	if active(f.DonationType) && string(d.Type) != f.DonationType {
		return false
	}
	if active(f.Status) && d.Status != f.Status {
		return false
	}
	if active(f.TargetType) && string(d.TargetType) != f.TargetType {
		return false
	}
	if r := f.DateRange; r != nil {
		if !r.Start.IsZero() && d.CreatedAt.Before(r.Start) {
			return false
		}
		if !r.End.IsZero() && d.CreatedAt.After(r.End) {
			return false
		}
	}
	if f.MinAmount != nil && d.Value() < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && d.Value() > *f.MaxAmount {
		return false
	}
	return true
}

// FilterDonations keeps the donations matching every active predicate, in order.
func FilterDonations(donations []models.UnifiedDonation, f Filters) []models.UnifiedDonation {
	out := make([]models.UnifiedDonation, 0, len(donations))
	for _, d := range donations {
		if f.match(d) {
			out = append(out, d)
		}
	}
	return out
}
