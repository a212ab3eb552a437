package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/donation-hub-go/models"
)

const anonymousDonorName = "Anonymous"

// hideDonorIdentity is the anonymization policy: a donor who asked to stay
// anonymous is only identifiable to themself.
func hideDonorIdentity(isAnonymous bool, donorID primitive.ObjectID, viewer *Viewer) bool {
	if !isAnonymous {
		return false
	}
	return viewer == nil || donorID.IsZero() || viewer.UserID != donorID
}

func FromCash(d models.Donation, viewer *Viewer) models.UnifiedDonation {
	amount := d.Amount
	u := models.UnifiedDonation{
		ID:         d.ID.Hex(),
		Type:       models.KindCash,
		DonorName:  d.DonorName,
		DonorEmail: d.DonorEmail,
		Message:    d.Message,
		TargetType: d.TargetType,
		TargetID:   d.TargetID,
		TargetName: d.TargetName,
		CreatedAt:  d.CreatedAt,
		Status:     d.Status,
		Amount:     &amount,
		Currency:   d.Currency,
	}
	if hideDonorIdentity(d.IsAnonymous, d.DonorID, viewer) {
		u.DonorName, u.DonorEmail = anonymousDonorName, ""
	}
	return u
}

func FromPhysical(d models.PhysicalDonation, viewer *Viewer) models.UnifiedDonation {
	var total moneySum
	items := make([]models.UnifiedItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, models.UnifiedItem{
			ItemName:              it.ItemName,
			Category:              it.Category,
			Quantity:              it.Quantity,
			Unit:                  it.Unit,
			Condition:             it.Condition,
			EstimatedValuePerUnit: it.EstimatedValuePerUnit,
			TotalEstimatedValue:   it.TotalEstimatedValue,
		})
		total.Add(it.TotalEstimatedValue)
	}
	// rows without joined items keep their stored estimate
	value := d.EstimatedValue
	if len(d.Items) > 0 {
		value = total.Float()
	}

	u := models.UnifiedDonation{
		ID:               d.ID.Hex(),
		Type:             models.KindPhysical,
		DonorName:        d.DonorName,
		DonorEmail:       d.DonorEmail,
		Message:          d.Message,
		TargetType:       d.TargetType,
		TargetID:         d.TargetID,
		TargetName:       d.TargetName,
		CreatedAt:        d.CreatedAt,
		Status:           string(d.Status),
		EstimatedValue:   &value,
		DonationItems:    items,
		PickupPreference: d.PickupPreference,
		CoordinatorNotes: d.CoordinatorNotes,
	}
	if hideDonorIdentity(d.IsAnonymous, d.DonorID, viewer) {
		u.DonorName, u.DonorEmail = anonymousDonorName, ""
	}
	return u
}
