package models

import "time"

type DonationKind string

const (
	KindCash     DonationKind = "cash"
	KindPhysical DonationKind = "physical"
)

// UnifiedDonation is the source-agnostic view of a cash or physical donation.
// Exactly one of Amount / EstimatedValue is set, selected by Type.
type UnifiedDonation struct {
	ID         string       `json:"id"`
	Type       DonationKind `json:"type"`
	DonorName  string       `json:"donorName"`
	DonorEmail string       `json:"donorEmail"`
	Message    string       `json:"message,omitempty"`
	TargetType TargetType   `json:"targetType"`
	TargetID   string       `json:"targetId"`
	TargetName string       `json:"targetName"`
	CreatedAt  time.Time    `json:"createdAt"`
	Status     string       `json:"status"`

	// cash
	Amount   *float64 `json:"amount,omitempty"`
	Currency string   `json:"currency,omitempty"`

	// physical
	EstimatedValue   *float64      `json:"estimatedValue,omitempty"`
	DonationItems    []UnifiedItem `json:"donationItems,omitempty"`
	PickupPreference string        `json:"pickupPreference,omitempty"`
	CoordinatorNotes string        `json:"coordinatorNotes,omitempty"`
}

// Value is the comparable monetary value: amount, else estimated value, else 0.
func (d UnifiedDonation) Value() float64 {
	if d.Amount != nil {
		return *d.Amount
	}
	if d.EstimatedValue != nil {
		return *d.EstimatedValue
	}
	return 0
}

type UnifiedItem struct {
	ItemName              string  `json:"item_name"`
	Category              string  `json:"category"`
	Quantity              int     `json:"quantity"`
	Unit                  string  `json:"unit,omitempty"`
	Condition             string  `json:"condition,omitempty"`
	EstimatedValuePerUnit float64 `json:"estimated_value_per_unit"`
	TotalEstimatedValue   float64 `json:"total_estimated_value"`
}

// MonthlyBucket aggregates donations created within one calendar month (YYYY-MM).
type MonthlyBucket struct {
	Month         string  `json:"month"`
	CashCount     int     `json:"cashCount"`
	CashAmount    float64 `json:"cashAmount"`
	PhysicalCount int     `json:"physicalCount"`
	PhysicalValue float64 `json:"physicalValue"`
}

type CategoryBucket struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"totalValue"`
}

// DonationStats is derived from a donation set on every call; it is never stored.
type DonationStats struct {
	TotalDonations         int              `json:"totalDonations"`
	TotalCashDonations     int              `json:"totalCashDonations"`
	TotalPhysicalDonations int              `json:"totalPhysicalDonations"`
	TotalCashAmount        float64          `json:"totalCashAmount"`
	TotalEstimatedValue    float64          `json:"totalEstimatedValue"`
	MonthlyBreakdown       []MonthlyBucket  `json:"monthlyBreakdown"`
	TopCategories          []CategoryBucket `json:"topCategories"`
}

// OrganizationDonationStats is the received-value summary of an organization
// across direct and campaign-tagged donations.
type OrganizationDonationStats struct {
	OrganizationID         string           `json:"organizationId"`
	CampaignCount          int              `json:"campaignCount"`
	TotalCashAmount        float64          `json:"totalCashAmount"`
	TotalCashDonations     int              `json:"totalCashDonations"`
	TotalEstimatedValue    float64          `json:"totalEstimatedValue"`
	TotalPhysicalDonations int              `json:"totalPhysicalDonations"`
	TopCategories          []CategoryBucket `json:"topCategories"`
}
