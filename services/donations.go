package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	models "github.com/phillip/donation-hub-go/models"
	"github.com/phillip/donation-hub-go/payments"
	"github.com/phillip/donation-hub-go/store"
)

const generalFundName = "General Fund"

// PaymentGateway is satisfied by *payments.Simulator.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, in payments.IntentInput) (*payments.Intent, error)
	Confirm(ctx context.Context, intent *payments.Intent, method string) (payments.Result, error)
}

// Mailer sends HTML email. utils.ZeptoMailer implements it.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type DonationService struct {
	store    store.Store
	payments PaymentGateway
	mailer   Mailer
	log      *zap.Logger
	now      func() time.Time
}

func NewDonationService(s store.Store, gateway PaymentGateway, mailer Mailer, log *zap.Logger) *DonationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DonationService{store: s, payments: gateway, mailer: mailer, log: log, now: time.Now}
}

type CashDonationInput struct {
	TargetType    string  `json:"target_type" binding:"required,oneof=campaign organization general"`
	TargetID      string  `json:"target_id"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Currency      string  `json:"currency"`
	Message       string  `json:"message" binding:"max=500"`
	IsAnonymous   bool    `json:"is_anonymous"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	IsRecurring   bool    `json:"is_recurring"`
	Interval      string  `json:"interval" binding:"omitempty,oneof=monthly quarterly yearly"`
}

type ItemInput struct {
	ItemName              string  `json:"item_name" binding:"required"`
	Category              string  `json:"category"`
	Quantity              int     `json:"quantity" binding:"required,gt=0"`
	Unit                  string  `json:"unit"`
	Condition             string  `json:"condition" binding:"omitempty,oneof=new like_new good fair"`
	EstimatedValuePerUnit float64 `json:"estimated_value_per_unit" binding:"gte=0"`
}

type PhysicalDonationInput struct {
	TargetType       string      `json:"target_type" binding:"required,oneof=campaign organization general"`
	TargetID         string      `json:"target_id"`
	Items            []ItemInput `json:"items" binding:"required,min=1,dive"`
	Message          string      `json:"message" binding:"max=500"`
	IsAnonymous      bool        `json:"is_anonymous"`
	PickupPreference string      `json:"pickup_preference" binding:"omitempty,oneof=pickup dropoff"`
	PickupAddress    string      `json:"pickup_address"`
	PickupDate       *time.Time  `json:"pickup_date"`
}

// target is a resolved donation recipient.
type target struct {
	kind       models.TargetType
	id         string
	name       string
	orgID      *primitive.ObjectID
	campaignID *primitive.ObjectID
}

func (s *DonationService) resolveTarget(ctx context.Context, kind, rawID string) (target, error) {
	switch models.TargetType(kind) {
	case models.TargetGeneral:
		return target{kind: models.TargetGeneral, name: generalFundName}, nil

	case models.TargetCampaign:
		id, err := primitive.ObjectIDFromHex(rawID)
		if err != nil {
			return target{}, invalid("invalid campaign id")
		}
		c, err := s.store.GetCampaign(ctx, id)
		if err != nil {
			return target{}, notFoundOr(err, "load campaign")
		}
		if c.Status != models.CampaignActive {
			return target{}, invalid("campaign is not accepting donations")
		}
		orgID := c.OrganizationID
		return target{kind: models.TargetCampaign, id: c.ID.Hex(), name: c.Title, orgID: &orgID, campaignID: &c.ID}, nil

	case models.TargetOrganization:
		id, err := primitive.ObjectIDFromHex(rawID)
		if err != nil {
			return target{}, invalid("invalid organization id")
		}
		o, err := s.store.GetOrganization(ctx, id)
		if err != nil {
			return target{}, notFoundOr(err, "load organization")
		}
		return target{kind: models.TargetOrganization, id: o.ID.Hex(), name: o.Name, orgID: &o.ID}, nil
	}
	return target{}, invalid("unknown target type %q", kind)
}

// donorName prefers the account name and falls back to the email's local part.
func (s *DonationService) donorName(ctx context.Context, viewer *Viewer) string {
	if u, err := s.store.GetUser(ctx, viewer.UserID); err == nil && u.Name != "" {
		return u.Name
	}
	name, _, _ := strings.Cut(viewer.Email, "@")
	return name
}

// ---------------- CASH ----------------

// CreateCashDonation charges the donor through the payment gateway and records
// the donation. Nothing is persisted when the payment is declined.
func (s *DonationService) CreateCashDonation(ctx context.Context, viewer *Viewer, in CashDonationInput) (*models.Donation, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	if in.Amount <= 0 {
		return nil, invalid("amount must be greater than 0")
	}
	if !payments.ValidMethod(in.PaymentMethod) {
		return nil, invalid("unsupported payment method %q", in.PaymentMethod)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	tgt, err := s.resolveTarget(ctx, in.TargetType, in.TargetID)
	if err != nil {
		return nil, err
	}

	// --- Payment ---
	intent, err := s.payments.CreateIntent(ctx, payments.IntentInput{
		Amount:      in.Amount,
		Currency:    currency,
		Description: "Donation to " + tgt.name,
		DonorEmail:  viewer.Email,
	})
	if err != nil {
		if errors.Is(err, payments.ErrInvalidAmount) || errors.Is(err, payments.ErrInvalidCurrency) {
			return nil, invalid("%v", err)
		}
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	result, err := s.payments.Confirm(ctx, intent, in.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	if !result.Success {
		s.log.Info("payment declined",
			zap.String("intent_id", intent.ID),
			zap.String("donor_id", viewer.UserID.Hex()),
			zap.String("reason", result.Error))
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, result.Error)
	}

	// --- Save donation ---
	now := s.now()
	donation := &models.Donation{
		ID:              primitive.NewObjectID(),
		DonorID:         viewer.UserID,
		DonorName:       s.donorName(ctx, viewer),
		DonorEmail:      viewer.Email,
		IsAnonymous:     in.IsAnonymous,
		Amount:          in.Amount,
		Currency:        intent.Currency,
		Message:         strings.TrimSpace(in.Message),
		TargetType:      tgt.kind,
		TargetID:        tgt.id,
		TargetName:      tgt.name,
		OrganizationID:  tgt.orgID,
		CampaignID:      tgt.campaignID,
		Status:          models.CashSucceeded,
		PaymentIntentID: intent.ID,
		PaymentMethod:   in.PaymentMethod,
		TransactionID:   result.TransactionID,
		IsRecurring:     in.IsRecurring,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var sub *models.Subscription
	if in.IsRecurring {
		sub = newSubscription(donation, in.Interval, now)
		donation.SubscriptionID = &sub.ID
	}

	if err := s.store.InsertDonation(ctx, donation); err != nil {
		// the charge went through; keep enough context to reconcile by hand
		s.log.Error("donation insert failed after successful payment",
			zap.String("intent_id", intent.ID),
			zap.String("transaction_id", result.TransactionID),
			zap.Error(err))
		return nil, fmt.Errorf("save donation: %w", err)
	}

	if sub != nil {
		if err := s.store.InsertSubscription(ctx, sub); err != nil {
			s.log.Error("subscription insert failed", zap.String("donation_id", donation.ID.Hex()), zap.Error(err))
		}
	}
	if tgt.campaignID != nil {
		if err := s.store.IncrementCampaignRaised(ctx, *tgt.campaignID, donation.Amount); err != nil {
			s.log.Warn("campaign total not updated", zap.String("campaign_id", tgt.campaignID.Hex()), zap.Error(err))
		}
	}

	s.sendReceipt(ctx, donation)
	return donation, nil
}

func newSubscription(d *models.Donation, interval string, now time.Time) *models.Subscription {
	if interval == "" {
		interval = "monthly"
	}
	return &models.Subscription{
		ID:           primitive.NewObjectID(),
		DonorID:      d.DonorID,
		DonorEmail:   d.DonorEmail,
		Amount:       d.Amount,
		Currency:     d.Currency,
		Interval:     interval,
		TargetType:   d.TargetType,
		TargetID:     d.TargetID,
		TargetName:   d.TargetName,
		Status:       models.SubscriptionActive,
		NextChargeAt: nextCharge(now, interval),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func nextCharge(from time.Time, interval string) time.Time {
	switch interval {
	case "quarterly":
		return from.AddDate(0, 3, 0)
	case "yearly":
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

func (s *DonationService) sendReceipt(ctx context.Context, d *models.Donation) {
	if s.mailer == nil || d.DonorEmail == "" {
		return
	}
	subject := fmt.Sprintf("Thank you for your donation to %s", d.TargetName)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received your donation of <strong>%.2f %s</strong> to %s.</p><p>Reference: %s</p>",
		d.DonorName, d.Amount, d.Currency, d.TargetName, d.TransactionID,
	)
	if err := s.mailer.SendEmail(ctx, d.DonorEmail, subject, body); err != nil {
		s.log.Warn("receipt email failed", zap.String("donation_id", d.ID.Hex()), zap.Error(err))
	}
}

// ---------------- PHYSICAL ----------------

func (s *DonationService) CreatePhysicalDonation(ctx context.Context, viewer *Viewer, in PhysicalDonationInput) (*models.PhysicalDonation, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	if len(in.Items) == 0 {
		return nil, invalid("at least one item is required")
	}
	if in.PickupPreference == "pickup" && strings.TrimSpace(in.PickupAddress) == "" {
		return nil, invalid("pickup_address is required for pickup")
	}

	tgt, err := s.resolveTarget(ctx, in.TargetType, in.TargetID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var total moneySum
	items := make([]models.DonationItem, 0, len(in.Items))
	for i, it := range in.Items {
		if strings.TrimSpace(it.ItemName) == "" {
			return nil, invalid("item %d: item_name is required", i+1)
		}
		if it.Quantity <= 0 {
			return nil, invalid("item %d: quantity must be greater than 0", i+1)
		}
		if it.EstimatedValuePerUnit < 0 {
			return nil, invalid("item %d: estimated value cannot be negative", i+1)
		}
		line := lineTotal(it.Quantity, it.EstimatedValuePerUnit)
		total.Add(line)
		items = append(items, models.DonationItem{
			ItemName:              strings.TrimSpace(it.ItemName),
			Category:              strings.ToLower(strings.TrimSpace(it.Category)),
			Quantity:              it.Quantity,
			Unit:                  it.Unit,
			Condition:             it.Condition,
			EstimatedValuePerUnit: it.EstimatedValuePerUnit,
			TotalEstimatedValue:   line,
			CreatedAt:             now,
		})
	}

	donation := &models.PhysicalDonation{
		ID:               primitive.NewObjectID(),
		DonorID:          viewer.UserID,
		DonorName:        s.donorName(ctx, viewer),
		DonorEmail:       viewer.Email,
		IsAnonymous:      in.IsAnonymous,
		Message:          strings.TrimSpace(in.Message),
		TargetType:       tgt.kind,
		TargetID:         tgt.id,
		TargetName:       tgt.name,
		OrganizationID:   tgt.orgID,
		CampaignID:       tgt.campaignID,
		Status:           models.PhysicalPending,
		PickupPreference: in.PickupPreference,
		PickupAddress:    in.PickupAddress,
		PickupDate:       in.PickupDate,
		EstimatedValue:   total.Float(),
		Items:            items,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.InsertPhysicalDonation(ctx, donation); err != nil {
		return nil, fmt.Errorf("save physical donation: %w", err)
	}
	return donation, nil
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}
