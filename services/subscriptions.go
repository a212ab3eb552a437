package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/donation-hub-go/models"
)

func (s *DonationService) ListSubscriptions(ctx context.Context, viewer *Viewer) ([]models.Subscription, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	subs, err := s.store.SubscriptionsByDonor(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	return subs, nil
}

// CancelSubscription stops future charges. Cancelling twice is an error.
func (s *DonationService) CancelSubscription(ctx context.Context, viewer *Viewer, id string) (*models.Subscription, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, invalid("invalid subscription id")
	}
	sub, err := s.store.GetSubscription(ctx, oid)
	if err != nil {
		return nil, notFoundOr(err, "load subscription")
	}
	if sub.DonorID != viewer.UserID && !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	if sub.Status != models.SubscriptionActive {
		return nil, invalid("subscription is already %s", sub.Status)
	}

	now := s.now()
	if err := s.store.UpdateSubscriptionStatus(ctx, oid, models.SubscriptionCancelled, now); err != nil {
		return nil, notFoundOr(err, "cancel subscription")
	}
	sub.Status = models.SubscriptionCancelled
	sub.UpdatedAt = now
	return sub, nil
}
