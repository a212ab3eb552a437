package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	models "github.com/phillip/donation-hub-go/models"
)

// physicalTransitions lists the legal next states. received, cancelled and
// declined are terminal.
var physicalTransitions = map[models.PhysicalStatus][]models.PhysicalStatus{
	models.PhysicalPending:   {models.PhysicalConfirmed, models.PhysicalDeclined, models.PhysicalCancelled},
	models.PhysicalConfirmed: {models.PhysicalInTransit, models.PhysicalCancelled, models.PhysicalDeclined},
	models.PhysicalInTransit: {models.PhysicalReceived},
}

func CanTransition(from, to models.PhysicalStatus) bool {
	for _, next := range physicalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// owningOrganization finds the organization responsible for a physical donation.
func (s *DonationService) owningOrganization(ctx context.Context, d *models.PhysicalDonation) (primitive.ObjectID, bool) {
	if d.OrganizationID != nil {
		return *d.OrganizationID, true
	}
	switch d.TargetType {
	case models.TargetOrganization:
		id, err := primitive.ObjectIDFromHex(d.TargetID)
		return id, err == nil
	case models.TargetCampaign:
		campaignID := d.CampaignID
		if campaignID == nil {
			id, err := primitive.ObjectIDFromHex(d.TargetID)
			if err != nil {
				return primitive.NilObjectID, false
			}
			campaignID = &id
		}
		c, err := s.store.GetCampaign(ctx, *campaignID)
		if err != nil {
			return primitive.NilObjectID, false
		}
		return c.OrganizationID, true
	}
	return primitive.NilObjectID, false
}

// UpdatePhysicalStatus moves a physical donation along its lifecycle.
// The receiving organization (or an admin) drives it; the donor may only
// cancel while it is still pending.
func (s *DonationService) UpdatePhysicalStatus(ctx context.Context, viewer *Viewer, id string, status models.PhysicalStatus, notes string) (*models.PhysicalDonation, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, invalid("invalid donation id")
	}
	if !status.Valid() {
		return nil, invalid("unknown status %q", status)
	}

	donation, err := s.store.GetPhysicalDonation(ctx, oid)
	if err != nil {
		return nil, notFoundOr(err, "load physical donation")
	}

	if !s.mayUpdatePhysical(ctx, viewer, donation, status) {
		return nil, ErrForbidden
	}
	if !CanTransition(donation.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, donation.Status, status)
	}

	if err := s.store.UpdatePhysicalStatus(ctx, oid, status, notes, s.now()); err != nil {
		return nil, notFoundOr(err, "update physical donation")
	}
	s.log.Info("physical donation status changed",
		zap.String("donation_id", id),
		zap.String("from", string(donation.Status)),
		zap.String("to", string(status)),
		zap.String("by", viewer.UserID.Hex()))

	return s.store.GetPhysicalDonation(ctx, oid)
}

func (s *DonationService) mayUpdatePhysical(ctx context.Context, viewer *Viewer, d *models.PhysicalDonation, to models.PhysicalStatus) bool {
	if viewer.IsAdmin() {
		return true
	}
	if orgID, ok := s.owningOrganization(ctx, d); ok {
		if org, err := s.store.GetOrganization(ctx, orgID); err == nil && org.OwnerID == viewer.UserID {
			return true
		}
	}
	return d.DonorID == viewer.UserID && d.Status == models.PhysicalPending && to == models.PhysicalCancelled
}
