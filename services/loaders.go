package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	models "github.com/phillip/donation-hub-go/models"
	"github.com/phillip/donation-hub-go/store"
)

type scopeKind int

const (
	scopeNone scopeKind = iota
	scopeOrganization
	scopeCampaign
	scopeDonor
)

func (k scopeKind) String() string {
	switch k {
	case scopeOrganization:
		return "organization"
	case scopeCampaign:
		return "campaign"
	case scopeDonor:
		return "donor"
	}
	return "none"
}

// scope is the resolved query context. Only one branch is ever evaluated.
type scope struct {
	kind        scopeKind
	orgID       primitive.ObjectID
	campaignIDs []primitive.ObjectID
	donorID     primitive.ObjectID
	donorEmail  string
}

// HistoryStore is what the history pipeline reads.
type HistoryStore interface {
	store.DonationReader
	CampaignsByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Campaign, error)
}

// unionByID concatenates lists keeping the first occurrence of every id.
func unionByID[T any](id func(T) primitive.ObjectID, lists ...[]T) []T {
	seen := make(map[primitive.ObjectID]struct{})
	var out []T
	for _, list := range lists {
		for _, row := range list {
			key := id(row)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, row)
		}
	}
	return out
}

func cashID(d models.Donation) primitive.ObjectID             { return d.ID }
func physicalID(d models.PhysicalDonation) primitive.ObjectID { return d.ID }

// organizationCampaignIDs resolves the campaigns owned by orgID. A failed
// lookup degrades to "no campaigns" so org-tagged rows are still returned.
func (s *HistoryService) organizationCampaignIDs(ctx context.Context, orgID primitive.ObjectID) []primitive.ObjectID {
	campaigns, err := s.store.CampaignsByOrganization(ctx, orgID)
	if err != nil {
		s.log.Warn("campaign lookup failed", zap.String("organization_id", orgID.Hex()), zap.Error(err))
		return nil
	}
	ids := make([]primitive.ObjectID, len(campaigns))
	for i, c := range campaigns {
		ids[i] = c.ID
	}
	return ids
}

// loadCash never fails: store errors are logged and the failed query
// contributes no rows. In organization scope the org-tagged and
// campaign-tagged queries degrade independently.
func (s *HistoryService) loadCash(ctx context.Context, sc scope) []models.Donation {
	var (
		rows []models.Donation
		err  error
	)
	switch sc.kind {
	case scopeOrganization:
		var direct, viaCampaigns []models.Donation
		direct, err = s.store.CashDonationsByOrganization(ctx, sc.orgID)
		if err != nil {
			direct = nil
		}
		viaCampaigns, campaignErr := s.store.CashDonationsByCampaigns(ctx, sc.campaignIDs)
		if campaignErr != nil {
			viaCampaigns = nil
			s.log.Error("campaign cash donation fetch failed", zap.Stringer("scope", sc.kind), zap.Error(campaignErr))
		}
		rows = unionByID(cashID, direct, viaCampaigns)
	case scopeCampaign:
		rows, err = s.store.CashDonationsByCampaigns(ctx, sc.campaignIDs)
	case scopeDonor:
		rows, err = s.store.CashDonationsByDonor(ctx, sc.donorID, sc.donorEmail)
	}
	if err != nil {
		s.log.Error("cash donation fetch failed", zap.Stringer("scope", sc.kind), zap.Error(err))
	}
	return rows
}

func (s *HistoryService) loadPhysical(ctx context.Context, sc scope) []models.PhysicalDonation {
	var (
		rows []models.PhysicalDonation
		err  error
	)
	switch sc.kind {
	case scopeOrganization:
		var direct, viaCampaigns []models.PhysicalDonation
		direct, err = s.store.PhysicalDonationsByOrganization(ctx, sc.orgID)
		if err != nil {
			direct = nil
		}
		viaCampaigns, campaignErr := s.store.PhysicalDonationsByCampaigns(ctx, sc.campaignIDs)
		if campaignErr != nil {
			viaCampaigns = nil
			s.log.Error("campaign physical donation fetch failed", zap.Stringer("scope", sc.kind), zap.Error(campaignErr))
		}
		rows = unionByID(physicalID, direct, viaCampaigns)
	case scopeCampaign:
		rows, err = s.store.PhysicalDonationsByCampaigns(ctx, sc.campaignIDs)
	case scopeDonor:
		rows, err = s.store.PhysicalDonationsByDonor(ctx, sc.donorID, sc.donorEmail)
	}
	if err != nil {
		s.log.Error("physical donation fetch failed", zap.Stringer("scope", sc.kind), zap.Error(err))
	}
	return rows
}
