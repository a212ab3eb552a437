package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	models "github.com/phillip/donation-hub-go/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// HistoryQuery selects a donation context. Precedence when several are set:
// OrganizationID, then CampaignID, then UserID/DonorEmail.
type HistoryQuery struct {
	UserID         string
	DonorEmail     string
	OrganizationID string
	CampaignID     string

	// Viewer is the authenticated caller, nil when anonymous.
	Viewer *Viewer

	Filters  Filters
	Sorting  Sorting
	Page     int
	PageSize int
}

type HistoryResult struct {
	Donations  []models.UnifiedDonation `json:"donations"`
	TotalCount int                      `json:"totalCount"`
	Stats      models.DonationStats     `json:"stats"`
	HasMore    bool                     `json:"hasMore"`
	Error      string                   `json:"error,omitempty"`
}

type HistoryService struct {
	store HistoryStore
	log   *zap.Logger
}

func NewHistoryService(s HistoryStore, log *zap.Logger) *HistoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &HistoryService{store: s, log: log}
}

func emptyResult(msg string) HistoryResult {
	return HistoryResult{
		Donations: []models.UnifiedDonation{},
		Stats:     CalculateStats(nil),
		Error:     msg,
	}
}

// resolveScope picks the single context branch for q. The returned message is
// non-empty when q cannot be served (bad id, missing or wrong identity).
func (s *HistoryService) resolveScope(ctx context.Context, q HistoryQuery) (scope, string) {
	switch {
	case q.OrganizationID != "":
		orgID, err := primitive.ObjectIDFromHex(q.OrganizationID)
		if err != nil {
			return scope{}, "invalid organization id"
		}
		return scope{
			kind:        scopeOrganization,
			orgID:       orgID,
			campaignIDs: s.organizationCampaignIDs(ctx, orgID),
		}, ""

	case q.CampaignID != "":
		campaignID, err := primitive.ObjectIDFromHex(q.CampaignID)
		if err != nil {
			return scope{}, "invalid campaign id"
		}
		return scope{kind: scopeCampaign, campaignIDs: []primitive.ObjectID{campaignID}}, ""

	case q.UserID != "" || q.DonorEmail != "":
		if q.Viewer == nil {
			return scope{}, ErrUnauthenticated.Error()
		}
		sc := scope{kind: scopeDonor, donorEmail: strings.ToLower(strings.TrimSpace(q.DonorEmail))}
		if q.UserID != "" {
			donorID, err := primitive.ObjectIDFromHex(q.UserID)
			if err != nil {
				return scope{}, "invalid user id"
			}
			sc.donorID = donorID
		}
		if !q.Viewer.IsAdmin() {
			if !sc.donorID.IsZero() && sc.donorID != q.Viewer.UserID {
				return scope{}, ErrForbidden.Error()
			}
			if sc.donorEmail != "" && !strings.EqualFold(sc.donorEmail, q.Viewer.Email) {
				return scope{}, ErrForbidden.Error()
			}
		}
		return sc, ""
	}
	return scope{kind: scopeNone}, ""
}

// GetDonationHistory merges cash and physical donations for one context,
// filters, sorts and paginates them. Stats describe the whole filtered set,
// not just the returned page. It never fails: store errors degrade to an
// empty source and context problems are reported in HistoryResult.Error.
func (s *HistoryService) GetDonationHistory(ctx context.Context, q HistoryQuery) HistoryResult {
	sc, msg := s.resolveScope(ctx, q)
	if msg != "" {
		return emptyResult(msg)
	}
	if sc.kind == scopeNone {
		return emptyResult("")
	}

	all := s.fetchUnified(ctx, sc, q.Viewer)

	filtered := FilterDonations(all, q.Filters)
	sorted := SortDonations(filtered, q.Sorting)

	page, pageSize := normalizePage(q.Page, q.PageSize)

	return HistoryResult{
		Donations:  Paginate(sorted, page, pageSize),
		TotalCount: len(sorted),
		Stats:      CalculateStats(sorted),
		HasMore:    hasMorePages(len(sorted), page, pageSize),
	}
}

// fetchRows runs both source loaders concurrently and waits for both.
func (s *HistoryService) fetchRows(ctx context.Context, sc scope) ([]models.Donation, []models.PhysicalDonation) {
	var (
		cash     []models.Donation
		physical []models.PhysicalDonation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cash = s.loadCash(gctx, sc)
		return nil
	})
	g.Go(func() error {
		physical = s.loadPhysical(gctx, sc)
		return nil
	})
	_ = g.Wait()
	return cash, physical
}

func (s *HistoryService) fetchUnified(ctx context.Context, sc scope, viewer *Viewer) []models.UnifiedDonation {
	cash, physical := s.fetchRows(ctx, sc)

	all := make([]models.UnifiedDonation, 0, len(cash)+len(physical))
	for _, d := range cash {
		all = append(all, FromCash(d, viewer))
	}
	for _, d := range physical {
		all = append(all, FromPhysical(d, viewer))
	}
	return all
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
