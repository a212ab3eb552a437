package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/donation-hub-go/models"
)

// Memory is a goroutine-safe in-memory Store with the same query semantics as Mongo.
type Memory struct {
	mu            sync.RWMutex
	users         []models.User
	organizations []models.Organization
	campaigns     []models.Campaign
	donations     []models.Donation
	physical      []models.PhysicalDonation
	subscriptions []models.Subscription
}

func NewMemory() *Memory {
	return &Memory{}
}

// ---------------- MATCHERS ----------------

func matchDonor(donorID, rowDonor primitive.ObjectID, email, rowEmail string) bool {
	if !donorID.IsZero() && donorID == rowDonor {
		return true
	}
	return email != "" && strings.EqualFold(email, rowEmail)
}

func matchOrganization(orgID primitive.ObjectID, tagged *primitive.ObjectID, tt models.TargetType, targetID string) bool {
	if tagged != nil && *tagged == orgID {
		return true
	}
	return tt == models.TargetOrganization && targetID == orgID.Hex()
}

func matchCampaigns(ids []primitive.ObjectID, tagged *primitive.ObjectID, tt models.TargetType, targetID string) bool {
	for _, id := range ids {
		if tagged != nil && *tagged == id {
			return true
		}
		if tt == models.TargetCampaign && targetID == id.Hex() {
			return true
		}
	}
	return false
}

// ---------------- CASH ----------------

func (m *Memory) cashWhere(pred func(models.Donation) bool) []models.Donation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Donation
	for _, d := range m.donations {
		if pred(d) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *Memory) CashDonationsByDonor(_ context.Context, donorID primitive.ObjectID, email string) ([]models.Donation, error) {
	return m.cashWhere(func(d models.Donation) bool {
		return matchDonor(donorID, d.DonorID, email, d.DonorEmail)
	}), nil
}

func (m *Memory) CashDonationsByOrganization(_ context.Context, orgID primitive.ObjectID) ([]models.Donation, error) {
	return m.cashWhere(func(d models.Donation) bool {
		return matchOrganization(orgID, d.OrganizationID, d.TargetType, d.TargetID)
	}), nil
}

func (m *Memory) CashDonationsByCampaigns(_ context.Context, ids []primitive.ObjectID) ([]models.Donation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return m.cashWhere(func(d models.Donation) bool {
		return matchCampaigns(ids, d.CampaignID, d.TargetType, d.TargetID)
	}), nil
}

func (m *Memory) InsertDonation(_ context.Context, d *models.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	m.donations = append(m.donations, *d)
	return nil
}

// ---------------- PHYSICAL ----------------

func clonePhysical(d models.PhysicalDonation) models.PhysicalDonation {
	d.Items = append([]models.DonationItem(nil), d.Items...)
	return d
}

func (m *Memory) physicalWhere(pred func(models.PhysicalDonation) bool) []models.PhysicalDonation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.PhysicalDonation
	for _, d := range m.physical {
		if pred(d) {
			out = append(out, clonePhysical(d))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *Memory) PhysicalDonationsByDonor(_ context.Context, donorID primitive.ObjectID, email string) ([]models.PhysicalDonation, error) {
	return m.physicalWhere(func(d models.PhysicalDonation) bool {
		return matchDonor(donorID, d.DonorID, email, d.DonorEmail)
	}), nil
}

func (m *Memory) PhysicalDonationsByOrganization(_ context.Context, orgID primitive.ObjectID) ([]models.PhysicalDonation, error) {
	return m.physicalWhere(func(d models.PhysicalDonation) bool {
		return matchOrganization(orgID, d.OrganizationID, d.TargetType, d.TargetID)
	}), nil
}

func (m *Memory) PhysicalDonationsByCampaigns(_ context.Context, ids []primitive.ObjectID) ([]models.PhysicalDonation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return m.physicalWhere(func(d models.PhysicalDonation) bool {
		return matchCampaigns(ids, d.CampaignID, d.TargetType, d.TargetID)
	}), nil
}

func (m *Memory) InsertPhysicalDonation(_ context.Context, d *models.PhysicalDonation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	for i := range d.Items {
		if d.Items[i].ID.IsZero() {
			d.Items[i].ID = primitive.NewObjectID()
		}
		d.Items[i].PhysicalDonationID = d.ID
	}
	m.physical = append(m.physical, clonePhysical(*d))
	return nil
}

func (m *Memory) GetPhysicalDonation(_ context.Context, id primitive.ObjectID) (*models.PhysicalDonation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.physical {
		if d.ID == id {
			cp := clonePhysical(d)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdatePhysicalStatus(_ context.Context, id primitive.ObjectID, status models.PhysicalStatus, notes string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.physical {
		if m.physical[i].ID == id {
			m.physical[i].Status = status
			if notes != "" {
				m.physical[i].CoordinatorNotes = notes
			}
			m.physical[i].UpdatedAt = at
			return nil
		}
	}
	return ErrNotFound
}

// ---------------- CAMPAIGNS ----------------

func (m *Memory) InsertCampaign(_ context.Context, c *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	m.campaigns = append(m.campaigns, *c)
	return nil
}

func (m *Memory) GetCampaign(_ context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.campaigns {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListCampaigns(_ context.Context, f CampaignFilter) ([]models.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(f.Query)
	var out []models.Campaign
	for _, c := range m.campaigns {
		if f.OrganizationID != nil && c.OrganizationID != *f.OrganizationID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Title), q) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CampaignsByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Campaign, error) {
	return m.ListCampaigns(ctx, CampaignFilter{OrganizationID: &orgID})
}

func (m *Memory) ReplaceCampaign(_ context.Context, c *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.campaigns {
		if m.campaigns[i].ID == c.ID {
			m.campaigns[i] = *c
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) DeleteCampaign(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			m.campaigns = append(m.campaigns[:i], m.campaigns[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) IncrementCampaignRaised(_ context.Context, id primitive.ObjectID, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			m.campaigns[i].RaisedAmount += amount
			m.campaigns[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

// ---------------- ORGANIZATIONS ----------------

func (m *Memory) InsertOrganization(_ context.Context, o *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	m.organizations = append(m.organizations, *o)
	return nil
}

func (m *Memory) GetOrganization(_ context.Context, id primitive.ObjectID) (*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, o := range m.organizations {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListOrganizations(_ context.Context, query string) ([]models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(query)
	var out []models.Organization
	for _, o := range m.organizations {
		if q != "" && !strings.Contains(strings.ToLower(o.Name), q) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) ReplaceOrganization(_ context.Context, o *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.organizations {
		if m.organizations[i].ID == o.ID {
			m.organizations[i] = *o
			return nil
		}
	}
	return ErrNotFound
}

// ---------------- SUBSCRIPTIONS ----------------

func (m *Memory) InsertSubscription(_ context.Context, s *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	m.subscriptions = append(m.subscriptions, *s)
	return nil
}

func (m *Memory) GetSubscription(_ context.Context, id primitive.ObjectID) (*models.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.subscriptions {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SubscriptionsByDonor(_ context.Context, donorID primitive.ObjectID) ([]models.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Subscription
	for _, s := range m.subscriptions {
		if s.DonorID == donorID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateSubscriptionStatus(_ context.Context, id primitive.ObjectID, status string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.subscriptions {
		if m.subscriptions[i].ID == id {
			m.subscriptions[i].Status = status
			m.subscriptions[i].UpdatedAt = at
			return nil
		}
	}
	return ErrNotFound
}

// ---------------- USERS ----------------

func (m *Memory) InsertUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.users = append(m.users, *u)
	return nil
}

func (m *Memory) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

var _ Store = (*Memory)(nil)
