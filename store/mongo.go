package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/donation-hub-go/models"
)

const (
	colUsers             = "users"
	colOrganizations     = "organizations"
	colCampaigns         = "campaigns"
	colDonations         = "donations"
	colPhysicalDonations = "physical_donations"
	colDonationItems     = "donation_items"
	colSubscriptions     = "subscriptions"
)

// Mongo implements Store on a MongoDB database.
type Mongo struct {
	db      *mongo.Database
	timeout time.Duration
}

func NewMongo(client *mongo.Client, dbName string) *Mongo {
	return &Mongo{db: client.Database(dbName), timeout: 10 * time.Second}
}

func (m *Mongo) col(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// EnsureIndexes creates the lookup indexes used by the donation queries.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colCampaigns: {
			{Keys: bson.D{{Key: "organization_id", Value: 1}}},
		},
		colDonations: {
			{Keys: bson.D{{Key: "donor_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "organization_id", Value: 1}}},
			{Keys: bson.D{{Key: "campaign_id", Value: 1}}},
			{Keys: bson.D{{Key: "target_type", Value: 1}, {Key: "target_id", Value: 1}}},
		},
		colPhysicalDonations: {
			{Keys: bson.D{{Key: "donor_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "organization_id", Value: 1}}},
			{Keys: bson.D{{Key: "campaign_id", Value: 1}}},
			{Keys: bson.D{{Key: "target_type", Value: 1}, {Key: "target_id", Value: 1}}},
		},
		colDonationItems: {
			{Keys: bson.D{{Key: "physical_donation_id", Value: 1}}},
		},
		colSubscriptions: {
			{Keys: bson.D{{Key: "donor_id", Value: 1}}},
		},
	}
	for name, idx := range specs {
		if _, err := m.col(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// ---------------- FILTERS ----------------

func donorFilter(donorID primitive.ObjectID, email string) bson.M {
	or := bson.A{}
	if !donorID.IsZero() {
		or = append(or, bson.M{"donor_id": donorID})
	}
	if email != "" {
		or = append(or, bson.M{"donor_email": email})
	}
	if len(or) == 0 {
		return nil
	}
	return bson.M{"$or": or}
}

func organizationFilter(orgID primitive.ObjectID) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"organization_id": orgID},
		bson.M{"target_type": models.TargetOrganization, "target_id": orgID.Hex()},
	}}
}

func campaignsFilter(ids []primitive.ObjectID) bson.M {
	if len(ids) == 0 {
		return nil
	}
	hexes := make([]string, len(ids))
	for i, id := range ids {
		hexes[i] = id.Hex()
	}
	return bson.M{"$or": bson.A{
		bson.M{"campaign_id": bson.M{"$in": ids}},
		bson.M{"target_type": models.TargetCampaign, "target_id": bson.M{"$in": hexes}},
	}}
}

// ---------------- CASH ----------------

func (m *Mongo) findCash(ctx context.Context, filter bson.M) ([]models.Donation, error) {
	if filter == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.col(colDonations).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find donations: %w", err)
	}
	var out []models.Donation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode donations: %w", err)
	}
	return out, nil
}

func (m *Mongo) CashDonationsByDonor(ctx context.Context, donorID primitive.ObjectID, email string) ([]models.Donation, error) {
	return m.findCash(ctx, donorFilter(donorID, email))
}

func (m *Mongo) CashDonationsByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Donation, error) {
	return m.findCash(ctx, organizationFilter(orgID))
}

func (m *Mongo) CashDonationsByCampaigns(ctx context.Context, campaignIDs []primitive.ObjectID) ([]models.Donation, error) {
	return m.findCash(ctx, campaignsFilter(campaignIDs))
}

func (m *Mongo) InsertDonation(ctx context.Context, d *models.Donation) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if _, err := m.col(colDonations).InsertOne(ctx, d); err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

// ---------------- PHYSICAL ----------------

func (m *Mongo) findPhysical(ctx context.Context, filter bson.M) ([]models.PhysicalDonation, error) {
	if filter == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         colDonationItems,
			"localField":   "_id",
			"foreignField": "physical_donation_id",
			"as":           "items",
		}}},
	}
	cursor, err := m.col(colPhysicalDonations).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate physical donations: %w", err)
	}
	var out []models.PhysicalDonation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode physical donations: %w", err)
	}
	return out, nil
}

func (m *Mongo) PhysicalDonationsByDonor(ctx context.Context, donorID primitive.ObjectID, email string) ([]models.PhysicalDonation, error) {
	return m.findPhysical(ctx, donorFilter(donorID, email))
}

func (m *Mongo) PhysicalDonationsByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.PhysicalDonation, error) {
	return m.findPhysical(ctx, organizationFilter(orgID))
}

func (m *Mongo) PhysicalDonationsByCampaigns(ctx context.Context, campaignIDs []primitive.ObjectID) ([]models.PhysicalDonation, error) {
	return m.findPhysical(ctx, campaignsFilter(campaignIDs))
}

func (m *Mongo) InsertPhysicalDonation(ctx context.Context, d *models.PhysicalDonation) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	items := d.Items
	row := *d
	row.Items = nil
	if _, err := m.col(colPhysicalDonations).InsertOne(ctx, row); err != nil {
		return fmt.Errorf("insert physical donation: %w", err)
	}

	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, len(items))
	for i := range items {
		if items[i].ID.IsZero() {
			items[i].ID = primitive.NewObjectID()
		}
		items[i].PhysicalDonationID = d.ID
		docs[i] = items[i]
	}
	if _, err := m.col(colDonationItems).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert donation items: %w", err)
	}
	return nil
}

func (m *Mongo) GetPhysicalDonation(ctx context.Context, id primitive.ObjectID) (*models.PhysicalDonation, error) {
	rows, err := m.findPhysical(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (m *Mongo) UpdatePhysicalStatus(ctx context.Context, id primitive.ObjectID, status models.PhysicalStatus, notes string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	update := bson.M{"status": status, "updated_at": at}
	if notes != "" {
		update["coordinator_notes"] = notes
	}
	res, err := m.col(colPhysicalDonations).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("update physical donation: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------- CAMPAIGNS ----------------

func (m *Mongo) InsertCampaign(ctx context.Context, c *models.Campaign) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := m.col(colCampaigns).InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (m *Mongo) GetCampaign(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var c models.Campaign
	if err := m.col(colCampaigns).FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (m *Mongo) ListCampaigns(ctx context.Context, f CampaignFilter) ([]models.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	filter := bson.M{}
	if f.OrganizationID != nil {
		filter["organization_id"] = *f.OrganizationID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Query != "" {
		filter["title"] = bson.M{"$regex": f.Query, "$options": "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.col(colCampaigns).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find campaigns: %w", err)
	}
	var out []models.Campaign
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode campaigns: %w", err)
	}
	return out, nil
}

func (m *Mongo) CampaignsByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Campaign, error) {
	return m.ListCampaigns(ctx, CampaignFilter{OrganizationID: &orgID})
}

func (m *Mongo) ReplaceCampaign(ctx context.Context, c *models.Campaign) error {
	return m.replace(ctx, colCampaigns, c.ID, c)
}

func (m *Mongo) DeleteCampaign(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.col(colCampaigns).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) IncrementCampaignRaised(ctx context.Context, id primitive.ObjectID, amount float64) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.col(colCampaigns).UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"raised_amount": amount},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("increment raised amount: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------- ORGANIZATIONS ----------------

func (m *Mongo) InsertOrganization(ctx context.Context, o *models.Organization) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if _, err := m.col(colOrganizations).InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (m *Mongo) GetOrganization(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var o models.Organization
	if err := m.col(colOrganizations).FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (m *Mongo) ListOrganizations(ctx context.Context, query string) ([]models.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	filter := bson.M{}
	if query != "" {
		filter["name"] = bson.M{"$regex": query, "$options": "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := m.col(colOrganizations).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find organizations: %w", err)
	}
	var out []models.Organization
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode organizations: %w", err)
	}
	return out, nil
}

func (m *Mongo) ReplaceOrganization(ctx context.Context, o *models.Organization) error {
	return m.replace(ctx, colOrganizations, o.ID, o)
}

// ---------------- SUBSCRIPTIONS ----------------

func (m *Mongo) InsertSubscription(ctx context.Context, s *models.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if _, err := m.col(colSubscriptions).InsertOne(ctx, s); err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (m *Mongo) GetSubscription(ctx context.Context, id primitive.ObjectID) (*models.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var s models.Subscription
	if err := m.col(colSubscriptions).FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (m *Mongo) SubscriptionsByDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.col(colSubscriptions).Find(ctx, bson.M{"donor_id": donorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find subscriptions: %w", err)
	}
	var out []models.Subscription
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}
	return out, nil
}

func (m *Mongo) UpdateSubscriptionStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.col(colSubscriptions).UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": at}})
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------- USERS ----------------

func (m *Mongo) InsertUser(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := m.col(colUsers).InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (m *Mongo) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var u models.User
	if err := m.col(colUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (m *Mongo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var u models.User
	if err := m.col(colUsers).FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ---------------- HELPERS ----------------

func (m *Mongo) replace(ctx context.Context, collection string, id primitive.ObjectID, doc interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.col(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

var _ Store = (*Mongo)(nil)
