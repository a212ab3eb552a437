package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	models "github.com/phillip/donation-hub-go/models"
	"github.com/phillip/donation-hub-go/services"
	"github.com/phillip/donation-hub-go/store"
	utils "github.com/phillip/donation-hub-go/utils"
)

func parseOptionalDate(field string, raw *string) (*time.Time, string) {
	if raw == nil || *raw == "" {
		return nil, ""
	}
	t, _, err := utils.ParseDate(*raw)
	if err != nil {
		return nil, "invalid " + field + " format, use RFC3339 or YYYY-MM-DD"
	}
	return &t, ""
}

func validCampaignStatus(s string) bool {
	switch s {
	case models.CampaignActive, models.CampaignPaused, models.CampaignCompleted:
		return true
	}
	return false
}

// ---------------- CREATE ----------------
func CreateCampaign(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Bind form fields ---
		var input struct {
			OrganizationID string  `form:"organization_id" json:"organization_id" binding:"required"`
			Title          string  `form:"title" json:"title" binding:"required"`
			Description    string  `form:"description" json:"description"`
			GoalAmount     float64 `form:"goal_amount" json:"goal_amount" binding:"gte=0"`
			StartDate      *string `form:"start_date" json:"start_date"` // string for binding, convert later
			EndDate        *string `form:"end_date" json:"end_date"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		orgID, err := primitive.ObjectIDFromHex(input.OrganizationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
			return
		}

		// --- Parse dates ---
		start, msg := parseOptionalDate("start_date", input.StartDate)
		if msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		end, msg := parseOptionalDate("end_date", input.EndDate)
		if msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		if start != nil && end != nil && end.Before(*start) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date is before start_date"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if _, err := services.CanManageOrganization(ctx, d.Store, viewerFrom(c), orgID); err != nil {
			d.respondError(c, err, "could not load organization")
			return
		}

		// --- Handle image upload ---
		imageURL, ok := d.uploadImage(c, "image", utils.FolderCampaignImages)
		if !ok {
			return
		}

		// --- Save campaign ---
		now := time.Now()
		campaign := &models.Campaign{
			ID:             primitive.NewObjectID(),
			OrganizationID: orgID,
			Title:          strings.TrimSpace(input.Title),
			Description:    input.Description,
			GoalAmount:     input.GoalAmount,
			Status:         models.CampaignActive,
			ImageURL:       imageURL,
			StartDate:      start,
			EndDate:        end,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := d.Store.InsertCampaign(ctx, campaign); err != nil {
			d.dropImage(ctx, imageURL)
			d.respondError(c, err, "could not create campaign")
			return
		}

		c.JSON(http.StatusCreated, campaign)
	}
}

// ---------------- LIST ----------------
func ListCampaigns(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Build filter ---
		filter := store.CampaignFilter{Query: c.Query("q"), Status: c.Query("status")}
		if orgID := c.Query("organization_id"); orgID != "" {
			oid, err := primitive.ObjectIDFromHex(orgID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
				return
			}
			filter.OrganizationID = &oid
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		campaigns, err := d.Store.ListCampaigns(ctx, filter)
		if err != nil {
			d.respondError(c, err, "could not fetch campaigns")
			return
		}
		if len(campaigns) == 0 {
			c.JSON(http.StatusOK, []models.Campaign{})
			return
		}

		versions := make([]utils.Version, len(campaigns))
		for i, cp := range campaigns {
			versions[i] = utils.Version{ID: cp.ID, UpdatedAt: cp.UpdatedAt}
		}
		if utils.ListNotModified(c, versions) {
			return
		}

		c.JSON(http.StatusOK, campaigns)
	}
}

// ---------------- GET ----------------
func GetCampaign(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		campaign, err := d.Store.GetCampaign(ctx, oid)
		if err != nil {
			d.respondError(c, err, "could not fetch campaign")
			return
		}
		if utils.NotModified(c, campaign.ID, campaign.UpdatedAt) {
			return
		}

		c.JSON(http.StatusOK, campaign)
	}
}

// loadManagedCampaign fetches the campaign at :id and checks the caller runs its organization.
func (d *Deps) loadManagedCampaign(c *gin.Context) (*models.Campaign, bool) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return nil, false
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	campaign, err := d.Store.GetCampaign(ctx, oid)
	if err != nil {
		d.respondError(c, err, "could not fetch campaign")
		return nil, false
	}
	if _, err := services.CanManageOrganization(ctx, d.Store, viewerFrom(c), campaign.OrganizationID); err != nil {
		d.respondError(c, err, "could not load organization")
		return nil, false
	}
	return campaign, true
}

// ---------------- UPDATE ----------------
func UpdateCampaign(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaign, ok := d.loadManagedCampaign(c)
		if !ok {
			return
		}

		var input struct {
			Title       *string  `form:"title" json:"title"`
			Description *string  `form:"description" json:"description"`
			GoalAmount  *float64 `form:"goal_amount" json:"goal_amount" binding:"omitempty,gte=0"`
			Status      *string  `form:"status" json:"status"`
			StartDate   *string  `form:"start_date" json:"start_date"`
			EndDate     *string  `form:"end_date" json:"end_date"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// --- Prepare update ---
		changed := false
		if input.Title != nil {
			if strings.TrimSpace(*input.Title) == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
				return
			}
			campaign.Title = strings.TrimSpace(*input.Title)
			changed = true
		}
		if input.Description != nil {
			campaign.Description = *input.Description
			changed = true
		}
		if input.GoalAmount != nil {
			campaign.GoalAmount = *input.GoalAmount
			changed = true
		}
		if input.Status != nil {
			if !validCampaignStatus(*input.Status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of active, paused, completed"})
				return
			}
			campaign.Status = *input.Status
			changed = true
		}
		if input.StartDate != nil {
			start, msg := parseOptionalDate("start_date", input.StartDate)
			if msg != "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": msg})
				return
			}
			campaign.StartDate = start
			changed = true
		}
		if input.EndDate != nil {
			end, msg := parseOptionalDate("end_date", input.EndDate)
			if msg != "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": msg})
				return
			}
			campaign.EndDate = end
			changed = true
		}

		// --- Replace image ---
		newImage, ok := d.uploadImage(c, "image", utils.FolderCampaignImages)
		if !ok {
			return
		}
		oldImage := ""
		if newImage != "" {
			oldImage, campaign.ImageURL = campaign.ImageURL, newImage
			changed = true
		}

		if !changed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		campaign.UpdatedAt = time.Now()
		if err := d.Store.ReplaceCampaign(ctx, campaign); err != nil {
			d.dropImage(ctx, newImage)
			d.respondError(c, err, "could not update campaign")
			return
		}
		d.dropImage(ctx, oldImage)

		c.JSON(http.StatusOK, gin.H{
			"message":  "campaign updated successfully",
			"campaign": campaign,
		})
	}
}

// ---------------- DELETE ----------------
func DeleteCampaign(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaign, ok := d.loadManagedCampaign(c)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := d.Store.DeleteCampaign(ctx, campaign.ID); err != nil {
			d.respondError(c, err, "failed to delete campaign")
			return
		}
		d.dropImage(ctx, campaign.ImageURL)
		d.Log.Info("campaign deleted",
			zap.String("campaign_id", campaign.ID.Hex()),
			zap.String("by", c.GetString("user_id")))

		c.JSON(http.StatusOK, gin.H{"message": "campaign deleted", "id": campaign.ID.Hex()})
	}
}

// ---------------- DONATIONS ----------------
func CampaignDonations(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := bindHistoryQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		campaign, ok := d.loadManagedCampaign(c)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		q.CampaignID = campaign.ID.Hex()
		q.Viewer = viewerFrom(c)
		c.JSON(http.StatusOK, d.History.GetDonationHistory(ctx, q))
	}
}
