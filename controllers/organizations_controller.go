package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/donation-hub-go/models"
	"github.com/phillip/donation-hub-go/services"
	utils "github.com/phillip/donation-hub-go/utils"
)

// ---------------- CREATE ----------------
func CreateOrganization(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Authenticated user ---
		viewer := viewerFrom(c)
		if viewer == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		// --- Bind form fields ---
		var input struct {
			Name        string `form:"name" json:"name" binding:"required"`
			Description string `form:"description" json:"description"`
			Email       string `form:"email" json:"email" binding:"omitempty,email"`
			Website     string `form:"website" json:"website" binding:"omitempty,url"`
			Category    string `form:"category" json:"category"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// --- Handle logo upload ---
		logoURL, ok := d.uploadImage(c, "logo", utils.FolderOrganizationLogos)
		if !ok {
			return
		}

		// --- Save organization ---
		now := time.Now()
		org := &models.Organization{
			ID:          primitive.NewObjectID(),
			OwnerID:     viewer.UserID,
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			Email:       strings.ToLower(input.Email),
			Website:     input.Website,
			Category:    input.Category,
			LogoURL:     logoURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := d.Store.InsertOrganization(ctx, org); err != nil {
			d.dropImage(ctx, logoURL)
			d.respondError(c, err, "could not create organization")
			return
		}

		c.JSON(http.StatusCreated, org)
	}
}

// ---------------- LIST ----------------
func ListOrganizations(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		orgs, err := d.Store.ListOrganizations(ctx, c.Query("q"))
		if err != nil {
			d.respondError(c, err, "could not fetch organizations")
			return
		}
		if len(orgs) == 0 {
			c.JSON(http.StatusOK, []models.Organization{})
			return
		}

		// --- Validators over the whole result set ---
		versions := make([]utils.Version, len(orgs))
		for i, o := range orgs {
			versions[i] = utils.Version{ID: o.ID, UpdatedAt: o.UpdatedAt}
		}
		if utils.ListNotModified(c, versions) {
			return
		}

		c.JSON(http.StatusOK, orgs)
	}
}

// ---------------- GET ----------------
func GetOrganization(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		org, err := d.Store.GetOrganization(ctx, oid)
		if err != nil {
			d.respondError(c, err, "could not fetch organization")
			return
		}
		if utils.NotModified(c, org.ID, org.UpdatedAt) {
			return
		}

		c.JSON(http.StatusOK, org)
	}
}

// ---------------- UPDATE ----------------
func UpdateOrganization(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		// --- Check permission ---
		org, err := services.CanManageOrganization(ctx, d.Store, viewerFrom(c), oid)
		if err != nil {
			d.respondError(c, err, "could not load organization")
			return
		}

		var input struct {
			Name        *string `form:"name" json:"name"`
			Description *string `form:"description" json:"description"`
			Email       *string `form:"email" json:"email" binding:"omitempty,email"`
			Website     *string `form:"website" json:"website" binding:"omitempty,url"`
			Category    *string `form:"category" json:"category"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		changed := false
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = strings.TrimSpace(*v)
				changed = true
			}
		}
		set(&org.Name, input.Name)
		set(&org.Description, input.Description)
		set(&org.Email, input.Email)
		set(&org.Website, input.Website)
		set(&org.Category, input.Category)
		if org.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}

		// --- Replace logo ---
		newLogo, ok := d.uploadImage(c, "logo", utils.FolderOrganizationLogos)
		if !ok {
			return
		}
		oldLogo := ""
		if newLogo != "" {
			oldLogo, org.LogoURL = org.LogoURL, newLogo
			changed = true
		}

		if !changed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		org.UpdatedAt = time.Now()
		if err := d.Store.ReplaceOrganization(ctx, org); err != nil {
			d.dropImage(ctx, newLogo)
			d.respondError(c, err, "could not update organization")
			return
		}
		d.dropImage(ctx, oldLogo)

		c.JSON(http.StatusOK, gin.H{
			"message":      "organization updated successfully",
			"organization": org,
		})
	}
}

// ---------------- DONATIONS ----------------

// OrganizationDonations is the unified donation history of one organization,
// including donations made to its campaigns.
func OrganizationDonations(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
			return
		}

		q, err := bindHistoryQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		viewer := viewerFrom(c)
		if _, err := services.CanManageOrganization(ctx, d.Store, viewer, oid); err != nil {
			d.respondError(c, err, "could not load organization")
			return
		}

		q.OrganizationID = oid.Hex()
		q.Viewer = viewer
		c.JSON(http.StatusOK, d.History.GetDonationHistory(ctx, q))
	}
}

func OrganizationDonationStats(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if _, err := services.CanManageOrganization(ctx, d.Store, viewerFrom(c), oid); err != nil {
			d.respondError(c, err, "could not load organization")
			return
		}

		stats, err := d.History.GetOrganizationCampaignDonationsStats(ctx, oid.Hex())
		if err != nil {
			d.respondError(c, err, "could not compute donation stats")
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
