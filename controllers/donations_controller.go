package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	models "github.com/phillip/donation-hub-go/models"
	"github.com/phillip/donation-hub-go/services"
)

// ---------------- CASH ----------------
func CreateCashDonation(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CashDonationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// the payment simulator delays on purpose, so no short request timeout here
		donation, err := d.Donations.CreateCashDonation(c.Request.Context(), viewerFrom(c), input)
		if err != nil {
			d.respondError(c, err, "could not process donation")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":  "donation received",
			"donation": donation,
		})
	}
}

// ---------------- PHYSICAL ----------------
func CreatePhysicalDonation(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.PhysicalDonationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		donation, err := d.Donations.CreatePhysicalDonation(ctx, viewerFrom(c), input)
		if err != nil {
			d.respondError(c, err, "could not create physical donation")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":  "physical donation submitted",
			"donation": donation,
		})
	}
}

func UpdatePhysicalStatus(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Status string `json:"status" binding:"required"`
			Notes  string `json:"notes" binding:"max=1000"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		donation, err := d.Donations.UpdatePhysicalStatus(ctx, viewerFrom(c), c.Param("id"), models.PhysicalStatus(input.Status), input.Notes)
		if err != nil {
			d.respondError(c, err, "could not update donation status")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "status updated",
			"donation": donation,
		})
	}
}

// ---------------- HISTORY ----------------

// MyDonations is the caller's own unified donation history.
func MyDonations(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := bindHistoryQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		viewer := viewerFrom(c)
		if viewer == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": services.ErrUnauthenticated.Error()})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		q.UserID = viewer.UserID.Hex()
		q.DonorEmail = viewer.Email
		q.Viewer = viewer
		c.JSON(http.StatusOK, d.History.GetDonationHistory(ctx, q))
	}
}
