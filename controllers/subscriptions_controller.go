package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func ListMySubscriptions(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		subs, err := d.Donations.ListSubscriptions(ctx, viewerFrom(c))
		if err != nil {
			d.respondError(c, err, "could not fetch subscriptions")
			return
		}
		c.JSON(http.StatusOK, subs)
	}
}

func CancelMySubscription(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		sub, err := d.Donations.CancelSubscription(ctx, viewerFrom(c), c.Param("id"))
		if err != nil {
			d.respondError(c, err, "could not cancel subscription")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "subscription cancelled", "subscription": sub})
	}
}
