package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	controllers "github.com/phillip/donation-hub-go/controllers"
	middleware "github.com/phillip/donation-hub-go/middleware"
	models "github.com/phillip/donation-hub-go/models"
)

// NewRouter builds the engine with recovery, request logging and CORS.
func NewRouter(d *controllers.Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(cors.New(corsConfig(d.Config.CORSOrigins)))

	SetupRoutes(r, d)
	return r
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"ETag", "Last-Modified"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}

func SetupRoutes(r *gin.Engine, d *controllers.Deps) {
	cfg := d.Config

	// public
	r.GET("/healthz", controllers.Healthz(d))
	r.POST("/auth/register", controllers.Register(d))
	r.POST("/auth/login", controllers.Login(d))
	r.POST("/auth/refresh", controllers.RefreshToken(d))

	// protected
	auth := middleware.AuthMiddleware(cfg)
	orgRole := middleware.RequireRole(models.RoleOrganization)

	orgs := r.Group("/organizations")
	{
		orgs.GET("", controllers.ListOrganizations(d))
		orgs.GET("/:id", controllers.GetOrganization(d))
		orgs.POST("", auth, orgRole, controllers.CreateOrganization(d))
		orgs.PATCH("/:id", auth, controllers.UpdateOrganization(d))
		orgs.GET("/:id/donations", auth, controllers.OrganizationDonations(d))
		orgs.GET("/:id/donation-stats", auth, controllers.OrganizationDonationStats(d))
	}

	campaigns := r.Group("/campaigns")
	{
		campaigns.GET("", controllers.ListCampaigns(d))
		campaigns.GET("/:id", controllers.GetCampaign(d))
		campaigns.POST("", auth, orgRole, controllers.CreateCampaign(d))
		campaigns.PATCH("/:id", auth, controllers.UpdateCampaign(d))
		campaigns.DELETE("/:id", auth, controllers.DeleteCampaign(d))
		campaigns.GET("/:id/donations", auth, controllers.CampaignDonations(d))
	}

	donations := r.Group("/donations")
	donations.Use(auth)
	{
		donations.POST("/cash", controllers.CreateCashDonation(d))
		donations.POST("/physical", controllers.CreatePhysicalDonation(d))
		donations.PATCH("/physical/:id/status", controllers.UpdatePhysicalStatus(d))
	}

	me := r.Group("/me")
	me.Use(auth)
	{
		me.GET("/donations", controllers.MyDonations(d))
		me.GET("/subscriptions", controllers.ListMySubscriptions(d))
		me.DELETE("/subscriptions/:id", controllers.CancelMySubscription(d))
	}
}
