package api

import (
	"net/http"

	campaignDelivery "traincrm-backend/internal/campaign/delivery"
	leadDelivery "traincrm-backend/internal/lead/delivery"
	transactionalDelivery "traincrm-backend/internal/transactional/delivery"
	"traincrm-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, leadHandler *leadDelivery.LeadHandler, emailHandler *transactionalDelivery.EmailHandler, campaignHandler *campaignDelivery.CampaignHandler, cfg *config.Config) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Lead routes (protected)
		leads := api.Group("/leads")
		leads.Use(AuthMiddleware(cfg.JWTSecret))
		{
			leads.POST("/import-emails", leadHandler.ImportEmails)
		}

		// Transactional email routes (protected)
		emails := api.Group("/emails")
		emails.Use(AuthMiddleware(cfg.JWTSecret))
		{
			emails.POST("/booking-form", emailHandler.SendBookingForm)
			emails.POST("/joining-instructions", emailHandler.SendJoiningInstructions)
			emails.POST("/payment-link", emailHandler.SendPaymentLink)
			emails.POST("/preview", emailHandler.Preview)
		}

		// Campaign routes (protected)
		campaigns := api.Group("/campaigns")
		campaigns.Use(AuthMiddleware(cfg.JWTSecret))
		{
			campaigns.POST("/:id/send", campaignHandler.SendCampaign)
		}

		// Tracking routes (public) - reached from recipients' mail clients
		// and browsers, never from the authenticated UI.
		track := api.Group("/track")
		{
			track.GET("/open", campaignHandler.TrackOpen)
			track.GET("/click", campaignHandler.TrackClick)
		}
		api.GET("/unsubscribe", campaignHandler.Unsubscribe)
	}
}
