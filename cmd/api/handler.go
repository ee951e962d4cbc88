package api

import (
	campaignDelivery "traincrm-backend/internal/campaign/delivery"
	leadDelivery "traincrm-backend/internal/lead/delivery"
	transactionalDelivery "traincrm-backend/internal/transactional/delivery"
	"traincrm-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	leadHandler     *leadDelivery.LeadHandler
	emailHandler    *transactionalDelivery.EmailHandler
	campaignHandler *campaignDelivery.CampaignHandler
	config          *config.Config
}

func NewHandler(leadHandler *leadDelivery.LeadHandler, emailHandler *transactionalDelivery.EmailHandler, campaignHandler *campaignDelivery.CampaignHandler, cfg *config.Config) *Handler {
	return &Handler{
		leadHandler:     leadHandler,
		emailHandler:    emailHandler,
		campaignHandler: campaignHandler,
		config:          cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.leadHandler, h.emailHandler, h.campaignHandler, h.config)

	return r.Run(addr)
}
