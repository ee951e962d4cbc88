package delivery

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"traincrm-backend/internal/campaign/repository"
	"traincrm-backend/internal/campaign/usecase"

	"github.com/gin-gonic/gin"
)

// trackingPixelGIF is a 1x1 transparent GIF. It is served on every open
// request, recorded or not, because the image load is embedded invisibly in
// delivered mail and must never break.
var trackingPixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type CampaignHandler struct {
	dispatcher      *usecase.Dispatcher
	recipientRepo   repository.RecipientRepository
	suppressionRepo repository.SuppressionRepository
}

func NewCampaignHandler(dispatcher *usecase.Dispatcher, recipientRepo repository.RecipientRepository, suppressionRepo repository.SuppressionRepository) *CampaignHandler {
	return &CampaignHandler{
		dispatcher:      dispatcher,
		recipientRepo:   recipientRepo,
		suppressionRepo: suppressionRepo,
	}
}

// SendCampaign dispatches a campaign to its unsent recipients.
// POST /api/campaigns/:id/send
func (h *CampaignHandler) SendCampaign(c *gin.Context) {
	campaignID := c.Param("id")

	result, err := h.dispatcher.Dispatch(campaignID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrCampaignNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, usecase.ErrSettingsIncomplete) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	response := gin.H{
		"success":         true,
		"sentCount":       result.SentCount,
		"totalRecipients": result.TotalRecipients,
	}
	if len(result.Errors) > 0 {
		response["errors"] = result.Errors
	}
	c.JSON(http.StatusOK, response)
}

// TrackOpen records an open and serves the pixel.
// GET /api/track/open?rid=...
func (h *CampaignHandler) TrackOpen(c *gin.Context) {
	if rid := c.Query("rid"); rid != "" {
		if err := h.recipientRepo.IncrementOpen(rid); err != nil {
			log.Printf("[Tracking] open %s: %v", rid, err)
		}
	}

	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Data(http.StatusOK, "image/gif", trackingPixelGIF)
}

// TrackClick records a click and forwards the browser to the original URL.
// GET /api/track/click?rid=...&url=...
//
// Recording is best-effort: an unknown recipient or a failed increment still
// redirects, because tracking must never block navigation.
func (h *CampaignHandler) TrackClick(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url parameter"})
		return
	}

	if rid := c.Query("rid"); rid != "" {
		if err := h.recipientRepo.IncrementClick(rid); err != nil {
			log.Printf("[Tracking] click %s: %v", rid, err)
		}
	}

	c.Redirect(http.StatusFound, target)
}

// Unsubscribe stamps the recipient and adds their address to the global
// suppression list, then renders a plain confirmation page — this endpoint
// is reached by a person clicking an email link, not by the UI.
// GET /api/unsubscribe?rid=...&reason=...
func (h *CampaignHandler) Unsubscribe(c *gin.Context) {
	rid := c.Query("rid")
	reason := c.Query("reason")

	if rid != "" {
		recipient, err := h.recipientRepo.GetByID(rid)
		if err != nil {
			log.Printf("[Tracking] unsubscribe lookup %s: %v", rid, err)
		} else if recipient != nil {
			if err := h.recipientRepo.MarkUnsubscribed(rid, time.Now()); err != nil {
				log.Printf("[Tracking] unsubscribe mark %s: %v", rid, err)
			}
			if err := h.suppressionRepo.Upsert(recipient.Email, recipient.CampaignID, reason); err != nil {
				log.Printf("[Tracking] suppression upsert %s: %v", recipient.Email, err)
			}
		}
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(unsubscribePage()))
}

func unsubscribePage() string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Unsubscribed</title></head>
<body style="font-family:Arial,sans-serif;max-width:480px;margin:80px auto;text-align:center">
<h2>You have been unsubscribed</h2>
<p>You will no longer receive marketing emails from us.</p>
<p style="color:#777">If this was a mistake, contact us and we will add you back.</p>
<p style="color:#bbb;font-size:12px">%s</p>
</body>
</html>`, time.Now().Format("2 January 2006"))
}
