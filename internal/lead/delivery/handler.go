package delivery

import (
	"net/http"

	"traincrm-backend/internal/lead/usecase"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	importer *usecase.Importer
}

func NewLeadHandler(importer *usecase.Importer) *LeadHandler {
	return &LeadHandler{importer: importer}
}

// ImportEmails runs one mailbox import pass.
// POST /api/leads/import-emails
//
// Connection-level failures return success=false; per-message failures are
// reported in the errors array with success=true — partial success is the
// normal case, and the UI renders the per-item detail.
func (h *LeadHandler) ImportEmails(c *gin.Context) {
	result, err := h.importer.ImportNew()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"created":    result.Created,
		"skipped":    result.Skipped,
		"scan_limit": result.ScanLimit,
		"errors":     result.Errors,
		"leads":      result.Leads,
		"all_emails": result.AllEmails,
	})
}
