package delivery

import (
	"net/http"
	"time"

	"traincrm-backend/internal/transactional/dto"
	"traincrm-backend/internal/transactional/usecase"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	sender *usecase.Sender
}

func NewEmailHandler(sender *usecase.Sender) *EmailHandler {
	return &EmailHandler{sender: sender}
}

// parseDate accepts the date formats the UI sends; zero time on failure so
// templates render "to be confirmed" instead of erroring.
func parseDate(value string) time.Time {
	for _, format := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SendBookingForm sends the booking-form invitation.
// POST /api/emails/booking-form
func (h *EmailHandler) SendBookingForm(c *gin.Context) {
	var req dto.BookingFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.sender.SendBookingForm(req.Recipient, usecase.BookingFormData{
		RecipientName: req.RecipientName,
		CourseName:    req.CourseName,
		StartDate:     parseDate(req.StartDate),
		FormURL:       req.FormURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "booking form sent to " + req.Recipient})
}

// SendJoiningInstructions sends the pre-course joining email.
// POST /api/emails/joining-instructions
func (h *EmailHandler) SendJoiningInstructions(c *gin.Context) {
	var req dto.JoiningInstructionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.sender.SendJoiningInstructions(req.Recipient, usecase.JoiningInstructionsData{
		RecipientName: req.RecipientName,
		CourseName:    req.CourseName,
		StartDate:     parseDate(req.StartDate),
		StartTime:     req.StartTime,
		Venue:         req.Venue,
		Notes:         req.Notes,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "joining instructions sent to " + req.Recipient})
}

// SendPaymentLink sends the payment-request email.
// POST /api/emails/payment-link
func (h *EmailHandler) SendPaymentLink(c *gin.Context) {
	var req dto.PaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.sender.SendPaymentLink(req.Recipient, usecase.PaymentLinkData{
		RecipientName: req.RecipientName,
		CourseName:    req.CourseName,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentURL:    req.PaymentURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "payment link sent to " + req.Recipient})
}

// Preview renders a transactional template without sending anything.
// POST /api/emails/preview
func (h *EmailHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var subject, html string
	switch req.Template {
	case "booking_form":
		subject, html = usecase.RenderBookingForm(usecase.BookingFormData{
			RecipientName: req.RecipientName,
			CourseName:    req.CourseName,
			StartDate:     parseDate(req.StartDate),
			FormURL:       req.FormURL,
		})
	case "joining_instructions":
		subject, html = usecase.RenderJoiningInstructions(usecase.JoiningInstructionsData{
			RecipientName: req.RecipientName,
			CourseName:    req.CourseName,
			StartDate:     parseDate(req.StartDate),
			StartTime:     req.StartTime,
			Venue:         req.Venue,
			Notes:         req.Notes,
		})
	case "payment_link":
		subject, html = usecase.RenderPaymentLink(usecase.PaymentLinkData{
			RecipientName: req.RecipientName,
			CourseName:    req.CourseName,
			Amount:        req.Amount,
			Currency:      req.Currency,
			PaymentURL:    req.PaymentURL,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"recipientEmail": req.Recipient,
		"subject":        subject,
		"htmlContent":    html,
	})
}
