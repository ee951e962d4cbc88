package dto

// Request bodies for the transactional send endpoints. Dates arrive as
// RFC 3339 / YYYY-MM-DD strings from the UI and are parsed in the handler.

type BookingFormRequest struct {
	Recipient     string `json:"recipient" binding:"required,email"`
	RecipientName string `json:"recipient_name"`
	CourseName    string `json:"course_name" binding:"required"`
	StartDate     string `json:"start_date"`
	FormURL       string `json:"form_url" binding:"required,url"`
}

type JoiningInstructionsRequest struct {
	Recipient     string `json:"recipient" binding:"required,email"`
	RecipientName string `json:"recipient_name"`
	CourseName    string `json:"course_name" binding:"required"`
	StartDate     string `json:"start_date"`
	StartTime     string `json:"start_time"`
	Venue         string `json:"venue" binding:"required"`
	Notes         string `json:"notes"`
}

type PaymentLinkRequest struct {
	Recipient     string  `json:"recipient" binding:"required,email"`
	RecipientName string  `json:"recipient_name"`
	CourseName    string  `json:"course_name" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Currency      string  `json:"currency"`
	PaymentURL    string  `json:"payment_url" binding:"required,url"`
}

// PreviewRequest renders any of the three templates without sending.
type PreviewRequest struct {
	Template      string  `json:"template" binding:"required,oneof=booking_form joining_instructions payment_link"`
	Recipient     string  `json:"recipient" binding:"required,email"`
	RecipientName string  `json:"recipient_name"`
	CourseName    string  `json:"course_name"`
	StartDate     string  `json:"start_date"`
	StartTime     string  `json:"start_time"`
	Venue         string  `json:"venue"`
	Notes         string  `json:"notes"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	FormURL       string  `json:"form_url"`
	PaymentURL    string  `json:"payment_url"`
}
