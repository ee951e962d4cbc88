package domain

import "time"

const (
	StatusDraft   = "draft"
	StatusSending = "sending"
	StatusSent    = "sent"
	StatusFailed  = "failed"

	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// MarketingCampaign is one bulk email campaign. Recipients are composed
// elsewhere in the CRM; this service only dispatches and tracks them.
type MarketingCampaign struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name"`
	Subject      string     `json:"subject"`
	BodyTemplate string     `json:"body_template" gorm:"type:text"`
	Status       string     `json:"status"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (MarketingCampaign) TableName() string { return "marketing_campaigns" }

// CampaignRecipient is one addressee, tracked independently for
// send/open/click/unsubscribe state. Sent flips false to true exactly once
// per successful send; a failed send leaves it false for the retry run.
type CampaignRecipient struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	CampaignID     string     `json:"campaign_id" gorm:"index"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Sent           bool       `json:"sent"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	DeliveryStatus string     `json:"delivery_status,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	OpenCount      int        `json:"open_count"`
	ClickCount     int        `json:"click_count"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// UnsubscribedEmail is the global suppression list, keyed by lowercased
// address so future campaigns can exclude it.
type UnsubscribedEmail struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Email      string    `json:"email" gorm:"uniqueIndex"`
	CampaignID string    `json:"campaign_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmailSettings is the operator-managed SMTP relay record campaign sends
// run against. Read-only input to the dispatcher.
type EmailSettings struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	SMTPHost     string    `json:"smtp_host"`
	SMTPPort     int       `json:"smtp_port"`
	SMTPUsername string    `json:"smtp_username"`
	SMTPPassword string    `json:"-"`
	FromAddress  string    `json:"from_address"`
	FromName     string    `json:"from_name"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (EmailSettings) TableName() string { return "email_settings" }
