package domain

import "time"

const (
	SourceEmailImport = "email_import"
	StatusNew         = "new"
	ChannelEmail      = "email"
	DefaultLanguage   = "en"

	// UnknownName is recorded when the enquiry body carries no name field.
	// The lead is still created so the enquiry stays visible.
	UnknownName = "Unknown"
)

// Lead is a sales lead. Leads created by the email importer carry the
// source message id of the mailbox message they were derived from; its
// unique index is the at-most-once import guarantee.
type Lead struct {
	ID                string     `json:"id" gorm:"primaryKey"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone,omitempty"`
	CompanyName       string     `json:"company_name,omitempty"`
	Notes             string     `json:"notes" gorm:"type:text"`
	Source            string     `json:"source"`
	Status            string     `json:"status"`
	Channel           string     `json:"channel"`
	PreferredLanguage string     `json:"preferred_language"`
	AssignedTo        string     `json:"assigned_to"`
	SourceMessageID   string     `json:"source_message_id,omitempty" gorm:"uniqueIndex"`
	ReceivedAt        *time.Time `json:"received_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
