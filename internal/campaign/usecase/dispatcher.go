package usecase

import (
	"errors"
	"fmt"
	"log"
	"time"

	campaigndomain "traincrm-backend/internal/campaign/domain"
	"traincrm-backend/internal/campaign/repository"
	"traincrm-backend/pkg/smtp"
)

// ErrCampaignNotFound is returned when the campaign id resolves to nothing.
var ErrCampaignNotFound = errors.New("campaign not found")

// ErrSettingsIncomplete means no usable SMTP settings record exists. This is
// surfaced to the operator before any send is attempted, never silently
// skipped.
var ErrSettingsIncomplete = errors.New("email settings missing or incomplete: configure SMTP host, port, credentials and from address")

// Mailer sends one rendered message through a relay.
type Mailer interface {
	Send(settings smtp.Settings, email smtp.Email) error
}

// DispatchResult summarizes one campaign run. Per-recipient failures are
// aggregated here; partial success is not an overall failure.
type DispatchResult struct {
	SentCount       int      `json:"sentCount"`
	TotalRecipients int      `json:"totalRecipients"`
	Errors          []string `json:"errors,omitempty"`
}

// Dispatcher runs the campaign send loop: strictly sequential, one recipient
// at a time, so the relay sees bounded load and one bad recipient can never
// abort the rest.
type Dispatcher struct {
	campaignRepo    repository.CampaignRepository
	recipientRepo   repository.RecipientRepository
	settingsRepo    repository.SettingsRepository
	mailer          Mailer
	trackingBaseURL string
}

func NewDispatcher(campaignRepo repository.CampaignRepository, recipientRepo repository.RecipientRepository, settingsRepo repository.SettingsRepository, mailer Mailer, trackingBaseURL string) *Dispatcher {
	return &Dispatcher{
		campaignRepo:    campaignRepo,
		recipientRepo:   recipientRepo,
		settingsRepo:    settingsRepo,
		mailer:          mailer,
		trackingBaseURL: trackingBaseURL,
	}
}

// Dispatch sends the campaign to every unsent recipient. Recipients already
// sent or unsubscribed are excluded up front, so a retry run resumes where
// the failed one stopped.
func (d *Dispatcher) Dispatch(campaignID string) (*DispatchResult, error) {
	campaign, err := d.campaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	settings, err := d.loadSettings()
	if err != nil {
		return nil, err
	}

	recipients, err := d.recipientRepo.ListUnsent(campaignID)
	if err != nil {
		return nil, err
	}

	if err := d.campaignRepo.UpdateStatus(campaignID, campaigndomain.StatusSending, nil); err != nil {
		return nil, err
	}

	result := &DispatchResult{TotalRecipients: len(recipients)}
	for _, recipient := range recipients {
		if err := d.sendOne(campaign, settings, recipient); err != nil {
			log.Printf("[Campaign] %s: send to %s failed: %v", campaignID, recipient.Email, err)
			if markErr := d.recipientRepo.MarkFailed(recipient.ID, err.Error()); markErr != nil {
				log.Printf("[Campaign] %s: recording failure for %s: %v", campaignID, recipient.ID, markErr)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", recipient.Email, err))
			continue
		}
		if err := d.recipientRepo.MarkSent(recipient.ID, time.Now()); err != nil {
			log.Printf("[Campaign] %s: marking %s sent: %v", campaignID, recipient.ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", recipient.Email, err))
			continue
		}
		result.SentCount++
	}

	finalStatus := campaigndomain.StatusSent
	if result.SentCount == 0 {
		finalStatus = campaigndomain.StatusFailed
	}
	now := time.Now()
	if err := d.campaignRepo.UpdateStatus(campaignID, finalStatus, &now); err != nil {
		log.Printf("[Campaign] %s: final status update: %v", campaignID, err)
	}

	log.Printf("[Campaign] %s: sent %d/%d", campaignID, result.SentCount, result.TotalRecipients)
	return result, nil
}

func (d *Dispatcher) loadSettings() (smtp.Settings, error) {
	record, err := d.settingsRepo.Get()
	if err != nil {
		return smtp.Settings{}, err
	}
	if record == nil {
		return smtp.Settings{}, ErrSettingsIncomplete
	}
	settings := smtp.Settings{
		Host:     record.SMTPHost,
		Port:     record.SMTPPort,
		Username: record.SMTPUsername,
		Password: record.SMTPPassword,
		From:     record.FromAddress,
		FromName: record.FromName,
	}
	if !settings.Complete() {
		return smtp.Settings{}, ErrSettingsIncomplete
	}
	return settings, nil
}

func (d *Dispatcher) sendOne(campaign *campaigndomain.MarketingCampaign, settings smtp.Settings, recipient campaigndomain.CampaignRecipient) error {
	body := Personalize(campaign.BodyTemplate, recipient.Name)
	html := MarkdownToHTML(body)
	html = RewriteLinks(html, d.trackingBaseURL, recipient.ID)
	html = InjectTracking(html, d.trackingBaseURL, recipient.ID)

	return d.mailer.Send(settings, smtp.Email{
		To:       recipient.Email,
		Subject:  Personalize(campaign.Subject, recipient.Name),
		HTMLBody: html,
	})
}
