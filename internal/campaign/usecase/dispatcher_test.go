package usecase

import (
	"errors"
	"strings"
	"testing"
	"time"

	campaigndomain "traincrm-backend/internal/campaign/domain"
	"traincrm-backend/pkg/smtp"
)

type mockCampaignRepo struct {
	campaign *campaigndomain.MarketingCampaign
	statuses []string
	sentAt   *time.Time
}

func (m *mockCampaignRepo) GetByID(id string) (*campaigndomain.MarketingCampaign, error) {
	return m.campaign, nil
}

func (m *mockCampaignRepo) UpdateStatus(id, status string, sentAt *time.Time) error {
	m.statuses = append(m.statuses, status)
	if sentAt != nil {
		m.sentAt = sentAt
	}
	return nil
}

type mockRecipientRepo struct {
	recipients []campaigndomain.CampaignRecipient
	sent       []string
	failed     map[string]string
}

func (m *mockRecipientRepo) GetByID(id string) (*campaigndomain.CampaignRecipient, error) {
	return nil, nil
}

func (m *mockRecipientRepo) ListUnsent(campaignID string) ([]campaigndomain.CampaignRecipient, error) {
	return m.recipients, nil
}

func (m *mockRecipientRepo) MarkSent(id string, sentAt time.Time) error {
	m.sent = append(m.sent, id)
	return nil
}

func (m *mockRecipientRepo) MarkFailed(id, lastError string) error {
	if m.failed == nil {
		m.failed = map[string]string{}
	}
	m.failed[id] = lastError
	return nil
}

func (m *mockRecipientRepo) IncrementOpen(id string) error                  { return nil }
func (m *mockRecipientRepo) IncrementClick(id string) error                 { return nil }
func (m *mockRecipientRepo) MarkUnsubscribed(id string, at time.Time) error { return nil }

type mockSettingsRepo struct {
	settings *campaigndomain.EmailSettings
}

func (m *mockSettingsRepo) Get() (*campaigndomain.EmailSettings, error) {
	return m.settings, nil
}

// mockMailer records sends and fails for addresses in failFor.
type mockMailer struct {
	sent    []smtp.Email
	failFor map[string]bool
}

func (m *mockMailer) Send(settings smtp.Settings, email smtp.Email) error {
	if m.failFor[email.To] {
		return errors.New("relay rejected")
	}
	m.sent = append(m.sent, email)
	return nil
}

func completeSettings() *campaigndomain.EmailSettings {
	return &campaigndomain.EmailSettings{
		SMTPHost:     "relay.test",
		SMTPPort:     465,
		SMTPUsername: "crm",
		SMTPPassword: "secret",
		FromAddress:  "crm@trainingprovider.co.uk",
		FromName:     "Training Team",
	}
}

func testCampaign() *campaigndomain.MarketingCampaign {
	return &campaigndomain.MarketingCampaign{
		ID:           "c1",
		Subject:      "Spring courses, {first_name}",
		BodyTemplate: "Hi {first_name}\n[[Book]](https://example.com/book)",
		Status:       campaigndomain.StatusDraft,
	}
}

func recipients(n int) []campaigndomain.CampaignRecipient {
	out := make([]campaigndomain.CampaignRecipient, n)
	for i := range out {
		out[i] = campaigndomain.CampaignRecipient{
			ID:    "r" + string(rune('1'+i)),
			Email: string(rune('a'+i)) + "@example.com",
			Name:  "Recipient " + string(rune('A'+i)),
		}
	}
	return out
}

func TestDispatchSendsAllAndStampsStatus(t *testing.T) {
	campRepo := &mockCampaignRepo{campaign: testCampaign()}
	recRepo := &mockRecipientRepo{recipients: recipients(3)}
	mailer := &mockMailer{}
	d := NewDispatcher(campRepo, recRepo, &mockSettingsRepo{settings: completeSettings()}, mailer, "https://crm.test")

	result, err := d.Dispatch("c1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.SentCount != 3 || result.TotalRecipients != 3 {
		t.Errorf("sent %d/%d", result.SentCount, result.TotalRecipients)
	}
	if len(result.Errors) != 0 {
		t.Errorf("errors = %v", result.Errors)
	}

	wantStatuses := []string{campaigndomain.StatusSending, campaigndomain.StatusSent}
	if len(campRepo.statuses) != 2 || campRepo.statuses[0] != wantStatuses[0] || campRepo.statuses[1] != wantStatuses[1] {
		t.Errorf("statuses = %v, want %v", campRepo.statuses, wantStatuses)
	}
	if campRepo.sentAt == nil {
		t.Error("campaign sentAt not stamped")
	}

	// Every delivered body carries tracking for its own recipient.
	for i, email := range mailer.sent {
		rid := recRepo.recipients[i].ID
		if !strings.Contains(email.HTMLBody, "/api/track/open?rid="+rid) {
			t.Errorf("send %d missing its pixel", i)
		}
		if !strings.Contains(email.HTMLBody, "/api/track/click?rid="+rid) {
			t.Errorf("send %d missing its click wrap", i)
		}
	}
}

func TestDispatchPartialFailureIsolation(t *testing.T) {
	campRepo := &mockCampaignRepo{campaign: testCampaign()}
	recRepo := &mockRecipientRepo{recipients: recipients(3)}
	mailer := &mockMailer{failFor: map[string]bool{"b@example.com": true}}
	d := NewDispatcher(campRepo, recRepo, &mockSettingsRepo{settings: completeSettings()}, mailer, "https://crm.test")

	result, err := d.Dispatch("c1")
	if err != nil {
		t.Fatalf("per-recipient failure must not fail the dispatch: %v", err)
	}
	if result.SentCount != 2 || result.TotalRecipients != 3 {
		t.Errorf("sent %d/%d, want 2/3", result.SentCount, result.TotalRecipients)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "b@example.com") {
		t.Errorf("errors = %v", result.Errors)
	}
	if _, ok := recRepo.failed["r2"]; !ok {
		t.Error("failed recipient not recorded")
	}
	if len(recRepo.sent) != 2 {
		t.Errorf("marked sent = %v", recRepo.sent)
	}
	if campRepo.statuses[len(campRepo.statuses)-1] != campaigndomain.StatusSent {
		t.Errorf("partial success should still end as sent, got %v", campRepo.statuses)
	}
}

func TestDispatchAllFailedMarksCampaignFailed(t *testing.T) {
	campRepo := &mockCampaignRepo{campaign: testCampaign()}
	recRepo := &mockRecipientRepo{recipients: recipients(2)}
	mailer := &mockMailer{failFor: map[string]bool{"a@example.com": true, "b@example.com": true}}
	d := NewDispatcher(campRepo, recRepo, &mockSettingsRepo{settings: completeSettings()}, mailer, "https://crm.test")

	result, err := d.Dispatch("c1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.SentCount != 0 {
		t.Errorf("sentCount = %d", result.SentCount)
	}
	if campRepo.statuses[len(campRepo.statuses)-1] != campaigndomain.StatusFailed {
		t.Errorf("statuses = %v", campRepo.statuses)
	}
}

func TestDispatchFailsFastOnIncompleteSettings(t *testing.T) {
	incomplete := completeSettings()
	incomplete.SMTPHost = ""
	campRepo := &mockCampaignRepo{campaign: testCampaign()}
	mailer := &mockMailer{}
	d := NewDispatcher(campRepo, &mockRecipientRepo{recipients: recipients(1)}, &mockSettingsRepo{settings: incomplete}, mailer, "https://crm.test")

	_, err := d.Dispatch("c1")
	if !errors.Is(err, ErrSettingsIncomplete) {
		t.Fatalf("err = %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Error("no send may be attempted without settings")
	}
	if len(campRepo.statuses) != 0 {
		t.Errorf("campaign status must be untouched, got %v", campRepo.statuses)
	}
}

func TestDispatchUnknownCampaign(t *testing.T) {
	d := NewDispatcher(&mockCampaignRepo{}, &mockRecipientRepo{}, &mockSettingsRepo{settings: completeSettings()}, &mockMailer{}, "https://crm.test")
	_, err := d.Dispatch("missing")
	if !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("err = %v", err)
	}
}
