package usecase

import (
	"fmt"
	"log"

	"traincrm-backend/pkg/config"
	"traincrm-backend/pkg/smtp"
)

// Mailer sends one rendered message through a relay.
type Mailer interface {
	Send(settings smtp.Settings, email smtp.Email) error
}

// Sender renders and delivers transactional emails over the relay
// configured for the service. One message, one recipient, one connection.
type Sender struct {
	mailer   Mailer
	settings smtp.Settings
}

func NewSender(mailer Mailer, cfg *config.Config) *Sender {
	return &Sender{
		mailer: mailer,
		settings: smtp.Settings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		},
	}
}

func (s *Sender) SendBookingForm(to string, d BookingFormData) error {
	subject, html := RenderBookingForm(d)
	return s.send(to, subject, html)
}

func (s *Sender) SendJoiningInstructions(to string, d JoiningInstructionsData) error {
	subject, html := RenderJoiningInstructions(d)
	return s.send(to, subject, html)
}

func (s *Sender) SendPaymentLink(to string, d PaymentLinkData) error {
	subject, html := RenderPaymentLink(d)
	return s.send(to, subject, html)
}

func (s *Sender) send(to, subject, html string) error {
	if !s.settings.Complete() {
		return fmt.Errorf("transactional SMTP settings incomplete: set SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD and SMTP_FROM")
	}
	if err := s.mailer.Send(s.settings, smtp.Email{To: to, Subject: subject, HTMLBody: html}); err != nil {
		return err
	}
	log.Printf("[Transactional] sent %q to %s", subject, to)
	return nil
}
