package usecase

import (
	"fmt"
	"log"

	leaddomain "traincrm-backend/internal/lead/domain"
	"traincrm-backend/internal/lead/repository"
	"traincrm-backend/pkg/config"
	"traincrm-backend/pkg/imap"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MailboxSession is the slice of the IMAP session the importer drives.
type MailboxSession interface {
	ListRecentIDs(limit int) ([]int, error)
	FetchMessages(ids []int) ([]imap.Message, error)
	Logout()
}

// MailboxDialer opens an authenticated session; imap.Connect in production.
type MailboxDialer func(creds imap.Credentials) (MailboxSession, error)

// ScannedEmail is the operator-visibility line the import response carries
// for every message the run looked at, enquiry or not.
type ScannedEmail struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Enquiry bool   `json:"enquiry"`
}

// ImportResult summarizes one importer run. Per-message failures land in
// Errors; they never abort the batch.
type ImportResult struct {
	Created   int                `json:"created"`
	Skipped   int                `json:"skipped"`
	ScanLimit int                `json:"scan_limit"`
	Errors    []string           `json:"errors"`
	Leads     []*leaddomain.Lead `json:"leads"`
	AllEmails []ScannedEmail     `json:"all_emails"`
}

// Importer pulls enquiry emails from the mailbox and turns them into leads.
// Re-running over an unchanged mailbox is a no-op: the source message id
// unique key, not mutual exclusion, prevents duplicates.
type Importer struct {
	leadRepo repository.LeadRepository
	dial     MailboxDialer
	parsers  []BodyParser
	cfg      *config.Config
}

func NewImporter(leadRepo repository.LeadRepository, dial MailboxDialer, parsers []BodyParser, cfg *config.Config) *Importer {
	return &Importer{
		leadRepo: leadRepo,
		dial:     dial,
		parsers:  parsers,
		cfg:      cfg,
	}
}

// ImportNew scans the most recent messages and imports unseen enquiries.
// Connection and authentication failures propagate; everything after a
// successful fetch is collected per message.
func (i *Importer) ImportNew() (*ImportResult, error) {
	session, err := i.dial(imap.Credentials{
		Host:     i.cfg.ImapHost,
		Port:     i.cfg.ImapPort,
		Username: i.cfg.ImapUser,
		Password: i.cfg.ImapPassword,
	})
	if err != nil {
		return nil, err
	}
	defer session.Logout()

	ids, err := session.ListRecentIDs(i.cfg.ImportScanLimit)
	if err != nil {
		return nil, err
	}

	messages, err := session.FetchMessages(ids)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		ScanLimit: i.cfg.ImportScanLimit,
		Errors:    []string{},
		Leads:     []*leaddomain.Lead{},
		AllEmails: []ScannedEmail{},
	}
	for _, msg := range messages {
		parser := i.matchParser(msg.BodyExcerpt)
		result.AllEmails = append(result.AllEmails, ScannedEmail{
			From:    msg.From,
			Subject: msg.Subject,
			Enquiry: parser != nil,
		})
		if parser == nil {
			continue
		}
		i.importOne(parser, msg, result)
	}

	log.Printf("[EmailImport] scanned %d messages: created %d, skipped %d, errors %d",
		len(messages), result.Created, result.Skipped, len(result.Errors))
	return result, nil
}

func (i *Importer) matchParser(body string) BodyParser {
	for _, p := range i.parsers {
		if p.Matches(body) {
			return p
		}
	}
	return nil
}

func (i *Importer) importOne(parser BodyParser, msg imap.Message, result *ImportResult) {
	exists, err := i.leadRepo.ExistsBySourceMessageID(msg.MessageID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("message %s: %v", msg.MessageID, err))
		return
	}
	if exists {
		result.Skipped++
		return
	}

	draft := parser.Parse(msg)
	receivedAt := msg.ReceivedAt
	lead := &leaddomain.Lead{
		ID:                uuid.New().String(),
		Name:              draft.Name,
		Email:             draft.Email,
		Phone:             draft.Phone,
		CompanyName:       draft.CompanyName,
		Notes:             draft.Notes,
		Source:            leaddomain.SourceEmailImport,
		Status:            leaddomain.StatusNew,
		Channel:           leaddomain.ChannelEmail,
		PreferredLanguage: leaddomain.DefaultLanguage,
		AssignedTo:        i.cfg.DefaultLeadOwnerID,
		SourceMessageID:   msg.MessageID,
		ReceivedAt:        &receivedAt,
	}

	if err := i.leadRepo.Create(lead); err != nil {
		// A concurrent run may have won the insert race; the unique key
		// turns that into a skip, not an error.
		if err == gorm.ErrDuplicatedKey {
			result.Skipped++
			return
		}
		result.Errors = append(result.Errors, fmt.Sprintf("message %s: %v", msg.MessageID, err))
		return
	}
	result.Created++
	result.Leads = append(result.Leads, lead)
}
