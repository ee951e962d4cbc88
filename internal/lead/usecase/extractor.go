package usecase

import (
	"regexp"
	"strings"

	leaddomain "traincrm-backend/internal/lead/domain"
	"traincrm-backend/pkg/imap"
)

// LeadDraft is what a body parser pulls out of one enquiry message before
// importer defaults are applied.
type LeadDraft struct {
	Name        string
	Email       string
	Phone       string
	CompanyName string
	Notes       string
}

// BodyParser classifies and extracts one known lead-source body layout.
// Additional enquiry formats become further implementations, not more
// branches in the importer.
type BodyParser interface {
	// Matches reports whether the body came from this parser's source form.
	Matches(body string) bool
	Parse(msg imap.Message) LeadDraft
}

// enquiryFormParser handles submissions forwarded from the website
// booking-enquiry form: a marker URL fragment in the body plus
// "Label :: value" field lines.
type enquiryFormParser struct {
	marker string
	fields map[string]*regexp.Regexp
}

// Labels the upstream form emits. Everything from a label up to the next
// label or the upload-notice footer belongs to that field.
var enquiryLabels = []string{
	"Name & Surname",
	"Email Address",
	"Phone Number",
	"Company",
	"Message",
}

// NewEnquiryFormParser builds the parser for the booking-enquiry form whose
// submissions carry the given marker substring.
func NewEnquiryFormParser(marker string) BodyParser {
	var stops []string
	for _, label := range enquiryLabels {
		stops = append(stops, regexp.QuoteMeta(label))
	}
	// Field values stop at the next known label, the footer marker, or the
	// end of the body: this keeps trailing boilerplate out of the message.
	stop := `\s*(?:(?:` + strings.Join(stops, "|") + `)\s*::|---|$)`

	fields := make(map[string]*regexp.Regexp, len(enquiryLabels))
	for _, label := range enquiryLabels {
		fields[label] = regexp.MustCompile(`(?is)` + regexp.QuoteMeta(label) + `\s*::\s*(.*?)` + stop)
	}
	return &enquiryFormParser{marker: marker, fields: fields}
}

// Matches is an exact-substring check, not a classifier: the inbox mixes
// enquiry forwards with unrelated mail, and only the form marker is trusted.
func (p *enquiryFormParser) Matches(body string) bool {
	return strings.Contains(body, p.marker)
}

func (p *enquiryFormParser) Parse(msg imap.Message) LeadDraft {
	draft := LeadDraft{
		Name:        p.field(msg.BodyExcerpt, "Name & Surname"),
		Email:       p.field(msg.BodyExcerpt, "Email Address"),
		Phone:       p.field(msg.BodyExcerpt, "Phone Number"),
		CompanyName: p.field(msg.BodyExcerpt, "Company"),
		Notes:       p.field(msg.BodyExcerpt, "Message"),
	}
	if draft.Name == "" {
		draft.Name = leaddomain.UnknownName
	}
	if draft.Email == "" {
		// Partial data still makes a visible lead; fall back to the
		// raw From header.
		draft.Email = strings.TrimSpace(msg.From)
	}
	return draft
}

func (p *enquiryFormParser) field(body, label string) string {
	if m := p.fields[label].FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
