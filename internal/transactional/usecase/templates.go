package usecase

import (
	"fmt"
	"strings"
	"time"
)

// The three transactional messages the CRM sends around a booking: the
// booking-form invitation, joining instructions once a place is confirmed,
// and a payment link. Rendering is plain string composition over a shared
// layout.

type BookingFormData struct {
	RecipientName string
	CourseName    string
	StartDate     time.Time
	FormURL       string
}

type JoiningInstructionsData struct {
	RecipientName string
	CourseName    string
	StartDate     time.Time
	StartTime     string
	Venue         string
	Notes         string
}

type PaymentLinkData struct {
	RecipientName string
	CourseName    string
	Amount        float64
	Currency      string
	PaymentURL    string
}

var currencySymbols = map[string]string{
	"GBP": "£",
	"EUR": "€",
	"USD": "$",
}

// CurrencySymbol returns the display symbol for an ISO code, falling back
// to the code itself.
func CurrencySymbol(code string) string {
	if symbol, ok := currencySymbols[strings.ToUpper(code)]; ok {
		return symbol
	}
	return code + " "
}

// FormatCourseDate renders dates the way the rest of the CRM displays them.
func FormatCourseDate(t time.Time) string {
	if t.IsZero() {
		return "to be confirmed"
	}
	return t.Format("Monday 2 January 2006")
}

func greetingName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	return name
}

func layout(title, inner string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;color:#333333">
<h2 style="color:#1a73e8">%s</h2>
%s
<p>Kind regards,<br>The Training Team</p>
</body>
</html>`, title, inner)
}

func button(label, url string) string {
	return fmt.Sprintf(`<p><a href="%s" style="display:inline-block;padding:12px 24px;background-color:#1a73e8;color:#ffffff;text-decoration:none;border-radius:4px;font-weight:bold">%s</a></p>`, url, label)
}

// RenderBookingForm builds the invitation asking an enquirer to complete
// the booking form.
func RenderBookingForm(d BookingFormData) (subject, html string) {
	subject = fmt.Sprintf("Complete your booking for %s", d.CourseName)
	inner := fmt.Sprintf(`<p>Hi %s,</p>
<p>Thank you for your enquiry about <strong>%s</strong> starting %s.</p>
<p>To secure your place, please complete the booking form below.</p>
%s
<p>If the button does not work, copy this link into your browser:<br>%s</p>`,
		greetingName(d.RecipientName), d.CourseName, FormatCourseDate(d.StartDate),
		button("Complete booking form", d.FormURL), d.FormURL)
	return subject, layout("Your booking form", inner)
}

// RenderJoiningInstructions builds the pre-course joining email.
func RenderJoiningInstructions(d JoiningInstructionsData) (subject, html string) {
	subject = fmt.Sprintf("Joining instructions: %s", d.CourseName)
	start := FormatCourseDate(d.StartDate)
	if d.StartTime != "" {
		start += " at " + d.StartTime
	}
	inner := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your place on <strong>%s</strong> is confirmed.</p>
<ul>
<li><strong>Start:</strong> %s</li>
<li><strong>Venue:</strong> %s</li>
</ul>`, greetingName(d.RecipientName), d.CourseName, start, d.Venue)
	if d.Notes != "" {
		inner += fmt.Sprintf("\n<p>%s</p>", d.Notes)
	}
	return subject, layout("Joining instructions", inner)
}

// RenderPaymentLink builds the payment-request email.
func RenderPaymentLink(d PaymentLinkData) (subject, html string) {
	subject = fmt.Sprintf("Payment for %s", d.CourseName)
	amount := fmt.Sprintf("%s%.2f", CurrencySymbol(d.Currency), d.Amount)
	inner := fmt.Sprintf(`<p>Hi %s,</p>
<p>The balance of <strong>%s</strong> for <strong>%s</strong> is now due.</p>
%s
<p>If the button does not work, copy this link into your browser:<br>%s</p>`,
		greetingName(d.RecipientName), amount, d.CourseName,
		button(fmt.Sprintf("Pay %s now", amount), d.PaymentURL), d.PaymentURL)
	return subject, layout("Course payment", inner)
}
