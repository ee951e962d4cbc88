package usecase

import (
	"strings"
	"testing"
	"time"
)

func TestCurrencySymbol(t *testing.T) {
	cases := map[string]string{
		"GBP": "£",
		"gbp": "£",
		"EUR": "€",
		"USD": "$",
		"ZAR": "ZAR ",
	}
	for code, want := range cases {
		if got := CurrencySymbol(code); got != want {
			t.Errorf("CurrencySymbol(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestFormatCourseDate(t *testing.T) {
	d := time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC)
	if got := FormatCourseDate(d); got != "Monday 13 July 2026" {
		t.Errorf("got %q", got)
	}
	if got := FormatCourseDate(time.Time{}); got != "to be confirmed" {
		t.Errorf("zero date = %q", got)
	}
}

func TestRenderBookingForm(t *testing.T) {
	subject, html := RenderBookingForm(BookingFormData{
		RecipientName: "Jane",
		CourseName:    "CPCS Telehandler",
		StartDate:     time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC),
		FormURL:       "https://crm.test/forms/bf-1",
	})

	if subject != "Complete your booking for CPCS Telehandler" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{"Hi Jane,", "CPCS Telehandler", "Monday 13 July 2026", `href="https://crm.test/forms/bf-1"`} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestRenderJoiningInstructions(t *testing.T) {
	_, html := RenderJoiningInstructions(JoiningInstructionsData{
		RecipientName: "Jane Doe",
		CourseName:    "CPCS Telehandler",
		StartDate:     time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC),
		StartTime:     "08:30",
		Venue:         "Unit 4, Training Centre",
	})

	for _, want := range []string{"Monday 13 July 2026 at 08:30", "Unit 4, Training Centre"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestRenderPaymentLinkFormatsAmount(t *testing.T) {
	subject, html := RenderPaymentLink(PaymentLinkData{
		RecipientName: "Jane",
		CourseName:    "CPCS Telehandler",
		Amount:        450,
		Currency:      "GBP",
		PaymentURL:    "https://pay.test/inv-1",
	})

	if subject != "Payment for CPCS Telehandler" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(html, "£450.00") {
		t.Errorf("amount not formatted: %s", html)
	}
	if !strings.Contains(html, `href="https://pay.test/inv-1"`) {
		t.Error("payment link missing")
	}
}

func TestRenderEmptyNameGreetsGenerically(t *testing.T) {
	_, html := RenderBookingForm(BookingFormData{CourseName: "X", FormURL: "https://crm.test/f"})
	if !strings.Contains(html, "Hi there,") {
		t.Errorf("fallback greeting missing:\n%s", html)
	}
}
