package usecase

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Campaign bodies are authored in a constrained markdown subset: **bold**,
// *italic*, [[text]](url) for a call-to-action button, [text](url) for a
// plain link, newlines become <br>.

var (
	buttonLinkRe = regexp.MustCompile(`\[\[([^\]]+)\]\]\(([^)]+)\)`)
	plainLinkRe  = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*`)

	absoluteHrefRe = regexp.MustCompile(`href="(https?://[^"]+)"`)
)

const buttonStyle = `display:inline-block;padding:12px 24px;background-color:#1a73e8;color:#ffffff;text-decoration:none;border-radius:4px;font-weight:bold`

// Personalize substitutes the recipient's first name into the fixed set of
// placeholder patterns the campaign composer offers.
func Personalize(template, recipientName string) string {
	firstName := strings.TrimSpace(recipientName)
	if fields := strings.Fields(firstName); len(fields) > 0 {
		firstName = fields[0]
	}
	out := strings.ReplaceAll(template, "{first_name}", firstName)
	out = strings.ReplaceAll(out, "{name}", strings.TrimSpace(recipientName))
	return out
}

// MarkdownToHTML converts the campaign markdown subset to HTML. Link forms
// run first so emphasis markers inside URLs are left alone.
func MarkdownToHTML(src string) string {
	out := buttonLinkRe.ReplaceAllString(src, `<a href="$2" style="`+buttonStyle+`">$1</a>`)
	out = plainLinkRe.ReplaceAllString(out, `<a href="$2">$1</a>`)
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRe.ReplaceAllString(out, "<em>$1</em>")
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\n", "<br>\n")
	return out
}

// RewriteLinks routes every absolute href through the click-tracking
// redirector, carrying the recipient id and the percent-encoded original
// URL. Links that already point at a tracking endpoint pass through
// untouched to avoid double-wrapping.
func RewriteLinks(html, baseURL, recipientID string) string {
	return absoluteHrefRe.ReplaceAllStringFunc(html, func(match string) string {
		target := absoluteHrefRe.FindStringSubmatch(match)[1]
		if isTrackingURL(target) {
			return match
		}
		return fmt.Sprintf(`href="%s/api/track/click?rid=%s&url=%s"`,
			baseURL, url.QueryEscape(recipientID), url.QueryEscape(target))
	})
}

func isTrackingURL(target string) bool {
	return strings.Contains(target, "/api/track/") || strings.Contains(target, "/api/unsubscribe")
}

// InjectTracking appends the open-tracking pixel and the unsubscribe footer.
func InjectTracking(html, baseURL, recipientID string) string {
	rid := url.QueryEscape(recipientID)
	pixel := fmt.Sprintf(`<img src="%s/api/track/open?rid=%s" width="1" height="1" alt="" style="display:none">`, baseURL, rid)
	unsubscribe := fmt.Sprintf(
		`<p style="font-size:12px;color:#777777"><a href="%s/api/unsubscribe?rid=%s" style="color:#777777">Unsubscribe</a></p>`,
		baseURL, rid)
	return html + "\n" + pixel + "\n" + unsubscribe
}
