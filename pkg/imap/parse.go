package imap

import (
	"fmt"
	"html"
	"mime"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Message is one fetched mailbox message, parsed just far enough for the
// lead extractor. It is transient: only the lead derived from it persists.
type Message struct {
	SeqNum      int
	From        string
	Subject     string
	BodyExcerpt string
	MessageID   string
	ReceivedAt  time.Time
}

var (
	fetchSegmentRe = regexp.MustCompile(`(?m)^\* (\d+) FETCH `)

	fromHeaderRe    = regexp.MustCompile(`(?mi)^From:[ \t]*(.+)$`)
	subjectHeaderRe = regexp.MustCompile(`(?mi)^Subject:[ \t]*(.+)$`)
	dateHeaderRe    = regexp.MustCompile(`(?mi)^Date:[ \t]*(.+)$`)
	messageIDRe     = regexp.MustCompile(`(?mi)^Message-ID:[ \t]*<?([^>\s]+)>?`)

	// bodyTextRe locates the literal that follows the BODY[TEXT] item in a
	// FETCH reply and captures everything after it.
	bodyTextRe = regexp.MustCompile(`(?is)BODY\[TEXT\](?:<\d+>)?\s*\{\d+\}\r?\n(.*)`)

	brTagRe   = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTagRe = regexp.MustCompile(`<[^>]*>`)
)

var headerDecoder = new(mime.WordDecoder)

// parseSearchIDs pulls the space-separated id list out of an untagged
// SEARCH reply. A reply with no ids yields an empty slice.
func parseSearchIDs(reply string) []int {
	var ids []int
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimRight(line, "\r")
		rest, ok := strings.CutPrefix(line, "* SEARCH")
		if !ok {
			continue
		}
		for _, field := range strings.Fields(rest) {
			if id, err := strconv.Atoi(field); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// parseFetchReply splits a batch FETCH reply into per-message segments and
// parses each into a Message. Segments missing both From and Subject are
// dropped; they cannot be classified.
func parseFetchReply(reply string) []Message {
	matches := fetchSegmentRe.FindAllStringSubmatchIndex(reply, -1)
	var out []Message
	for i, m := range matches {
		seq, _ := strconv.Atoi(reply[m[2]:m[3]])
		end := len(reply)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		segment := reply[m[1]:end]

		msg, ok := parseSegment(seq, segment)
		if !ok {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func parseSegment(seq int, segment string) (Message, bool) {
	msg := Message{
		SeqNum:     seq,
		From:       decodeHeader(firstMatch(fromHeaderRe, segment)),
		Subject:    decodeHeader(firstMatch(subjectHeaderRe, segment)),
		ReceivedAt: parseDate(firstMatch(dateHeaderRe, segment)),
	}
	if msg.From == "" && msg.Subject == "" {
		return Message{}, false
	}

	msg.BodyExcerpt = cleanBody(extractBodyText(segment))

	msg.MessageID = firstMatch(messageIDRe, segment)
	if msg.MessageID == "" {
		// Never empty: the message id is the dedup key.
		msg.MessageID = fmt.Sprintf("seq-%d@mailbox.import", seq)
	}
	return msg, true
}

func firstMatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractBodyText(segment string) string {
	m := bodyTextRe.FindStringSubmatch(segment)
	if m == nil {
		return ""
	}
	body := m[1]
	// Strip the closing paren line of the FETCH response item.
	if i := strings.LastIndex(body, "\r\n)"); i >= 0 {
		body = body[:i]
	}
	return body
}

// decodeHeader undoes RFC 2047 encoded words and HTML entities. Returns the
// raw value when decoding fails.
func decodeHeader(value string) string {
	if decoded, err := headerDecoder.DecodeHeader(value); err == nil {
		value = decoded
	}
	return strings.TrimSpace(html.UnescapeString(value))
}

// cleanBody converts webform HTML-in-plain-text to readable text: entities
// decoded, <br> to newlines, every other tag stripped.
func cleanBody(body string) string {
	body = html.UnescapeString(body)
	body = brTagRe.ReplaceAllString(body, "\n")
	body = htmlTagRe.ReplaceAllString(body, "")
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.TrimSpace(body)
}

// parseDate is best-effort; an unparseable Date header falls back to now.
func parseDate(value string) time.Time {
	if value != "" {
		if t, err := mail.ParseDate(value); err == nil {
			return t
		}
	}
	return time.Now()
}
