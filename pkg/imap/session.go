// Package imap reads the enquiry mailbox over a hand-rolled subset of the
// IMAP protocol: LOGIN, SELECT INBOX, SEARCH ALL and batched FETCH of header
// fields plus a bounded body slice. It is deliberately not a general IMAP
// client; it only does what the lead importer needs.
package imap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"traincrm-backend/pkg/transport"
)

const (
	connectTimeout = 15 * time.Second
	readTimeout    = 30 * time.Second

	// fetchBatchSize bounds how many messages one FETCH round-trip carries.
	fetchBatchSize = 10

	// bodyPeekBytes bounds the body slice requested per message. Enquiry
	// form bodies are short; anything past this is signature noise.
	bodyPeekBytes = 5000
)

// Credentials identify the mailbox the importer reads.
type Credentials struct {
	Host     string
	Port     int
	Username string
	Password string
}

// AuthError is a negative server reply to LOGIN.
type AuthError struct {
	Host  string
	Reply string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("imap login rejected by %s: %s", e.Host, firstLine(e.Reply))
}

// MailboxError is a negative server reply to SELECT.
type MailboxError struct {
	Mailbox string
	Reply   string
}

func (e *MailboxError) Error() string {
	return fmt.Sprintf("imap select %s failed: %s", e.Mailbox, firstLine(e.Reply))
}

// Session is an authenticated connection with INBOX selected. A negative
// reply during setup is terminal; callers retry with a whole new session.
type Session struct {
	conn   *transport.Conn
	tagSeq int
}

// Connect dials the mailbox, reads the greeting, authenticates and selects
// INBOX. The connection is closed before returning any error.
func Connect(creds Credentials) (*Session, error) {
	conn, err := transport.Dial(creds.Host, creds.Port, connectTimeout)
	if err != nil {
		return nil, err
	}
	conn.SetReadTimeout(readTimeout)

	s := &Session{conn: conn}
	if err := s.handshake(creds); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) handshake(creds Credentials) error {
	// Greeting is a single untagged line, e.g. "* OK ready".
	if _, err := s.conn.ReadUntil(containsLineBreak); err != nil {
		return err
	}

	reply, tag, err := s.command(fmt.Sprintf("LOGIN %q %q", creds.Username, creds.Password))
	if err != nil {
		return err
	}
	if tagStatus(reply, tag) != "OK" {
		return &AuthError{Host: creds.Host, Reply: reply}
	}

	reply, tag, err = s.command("SELECT INBOX")
	if err != nil {
		return err
	}
	if tagStatus(reply, tag) != "OK" {
		return &MailboxError{Mailbox: "INBOX", Reply: reply}
	}
	return nil
}

// command issues one tagged command and reads the full reply.
func (s *Session) command(cmd string) (reply, tag string, err error) {
	s.tagSeq++
	tag = fmt.Sprintf("a%03d", s.tagSeq)
	reply, err = s.conn.SendCommand(tag+" "+cmd, taggedDone(tag))
	return reply, tag, err
}

// ListRecentIDs returns the sequence numbers of the most recent limit
// messages, ascending. An empty mailbox yields an empty slice, not an error.
func (s *Session) ListRecentIDs(limit int) ([]int, error) {
	reply, _, err := s.command("SEARCH ALL")
	if err != nil {
		return nil, err
	}

	ids := parseSearchIDs(reply)
	sort.Ints(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}
	return ids, nil
}

// FetchMessages pulls the given messages in fixed-size batches, requesting
// only the headers the extractor needs plus a bounded body slice, and parses
// each batch reply into structured messages. Messages whose segment cannot
// be parsed are dropped, not fatal.
func (s *Session) FetchMessages(ids []int) ([]Message, error) {
	var out []Message
	for start := 0; start < len(ids); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		set := make([]string, len(batch))
		for i, id := range batch {
			set[i] = strconv.Itoa(id)
		}
		cmd := fmt.Sprintf(
			"FETCH %s (BODY.PEEK[HEADER.FIELDS (FROM SUBJECT DATE MESSAGE-ID)] BODY.PEEK[TEXT]<0.%d>)",
			strings.Join(set, ","), bodyPeekBytes,
		)

		reply, _, err := s.command(cmd)
		if err != nil {
			return out, err
		}
		out = append(out, parseFetchReply(reply)...)
	}
	return out, nil
}

// Logout is best-effort cleanup; server and close errors are swallowed.
func (s *Session) Logout() {
	_, _, _ = s.command("LOGOUT")
	_ = s.conn.Close()
}

func containsLineBreak(acc string) bool {
	return strings.Contains(acc, "\n")
}

// taggedDone matches the reply terminator for one IMAP command: a line
// starting with the command tag followed by OK, NO or BAD.
func taggedDone(tag string) transport.TerminatorFunc {
	return func(acc string) bool {
		return tagStatus(acc, tag) != ""
	}
}

func tagStatus(reply, tag string) string {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimRight(line, "\r")
		rest, ok := strings.CutPrefix(line, tag+" ")
		if !ok {
			continue
		}
		for _, status := range []string{"OK", "NO", "BAD"} {
			if rest == status || strings.HasPrefix(rest, status+" ") {
				return status
			}
		}
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
