// Package smtp streams fully-formed HTML messages to a submission relay over
// implicit TLS: EHLO, AUTH LOGIN, MAIL FROM, RCPT TO, DATA, QUIT. Every
// server reply code is verified, so a nil return means the relay accepted
// the message, not merely that the socket writes succeeded.
package smtp

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"traincrm-backend/pkg/transport"
)

const (
	connectTimeout = 15 * time.Second
	stepTimeout    = 30 * time.Second
)

// Settings is the relay configuration a send runs against. Transactional
// sends take it from service config; campaign sends load it from the
// email_settings table.
type Settings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Complete reports whether every field required for a send is present.
func (s Settings) Complete() bool {
	return s.Host != "" && s.Port != 0 && s.Username != "" && s.Password != "" && s.From != ""
}

// Email is one fully rendered outbound message.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
}

// AuthError is a negative relay reply during AUTH LOGIN.
type AuthError struct {
	Host  string
	Reply string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("smtp auth rejected by %s: %s", e.Host, strings.TrimSpace(e.Reply))
}

// ReplyError is an unexpected reply code at any other protocol step.
type ReplyError struct {
	Step  string
	Code  int
	Reply string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("smtp %s: unexpected reply %d: %s", e.Step, e.Code, strings.TrimSpace(e.Reply))
}

// Client sends mail over raw SMTP. The zero value is ready to use.
type Client struct{}

func NewClient() *Client { return &Client{} }

// Send delivers one message. The connection is closed on every path.
func (c *Client) Send(settings Settings, email Email) error {
	conn, err := transport.Dial(settings.Host, settings.Port, connectTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetReadTimeout(stepTimeout)

	return c.run(conn, settings, email)
}

// run drives the protocol on an open connection.
func (c *Client) run(conn *transport.Conn, settings Settings, email Email) error {
	greeting, err := conn.ReadUntil(replyDone)
	if err != nil {
		return err
	}
	if err := expectCode("greeting", greeting, 220); err != nil {
		return err
	}

	if err := c.exchange(conn, "EHLO traincrm", "EHLO", 250); err != nil {
		return err
	}
	if err := c.authenticate(conn, settings); err != nil {
		return err
	}
	if err := c.exchange(conn, fmt.Sprintf("MAIL FROM:<%s>", settings.From), "MAIL FROM", 250); err != nil {
		return err
	}
	if err := c.exchange(conn, fmt.Sprintf("RCPT TO:<%s>", email.To), "RCPT TO", 250); err != nil {
		return err
	}
	if err := c.exchange(conn, "DATA", "DATA", 354); err != nil {
		return err
	}

	payload := buildMessage(settings, email)
	if err := c.exchange(conn, payload+"\r\n.", "message body", 250); err != nil {
		return err
	}

	// QUIT is courtesy; the message is already accepted.
	_, _ = conn.SendCommand("QUIT", replyDone)
	return nil
}

func (c *Client) exchange(conn *transport.Conn, line, step string, wantCode int) error {
	reply, err := conn.SendCommand(line, replyDone)
	if err != nil {
		return err
	}
	return expectCode(step, reply, wantCode)
}

// authenticate runs AUTH LOGIN: username and password each base64-encoded in
// their own command turn.
func (c *Client) authenticate(conn *transport.Conn, settings Settings) error {
	steps := []struct {
		line string
		want int
	}{
		{"AUTH LOGIN", 334},
		{base64.StdEncoding.EncodeToString([]byte(settings.Username)), 334},
		{base64.StdEncoding.EncodeToString([]byte(settings.Password)), 235},
	}
	for _, step := range steps {
		reply, err := conn.SendCommand(step.line, replyDone)
		if err != nil {
			return err
		}
		if replyCode(reply) != step.want {
			return &AuthError{Host: conn.Host(), Reply: reply}
		}
	}
	return nil
}

func buildMessage(settings Settings, email Email) string {
	from := settings.From
	if settings.FromName != "" {
		from = fmt.Sprintf("%s <%s>", settings.FromName, settings.From)
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + email.To + "\r\n")
	b.WriteString("Subject: " + email.Subject + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")

	// Dot-stuff body lines so a leading "." cannot terminate DATA early.
	body := strings.ReplaceAll(email.HTMLBody, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")
	b.WriteString(strings.ReplaceAll(body, "\r\n.", "\r\n.."))
	return b.String()
}

// replyDone reports a complete SMTP reply: the last line carries the status
// code followed by a space (continuation lines use "250-...").
func replyDone(acc string) bool {
	trimmed := strings.TrimRight(acc, "\r\n")
	if !strings.HasSuffix(acc, "\n") {
		return false
	}
	lines := strings.Split(trimmed, "\n")
	last := strings.TrimRight(lines[len(lines)-1], "\r")
	return len(last) >= 4 && isDigits(last[:3]) && last[3] == ' '
}

func replyCode(reply string) int {
	trimmed := strings.TrimRight(reply, "\r\n")
	lines := strings.Split(trimmed, "\n")
	last := strings.TrimRight(lines[len(lines)-1], "\r")
	if len(last) < 3 || !isDigits(last[:3]) {
		return 0
	}
	return int(last[0]-'0')*100 + int(last[1]-'0')*10 + int(last[2]-'0')
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func expectCode(step, reply string, want int) error {
	if code := replyCode(reply); code != want {
		return &ReplyError{Step: step, Code: code, Reply: reply}
	}
	return nil
}
