package smtp

import (
	"encoding/base64"
	"errors"
	"net"
	"strings"
	"testing"

	"traincrm-backend/pkg/transport"
)

// fakeRelay answers each client turn with the next canned reply. The DATA
// payload counts as one turn ended by the dot line.
type fakeRelay struct {
	conn    net.Conn
	turns   []string
	replies []string
}

func runFakeRelay(conn net.Conn, replies []string) *fakeRelay {
	r := &fakeRelay{conn: conn, replies: replies}
	go r.loop()
	return r
}

func (r *fakeRelay) loop() {
	defer r.conn.Close()
	r.conn.Write([]byte("220 relay.test ESMTP\r\n"))
	buf := make([]byte, 8192)
	var pending string
	for _, reply := range r.replies {
		var turn string
		for {
			inData := strings.HasPrefix(reply, "@data@")
			var done bool
			turn, pending, done = cutTurn(pending, inData)
			if done {
				break
			}
			n, err := r.conn.Read(buf)
			if err != nil {
				return
			}
			pending += string(buf[:n])
		}
		r.turns = append(r.turns, turn)
		r.conn.Write([]byte(strings.TrimPrefix(reply, "@data@")))
	}
}

func cutTurn(pending string, inData bool) (turn, rest string, ok bool) {
	sep := "\r\n"
	if inData {
		sep = "\r\n.\r\n"
	}
	i := strings.Index(pending, sep)
	if i < 0 {
		return "", pending, false
	}
	return pending[:i], pending[i+len(sep):], true
}

var testSettings = Settings{
	Host:     "relay.test",
	Port:     465,
	Username: "crm@trainingprovider.co.uk",
	Password: "secret",
	From:     "crm@trainingprovider.co.uk",
	FromName: "Training Team",
}

var testEmail = Email{
	To:       "jane@example.com",
	Subject:  "Joining instructions",
	HTMLBody: "<p>Hello</p>\n.leading dot line",
}

func happyReplies() []string {
	return []string{
		"250 traincrm greets you\r\n",
		"334 VXNlcm5hbWU6\r\n",
		"334 UGFzc3dvcmQ6\r\n",
		"235 2.7.0 Authentication successful\r\n",
		"250 2.1.0 Ok\r\n",
		"250 2.1.5 Ok\r\n",
		"354 End data with <CR><LF>.<CR><LF>\r\n",
		"@data@250 2.0.0 Ok: queued\r\n",
		"221 2.0.0 Bye\r\n",
	}
}

func TestSendHappyPath(t *testing.T) {
	client, server := net.Pipe()
	relay := runFakeRelay(server, happyReplies())

	c := NewClient()
	if err := c.run(transport.NewConn(client, "relay.test"), testSettings, testEmail); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := relay.turns[1]; got != "AUTH LOGIN" {
		t.Errorf("auth turn = %q", got)
	}
	wantUser := base64.StdEncoding.EncodeToString([]byte(testSettings.Username))
	if got := relay.turns[2]; got != wantUser {
		t.Errorf("username turn = %q, want %q", got, wantUser)
	}
	wantPass := base64.StdEncoding.EncodeToString([]byte(testSettings.Password))
	if got := relay.turns[3]; got != wantPass {
		t.Errorf("password turn = %q, want %q", got, wantPass)
	}
	if got := relay.turns[4]; got != "MAIL FROM:<crm@trainingprovider.co.uk>" {
		t.Errorf("mail from turn = %q", got)
	}
	if got := relay.turns[5]; got != "RCPT TO:<jane@example.com>" {
		t.Errorf("rcpt turn = %q", got)
	}

	payload := relay.turns[7]
	for _, want := range []string{
		"From: Training Team <crm@trainingprovider.co.uk>",
		"To: jane@example.com",
		"Subject: Joining instructions",
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=utf-8",
		"<p>Hello</p>",
	} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q", want)
		}
	}
	if !strings.Contains(payload, "\r\n..leading dot line") {
		t.Errorf("body not dot-stuffed: %q", payload)
	}
}

func TestSendAuthRejected(t *testing.T) {
	client, server := net.Pipe()
	runFakeRelay(server, []string{
		"250 ok\r\n",
		"334 VXNlcm5hbWU6\r\n",
		"334 UGFzc3dvcmQ6\r\n",
		"535 5.7.8 Authentication credentials invalid\r\n",
	})

	c := NewClient()
	err := c.run(transport.NewConn(client, "relay.test"), testSettings, testEmail)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
	if authErr.Host != "relay.test" {
		t.Errorf("host = %q", authErr.Host)
	}
}

func TestSendRejectedRecipient(t *testing.T) {
	client, server := net.Pipe()
	runFakeRelay(server, []string{
		"250 ok\r\n",
		"334 a\r\n",
		"334 b\r\n",
		"235 ok\r\n",
		"250 ok\r\n",
		"550 5.1.1 No such user\r\n",
	})

	c := NewClient()
	err := c.run(transport.NewConn(client, "relay.test"), testSettings, testEmail)
	var replyErr *ReplyError
	if !errors.As(err, &replyErr) {
		t.Fatalf("expected *ReplyError, got %v", err)
	}
	if replyErr.Step != "RCPT TO" || replyErr.Code != 550 {
		t.Errorf("step = %q code = %d", replyErr.Step, replyErr.Code)
	}
}

func TestReplyDoneMultiline(t *testing.T) {
	if replyDone("250-relay.test\r\n250-PIPELINING\r\n") {
		t.Error("continuation lines must not terminate the reply")
	}
	if !replyDone("250-relay.test\r\n250 AUTH LOGIN PLAIN\r\n") {
		t.Error("final code line should terminate the reply")
	}
	if replyDone("250 partial") {
		t.Error("reply without line ending is incomplete")
	}
}

func TestSettingsComplete(t *testing.T) {
	if !testSettings.Complete() {
		t.Error("test settings should be complete")
	}
	incomplete := testSettings
	incomplete.Password = ""
	if incomplete.Complete() {
		t.Error("missing password should be incomplete")
	}
}
