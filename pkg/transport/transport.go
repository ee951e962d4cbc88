// Package transport is a minimal line-oriented request/response driver over
// an implicit-TLS socket, shared by the IMAP mailbox reader and the SMTP
// mail sender. It knows nothing about either protocol: callers supply a
// terminator predicate that decides when a server reply is complete.
package transport

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const (
	readBufferSize = 4096

	// maxReadRounds caps the accumulate loop so a call always returns even
	// when the server never sends the expected terminator.
	maxReadRounds = 200
)

// TerminatorFunc reports whether the accumulated reply text is a complete
// server response. IMAP checks for a tagged OK/NO/BAD line, SMTP for a
// final numeric reply-code line.
type TerminatorFunc func(accumulated string) bool

// Error wraps a socket-level failure with the host it happened against.
type Error struct {
	Host string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport %s %s: %v", e.Op, e.Host, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Conn is an open connection. It is owned by a single handler invocation
// and must be closed on every exit path.
type Conn struct {
	host        string
	conn        net.Conn
	readTimeout time.Duration
}

// Dial opens an implicit-TLS connection, failing fast if the connect does
// not complete within timeout.
func Dial(host string, port int, timeout time.Duration) (*Conn, error) {
	dialer := &net.Dialer{Timeout: timeout}
	addr := fmt.Sprintf("%s:%d", host, port)
	tlsConn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return nil, &Error{Host: host, Op: "dial", Err: err}
	}
	return &Conn{host: host, conn: tlsConn}, nil
}

// NewConn wraps an already-established connection.
func NewConn(conn net.Conn, host string) *Conn {
	return &Conn{host: host, conn: conn}
}

// SetReadTimeout applies a per-read deadline to every subsequent read round.
// Zero disables it.
func (c *Conn) SetReadTimeout(d time.Duration) {
	c.readTimeout = d
}

// Host returns the remote host this connection was opened against.
func (c *Conn) Host() string { return c.host }

// SendCommand writes line + CRLF and reads until done reports a complete
// reply, returning the accumulated text.
func (c *Conn) SendCommand(line string, done TerminatorFunc) (string, error) {
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		return "", &Error{Host: c.host, Op: "write", Err: err}
	}
	return c.ReadUntil(done)
}

// ReadUntil accumulates reply text until done reports completion, the server
// closes the connection, or the iteration cap is hit. Whatever was read is
// returned alongside any error.
func (c *Conn) ReadUntil(done TerminatorFunc) (string, error) {
	var acc strings.Builder
	buf := make([]byte, readBufferSize)
	for i := 0; i < maxReadRounds; i++ {
		if c.readTimeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}
		n, err := c.conn.Read(buf)
		if n > 0 {
			acc.Write(buf[:n])
			if done(acc.String()) {
				return acc.String(), nil
			}
		}
		if err != nil {
			if err == io.EOF && acc.Len() > 0 {
				return acc.String(), nil
			}
			return acc.String(), &Error{Host: c.host, Op: "read", Err: err}
		}
	}
	return acc.String(), nil
}

// Close releases the socket. Safe to call more than once.
func (c *Conn) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
