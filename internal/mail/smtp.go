package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// smtpSession is the subset of *smtp.Client the send path uses; tests
// substitute fakes.
type smtpSession interface {
	StartTLS(config *tls.Config) error
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// dialSMTP opens a plaintext connection to the relay. The session is
// upgraded with STARTTLS before any credentials are sent.
func dialSMTP(host string, port int, timeout time.Duration) (smtpSession, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial to %s: %w", addr, err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating SMTP client: %w", err)
	}
	return client, nil
}

// Send submits one plain-text message through the relay and returns a
// receipt. The relay session has the same scoped lifecycle as the store
// operations: dial, upgrade, authenticate, submit, quit.
func (c *Client) Send(ctx context.Context, req SendRequest) (*SendReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.To) == "" {
		return nil, &SendError{Op: opSend, Err: errors.New("recipient address is required")}
	}

	raw, err := composeMessage(c.creds.Address, req, c.now())
	if err != nil {
		return nil, &SendError{Op: opSend, Err: fmt.Errorf("composing message: %w", err)}
	}

	sess, err := c.newRelay()
	if err != nil {
		return nil, &ConnectError{Op: opSend, Err: err}
	}
	defer func() { _ = sess.Close() }()

	if err := sess.StartTLS(&tls.Config{ServerName: c.creds.SMTPHost}); err != nil {
		return nil, &ConnectError{Op: opSend, Err: fmt.Errorf("SMTP STARTTLS: %w", err)}
	}

	auth := smtp.PlainAuth("", c.creds.Address, c.creds.Password, c.creds.SMTPHost)
	if err := sess.Auth(auth); err != nil {
		return nil, &AuthError{Op: opSend, Err: err}
	}

	if err := sess.Mail(c.creds.Address); err != nil {
		return nil, &SendError{Op: opSend, Err: fmt.Errorf("SMTP MAIL FROM: %w", err)}
	}
	for _, rcpt := range recipientList(req) {
		if err := sess.Rcpt(rcpt); err != nil {
			return nil, &SendError{Op: opSend, Err: fmt.Errorf("SMTP RCPT TO %s: %w", rcpt, err)}
		}
	}

	writer, err := sess.Data()
	if err != nil {
		return nil, &SendError{Op: opSend, Err: fmt.Errorf("SMTP DATA: %w", err)}
	}
	if _, err := writer.Write(raw); err != nil {
		return nil, &SendError{Op: opSend, Err: fmt.Errorf("writing message body: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return nil, &SendError{Op: opSend, Err: fmt.Errorf("closing message body: %w", err)}
	}

	if err := sess.Quit(); err != nil {
		return nil, &SendError{Op: opSend, Err: fmt.Errorf("SMTP QUIT: %w", err)}
	}

	c.logger.Info("email sent", "to", req.To)
	return &SendReceipt{
		Message: fmt.Sprintf("Email sent successfully to %s", req.To),
		SentAt:  c.now(),
	}, nil
}

// recipientList returns the envelope recipients: To, plus CC when present.
func recipientList(req SendRequest) []string {
	recipients := []string{req.To}
	if req.CC != "" {
		recipients = append(recipients, req.CC)
	}
	return recipients
}

// composeMessage renders a single-part plain-text message with UTF-8 safe
// headers and a generated Message-ID.
func composeMessage(from string, req SendRequest, now time.Time) ([]byte, error) {
	var h gomail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*gomail.Address{{Address: from}})
	h.SetAddressList("To", []*gomail.Address{{Address: req.To}})
	if req.CC != "" {
		h.SetAddressList("Cc", []*gomail.Address{{Address: req.CC}})
	}
	h.SetSubject(req.Subject)
	h.SetMessageID(fmt.Sprintf("%s@%s", uuid.NewString(), addressDomain(from)))

	var buf bytes.Buffer
	writer, err := gomail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(writer, req.Body); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// addressDomain returns the host part of an address, for Message-ID
// generation.
func addressDomain(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 && i+1 < len(address) {
		return address[i+1:]
	}
	return "localhost"
}
