package mail

import (
	"errors"
	"time"
)

// DefaultFolder is the mailbox used when a caller leaves the folder empty.
const DefaultFolder = "INBOX"

// previewLimit is the number of leading characters kept in a message preview.
const previewLimit = 150

// Credentials holds the account identity and the store and relay endpoints
// every operation connects with.
type Credentials struct {
	Address  string // account identity, also used as SMTP envelope sender
	Password string
	IMAPHost string
	IMAPPort int
	SMTPHost string
	SMTPPort int
}

// Validate reports whether the credentials are complete enough to open a
// session. Host and port defaults are the caller's responsibility.
func (c Credentials) Validate() error {
	if c.Address == "" {
		return errors.New("account address is required")
	}
	if c.Password == "" {
		return errors.New("account password is required")
	}
	if c.IMAPHost == "" || c.IMAPPort == 0 {
		return errors.New("imap endpoint is required")
	}
	if c.SMTPHost == "" || c.SMTPPort == 0 {
		return errors.New("smtp endpoint is required")
	}
	return nil
}

// Message is the normalized record produced for every message returned by a
// read operation. Header fields that are absent or undecodable are left
// empty rather than failing the whole message.
type Message struct {
	ID      string // store-assigned UID, unique within one folder
	Subject string
	From    string
	Date    string
	Body    string // first plain-text part, decoded
	Preview string // body truncated for display
}

// Filter narrows a mailbox query. Zero-valued fields are ignored; Sender and
// Unread are matched by the store, Subject is matched client-side as a
// case-insensitive substring of the decoded subject.
type Filter struct {
	Sender  string
	Subject string
	Unread  *bool
	Folder  string
}

// SendRequest describes a single outgoing plain-text message.
type SendRequest struct {
	To      string
	Subject string
	Body    string
	CC      string
}

// SendReceipt confirms an accepted submission.
type SendReceipt struct {
	Message string
	SentAt  time.Time
}
