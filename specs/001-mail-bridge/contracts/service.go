// Package contracts defines the operation surface the agent-facing layer
// consumes. The mailbox engine implements it; transports and CLI commands
// depend on it.
package contracts

import (
	"context"
	"time"
)

// MailService is the contract between the mailbox engine and any surface
// that exposes it (MCP tools, CLI checks).
type MailService interface {
	// ListRecent returns up to count messages from folder, most recent
	// first. A smaller mailbox yields fewer records; count 0 yields none.
	ListRecent(ctx context.Context, count int, folder string) ([]Message, error)

	// Search returns the messages matching every set criterion, most
	// recent first. Sender and unread state are evaluated by the mail
	// server; subject matching is a case-insensitive substring check
	// applied after header decoding.
	Search(ctx context.Context, filter Filter) ([]Message, error)

	// Send submits a message through the configured SMTP relay and
	// reports when it was accepted.
	Send(ctx context.Context, req SendRequest) (*SendReceipt, error)

	// UnreadCount reports how many messages in folder lack the seen flag.
	UnreadCount(ctx context.Context, folder string) (int, error)
}

// Message is the normalized representation of one mailbox message.
// All header fields are decoded; no MIME encoded-words remain.
type Message struct {
	ID      string // mailbox UID, stable within one folder session
	Subject string
	From    string
	Date    string // original header value, decoded but not reparsed
	Body    string // first text/plain part, or raw payload for single-part mail
	Preview string // body capped at 150 runes, newlines collapsed, "..." suffix
}

// Filter narrows a search. Zero values mean "no constraint"; Unread nil
// means seen state is not filtered at all.
type Filter struct {
	Sender  string
	Subject string
	Unread  *bool
	Folder  string
}

// SendRequest describes an outgoing message. To is required; CC is an
// optional single address.
type SendRequest struct {
	To      string
	Subject string
	Body    string
	CC      string
}

// SendReceipt confirms a completed submission.
type SendReceipt struct {
	Message string
	SentAt  time.Time
}

// Error taxonomy for every operation:
//
//   ConnectError  - dialing or securing a server connection failed, or the
//                   requested folder could not be selected
//   AuthError     - the server rejected the credentials (IMAP login or
//                   SMTP AUTH)
//   SendError     - the relay rejected the envelope, payload, or close
//
// Failures while reading an already-open mailbox (search, fetch, parse)
// surface as plain wrapped errors: they indicate a degraded session, not a
// configuration problem. A read operation either returns the full result
// set or an error, never a partial list.
