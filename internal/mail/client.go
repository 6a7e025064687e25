package mail

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
)

const defaultDialTimeout = 30 * time.Second

// Client performs all mailbox operations for a single account. Every
// operation opens its own session, logs in, selects a folder, does its work
// and logs out; no connection outlives the call that opened it.
type Client struct {
	creds  Credentials
	logger *slog.Logger

	dialTimeout time.Duration
	now         func() time.Time

	newSession func() (imapSession, error)
	newRelay   func() (smtpSession, error)
}

// Option configures a Client.
type Option func(*Client)

// WithDialTimeout overrides the timeout for opening store and relay
// connections.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.dialTimeout = d }
}

// WithClock overrides the time source used for send receipts and outgoing
// Date headers.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// withSessionFactory replaces the IMAP dialer, for tests.
func withSessionFactory(f func() (imapSession, error)) Option {
	return func(c *Client) { c.newSession = f }
}

// withRelayFactory replaces the SMTP dialer, for tests.
func withRelayFactory(f func() (smtpSession, error)) Option {
	return func(c *Client) { c.newRelay = f }
}

// NewClient validates the credentials and returns a ready client. No
// connection is opened until an operation runs.
func NewClient(creds Credentials, logger *slog.Logger, opts ...Option) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		creds:       creds,
		logger:      logger,
		dialTimeout: defaultDialTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.newSession == nil {
		c.newSession = func() (imapSession, error) {
			return dialIMAP(c.creds.IMAPHost, c.creds.IMAPPort, c.dialTimeout)
		}
	}
	if c.newRelay == nil {
		c.newRelay = func() (smtpSession, error) {
			return dialSMTP(c.creds.SMTPHost, c.creds.SMTPPort, c.dialTimeout)
		}
	}
	return c, nil
}

// connect opens a store session, authenticates, and selects folder
// read-only. The returned closer logs the session out and must be called on
// every path once connect succeeds.
func (c *Client) connect(op, folder string) (imapSession, func(), error) {
	sess, err := c.newSession()
	if err != nil {
		return nil, nil, &ConnectError{Op: op, Err: err}
	}
	closer := func() { _ = sess.Logout().Wait() }

	if err := sess.Login(c.creds.Address, c.creds.Password).Wait(); err != nil {
		closer()
		return nil, nil, &AuthError{Op: op, Err: err}
	}
	if _, err := sess.Select(folder, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		closer()
		return nil, nil, &ConnectError{Op: op, Err: fmt.Errorf("selecting %s: %w", folder, err)}
	}
	c.logger.Debug("mailbox session opened", "op", op, "folder", folder)
	return sess, closer, nil
}

// ListRecent returns the count most recent messages in folder, newest
// first. A count of zero or less yields an empty result.
func (c *Client) ListRecent(ctx context.Context, count int, folder string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if folder == "" {
		folder = DefaultFolder
	}

	sess, closer, err := c.connect(opListRecent, folder)
	if err != nil {
		return nil, err
	}
	defer closer()

	searchData, err := sess.UIDSearch(&imap.SearchCriteria{}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("%s: searching %s: %w", opListRecent, folder, err)
	}
	uids := searchData.AllUIDs()
	if count < 0 {
		count = 0
	}
	if count < len(uids) {
		uids = uids[len(uids)-count:]
	}

	messages := make([]Message, 0, len(uids))
	for i := len(uids) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg, err := c.fetchMessage(sess, uids[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opListRecent, err)
		}
		messages = append(messages, msg)
	}

	c.logger.Debug("listed recent messages", "folder", folder, "count", len(messages))
	return messages, nil
}

// Search returns the messages in f.Folder matching f, newest first. Sender
// and unread state are matched by the store; the subject filter runs
// client-side over the decoded subject.
func (c *Client) Search(ctx context.Context, f Filter) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	folder := f.Folder
	if folder == "" {
		folder = DefaultFolder
	}

	sess, closer, err := c.connect(opSearch, folder)
	if err != nil {
		return nil, err
	}
	defer closer()

	criteria := &imap.SearchCriteria{}
	if f.Unread != nil {
		if *f.Unread {
			criteria.NotFlag = []imap.Flag{imap.FlagSeen}
		} else {
			criteria.Flag = []imap.Flag{imap.FlagSeen}
		}
	}
	if f.Sender != "" {
		criteria.Header = append(criteria.Header, imap.SearchCriteriaHeaderField{
			Key:   "From",
			Value: f.Sender,
		})
	}

	searchData, err := sess.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("%s: searching %s: %w", opSearch, folder, err)
	}

	subject := strings.ToLower(f.Subject)
	var messages []Message
	for _, uid := range searchData.AllUIDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg, err := c.fetchMessage(sess, uid)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opSearch, err)
		}
		if subject != "" && !strings.Contains(strings.ToLower(msg.Subject), subject) {
			continue
		}
		messages = append(messages, msg)
	}
	slices.Reverse(messages)

	c.logger.Debug("search finished", "folder", folder, "matched", len(messages))
	return messages, nil
}

// UnreadCount reports how many messages in folder lack the seen flag.
func (c *Client) UnreadCount(ctx context.Context, folder string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if folder == "" {
		folder = DefaultFolder
	}

	sess, closer, err := c.connect(opUnreadCount, folder)
	if err != nil {
		return 0, err
	}
	defer closer()

	criteria := &imap.SearchCriteria{NotFlag: []imap.Flag{imap.FlagSeen}}
	searchData, err := sess.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return 0, fmt.Errorf("%s: searching %s: %w", opUnreadCount, folder, err)
	}

	count := len(searchData.AllUIDs())
	c.logger.Debug("counted unread messages", "folder", folder, "count", count)
	return count, nil
}

// fetchMessage retrieves one full raw message without marking it seen and
// normalizes it. A message that vanished between search and fetch is an
// error; the caller fails the whole operation.
func (c *Client) fetchMessage(sess imapSession, uid imap.UID) (Message, error) {
	section := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{section},
	}

	bufs, err := sess.Fetch(imap.UIDSetNum(uid), fetchOpts).Collect()
	if err != nil {
		return Message{}, fmt.Errorf("fetching message %d: %w", uid, err)
	}

	var raw []byte
	for _, buf := range bufs {
		if body := buf.FindBodySection(section); body != nil {
			raw = body
			break
		}
	}
	if raw == nil {
		return Message{}, fmt.Errorf("message %d has no body", uid)
	}

	msg := decodeMessage(raw)
	msg.ID = strconv.FormatUint(uint64(uid), 10)
	return msg, nil
}
