package mail

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/stretchr/testify/require"

	"github.com/mailbridge-io/mailbridge/tests/testutil"
)

func testCredentials() Credentials {
	return Credentials{
		Address:  "agent@example.com",
		Password: "secret",
		IMAPHost: "imap.example.com",
		IMAPPort: 993,
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
	}
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(testCredentials(), slog.New(slog.DiscardHandler), opts...)
	require.NoError(t, err)
	return client
}

func withFakeSession(sess *fakeSession) Option {
	return withSessionFactory(func() (imapSession, error) { return sess, nil })
}

func boolPtr(b bool) *bool { return &b }

func TestNewClientRequiresCompleteCredentials(t *testing.T) {
	cases := []Credentials{
		{},
		{Address: "agent@example.com"},
		{Address: "agent@example.com", Password: "secret"},
		{Address: "agent@example.com", Password: "secret", IMAPHost: "imap.example.com", IMAPPort: 993},
	}
	for _, creds := range cases {
		if _, err := NewClient(creds, nil); err == nil {
			t.Fatalf("expected validation error for credentials %+v", creds)
		}
	}
}

func TestListRecentReturnsNewestFirst(t *testing.T) {
	sess := &fakeSession{
		uids: []imap.UID{3, 7, 9},
		bodies: map[imap.UID][]byte{
			3: testutil.PlainMessage("old@example.com", "Oldest", "first body"),
			7: testutil.PlainMessage("mid@example.com", "Middle", "second body"),
			9: testutil.PlainMessage("new@example.com", "Newest", "third body"),
		},
	}
	client := newTestClient(t, withFakeSession(sess))

	messages, err := client.ListRecent(context.Background(), 2, "")
	require.NoError(t, err)

	require.Len(t, messages, 2)
	require.Equal(t, "9", messages[0].ID)
	require.Equal(t, "Newest", messages[0].Subject)
	require.Equal(t, "new@example.com", messages[0].From)
	require.Equal(t, testutil.FixtureDate, messages[0].Date)
	require.Equal(t, "third body", messages[0].Body)
	require.Equal(t, "7", messages[1].ID)

	require.Equal(t, []imap.UID{9, 7}, sess.fetchedUIDs)
	require.Equal(t, "INBOX", sess.selectedBox)
	require.NotNil(t, sess.selectedOpts)
	require.True(t, sess.selectedOpts.ReadOnly)
	require.Equal(t, "agent@example.com", sess.loginUser)
	require.Equal(t, 1, sess.logoutCalls)
}

func TestListRecentCountExceedsMailbox(t *testing.T) {
	sess := &fakeSession{
		uids: []imap.UID{1, 2},
		bodies: map[imap.UID][]byte{
			1: testutil.PlainMessage("a@example.com", "One", "x"),
			2: testutil.PlainMessage("b@example.com", "Two", "y"),
		},
	}
	client := newTestClient(t, withFakeSession(sess))

	messages, err := client.ListRecent(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "2", messages[0].ID)
	require.Equal(t, "1", messages[1].ID)
}

func TestListRecentZeroCount(t *testing.T) {
	sess := &fakeSession{
		uids:   []imap.UID{1, 2},
		bodies: map[imap.UID][]byte{1: testutil.PlainMessage("a@example.com", "One", "x")},
	}
	client := newTestClient(t, withFakeSession(sess))

	messages, err := client.ListRecent(context.Background(), 0, "")
	require.NoError(t, err)
	require.Empty(t, messages)
	require.Empty(t, sess.fetchedUIDs)
	require.Equal(t, 1, sess.logoutCalls)
}

func TestListRecentEmptyMailbox(t *testing.T) {
	sess := &fakeSession{}
	client := newTestClient(t, withFakeSession(sess))

	messages, err := client.ListRecent(context.Background(), 10, "")
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestListRecentFailsWhenFetchFails(t *testing.T) {
	sess := &fakeSession{
		uids:     []imap.UID{1, 2},
		fetchErr: errors.New("connection reset"),
	}
	client := newTestClient(t, withFakeSession(sess))

	messages, err := client.ListRecent(context.Background(), 10, "")
	require.Error(t, err)
	require.ErrorContains(t, err, "list recent")
	require.Nil(t, messages)
	require.Equal(t, 1, sess.logoutCalls)
}

func TestListRecentFailsWhenMessageVanished(t *testing.T) {
	sess := &fakeSession{uids: []imap.UID{5}}
	client := newTestClient(t, withFakeSession(sess))

	_, err := client.ListRecent(context.Background(), 1, "")
	require.Error(t, err)
	require.ErrorContains(t, err, "message 5")
}

func TestListRecentDialFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	client := newTestClient(t, withSessionFactory(func() (imapSession, error) {
		return nil, dialErr
	}))

	_, err := client.ListRecent(context.Background(), 5, "")
	require.True(t, IsConnectError(err))
	require.ErrorIs(t, err, dialErr)
}

func TestListRecentLoginRejected(t *testing.T) {
	sess := &fakeSession{loginErr: errors.New("invalid credentials")}
	client := newTestClient(t, withFakeSession(sess))

	_, err := client.ListRecent(context.Background(), 5, "")
	require.True(t, IsAuthError(err))
	require.False(t, IsConnectError(err))
	require.Equal(t, 1, sess.logoutCalls)
}

func TestListRecentSelectFailure(t *testing.T) {
	sess := &fakeSession{selectErr: errors.New("no such mailbox")}
	client := newTestClient(t, withFakeSession(sess))

	_, err := client.ListRecent(context.Background(), 5, "Archive")
	require.True(t, IsConnectError(err))
	require.ErrorContains(t, err, "selecting Archive")
	require.Equal(t, "Archive", sess.selectedBox)
	require.Equal(t, 1, sess.logoutCalls)
}

func TestSearchBuildsUnreadCriteria(t *testing.T) {
	sess := &fakeSession{}
	client := newTestClient(t, withFakeSession(sess))

	_, err := client.Search(context.Background(), Filter{Sender: "boss@example.com", Unread: boolPtr(true)})
	require.NoError(t, err)

	require.Equal(t, []imap.Flag{imap.FlagSeen}, sess.searchCriteria.NotFlag)
	require.Empty(t, sess.searchCriteria.Flag)
	require.Len(t, sess.searchCriteria.Header, 1)
	require.Equal(t, "From", sess.searchCriteria.Header[0].Key)
	require.Equal(t, "boss@example.com", sess.searchCriteria.Header[0].Value)
}

func TestSearchBuildsReadCriteria(t *testing.T) {
	sess := &fakeSession{}
	client := newTestClient(t, withFakeSession(sess))

	_, err := client.Search(context.Background(), Filter{Unread: boolPtr(false)})
	require.NoError(t, err)

	require.Equal(t, []imap.Flag{imap.FlagSeen}, sess.searchCriteria.Flag)
	require.Empty(t, sess.searchCriteria.NotFlag)
	require.Empty(t, sess.searchCriteria.Header)
}

func TestSearchWithoutCriteriaMatchesAll(t *testing.T) {
	sess := &fakeSession{
		uids: []imap.UID{1, 2},
		bodies: map[imap.UID][]byte{
			1: testutil.PlainMessage("a@example.com", "One", "x"),
			2: testutil.PlainMessage("b@example.com", "Two", "y"),
		},
	}
	client := newTestClient(t, withFakeSession(sess))

	messages, err := client.Search(context.Background(), Filter{})
	require.NoError(t, err)
	require.Empty(t, sess.searchCriteria.Flag)
	require.Empty(t, sess.searchCriteria.NotFlag)
	require.Empty(t, sess.searchCriteria.Header)
	require.Len(t, messages, 2)
	require.Equal(t, "2", messages[0].ID)
	require.Equal(t, "1", messages[1].ID)
}

func TestSearchSubjectFilterIsCaseInsensitive(t *testing.T) {
	sess := &fakeSession{
		uids: []imap.UID{1, 2, 3},
		bodies: map[imap.UID][]byte{
			1: testutil.PlainMessage("billing@example.com", "Invoice March", "total due"),
			2: testutil.PlainMessage("team@example.com", "Lunch", "pizza"),
			3: testutil.PlainMessage("billing@example.com", "invoice reminder", "overdue"),
		},
	}
	client := newTestClient(t, withFakeSession(sess))

	messages, err := client.Search(context.Background(), Filter{Subject: "INVOICE"})
	require.NoError(t, err)

	require.Equal(t, []imap.UID{1, 2, 3}, sess.fetchedUIDs)
	require.Len(t, messages, 2)
	require.Equal(t, "3", messages[0].ID)
	require.Equal(t, "1", messages[1].ID)
}

func TestSearchSubjectFilterMatchesDecodedSubject(t *testing.T) {
	sess := &fakeSession{
		uids: []imap.UID{1},
		bodies: map[imap.UID][]byte{
			1: testutil.PlainMessage("bank@example.com", "=?utf-8?B?w5xiZXJ3ZWlzdW5n?=", "betrag"),
		},
	}
	client := newTestClient(t, withFakeSession(sess))

	messages, err := client.Search(context.Background(), Filter{Subject: "überweisung"})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "Überweisung", messages[0].Subject)
}

func TestSearchCustomFolder(t *testing.T) {
	sess := &fakeSession{}
	client := newTestClient(t, withFakeSession(sess))

	_, err := client.Search(context.Background(), Filter{Folder: "Work"})
	require.NoError(t, err)
	require.Equal(t, "Work", sess.selectedBox)
}

func TestUnreadCount(t *testing.T) {
	sess := &fakeSession{uids: []imap.UID{4, 8, 15, 16}}
	client := newTestClient(t, withFakeSession(sess))

	count, err := client.UnreadCount(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.Equal(t, "INBOX", sess.selectedBox)
	require.Equal(t, []imap.Flag{imap.FlagSeen}, sess.searchCriteria.NotFlag)
	require.Empty(t, sess.fetchedUIDs)
	require.Equal(t, 1, sess.logoutCalls)
}

func TestUnreadCountEmptyMailbox(t *testing.T) {
	sess := &fakeSession{}
	client := newTestClient(t, withFakeSession(sess))

	count, err := client.UnreadCount(context.Background(), "Newsletters")
	require.NoError(t, err)
	require.Zero(t, count)
	require.Equal(t, "Newsletters", sess.selectedBox)
}

func TestOperationsHonorCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dialed := false
	client := newTestClient(t, withSessionFactory(func() (imapSession, error) {
		dialed = true
		return &fakeSession{}, nil
	}))

	_, err := client.ListRecent(ctx, 5, "")
	require.ErrorIs(t, err, context.Canceled)

	_, err = client.Search(ctx, Filter{})
	require.ErrorIs(t, err, context.Canceled)

	_, err = client.UnreadCount(ctx, "")
	require.ErrorIs(t, err, context.Canceled)

	require.False(t, dialed)
}

type fakeSession struct {
	uids   []imap.UID
	bodies map[imap.UID][]byte

	loginErr  error
	selectErr error
	searchErr error
	fetchErr  error

	loginUser      string
	loginPass      string
	selectedBox    string
	selectedOpts   *imap.SelectOptions
	searchCriteria *imap.SearchCriteria
	fetchedUIDs    []imap.UID
	logoutCalls    int
}

func (s *fakeSession) Login(username, password string) commandWaiter {
	s.loginUser, s.loginPass = username, password
	return &fakeCommand{err: s.loginErr}
}

func (s *fakeSession) Select(mailbox string, options *imap.SelectOptions) selectWaiter {
	s.selectedBox = mailbox
	s.selectedOpts = options
	return &fakeSelect{err: s.selectErr}
}

func (s *fakeSession) UIDSearch(criteria *imap.SearchCriteria, _ *imap.SearchOptions) searchWaiter {
	s.searchCriteria = criteria
	if s.searchErr != nil {
		return &fakeSearch{err: s.searchErr}
	}
	return &fakeSearch{data: &imap.SearchData{All: imap.UIDSetNum(s.uids...)}}
}

func (s *fakeSession) Fetch(set imap.NumSet, _ *imap.FetchOptions) fetchWaiter {
	if s.fetchErr != nil {
		return &fakeFetch{err: s.fetchErr}
	}
	var bufs []*imapclient.FetchMessageBuffer
	for _, uid := range uidsInSet(set) {
		s.fetchedUIDs = append(s.fetchedUIDs, uid)
		body, ok := s.bodies[uid]
		if !ok {
			continue
		}
		bufs = append(bufs, &imapclient.FetchMessageBuffer{
			SeqNum: uint32(uid),
			UID:    uid,
			BodySection: []imapclient.FetchBodySectionBuffer{{
				Section: &imap.FetchItemBodySection{Peek: true},
				Bytes:   append([]byte(nil), body...),
			}},
		})
	}
	return &fakeFetch{bufs: bufs}
}

func (s *fakeSession) Logout() commandWaiter {
	s.logoutCalls++
	return &fakeCommand{}
}

func uidsInSet(set imap.NumSet) []imap.UID {
	uidSet, ok := set.(imap.UIDSet)
	if !ok {
		return nil
	}
	var uids []imap.UID
	for _, r := range uidSet {
		for uid := r.Start; ; uid++ {
			uids = append(uids, uid)
			if uid >= r.Stop {
				break
			}
		}
	}
	return uids
}

type fakeCommand struct{ err error }

func (c *fakeCommand) Wait() error { return c.err }

type fakeSelect struct{ err error }

func (s *fakeSelect) Wait() (*imap.SelectData, error) { return nil, s.err }

type fakeSearch struct {
	err  error
	data *imap.SearchData
}

func (s *fakeSearch) Wait() (*imap.SearchData, error) { return s.data, s.err }

type fakeFetch struct {
	err  error
	bufs []*imapclient.FetchMessageBuffer
}

func (f *fakeFetch) Collect() ([]*imapclient.FetchMessageBuffer, error) { return f.bufs, f.err }
