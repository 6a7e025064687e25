package mail

import (
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// imapSession is the narrow view of an IMAP connection the operations need.
// The concrete *imapclient.Client satisfies it through imapSessionWrapper;
// tests substitute fakes.
type imapSession interface {
	Login(username, password string) commandWaiter
	Select(mailbox string, options *imap.SelectOptions) selectWaiter
	UIDSearch(criteria *imap.SearchCriteria, options *imap.SearchOptions) searchWaiter
	Fetch(set imap.NumSet, options *imap.FetchOptions) fetchWaiter
	Logout() commandWaiter
}

type commandWaiter interface {
	Wait() error
}

type selectWaiter interface {
	Wait() (*imap.SelectData, error)
}

type searchWaiter interface {
	Wait() (*imap.SearchData, error)
}

type fetchWaiter interface {
	Collect() ([]*imapclient.FetchMessageBuffer, error)
}

type imapSessionWrapper struct {
	client *imapclient.Client
}

func (w *imapSessionWrapper) Login(username, password string) commandWaiter {
	return w.client.Login(username, password)
}

func (w *imapSessionWrapper) Select(mailbox string, options *imap.SelectOptions) selectWaiter {
	return w.client.Select(mailbox, options)
}

func (w *imapSessionWrapper) UIDSearch(criteria *imap.SearchCriteria, options *imap.SearchOptions) searchWaiter {
	return w.client.UIDSearch(criteria, options)
}

func (w *imapSessionWrapper) Fetch(set imap.NumSet, options *imap.FetchOptions) fetchWaiter {
	return w.client.Fetch(set, options)
}

func (w *imapSessionWrapper) Logout() commandWaiter {
	return w.client.Logout()
}

func dialIMAP(host string, port int, timeout time.Duration) (imapSession, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	client, err := imapclient.DialTLS(addr, &imapclient.Options{
		Dialer: &net.Dialer{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &imapSessionWrapper{client: client}, nil
}
