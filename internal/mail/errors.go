package mail

import (
	"errors"
	"fmt"
)

// Operation names carried by the typed errors below.
const (
	opListRecent  = "list recent"
	opSearch      = "search"
	opSend        = "send"
	opUnreadCount = "unread count"
)

// ConnectError indicates the store or relay could not be reached, or the
// session broke down before the operation completed.
type ConnectError struct {
	Op  string
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s: connection failed: %v", e.Op, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// AuthError indicates the store or relay rejected the account credentials.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SendError indicates the relay rejected a submission after the session was
// established: a refused sender or recipient, a DATA failure, or a dropped
// connection mid-transfer.
type SendError struct {
	Op  string
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// IsConnectError checks if an error is a connection error.
func IsConnectError(err error) bool {
	var connErr *ConnectError
	return errors.As(err, &connErr)
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsSendError checks if an error is a relay submission error.
func IsSendError(err error) bool {
	var sendErr *SendError
	return errors.As(err, &sendErr)
}
