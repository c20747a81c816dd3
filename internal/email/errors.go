// internal/email/errors.go
package email

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for the client taxonomy. Providers return *Error
// values wrapping one of these, so callers classify failures with errors.Is.
var (
	// ErrAuthentication marks bad, expired, or revoked credentials.
	ErrAuthentication = errors.New("email: authentication failed")
	// ErrConnection marks transient network or provider failures.
	ErrConnection = errors.New("email: connection failed")
	// ErrNotFound marks a message id that no longer exists.
	ErrNotFound = errors.New("email: message not found")
)

// Error is the structured failure every provider operation returns. Kind is
// one of the sentinels above; Err preserves the original provider cause.
type Error struct {
	Kind error
	Op   string // operation that failed, e.g. "list inbox"
	Code string // provider-specific error code, if any
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Code != "" {
		msg = fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
