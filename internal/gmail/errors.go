// internal/gmail/errors.go
package gmail

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/joshsymonds/postbox/internal/email"
)

var errClosed = errors.New("client is closed")

// translateErr maps a Gmail API failure onto the client error taxonomy:
// 401/403 are authentication failures, 404 and 400 with a "not found"-shaped
// message mean the message id is gone, everything else (including transport
// errors) is a connection failure. The original cause is always preserved.
func translateErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusUnauthorized:
			return &email.Error{Kind: email.ErrAuthentication, Op: op, Code: "GMAIL_AUTH_EXPIRED", Err: err}
		case gerr.Code == http.StatusForbidden:
			return &email.Error{Kind: email.ErrAuthentication, Op: op, Code: "GMAIL_FORBIDDEN", Err: err}
		case gerr.Code == http.StatusNotFound:
			return &email.Error{Kind: email.ErrNotFound, Op: op, Code: "EMAIL_NOT_FOUND", Err: err}
		case gerr.Code == http.StatusBadRequest && notFoundShaped(gerr):
			return &email.Error{Kind: email.ErrNotFound, Op: op, Code: "EMAIL_NOT_FOUND", Err: err}
		default:
			return &email.Error{
				Kind: email.ErrConnection,
				Op:   op,
				Code: fmt.Sprintf("GMAIL_HTTP_%d", gerr.Code),
				Err:  err,
			}
		}
	}
	return &email.Error{Kind: email.ErrConnection, Op: op, Err: err}
}

// notFoundShaped reports whether a 400 response actually means the message id
// does not exist. Gmail answers "Invalid id value" for ids it never issued.
func notFoundShaped(gerr *googleapi.Error) bool {
	for _, text := range []string{gerr.Message, gerr.Body} {
		lower := strings.ToLower(text)
		if strings.Contains(lower, "invalid id value") || strings.Contains(lower, "not found") {
			return true
		}
	}
	return false
}
