// internal/email/types.go
package email

import "time"

// Address is an email address with an optional display name.
type Address struct {
	Address string
	Name    string
}

// String renders the address the way it appears in a header:
// "Name <addr>" when a display name is present, the bare address otherwise.
func (a Address) String() string {
	if a.Name != "" {
		return a.Name + " <" + a.Address + ">"
	}
	return a.Address
}

// Email is a read-only snapshot of a message, built once from a provider
// payload and discarded by the caller after use. Subject is the empty string
// when the provider omits the header, never a sentinel. Body is plain text;
// HTML-only bodies have already been converted by the adapter.
type Email struct {
	ID           string
	Subject      string
	Sender       Address
	Recipients   []Address
	DateSent     time.Time
	DateReceived time.Time
	Body         string
}
