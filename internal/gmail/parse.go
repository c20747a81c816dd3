// internal/gmail/parse.go — turns Gmail API payloads into email.Email records
package gmail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	"github.com/jaytaylor/html2text"
	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/joshsymonds/postbox/internal/email"
)

// unknownSender stands in when a message carries no parseable From header.
const unknownSender = "unknown@unknown.com"

func parseMessage(msg *gmailv1.Message) email.Email {
	var (
		subject    string
		sender     = email.Address{Address: unknownSender}
		recipients []email.Address
		dateHeader string
	)

	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch {
			case strings.EqualFold(h.Name, "Subject"):
				subject = h.Value
			case strings.EqualFold(h.Name, "From"):
				if addrs := parseAddressList(h.Value); len(addrs) > 0 {
					sender = addrs[0]
				}
			case strings.EqualFold(h.Name, "To"):
				recipients = append(recipients, parseAddressList(h.Value)...)
			case strings.EqualFold(h.Name, "Date"):
				dateHeader = h.Value
			}
		}
	}

	sent := parseDate(dateHeader)
	received := sent
	if msg.InternalDate > 0 {
		received = time.UnixMilli(msg.InternalDate).UTC()
	}

	var body string
	if msg.Payload != nil {
		body = extractBody(msg.Payload)
	}

	return email.Email{
		ID:           msg.Id,
		Subject:      subject,
		Sender:       sender,
		Recipients:   recipients,
		DateSent:     sent,
		DateReceived: received,
		Body:         body,
	}
}

// parseAddressList parses an RFC 5322 address header. Headers that net/mail
// rejects fall back to a loose split so a malformed sender still yields an
// address rather than dropping the message.
func parseAddressList(header string) []email.Address {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if addrs, err := mail.ParseAddressList(header); err == nil {
		out := make([]email.Address, 0, len(addrs))
		for _, a := range addrs {
			out = append(out, email.Address{Address: a.Address, Name: a.Name})
		}
		return out
	}
	var out []email.Address
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if open := strings.LastIndex(part, "<"); open != -1 && strings.HasSuffix(part, ">") {
			name := strings.Trim(strings.TrimSpace(part[:open]), `"'`)
			addr := strings.TrimSpace(strings.TrimSuffix(part[open+1:], ">"))
			if addr != "" {
				out = append(out, email.Address{Address: addr, Name: name})
			}
			continue
		}
		out = append(out, email.Address{Address: part})
	}
	return out
}

// parseDate parses an RFC 5322 Date header, defaulting to the epoch when the
// header is missing or malformed.
func parseDate(header string) time.Time {
	if header == "" {
		return time.Unix(0, 0).UTC()
	}
	t, err := mail.ParseDate(header)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}

// extractBody walks the MIME tree and returns the message as plain text.
// The deepest text/plain part wins; with only HTML available, the first
// text/html part is converted to readable text with links rendered inline.
// Nested multipart containers are descended recursively.
func extractBody(payload *gmailv1.MessagePart) string {
	var textContent, htmlContent string

	var walk func(part *gmailv1.MessagePart)
	walk = func(part *gmailv1.MessagePart) {
		switch {
		case part.MimeType == "text/plain":
			if decoded := decodeBody(part.Body); decoded != "" {
				textContent = decoded
			}
		case part.MimeType == "text/html":
			if htmlContent == "" {
				htmlContent = decodeBody(part.Body)
			}
		case strings.HasPrefix(part.MimeType, "multipart/"):
			for _, sub := range part.Parts {
				walk(sub)
			}
		}
	}
	walk(payload)

	if textContent != "" {
		return textContent
	}
	if htmlContent != "" {
		return htmlToText(htmlContent)
	}
	return ""
}

// decodeBody decodes the base64url body data Gmail returns, tolerating both
// padded and unpadded input.
func decodeBody(body *gmailv1.MessagePartBody) string {
	if body == nil || body.Data == "" {
		return ""
	}
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(body.Data, "="))
	if err != nil {
		return ""
	}
	return string(decoded)
}

func htmlToText(html string) string {
	text, err := html2text.FromString(html, html2text.Options{})
	if err != nil {
		return strings.TrimSpace(html)
	}
	return text
}
