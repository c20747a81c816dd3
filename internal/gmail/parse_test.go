package gmail

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	gmailv1 "google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func textPart(mimeType, content string) *gmailv1.MessagePart {
	return &gmailv1.MessagePart{
		MimeType: mimeType,
		Body:     &gmailv1.MessagePartBody{Data: b64(content)},
	}
}

func TestParseMessageHeaders(t *testing.T) {
	msg := &gmailv1.Message{
		Id:           "m1",
		InternalDate: time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC).UnixMilli(),
		Payload: &gmailv1.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmailv1.MessagePartHeader{
				{Name: "SUBJECT", Value: "Quarterly report"},
				{Name: "from", Value: `"Jane Doe" <jane@example.com>`},
				{Name: "To", Value: "a@example.com, Bob <b@example.com>"},
				{Name: "Date", Value: "Sun, 10 Mar 2024 11:30:00 +0000"},
			},
			Body: &gmailv1.MessagePartBody{Data: b64("hello")},
		},
	}

	got := parseMessage(msg)
	if got.ID != "m1" {
		t.Fatalf("id = %q", got.ID)
	}
	if got.Subject != "Quarterly report" {
		t.Fatalf("case-insensitive header match failed, subject = %q", got.Subject)
	}
	if got.Sender.Address != "jane@example.com" || got.Sender.Name != "Jane Doe" {
		t.Fatalf("sender = %+v", got.Sender)
	}
	if len(got.Recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(got.Recipients))
	}
	if got.Recipients[0].Address != "a@example.com" || got.Recipients[1].Name != "Bob" {
		t.Fatalf("recipients = %+v", got.Recipients)
	}
	wantSent := time.Date(2024, time.March, 10, 11, 30, 0, 0, time.UTC)
	if !got.DateSent.Equal(wantSent) {
		t.Fatalf("date sent = %v, want %v", got.DateSent, wantSent)
	}
	wantReceived := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	if !got.DateReceived.Equal(wantReceived) {
		t.Fatalf("date received = %v, want %v", got.DateReceived, wantReceived)
	}
	if got.Body != "hello" {
		t.Fatalf("body = %q", got.Body)
	}
}

func TestParseMessageMissingHeaders(t *testing.T) {
	msg := &gmailv1.Message{
		Id:      "m2",
		Payload: &gmailv1.MessagePart{MimeType: "text/plain"},
	}

	got := parseMessage(msg)
	if got.Subject != "" {
		t.Fatalf("absent subject must stay empty, got %q", got.Subject)
	}
	if got.Sender.Address != unknownSender {
		t.Fatalf("sender fallback = %q", got.Sender.Address)
	}
	if len(got.Recipients) != 0 {
		t.Fatalf("expected no recipients, got %d", len(got.Recipients))
	}
	if !got.DateSent.Equal(time.Unix(0, 0).UTC()) {
		t.Fatalf("missing date must default to epoch, got %v", got.DateSent)
	}
}

func TestExtractBodyPrefersDeepestPlainText(t *testing.T) {
	payload := &gmailv1.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmailv1.MessagePart{
			textPart("text/plain", "outer text"),
			{
				MimeType: "multipart/alternative",
				Parts: []*gmailv1.MessagePart{
					textPart("text/plain", "nested text"),
					textPart("text/html", "<p>nested html</p>"),
				},
			},
		},
	}

	if got := extractBody(payload); got != "nested text" {
		t.Fatalf("body = %q, want deepest plain text part", got)
	}
}

func TestExtractBodyConvertsHTML(t *testing.T) {
	payload := &gmailv1.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmailv1.MessagePart{
			textPart("text/html", `<html><body><p>Hello <b>world</b></p><a href="https://example.com">example</a></body></html>`),
		},
	}

	got := extractBody(payload)
	if strings.Contains(got, "<") {
		t.Fatalf("tags must be stripped, got %q", got)
	}
	// html2text marks up bold text, so check the words individually.
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "world") {
		t.Fatalf("text content lost, got %q", got)
	}
	if !strings.Contains(got, "https://example.com") {
		t.Fatalf("links must be rendered inline, got %q", got)
	}
}

func TestExtractBodyEmptyPayload(t *testing.T) {
	payload := &gmailv1.MessagePart{MimeType: "multipart/mixed"}
	if got := extractBody(payload); got != "" {
		t.Fatalf("expected empty body, got %q", got)
	}
}

func TestDecodeBodyPaddingVariants(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "unpadded",
			data: base64.RawURLEncoding.EncodeToString([]byte("hi")),
			want: "hi",
		},
		{
			name: "padded",
			data: base64.URLEncoding.EncodeToString([]byte("hi")),
			want: "hi",
		},
		{
			name: "empty",
			data: "",
			want: "",
		},
		{
			name: "garbage",
			data: "%%%",
			want: "",
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			body := &gmailv1.MessagePartBody{Data: tc.data}
			if got := decodeBody(body); got != tc.want {
				t.Fatalf("decodeBody = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseAddressListFallback(t *testing.T) {
	// Headers net/mail rejects should still produce something usable.
	got := parseAddressList("Weird Name Without Quotes :: <weird@example.com>")
	if len(got) != 1 {
		t.Fatalf("expected 1 address, got %d", len(got))
	}
	if got[0].Address != "weird@example.com" {
		t.Fatalf("address = %q", got[0].Address)
	}
}
