package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty", body: "", want: "(no body)"},
		{name: "short", body: "hello", want: "hello"},
		{name: "newlines flattened", body: "line one\nline two", want: "line one line two"},
		{name: "long truncated", body: strings.Repeat("a", 150), want: strings.Repeat("a", previewLength) + "..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := preview(tc.body); got != tc.want {
				t.Fatalf("preview(%q) = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}

func TestPreviewKeepsMultiByteRunesIntact(t *testing.T) {
	body := strings.Repeat("é", 150)
	got := preview(body)
	if !utf8.ValidString(got) {
		t.Fatalf("preview produced invalid UTF-8: %q", got)
	}
	want := strings.Repeat("é", previewLength) + "..."
	if got != want {
		t.Fatalf("preview = %q, want %q", got, want)
	}
}
