package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/joshsymonds/postbox/internal/email"
)

func TestDefaultConfigEnvOverrides(t *testing.T) {
	t.Setenv(credentialsPathEnv, "/etc/postbox/credentials.json")
	t.Setenv(tokenPathEnv, "/var/lib/postbox/token.json")

	cfg := DefaultConfig()
	if cfg.CredentialsFile != "/etc/postbox/credentials.json" {
		t.Fatalf("credentials path = %q", cfg.CredentialsFile)
	}
	if cfg.TokenFile != "/var/lib/postbox/token.json" {
		t.Fatalf("token path = %q", cfg.TokenFile)
	}
}

func TestDefaultConfigDefaults(t *testing.T) {
	t.Setenv(credentialsPathEnv, "")
	t.Setenv(tokenPathEnv, "")

	cfg := DefaultConfig()
	if cfg.CredentialsFile != defaultCredentialsFile {
		t.Fatalf("credentials path = %q", cfg.CredentialsFile)
	}
	if cfg.TokenFile != defaultTokenFile {
		t.Fatalf("token path = %q", cfg.TokenFile)
	}
	if len(cfg.Scopes) == 0 {
		t.Fatalf("expected default scopes")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{TokenFile: filepath.Join(dir, "token.json")}
	conf := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       []string{"scope-a"},
		Endpoint: oauth2.Endpoint{
			TokenURL: "https://oauth2.example.com/token",
		},
	}
	expiry := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}

	if err := cfg.saveToken(conf, tok); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(cfg.TokenFile)
	if err != nil {
		t.Fatalf("stat token file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	// The on-disk shape carries the client descriptor alongside the token.
	raw, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		t.Fatalf("read token file: %v", err)
	}
	var onDisk map[string]any
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("token file is not JSON: %v", err)
	}
	for _, key := range []string{"access_token", "refresh_token", "token_uri", "client_id", "client_secret", "scopes", "expiry"} {
		if _, ok := onDisk[key]; !ok {
			t.Fatalf("token file missing %q: %v", key, onDisk)
		}
	}

	loaded, err := cfg.loadToken()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.AccessToken != "access" || loaded.RefreshToken != "refresh" {
		t.Fatalf("loaded token = %+v", loaded)
	}
	if !loaded.Expiry.Equal(expiry) {
		t.Fatalf("expiry = %v, want %v", loaded.Expiry, expiry)
	}
}

func TestOauthClientMissingCredentials(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CredentialsFile: filepath.Join(dir, "missing-credentials.json"),
		TokenFile:       filepath.Join(dir, "token.json"),
	}

	_, err := cfg.oauthClient(context.Background())
	if !errors.Is(err, email.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	var structured *email.Error
	if !errors.As(err, &structured) || structured.Code != "GMAIL_CREDENTIALS_NOT_FOUND" {
		t.Fatalf("unexpected error detail: %v", err)
	}
}

func TestOauthClientMalformedCredentials(t *testing.T) {
	dir := t.TempDir()
	credsPath := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(credsPath, []byte("not json"), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	cfg := Config{
		CredentialsFile: credsPath,
		TokenFile:       filepath.Join(dir, "token.json"),
	}

	_, err := cfg.oauthClient(context.Background())
	if !errors.Is(err, email.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestOauthClientUsesValidCachedToken(t *testing.T) {
	dir := t.TempDir()
	credsPath := filepath.Join(dir, "credentials.json")
	creds := `{"installed":{"client_id":"id","client_secret":"secret",` +
		`"auth_uri":"https://accounts.google.com/o/oauth2/auth",` +
		`"token_uri":"https://oauth2.googleapis.com/token",` +
		`"redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(credsPath, []byte(creds), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}

	cfg := Config{
		CredentialsFile: credsPath,
		TokenFile:       filepath.Join(dir, "token.json"),
		Scopes:          []string{"scope-a"},
		AuthCodePrompt: func(authURL string) (string, error) {
			_ = authURL
			t.Fatalf("interactive flow must not run with a valid cached token")
			return "", nil
		},
	}

	cached := cachedToken{
		AccessToken: "access",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
	data, err := json.Marshal(cached)
	if err != nil {
		t.Fatalf("marshal token: %v", err)
	}
	if err := os.WriteFile(cfg.TokenFile, data, 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}

	httpc, err := cfg.oauthClient(context.Background())
	if err != nil {
		t.Fatalf("oauth client failed: %v", err)
	}
	if httpc == nil {
		t.Fatalf("expected an HTTP client")
	}
}
