// internal/gmail/auth.go
package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/joshsymonds/postbox/internal/email"
)

const (
	defaultCredentialsFile = "credentials.json"
	defaultTokenFile       = "token.json"

	credentialsPathEnv = "GMAIL_CREDENTIALS_PATH"
	tokenPathEnv       = "GMAIL_TOKEN_PATH"
)

// Config locates the OAuth2 client descriptor and the cached token file.
// The credentials file is read-only input; the token file is rewritten after
// every successful authorization or refresh.
type Config struct {
	CredentialsFile string
	TokenFile       string
	Scopes          []string

	// AuthCodePrompt runs the interactive half of the authorization-code
	// flow: it receives the consent URL and returns the code the user pasted
	// back. Defaults to a stdin prompt.
	AuthCodePrompt func(authURL string) (string, error)
}

// DefaultConfig resolves file paths from the environment, falling back to
// credentials.json and token.json in the working directory. The modify scope
// covers listing plus mark-as-read and trash.
func DefaultConfig() Config {
	cfg := Config{
		CredentialsFile: defaultCredentialsFile,
		TokenFile:       defaultTokenFile,
		Scopes:          []string{gmailv1.GmailModifyScope},
	}
	if path := os.Getenv(credentialsPathEnv); path != "" {
		cfg.CredentialsFile = path
	}
	if path := os.Getenv(tokenPathEnv); path != "" {
		cfg.TokenFile = path
	}
	return cfg
}

// cachedToken is the on-disk token format. It mirrors what Google's client
// libraries write so a token cache can be shared with other tooling.
type cachedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	TokenURI     string    `json:"token_uri,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

func (t cachedToken) token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

// oauthClient loads credentials, obtains a valid token, and returns an HTTP
// client carrying it. Token acquisition order: valid cached token, silent
// refresh of an expired token, interactive authorization-code flow.
func (c Config) oauthClient(ctx context.Context) (*http.Client, error) {
	secret, err := os.ReadFile(c.CredentialsFile)
	if err != nil {
		return nil, &email.Error{
			Kind: email.ErrAuthentication,
			Op:   "load credentials",
			Code: "GMAIL_CREDENTIALS_NOT_FOUND",
			Err:  err,
		}
	}
	conf, err := google.ConfigFromJSON(secret, c.Scopes...)
	if err != nil {
		return nil, &email.Error{
			Kind: email.ErrAuthentication,
			Op:   "parse credentials",
			Code: "GMAIL_CREDENTIALS_INVALID",
			Err:  err,
		}
	}

	tok, err := c.loadToken()
	switch {
	case err == nil && tok.Valid():
		// Cached token still good; nothing to do.
	case err == nil && tok.RefreshToken != "":
		tok, err = conf.TokenSource(ctx, tok).Token()
		if err != nil {
			return nil, &email.Error{
				Kind: email.ErrAuthentication,
				Op:   "refresh token",
				Code: "GMAIL_TOKEN_REFRESH_FAILED",
				Err:  err,
			}
		}
		if err := c.saveToken(conf, tok); err != nil {
			return nil, err
		}
	default:
		tok, err = c.authorize(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err := c.saveToken(conf, tok); err != nil {
			return nil, err
		}
	}

	return conf.Client(ctx, tok), nil
}

// authorize runs the interactive authorization-code flow.
func (c Config) authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	prompt := c.AuthCodePrompt
	if prompt == nil {
		prompt = promptAuthCode
	}
	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	code, err := prompt(authURL)
	if err != nil {
		return nil, &email.Error{
			Kind: email.ErrAuthentication,
			Op:   "authorization code prompt",
			Code: "GMAIL_OAUTH_FLOW_FAILED",
			Err:  err,
		}
	}
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, &email.Error{
			Kind: email.ErrAuthentication,
			Op:   "exchange authorization code",
			Code: "GMAIL_OAUTH_FLOW_FAILED",
			Err:  err,
		}
	}
	return tok, nil
}

func promptAuthCode(authURL string) (string, error) {
	fmt.Printf("Open the following link in your browser, authorize access, "+
		"then paste the code here:\n%v\n", authURL)
	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return "", fmt.Errorf("read authorization code: %w", err)
	}
	return code, nil
}

func (c Config) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		return nil, err
	}
	var cached cachedToken
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return cached.token(), nil
}

func (c Config) saveToken(conf *oauth2.Config, tok *oauth2.Token) error {
	cached := cachedToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		TokenURI:     conf.Endpoint.TokenURL,
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		Scopes:       conf.Scopes,
		Expiry:       tok.Expiry,
	}
	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return &email.Error{
			Kind: email.ErrAuthentication,
			Op:   "encode token",
			Code: "GMAIL_TOKEN_SAVE_FAILED",
			Err:  err,
		}
	}
	if err := os.WriteFile(c.TokenFile, data, 0o600); err != nil {
		return &email.Error{
			Kind: email.ErrAuthentication,
			Op:   "save token",
			Code: "GMAIL_TOKEN_SAVE_FAILED",
			Err:  err,
		}
	}
	return nil
}
