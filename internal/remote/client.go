// internal/remote/client.go — email.Client backed by a running postbox HTTP service
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joshsymonds/postbox/internal/email"
)

const (
	serviceURLEnv     = "POSTBOX_SERVICE_URL"
	defaultServiceURL = "http://localhost:8080"
	requestTimeout    = 30 * time.Second
)

func init() {
	email.Register("postbox", func(ctx context.Context) (email.Client, error) {
		_ = ctx
		return NewClient(DefaultConfig()), nil
	})
}

// Config holds the connection settings for a remote postbox service.
type Config struct {
	BaseURL string
}

// DefaultConfig targets a local service, overridable via POSTBOX_SERVICE_URL.
func DefaultConfig() Config {
	cfg := Config{BaseURL: defaultServiceURL}
	if v := os.Getenv(serviceURLEnv); v != "" {
		cfg.BaseURL = v
	}
	return cfg
}

// Client speaks the postbox message API. Callers get the same behavior as a
// direct provider; they cannot tell whether the mailbox is local or remote.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
	closed  bool
}

// NewClient builds a client for the service at cfg.BaseURL.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: requestTimeout},
		logger:  slog.Default(),
	}
}

type wireAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type wireMessage struct {
	ID           string        `json:"id"`
	Subject      string        `json:"subject"`
	From         wireAddress   `json:"from"`
	To           []wireAddress `json:"to"`
	DateSent     time.Time     `json:"date_sent"`
	DateReceived time.Time     `json:"date_received"`
	Body         string        `json:"body"`
}

func (m wireMessage) email() email.Email {
	to := make([]email.Address, 0, len(m.To))
	for _, a := range m.To {
		to = append(to, email.Address{Address: a.Address, Name: a.Name})
	}
	return email.Email{
		ID:           m.ID,
		Subject:      m.Subject,
		Sender:       email.Address{Address: m.From.Address, Name: m.From.Name},
		Recipients:   to,
		DateSent:     m.DateSent,
		DateReceived: m.DateReceived,
		Body:         m.Body,
	}
}

// ListInbox fetches up to limit messages; email.NoLimit fetches everything.
func (c *Client) ListInbox(ctx context.Context, limit int) ([]email.Email, error) {
	const op = "remote.ListInbox"
	if c.closed {
		return nil, closedErr(op)
	}
	if limit == 0 {
		return []email.Email{}, nil
	}

	var wire []wireMessage
	path := "/messages?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, op, http.MethodGet, path, &wire); err != nil {
		return nil, err
	}
	messages := make([]email.Email, 0, len(wire))
	for _, m := range wire {
		messages = append(messages, m.email())
	}
	return messages, nil
}

// Get fetches a single message by id.
func (c *Client) Get(ctx context.Context, id string) (email.Email, error) {
	const op = "remote.Get"
	if c.closed {
		return email.Email{}, closedErr(op)
	}
	var wire wireMessage
	if err := c.do(ctx, op, http.MethodGet, "/messages/"+url.PathEscape(id), &wire); err != nil {
		return email.Email{}, err
	}
	return wire.email(), nil
}

// MarkRead marks the message as read on the remote service.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	const op = "remote.MarkRead"
	if c.closed {
		return closedErr(op)
	}
	return c.do(ctx, op, http.MethodPost, "/messages/"+url.PathEscape(id)+"/mark-as-read", nil)
}

// Delete moves the message to the trash on the remote service.
func (c *Client) Delete(ctx context.Context, id string) error {
	const op = "remote.Delete"
	if c.closed {
		return closedErr(op)
	}
	return c.do(ctx, op, http.MethodDelete, "/messages/"+url.PathEscape(id), nil)
}

// Close releases idle connections. Further calls fail.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.httpc.CloseIdleConnections()
	c.logger.Debug("remote client closed")
	return nil
}

// do issues one request and decodes a 200 response into out when non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return &email.Error{Kind: email.ErrConnection, Op: op, Code: "SERVICE_BAD_REQUEST", Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &email.Error{Kind: email.ErrConnection, Op: op, Code: "SERVICE_UNREACHABLE", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusErr(op, resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &email.Error{Kind: email.ErrConnection, Op: op, Code: "SERVICE_BAD_RESPONSE", Err: err}
		}
	}
	return nil
}

// statusErr maps service statuses back onto the client error taxonomy,
// inverting the mapping the service applied on its side.
func statusErr(op string, resp *http.Response) error {
	kind := email.ErrConnection
	switch resp.StatusCode {
	case http.StatusNotFound:
		kind = email.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = email.ErrAuthentication
	}
	return &email.Error{
		Kind: kind,
		Op:   op,
		Code: fmt.Sprintf("SERVICE_HTTP_%d", resp.StatusCode),
		Err:  errors.New(serviceMessage(resp.Body)),
	}
}

// serviceMessage pulls the error field out of an error response body.
func serviceMessage(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Error == "" {
		return "remote service error"
	}
	return payload.Error
}

func closedErr(op string) error {
	return &email.Error{
		Kind: email.ErrConnection,
		Op:   op,
		Code: "CLIENT_NOT_CONNECTED",
		Err:  errors.New("client is closed"),
	}
}

var _ email.Client = (*Client)(nil)
