// internal/gmail/client.go
package gmail

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/joshsymonds/postbox/internal/email"
	"github.com/joshsymonds/postbox/internal/rate"
)

const (
	// listPageSize caps a single list request; Gmail allows up to 500 but
	// each listed id costs a full-payload fetch, so pages stay small.
	listPageSize = 100
	// defaultRPS matches Gmail's per-user quota comfortably.
	defaultRPS = 4
)

func init() {
	email.Register("gmail", func(ctx context.Context) (email.Client, error) {
		return NewClient(ctx, DefaultConfig())
	})
}

// Client implements email.Client against the Gmail REST API.
type Client struct {
	api     api
	limiter rate.Limiter
	bucket  *rate.TokenBucket
	httpc   *http.Client
	logger  *slog.Logger
	closed  bool
}

// NewClient authenticates against Gmail and verifies the connection with a
// profile probe before returning a usable client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	httpc, err := cfg.oauthClient(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gmailv1.NewService(ctx, option.WithHTTPClient(httpc))
	if err != nil {
		return nil, &email.Error{Kind: email.ErrConnection, Op: "create gmail service", Err: err}
	}

	bucket := rate.NewTokenBucket(defaultRPS)
	c := &Client{
		api:     &googleAPI{svc: svc},
		limiter: bucket,
		bucket:  bucket,
		httpc:   httpc,
		logger:  slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	if err := c.api.getProfile(ctx); err != nil {
		c.bucket.Stop()
		return nil, translateErr("connect", err)
	}
	return c, nil
}

// ListInbox fetches up to limit inbox messages in provider order, following
// the page-token chain and stopping as soon as enough items are collected.
func (c *Client) ListInbox(ctx context.Context, limit int) ([]email.Email, error) {
	if c.closed {
		return nil, closedErr("list inbox")
	}
	if limit == 0 {
		return []email.Email{}, nil
	}

	var out []email.Email
	pageToken := ""
	for {
		size := int64(listPageSize)
		if limit > 0 {
			if remaining := limit - len(out); remaining < listPageSize {
				size = int64(remaining)
			}
		}
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		page, err := c.api.listMessages(ctx, pageToken, size)
		if err != nil {
			return nil, translateErr("list inbox", err)
		}
		for _, stub := range page.Messages {
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
			msg, err := c.get(ctx, stub.Id)
			if err != nil {
				return nil, err
			}
			out = append(out, msg)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		pageToken = page.NextPageToken
		if pageToken == "" || len(page.Messages) == 0 {
			break
		}
	}
	c.logger.DebugContext(ctx, "listed inbox", slog.Int("count", len(out)), slog.Int("limit", limit))
	return out, nil
}

// Get returns the full content of a single message.
func (c *Client) Get(ctx context.Context, id string) (email.Email, error) {
	if c.closed {
		return email.Email{}, closedErr("get message")
	}
	return c.get(ctx, id)
}

func (c *Client) get(ctx context.Context, id string) (email.Email, error) {
	if err := c.wait(ctx); err != nil {
		return email.Email{}, err
	}
	msg, err := c.api.getMessage(ctx, id)
	if err != nil {
		return email.Email{}, translateErr("get message "+id, err)
	}
	return parseMessage(msg), nil
}

// MarkRead removes the UNREAD label from a message.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	if c.closed {
		return closedErr("mark read")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	req := &gmailv1.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD"}}
	if err := c.api.modifyMessage(ctx, id, req); err != nil {
		return translateErr("mark read "+id, err)
	}
	return nil
}

// Delete moves a message to the trash.
func (c *Client) Delete(ctx context.Context, id string) error {
	if c.closed {
		return closedErr("delete message")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.api.trashMessage(ctx, id); err != nil {
		return translateErr("delete message "+id, err)
	}
	return nil
}

// Close releases the underlying HTTP connections and the rate limiter.
// It is idempotent; further operations fail with ErrConnection.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.bucket != nil {
		c.bucket.Stop()
	}
	if c.httpc != nil {
		c.httpc.CloseIdleConnections()
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return &email.Error{Kind: email.ErrConnection, Op: "rate limit", Err: err}
	}
	return nil
}

func closedErr(op string) error {
	return &email.Error{
		Kind: email.ErrConnection,
		Op:   op,
		Code: "CLIENT_NOT_CONNECTED",
		Err:  errClosed,
	}
}

var _ email.Client = (*Client)(nil)
