// internal/gmail/api.go — adapts *gmail.Service to the narrow surface we need
package gmail

import (
	"context"

	gmailv1 "google.golang.org/api/gmail/v1"
)

const userID = "me"

// api is the narrow Gmail API surface the client depends on; tests supply
// fakes behind it.
type api interface {
	getProfile(ctx context.Context) error
	listMessages(ctx context.Context, pageToken string, maxResults int64) (*gmailv1.ListMessagesResponse, error)
	getMessage(ctx context.Context, id string) (*gmailv1.Message, error)
	modifyMessage(ctx context.Context, id string, req *gmailv1.ModifyMessageRequest) error
	trashMessage(ctx context.Context, id string) error
}

type googleAPI struct{ svc *gmailv1.Service }

func (g *googleAPI) getProfile(ctx context.Context) error {
	_, err := g.svc.Users.GetProfile(userID).Context(ctx).Do()
	return err
}

func (g *googleAPI) listMessages(ctx context.Context, pageToken string, maxResults int64) (*gmailv1.ListMessagesResponse, error) {
	call := g.svc.Users.Messages.List(userID).LabelIds("INBOX").MaxResults(maxResults)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Context(ctx).Do()
}

func (g *googleAPI) getMessage(ctx context.Context, id string) (*gmailv1.Message, error) {
	return g.svc.Users.Messages.Get(userID, id).Format("full").Context(ctx).Do()
}

func (g *googleAPI) modifyMessage(ctx context.Context, id string, req *gmailv1.ModifyMessageRequest) error {
	_, err := g.svc.Users.Messages.Modify(userID, id, req).Context(ctx).Do()
	return err
}

func (g *googleAPI) trashMessage(ctx context.Context, id string) error {
	_, err := g.svc.Users.Messages.Trash(userID, id).Context(ctx).Do()
	return err
}

var _ api = (*googleAPI)(nil)
