package tamtamapi

import (
	"context"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
)

// NewLoggingClient returns a new instance of a logging Client.
func NewLoggingClient(c Client) Client {
	return &loggingClient{c, "tamtamapi"}
}

type loggingClient struct {
	Client Client
	prefix string
}

func (c *loggingClient) SendMessage(ctx context.Context, text string) (err error) {
	defer func() { api.HandleLogError(c.prefix, "Client", "SendMessage", err, ErrNotificationsDisabled) }()

	return c.Client.SendMessage(ctx, text)
}
