package tamtamapi

import (
	"context"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/opentracing/opentracing-go"
)

// NewTracingClient returns a new instance of a tracing Client.
func NewTracingClient(c Client) Client {
	return &tracingClient{c, "tamtamapi"}
}

type tracingClient struct {
	Client Client
	prefix string
}

func (c *tracingClient) SendMessage(ctx context.Context, text string) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(c.prefix, "SendMessage"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return c.Client.SendMessage(ctx, text)
}
