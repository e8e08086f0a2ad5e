package teamcityapi

import (
	"context"
	"io"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/opentracing/opentracing-go"
)

// NewTracingClient returns a new instance of a tracing Client.
func NewTracingClient(c Client) Client {
	return &tracingClient{c, "teamcityapi"}
}

type tracingClient struct {
	Client Client
	prefix string
}

func (c *tracingClient) GetBuilds(ctx context.Context, locator string) (builds BuildsResponse, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(c.prefix, "GetBuilds"))
	defer func() { api.FinishSpanWithError(span, err) }()
	span.SetTag("locator", locator)

	return c.Client.GetBuilds(ctx, locator)
}

func (c *tracingClient) StopBuild(ctx context.Context, build Build, comment string) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(c.prefix, "StopBuild"))
	defer func() { api.FinishSpanWithError(span, err) }()
	span.SetTag("build-id", build.ID)

	return c.Client.StopBuild(ctx, build, comment)
}

func (c *tracingClient) GetArtifactFiles(ctx context.Context, href string) (files Files, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(c.prefix, "GetArtifactFiles"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return c.Client.GetArtifactFiles(ctx, href)
}

func (c *tracingClient) DownloadArtifact(ctx context.Context, href string, w io.Writer) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(c.prefix, "DownloadArtifact"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return c.Client.DownloadArtifact(ctx, href, w)
}
