package teamcityapi

import (
	"context"
	"io"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
)

// NewLoggingClient returns a new instance of a logging Client.
func NewLoggingClient(c Client) Client {
	return &loggingClient{c, "teamcityapi"}
}

type loggingClient struct {
	Client Client
	prefix string
}

func (c *loggingClient) GetBuilds(ctx context.Context, locator string) (builds BuildsResponse, err error) {
	defer func() { api.HandleLogError(c.prefix, "Client", "GetBuilds", err) }()

	return c.Client.GetBuilds(ctx, locator)
}

func (c *loggingClient) StopBuild(ctx context.Context, build Build, comment string) (err error) {
	defer func() { api.HandleLogError(c.prefix, "Client", "StopBuild", err) }()

	return c.Client.StopBuild(ctx, build, comment)
}

func (c *loggingClient) GetArtifactFiles(ctx context.Context, href string) (files Files, err error) {
	defer func() { api.HandleLogError(c.prefix, "Client", "GetArtifactFiles", err) }()

	return c.Client.GetArtifactFiles(ctx, href)
}

func (c *loggingClient) DownloadArtifact(ctx context.Context, href string, w io.Writer) (err error) {
	defer func() { api.HandleLogError(c.prefix, "Client", "DownloadArtifact", err) }()

	return c.Client.DownloadArtifact(ctx, href, w)
}
