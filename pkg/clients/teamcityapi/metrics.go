package teamcityapi

import (
	"context"
	"io"
	"time"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/go-kit/kit/metrics"
)

// NewMetricsClient returns a new instance of a metrics Client.
func NewMetricsClient(c Client, requestCount metrics.Counter, requestLatency metrics.Histogram) Client {
	return &metricsClient{c, requestCount, requestLatency}
}

type metricsClient struct {
	Client         Client
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
}

func (c *metricsClient) GetBuilds(ctx context.Context, locator string) (builds BuildsResponse, err error) {
	defer func(begin time.Time) { api.UpdateMetrics(c.requestCount, c.requestLatency, "GetBuilds", begin) }(time.Now())

	return c.Client.GetBuilds(ctx, locator)
}

func (c *metricsClient) StopBuild(ctx context.Context, build Build, comment string) (err error) {
	defer func(begin time.Time) { api.UpdateMetrics(c.requestCount, c.requestLatency, "StopBuild", begin) }(time.Now())

	return c.Client.StopBuild(ctx, build, comment)
}

func (c *metricsClient) GetArtifactFiles(ctx context.Context, href string) (files Files, err error) {
	defer func(begin time.Time) {
		api.UpdateMetrics(c.requestCount, c.requestLatency, "GetArtifactFiles", begin)
	}(time.Now())

	return c.Client.GetArtifactFiles(ctx, href)
}

func (c *metricsClient) DownloadArtifact(ctx context.Context, href string, w io.Writer) (err error) {
	defer func(begin time.Time) {
		api.UpdateMetrics(c.requestCount, c.requestLatency, "DownloadArtifact", begin)
	}(time.Now())

	return c.Client.DownloadArtifact(ctx, href, w)
}
