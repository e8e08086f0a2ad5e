package tamtamapi

import (
	"context"
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

func (c *metricsClient) SendMessage(ctx context.Context, text string) (err error) {
	defer func(begin time.Time) { api.UpdateMetrics(c.requestCount, c.requestLatency, "SendMessage", begin) }(time.Now())

	return c.Client.SendMessage(ctx, text)
}
