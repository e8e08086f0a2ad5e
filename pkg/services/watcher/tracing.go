package watcher

import (
	"context"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/estafette/estafette-teamcity-tools/pkg/clients/teamcityapi"
	"github.com/opentracing/opentracing-go"
)

// NewTracingService returns a new instance of a tracing Service.
func NewTracingService(s Service) Service {
	return &tracingService{s, "watcher"}
}

type tracingService struct {
	Service Service
	prefix  string
}

func (s *tracingService) Watch(ctx context.Context, params WatchParams) (build *teamcityapi.Build, outcome Outcome, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "Watch"))
	defer func() {
		span.SetTag("outcome", string(outcome))
		api.FinishSpanWithError(span, err)
	}()
	span.SetTag("locator", params.Locator)

	return s.Service.Watch(ctx, params)
}
