package reporter

import (
	"context"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/estafette/estafette-teamcity-tools/pkg/clients/teamcityapi"
	"github.com/estafette/estafette-teamcity-tools/pkg/services/watcher"
	"github.com/opentracing/opentracing-go"
)

// NewTracingService returns a new instance of a tracing Service.
func NewTracingService(s Service) Service {
	return &tracingService{s, "reporter"}
}

type tracingService struct {
	Service Service
	prefix  string
}

func (s *tracingService) ReportRemoteBuild(ctx context.Context, build teamcityapi.Build) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "ReportRemoteBuild"))
	defer func() { api.FinishSpanWithError(span, err) }()
	span.SetTag("build", build.FullName())

	return s.Service.ReportRemoteBuild(ctx, build)
}

func (s *tracingService) ReportTimeout(ctx context.Context, build teamcityapi.Build) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "ReportTimeout"))
	defer func() { api.FinishSpanWithError(span, err) }()
	span.SetTag("build", build.FullName())

	return s.Service.ReportTimeout(ctx, build)
}

func (s *tracingService) ReportOutcome(ctx context.Context, build *teamcityapi.Build, outcome watcher.Outcome) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "ReportOutcome"))
	defer func() { api.FinishSpanWithError(span, err) }()
	span.SetTag("outcome", string(outcome))

	return s.Service.ReportOutcome(ctx, build, outcome)
}
