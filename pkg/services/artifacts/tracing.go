package artifacts

import (
	"context"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/opentracing/opentracing-go"
)

// NewTracingService returns a new instance of a tracing Service.
func NewTracingService(s Service) Service {
	return &tracingService{s, "artifacts"}
}

type tracingService struct {
	Service Service
	prefix  string
}

func (s *tracingService) DownloadArtifacts(ctx context.Context, params DownloadParams) (artifacts []Artifact, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "DownloadArtifacts"))
	defer func() {
		span.SetTag("artifacts", len(artifacts))
		api.FinishSpanWithError(span, err)
	}()
	span.SetTag("locator", params.Locator)
	span.SetTag("dry-run", params.DryRun)

	return s.Service.DownloadArtifacts(ctx, params)
}
