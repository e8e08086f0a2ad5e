package artifacts

import (
	"context"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
)

// NewLoggingService returns a new instance of a logging Service.
func NewLoggingService(s Service) Service {
	return &loggingService{s, "artifacts"}
}

type loggingService struct {
	Service Service
	prefix  string
}

func (s *loggingService) DownloadArtifacts(ctx context.Context, params DownloadParams) (artifacts []Artifact, err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "DownloadArtifacts", err) }()

	return s.Service.DownloadArtifacts(ctx, params)
}
