package reporter

import (
	"context"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/estafette/estafette-teamcity-tools/pkg/clients/teamcityapi"
	"github.com/estafette/estafette-teamcity-tools/pkg/services/watcher"
)

// NewLoggingService returns a new instance of a logging Service.
func NewLoggingService(s Service) Service {
	return &loggingService{s, "reporter"}
}

type loggingService struct {
	Service Service
	prefix  string
}

func (s *loggingService) ReportRemoteBuild(ctx context.Context, build teamcityapi.Build) (err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "ReportRemoteBuild", err) }()

	return s.Service.ReportRemoteBuild(ctx, build)
}

func (s *loggingService) ReportTimeout(ctx context.Context, build teamcityapi.Build) (err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "ReportTimeout", err) }()

	return s.Service.ReportTimeout(ctx, build)
}

func (s *loggingService) ReportOutcome(ctx context.Context, build *teamcityapi.Build, outcome watcher.Outcome) (err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "ReportOutcome", err) }()

	return s.Service.ReportOutcome(ctx, build, outcome)
}
