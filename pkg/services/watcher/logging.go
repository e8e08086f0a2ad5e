package watcher

import (
	"context"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/estafette/estafette-teamcity-tools/pkg/clients/teamcityapi"
)

// NewLoggingService returns a new instance of a logging Service.
func NewLoggingService(s Service) Service {
	return &loggingService{s, "watcher"}
}

type loggingService struct {
	Service Service
	prefix  string
}

func (s *loggingService) Watch(ctx context.Context, params WatchParams) (build *teamcityapi.Build, outcome Outcome, err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "Watch", err) }()

	return s.Service.Watch(ctx, params)
}
