package watcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/estafette/estafette-teamcity-tools/pkg/clients/teamcityapi"
	"github.com/rs/zerolog/log"
)

var (
	ErrBuildNotFound       = errors.New("Couldn't find any builds matching the locator")
	ErrFetchFailed         = errors.New("Fetching the remote build status failed")
	ErrEmptyLocator        = errors.New("The build locator cannot be empty")
	ErrInvalidPollInterval = errors.New("The poll interval should be larger than zero")
)

// Service waits for a remote teamcity build to finish
type Service interface {
	Watch(ctx context.Context, params WatchParams) (build *teamcityapi.Build, outcome Outcome, err error)
}

// NewService returns a watcher.Service
func NewService(teamcityapiClient teamcityapi.Client) Service {
	return &service{
		teamcityapiClient: teamcityapiClient,
		now:               time.Now,
		sleep:             sleepContext,
	}
}

type service struct {
	teamcityapiClient teamcityapi.Client
	now               func() time.Time
	sleep             func(ctx context.Context, d time.Duration) error
}

func (s *service) Watch(ctx context.Context, params WatchParams) (build *teamcityapi.Build, outcome Outcome, err error) {

	if strings.TrimSpace(params.Locator) == "" {
		return nil, OutcomeNone, ErrEmptyLocator
	}
	if params.PollIntervalSeconds <= 0 {
		return nil, OutcomeNone, ErrInvalidPollInterval
	}

	locator := teamcityapi.AugmentLocator(params.Locator)
	maxWait := time.Duration(params.MaxWaitSeconds) * time.Second
	pollInterval := time.Duration(params.PollIntervalSeconds) * time.Second

	log.Info().Msgf("Processing build matching locator %v", locator)

	start := s.now()
	for {
		builds, err := s.teamcityapiClient.GetBuilds(ctx, locator)
		if err != nil {
			return nil, OutcomeNone, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}

		if builds.Count == 0 || len(builds.Builds) == 0 {
			if params.NoFailMissing {
				log.Warn().Msgf("Couldn't find any builds matching locator %v", locator)
				return nil, OutcomeNotFound, nil
			}
			return nil, OutcomeNone, ErrBuildNotFound
		}

		current := builds.Builds[0]
		if !current.IsRunning() {
			return &current, ClassifyBuild(current), nil
		}

		log.Info().Msgf("Build %v is still running, waiting until it finishes...", current.FullName())

		if s.now().Sub(start) > maxWait {
			if params.OnTimedOut != nil {
				params.OnTimedOut(ctx, current)
			}
			if params.ReturnOnTimeout {
				return &current, OutcomeTimedOut, nil
			}
		}

		err = s.sleep(ctx, pollInterval)
		if err != nil {
			return &current, OutcomeNone, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
