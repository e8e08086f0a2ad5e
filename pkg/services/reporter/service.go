package reporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/estafette/estafette-teamcity-tools/pkg/clients/tamtamapi"
	"github.com/estafette/estafette-teamcity-tools/pkg/clients/teamcityapi"
	"github.com/estafette/estafette-teamcity-tools/pkg/services/watcher"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingBuild   = errors.New("The outcome requires a build to report on")
	ErrUnknownOutcome = errors.New("The outcome is unknown")
)

// Service reports the result of watching a remote build back to the invoking teamcity build through service messages
type Service interface {
	ReportRemoteBuild(ctx context.Context, build teamcityapi.Build) (err error)
	ReportTimeout(ctx context.Context, build teamcityapi.Build) (err error)
	ReportOutcome(ctx context.Context, build *teamcityapi.Build, outcome watcher.Outcome) (err error)
}

// NewService returns a reporter.Service writing service messages to writer
func NewService(config *api.Config, writer io.Writer, teamcityapiClient teamcityapi.Client, tamtamapiClient tamtamapi.Client) Service {
	return &service{
		config:            config,
		writer:            writer,
		teamcityapiClient: teamcityapiClient,
		tamtamapiClient:   tamtamapiClient,
		timedOutBuilds:    map[int64]bool{},
	}
}

type service struct {
	config            *api.Config
	writer            io.Writer
	teamcityapiClient teamcityapi.Client
	tamtamapiClient   tamtamapi.Client

	mutex          sync.Mutex
	timedOutBuilds map[int64]bool
}

func (s *service) ReportRemoteBuild(ctx context.Context, build teamcityapi.Build) (err error) {

	parameter := s.config.Watch.RemoteBuildNumberParameter

	log.Info().Msgf("Setting %v to %v", parameter, build.Number)
	err = s.writeServiceMessage(FormatServiceMessage("setParameter",
		ServiceMessageAttribute{Name: "name", Value: parameter},
		ServiceMessageAttribute{Name: "value", Value: build.Number},
	))
	if err != nil {
		return
	}

	if s.config.Watch.UpdateBuildNumber {
		log.Info().Msgf("Setting own build number to %v", build.Number)
		err = s.writeServiceMessage(FormatSingleValueServiceMessage("buildNumber", build.Number))
		if err != nil {
			return
		}
	}

	return nil
}

// ReportTimeout is called for every poll past the deadline; stopping the remote build and notifying only happen once per build
func (s *service) ReportTimeout(ctx context.Context, build teamcityapi.Build) (err error) {

	message := ExpandTemplate(s.config.Messages.TimeoutBuild, build)
	log.Warn().Msg(message)

	err = s.writeStatusAndStop(message)
	if err != nil {
		return
	}

	s.mutex.Lock()
	firstTimeout := !s.timedOutBuilds[build.ID]
	s.timedOutBuilds[build.ID] = true
	s.mutex.Unlock()

	if !firstTimeout {
		return nil
	}

	if s.config.Watch.StopRemoteOnTimeout {
		log.Info().Msgf("Stopping remote build %v", build.FullName())
		err = s.teamcityapiClient.StopBuild(ctx, build, message)
		if err != nil {
			log.Warn().Err(err).Msgf("Failed stopping remote build %v", build.FullName())
		}
	}

	s.notify(ctx, message, build)

	return err
}

func (s *service) ReportOutcome(ctx context.Context, build *teamcityapi.Build, outcome watcher.Outcome) (err error) {

	if outcome == watcher.OutcomeNotFound {
		log.Warn().Msg("Couldn't find any builds matching the request")
		return nil
	}

	if build == nil {
		return ErrMissingBuild
	}

	switch outcome {
	case watcher.OutcomeSuccess:
		log.Info().Msgf("Remote build status: %v", build.Status)
		return nil

	case watcher.OutcomeCancelled:
		message := ExpandTemplate(s.config.Messages.CancelledBuild, *build)
		log.Warn().Msg(message)

		err = s.writeStatusAndStop(message)
		if err != nil {
			return
		}
		s.notify(ctx, message, *build)

		return nil

	case watcher.OutcomeFailed:
		message := ExpandTemplate(s.config.Messages.FailedBuild, *build)
		log.Error().Msg(message)

		err = s.writeServiceMessage(FormatServiceMessage("buildStatus", ServiceMessageAttribute{Name: "text", Value: message}))
		if err != nil {
			return
		}
		s.notify(ctx, message, *build)

		return nil

	case watcher.OutcomeTimedOut:
		// the timeout itself has been reported while polling
		log.Warn().Msgf("Stopped waiting for remote build %v, it is still %v", build.FullName(), build.State)
		return nil
	}

	return fmt.Errorf("%w: %v", ErrUnknownOutcome, outcome)
}

func (s *service) writeStatusAndStop(message string) (err error) {
	err = s.writeServiceMessage(FormatServiceMessage("buildStatus", ServiceMessageAttribute{Name: "text", Value: message}))
	if err != nil {
		return
	}

	return s.writeServiceMessage(FormatServiceMessage("buildStop",
		ServiceMessageAttribute{Name: "comment", Value: message},
		ServiceMessageAttribute{Name: "readdToQueue", Value: "false"},
	))
}

func (s *service) writeServiceMessage(message string) (err error) {
	_, err = fmt.Fprintln(s.writer, message)
	return
}

func (s *service) notify(ctx context.Context, message string, build teamcityapi.Build) {
	if s.tamtamapiClient == nil || s.config.Notify == nil || !s.config.Notify.Enable {
		return
	}

	text := message
	if build.WebURL != "" {
		text += "\n" + build.WebURL
	}

	err := s.tamtamapiClient.SendMessage(ctx, tamtamapi.WrapLinks(text))
	if err != nil {
		log.Warn().Err(err).Msg("Failed sending notification to tamtam")
	}
}
