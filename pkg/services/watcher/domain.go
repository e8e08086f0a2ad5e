package watcher

import (
	"context"

	"github.com/estafette/estafette-teamcity-tools/pkg/clients/teamcityapi"
)

// Outcome is the final classification of a watched remote build
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeSuccess   Outcome = "success"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimedOut  Outcome = "timedout"
	OutcomeNotFound  Outcome = "notfound"
)

// ClassifyBuild maps the status of a build that is no longer running to an outcome
func ClassifyBuild(build teamcityapi.Build) Outcome {
	switch build.Status {
	case teamcityapi.BuildStatusSuccess:
		return OutcomeSuccess
	case teamcityapi.BuildStatusUnknown:
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}

// WatchParams controls a single watch of a remote build
type WatchParams struct {
	Locator             string
	MaxWaitSeconds      int
	PollIntervalSeconds int

	// NoFailMissing turns a locator without matches into OutcomeNotFound instead of ErrBuildNotFound
	NoFailMissing bool

	// ReturnOnTimeout stops polling once MaxWaitSeconds has passed; by default polling continues since the remote build can still finish
	ReturnOnTimeout bool

	// OnTimedOut is called for every poll of a still running build after MaxWaitSeconds has passed
	OnTimedOut func(ctx context.Context, build teamcityapi.Build)
}
