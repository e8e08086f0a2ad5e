package reporter

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/estafette/estafette-teamcity-tools/pkg/clients/tamtamapi"
	"github.com/estafette/estafette-teamcity-tools/pkg/clients/teamcityapi"
	"github.com/estafette/estafette-teamcity-tools/pkg/services/watcher"
	gomock "github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func newTestConfig() *api.Config {
	config := &api.Config{}
	config.SetDefaults()

	return config
}

func failedBuild() teamcityapi.Build {
	return teamcityapi.Build{
		ID:          533691,
		BuildTypeID: "Tst",
		Number:      "22",
		Status:      teamcityapi.BuildStatusFailure,
		State:       teamcityapi.BuildStateFinished,
		WebURL:      "https://teamcity.corp.local/viewLog.html?buildId=533691&buildTypeId=Tst",
	}
}

func TestReportRemoteBuild(t *testing.T) {

	t.Run("SetsRemoteBuildNumberParameter", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var output bytes.Buffer
		service := NewService(newTestConfig(), &output, teamcityapi.NewMockClient(ctrl), tamtamapi.NewMockClient(ctrl))

		// act
		err := service.ReportRemoteBuild(context.Background(), teamcityapi.Build{Number: "1.11.0.56021"})

		assert.Nil(t, err)
		assert.Equal(t, "##teamcity[setParameter name='REMOTE_BUILD_NUMBER' value='1.11.0.56021']\n", output.String())
	})

	t.Run("SetsOwnBuildNumberIfUpdateBuildNumberIsEnabled", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		config := newTestConfig()
		config.Watch.UpdateBuildNumber = true
		config.Watch.RemoteBuildNumberParameter = "ANDROID_BUILD_NUMBER"

		var output bytes.Buffer
		service := NewService(config, &output, teamcityapi.NewMockClient(ctrl), tamtamapi.NewMockClient(ctrl))

		// act
		err := service.ReportRemoteBuild(context.Background(), teamcityapi.Build{Number: "22"})

		assert.Nil(t, err)
		assert.Equal(t, "##teamcity[setParameter name='ANDROID_BUILD_NUMBER' value='22']\n##teamcity[buildNumber '22']\n", output.String())
	})
}

func TestReportOutcome(t *testing.T) {

	t.Run("WritesNoServiceMessagesForSuccess", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var output bytes.Buffer
		service := NewService(newTestConfig(), &output, teamcityapi.NewMockClient(ctrl), tamtamapi.NewMockClient(ctrl))
		build := teamcityapi.Build{BuildTypeID: "Tst", Number: "22", Status: teamcityapi.BuildStatusSuccess}

		// act
		err := service.ReportOutcome(context.Background(), &build, watcher.OutcomeSuccess)

		assert.Nil(t, err)
		assert.Equal(t, "", output.String())
	})

	t.Run("WritesBuildStatusForFailedBuild", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var output bytes.Buffer
		service := NewService(newTestConfig(), &output, teamcityapi.NewMockClient(ctrl), tamtamapi.NewMockClient(ctrl))
		build := failedBuild()

		// act
		err := service.ReportOutcome(context.Background(), &build, watcher.OutcomeFailed)

		assert.Nil(t, err)
		assert.Equal(t, "##teamcity[buildStatus text='build Tst:22 is in FAILURE state']\n", output.String())
	})

	t.Run("WritesBuildStatusAndBuildStopForCancelledBuild", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var output bytes.Buffer
		service := NewService(newTestConfig(), &output, teamcityapi.NewMockClient(ctrl), tamtamapi.NewMockClient(ctrl))
		build := teamcityapi.Build{BuildTypeID: "Tst", Number: "22", Status: teamcityapi.BuildStatusUnknown}

		// act
		err := service.ReportOutcome(context.Background(), &build, watcher.OutcomeCancelled)

		assert.Nil(t, err)
		assert.Equal(t, "##teamcity[buildStatus text='build Tst:22 cancelled']\n##teamcity[buildStop comment='build Tst:22 cancelled' readdToQueue='false']\n", output.String())
	})

	t.Run("SendsNotificationWithWrappedBuildLinkForFailedBuildIfEnabled", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		config := newTestConfig()
		config.Notify.Enable = true
		config.Notify.Token = "vM5j4R"

		tamtamapiClient := tamtamapi.NewMockClient(ctrl)
		tamtamapiClient.
			EXPECT().
			SendMessage(gomock.Any(), gomock.Eq("build Tst:22 is in FAILURE state\n[details](https://teamcity.corp.local/viewLog.html?buildId=533691&buildTypeId=Tst)")).
			Return(nil).
			Times(1)

		var output bytes.Buffer
		service := NewService(config, &output, teamcityapi.NewMockClient(ctrl), tamtamapiClient)
		build := failedBuild()

		// act
		err := service.ReportOutcome(context.Background(), &build, watcher.OutcomeFailed)

		assert.Nil(t, err)
	})

	t.Run("IgnoresNotificationErrors", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		config := newTestConfig()
		config.Notify.Enable = true

		tamtamapiClient := tamtamapi.NewMockClient(ctrl)
		tamtamapiClient.EXPECT().SendMessage(gomock.Any(), gomock.Any()).Return(errors.New("tamtam is down")).Times(1)

		var output bytes.Buffer
		service := NewService(config, &output, teamcityapi.NewMockClient(ctrl), tamtamapiClient)
		build := failedBuild()

		// act
		err := service.ReportOutcome(context.Background(), &build, watcher.OutcomeCancelled)

		assert.Nil(t, err)
	})

	t.Run("ReturnsNoErrorForNotFoundWithoutBuild", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var output bytes.Buffer
		service := NewService(newTestConfig(), &output, teamcityapi.NewMockClient(ctrl), tamtamapi.NewMockClient(ctrl))

		// act
		err := service.ReportOutcome(context.Background(), nil, watcher.OutcomeNotFound)

		assert.Nil(t, err)
		assert.Equal(t, "", output.String())
	})

	t.Run("ReturnsErrMissingBuildForOtherOutcomesWithoutBuild", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var output bytes.Buffer
		service := NewService(newTestConfig(), &output, teamcityapi.NewMockClient(ctrl), tamtamapi.NewMockClient(ctrl))

		// act
		err := service.ReportOutcome(context.Background(), nil, watcher.OutcomeFailed)

		assert.True(t, errors.Is(err, ErrMissingBuild))
	})
}

func TestReportTimeout(t *testing.T) {

	t.Run("WritesBuildStatusAndBuildStopOnEveryCall", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var output bytes.Buffer
		service := NewService(newTestConfig(), &output, teamcityapi.NewMockClient(ctrl), tamtamapi.NewMockClient(ctrl))
		build := teamcityapi.Build{ID: 1, BuildTypeID: "Tst", Number: "22", State: teamcityapi.BuildStateRunning}

		// act
		err := service.ReportTimeout(context.Background(), build)
		assert.Nil(t, err)
		err = service.ReportTimeout(context.Background(), build)
		assert.Nil(t, err)

		expected := "##teamcity[buildStatus text='timeout waiting for the build Tst:22 finish']\n##teamcity[buildStop comment='timeout waiting for the build Tst:22 finish' readdToQueue='false']\n"
		assert.Equal(t, expected+expected, output.String())
	})

	t.Run("StopsRemoteBuildOnlyOnceIfStopRemoteOnTimeoutIsEnabled", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		config := newTestConfig()
		config.Watch.StopRemoteOnTimeout = true
		build := teamcityapi.Build{ID: 1, BuildTypeID: "Tst", Number: "22", State: teamcityapi.BuildStateRunning}

		teamcityapiClient := teamcityapi.NewMockClient(ctrl)
		teamcityapiClient.
			EXPECT().
			StopBuild(gomock.Any(), gomock.Eq(build), gomock.Eq("timeout waiting for the build Tst:22 finish")).
			Return(nil).
			Times(1)

		var output bytes.Buffer
		service := NewService(config, &output, teamcityapiClient, tamtamapi.NewMockClient(ctrl))

		// act
		_ = service.ReportTimeout(context.Background(), build)
		_ = service.ReportTimeout(context.Background(), build)
	})

	t.Run("NotifiesEvenIfStoppingRemoteBuildFails", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		config := newTestConfig()
		config.Watch.StopRemoteOnTimeout = true
		config.Notify.Enable = true
		build := teamcityapi.Build{ID: 1, BuildTypeID: "Tst", Number: "22", State: teamcityapi.BuildStateRunning}

		teamcityapiClient := teamcityapi.NewMockClient(ctrl)
		teamcityapiClient.EXPECT().StopBuild(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("403 Forbidden")).Times(1)

		tamtamapiClient := tamtamapi.NewMockClient(ctrl)
		tamtamapiClient.EXPECT().SendMessage(gomock.Any(), gomock.Eq("timeout waiting for the build Tst:22 finish")).Return(nil).Times(1)

		var output bytes.Buffer
		service := NewService(config, &output, teamcityapiClient, tamtamapiClient)

		// act
		err := service.ReportTimeout(context.Background(), build)
		assert.NotNil(t, err)
		err = service.ReportTimeout(context.Background(), build)
		assert.Nil(t, err)
	})
}
