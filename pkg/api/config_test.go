package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDefaults(t *testing.T) {

	t.Run("SetsDefaultsForEmptyConfig", func(t *testing.T) {

		config := &Config{}

		// act
		config.SetDefaults()

		assert.Equal(t, "https://teamcity.corp.local", config.TeamCity.APIURL)
		assert.Equal(t, 60, config.TeamCity.TimeoutSeconds)
		assert.Equal(t, 240, *config.Watch.MaxWaitSeconds)
		assert.Equal(t, 10, config.Watch.PollIntervalSeconds)
		assert.Equal(t, "REMOTE_BUILD_NUMBER", config.Watch.RemoteBuildNumberParameter)
		assert.Equal(t, "build __buildTypeId__:__number__ is in __status__ state", config.Messages.FailedBuild)
		assert.Equal(t, "build __buildTypeId__:__number__ cancelled", config.Messages.CancelledBuild)
		assert.Equal(t, "timeout waiting for the build __buildTypeId__:__number__ finish", config.Messages.TimeoutBuild)
		assert.Equal(t, 4, config.Artifacts.Concurrency)
		assert.Equal(t, 3, config.Artifacts.Attempts)
		assert.Equal(t, "https://api.tamtam.im/api/message", config.Notify.URL)
		assert.Equal(t, "Wall-E", config.Notify.BotName)
		assert.False(t, config.TeamCity.InsecureSkipVerify)
	})

	t.Run("TrimsTrailingSlashFromAPIURL", func(t *testing.T) {

		config := &Config{TeamCity: &TeamCityConfig{APIURL: "https://teamcity.example.com/"}}

		// act
		config.SetDefaults()

		assert.Equal(t, "https://teamcity.example.com", config.TeamCity.APIURL)
	})

	t.Run("KeepsZeroMaxWaitSeconds", func(t *testing.T) {

		maxWait := 0
		config := &Config{Watch: &WatchConfig{MaxWaitSeconds: &maxWait}}

		// act
		config.SetDefaults()

		assert.Equal(t, 0, *config.Watch.MaxWaitSeconds)
	})
}

func TestValidate(t *testing.T) {

	t.Run("ReturnsNoErrorForDefaults", func(t *testing.T) {

		config := &Config{}
		config.SetDefaults()

		// act
		err := config.Validate()

		assert.Nil(t, err)
	})

	t.Run("ReturnsErrorIfAPIURLHasNoScheme", func(t *testing.T) {

		config := &Config{TeamCity: &TeamCityConfig{APIURL: "teamcity.corp.local"}}
		config.SetDefaults()

		// act
		err := config.Validate()

		assert.NotNil(t, err)
	})

	t.Run("ReturnsErrorForNegativeMaxWaitSeconds", func(t *testing.T) {

		maxWait := -1
		config := &Config{Watch: &WatchConfig{MaxWaitSeconds: &maxWait}}
		config.SetDefaults()

		// act
		err := config.Validate()

		assert.NotNil(t, err)
	})

	t.Run("ReturnsErrorForNegativePollInterval", func(t *testing.T) {

		config := &Config{Watch: &WatchConfig{PollIntervalSeconds: -5}}
		config.SetDefaults()

		// act
		err := config.Validate()

		assert.NotNil(t, err)
	})

	t.Run("ReturnsErrorIfNotificationsAreEnabledWithoutToken", func(t *testing.T) {

		config := &Config{Notify: &NotifyConfig{Enable: true}}
		config.SetDefaults()

		// act
		err := config.Validate()

		assert.NotNil(t, err)
	})

	t.Run("ReturnsErrorIfConcurrencyIsTooHigh", func(t *testing.T) {

		config := &Config{Artifacts: &ArtifactsConfig{Concurrency: 100}}
		config.SetDefaults()

		// act
		err := config.Validate()

		assert.NotNil(t, err)
	})
}

func TestReadConfigFromFile(t *testing.T) {

	t.Run("ReturnsEmptyConfigForEmptyPath", func(t *testing.T) {

		configReader := NewConfigReader()

		// act
		config, err := configReader.ReadConfigFromFile("")

		assert.Nil(t, err)
		assert.NotNil(t, config)
		assert.Nil(t, config.TeamCity)
	})

	t.Run("ReadsYamlConfigFile", func(t *testing.T) {

		configPath := filepath.Join(t.TempDir(), "config.yaml")
		err := os.WriteFile(configPath, []byte(`teamcity:
  apiURL: https://teamcity.example.com
  username: tcuser
  insecureSkipVerify: true
watch:
  maxWaitSeconds: 0
  pollIntervalSeconds: 5
  noFailMissing: true
messages:
  failedBuild: __buildTypeId__ broke
notify:
  enable: true
  token: vM5j4R
`), 0644)
		assert.Nil(t, err)

		configReader := NewConfigReader()

		// act
		config, err := configReader.ReadConfigFromFile(configPath)

		assert.Nil(t, err)
		assert.Equal(t, "https://teamcity.example.com", config.TeamCity.APIURL)
		assert.Equal(t, "tcuser", config.TeamCity.Username)
		assert.True(t, config.TeamCity.InsecureSkipVerify)
		assert.Equal(t, 0, *config.Watch.MaxWaitSeconds)
		assert.Equal(t, 5, config.Watch.PollIntervalSeconds)
		assert.True(t, config.Watch.NoFailMissing)
		assert.Equal(t, "__buildTypeId__ broke", config.Messages.FailedBuild)
		assert.True(t, config.Notify.Enable)
		assert.Equal(t, "vM5j4R", config.Notify.Token)
	})

	t.Run("ReturnsErrorForMissingFile", func(t *testing.T) {

		configReader := NewConfigReader()

		// act
		_, err := configReader.ReadConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.NotNil(t, err)
	})
}
