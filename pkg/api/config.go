package api

import (
	"errors"
	"strings"
)

const (
	DefaultRemoteBuildNumberParameter = "REMOTE_BUILD_NUMBER"
	DefaultFailedBuildMessage         = "build __buildTypeId__:__number__ is in __status__ state"
	DefaultCancelledBuildMessage      = "build __buildTypeId__:__number__ cancelled"
	DefaultTimeoutBuildMessage        = "timeout waiting for the build __buildTypeId__:__number__ finish"
	DefaultTamTamURL                  = "https://api.tamtam.im/api/message"
	DefaultTamTamBotName              = "Wall-E"
)

// Config represents the configuration for the teamcity tools
type Config struct {
	TeamCity  *TeamCityConfig  `yaml:"teamcity,omitempty"`
	Watch     *WatchConfig     `yaml:"watch,omitempty"`
	Messages  *MessagesConfig  `yaml:"messages,omitempty"`
	Artifacts *ArtifactsConfig `yaml:"artifacts,omitempty"`
	Notify    *NotifyConfig    `yaml:"notify,omitempty"`
}

func (c *Config) SetDefaults() {
	if c.TeamCity == nil {
		c.TeamCity = &TeamCityConfig{}
	}
	c.TeamCity.SetDefaults()

	if c.Watch == nil {
		c.Watch = &WatchConfig{}
	}
	c.Watch.SetDefaults()

	if c.Messages == nil {
		c.Messages = &MessagesConfig{}
	}
	c.Messages.SetDefaults()

	if c.Artifacts == nil {
		c.Artifacts = &ArtifactsConfig{}
	}
	c.Artifacts.SetDefaults()

	if c.Notify == nil {
		c.Notify = &NotifyConfig{}
	}
	c.Notify.SetDefaults()
}

func (c *Config) Validate() (err error) {
	err = c.TeamCity.Validate()
	if err != nil {
		return
	}

	err = c.Watch.Validate()
	if err != nil {
		return
	}

	err = c.Artifacts.Validate()
	if err != nil {
		return
	}

	err = c.Notify.Validate()
	if err != nil {
		return
	}

	return nil
}

// TeamCityConfig is used to configure access to the teamcity rest api
type TeamCityConfig struct {
	APIURL             string `yaml:"apiURL"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
	TimeoutSeconds     int    `yaml:"timeoutSeconds"`
}

func (c *TeamCityConfig) SetDefaults() {
	if c.APIURL == "" {
		c.APIURL = "https://teamcity.corp.local"
	}
	c.APIURL = strings.TrimSuffix(c.APIURL, "/")

	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 60
	}
}

func (c *TeamCityConfig) Validate() (err error) {
	if c.APIURL == "" {
		return errors.New("Configuration item 'teamcity.apiURL' is required; please set it to the base url of your teamcity server")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return errors.New("Configuration item 'teamcity.apiURL' should start with http:// or https://")
	}

	return nil
}

// WatchConfig configures waiting for a remote build to finish
type WatchConfig struct {
	MaxWaitSeconds             *int   `yaml:"maxWaitSeconds,omitempty"`
	PollIntervalSeconds        int    `yaml:"pollIntervalSeconds"`
	NoFailMissing              bool   `yaml:"noFailMissing"`
	UpdateBuildNumber          bool   `yaml:"updateBuildNumber"`
	ReturnOnTimeout            bool   `yaml:"returnOnTimeout"`
	StopRemoteOnTimeout        bool   `yaml:"stopRemoteOnTimeout"`
	RemoteBuildNumberParameter string `yaml:"remoteBuildNumberParameter"`
}

func (c *WatchConfig) SetDefaults() {
	if c.MaxWaitSeconds == nil {
		maxWaitSeconds := 240
		c.MaxWaitSeconds = &maxWaitSeconds
	}
	if c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = 10
	}
	if c.RemoteBuildNumberParameter == "" {
		c.RemoteBuildNumberParameter = DefaultRemoteBuildNumberParameter
	}
}

func (c *WatchConfig) Validate() (err error) {
	if c.MaxWaitSeconds == nil || *c.MaxWaitSeconds < 0 {
		return errors.New("Configuration item 'watch.maxWaitSeconds' cannot be negative")
	}
	if c.PollIntervalSeconds <= 0 {
		return errors.New("Configuration item 'watch.pollIntervalSeconds' should be larger than zero")
	}

	return nil
}

// MessagesConfig holds the templates used to report on a remote build; any __field__ token is replaced with the build attribute of that name
type MessagesConfig struct {
	FailedBuild    string `yaml:"failedBuild"`
	CancelledBuild string `yaml:"cancelledBuild"`
	TimeoutBuild   string `yaml:"timeoutBuild"`
}

func (c *MessagesConfig) SetDefaults() {
	if c.FailedBuild == "" {
		c.FailedBuild = DefaultFailedBuildMessage
	}
	if c.CancelledBuild == "" {
		c.CancelledBuild = DefaultCancelledBuildMessage
	}
	if c.TimeoutBuild == "" {
		c.TimeoutBuild = DefaultTimeoutBuildMessage
	}
}

// ArtifactsConfig configures the artifact downloader
type ArtifactsConfig struct {
	Concurrency int `yaml:"concurrency"`
	Attempts    int `yaml:"attempts"`
}

func (c *ArtifactsConfig) SetDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
}

func (c *ArtifactsConfig) Validate() (err error) {
	if c.Concurrency > 64 {
		return errors.New("Configuration item 'artifacts.concurrency' should not exceed 64")
	}

	return nil
}

// NotifyConfig configures posting messages to a tamtam chat
type NotifyConfig struct {
	Enable  bool   `yaml:"enable"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	BotName string `yaml:"botName"`
}

func (c *NotifyConfig) SetDefaults() {
	if c.URL == "" {
		c.URL = DefaultTamTamURL
	}
	if c.BotName == "" {
		c.BotName = DefaultTamTamBotName
	}
}

func (c *NotifyConfig) Validate() (err error) {
	if !c.Enable {
		return nil
	}
	if c.Token == "" {
		return errors.New("Configuration item 'notify.token' is required when notifications are enabled")
	}

	return nil
}
