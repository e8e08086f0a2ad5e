package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/alecthomas/kingpin"
	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/estafette/estafette-teamcity-tools/pkg/clients/tamtamapi"
	"github.com/estafette/estafette-teamcity-tools/pkg/clients/teamcityapi"
	"github.com/estafette/estafette-teamcity-tools/pkg/services/artifacts"
	"github.com/estafette/estafette-teamcity-tools/pkg/services/reporter"
	"github.com/estafette/estafette-teamcity-tools/pkg/services/watcher"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jprom "github.com/uber/jaeger-lib/metrics/prometheus"
)

var (
	app       = "estafette-teamcity-tools"
	version   string
	branch    string
	revision  string
	buildDate string
	goVersion = runtime.Version()
)

var (
	// flags
	configPath     = kingpin.Flag("config-path", "Path to an optional yaml config file; flags override its values.").Envar("CONFIG_PATH").String()
	logFormat      = kingpin.Flag("log-format", "Format of the logs written to stderr.").Default("json").Envar("LOG_FORMAT").Enum("json", "console")
	pushgatewayURL = kingpin.Flag("pushgateway-url", "Url of a Prometheus Pushgateway to push metrics to before exiting.").Envar("PUSHGATEWAY_URL").String()

	apiURL      = kingpin.Flag("api-url", "The base url of the TeamCity server.").Envar("TEAMCITY_API_URL").String()
	apiUsername = kingpin.Flag("api-username", "The TeamCity api user.").Envar("TEAMCITY_API_USERNAME").String()
	apiPassword = kingpin.Flag("api-password", "The password of the TeamCity api user.").Envar("TEAMCITY_API_PASSWORD").String()
	insecure    = kingpin.Flag("insecure", "Skip verification of the TeamCity server certificate.").Envar("TEAMCITY_INSECURE").Bool()

	notifyEnable  = kingpin.Flag("notify", "Post failures to a TamTam chat.").Envar("TAMTAM_NOTIFY").Bool()
	notifyURL     = kingpin.Flag("notify-url", "The TamTam message api url.").Envar("TAMTAM_URL").String()
	notifyToken   = kingpin.Flag("notify-token", "The TamTam chat token.").Envar("TAMTAM_TOKEN").String()
	notifyBotName = kingpin.Flag("notify-bot-name", "The name messages are posted as.").Envar("TAMTAM_BOT_NAME").String()

	watchCommand               = kingpin.Command("watch", "Waits for a remote build to finish and reports its result to the current build.").Default()
	watchBuildLocator          = watchCommand.Flag("build-locator", "Locator of the remote build, for example buildType:Proj_Stable_BuildAndroid,number:0.12.3.").Envar("BUILD_LOCATOR").Required().String()
	failedBuildMessage         = watchCommand.Flag("failed-build-message", "Message for a failed remote build; __field__ tokens are replaced by build attributes.").Envar("FAILED_BUILD_MESSAGE").String()
	cancelledBuildMessage      = watchCommand.Flag("cancelled-build-message", "Message for a cancelled remote build.").Envar("CANCELLED_BUILD_MESSAGE").String()
	timeoutBuildMessage        = watchCommand.Flag("timeout-build-message", "Message for a remote build still running after max-wait-seconds.").Envar("TIMEOUT_BUILD_MESSAGE").String()
	maxWaitSeconds             = watchCommand.Flag("max-wait-seconds", "Seconds to wait for the remote build before reporting a timeout (default 240).").Envar("MAX_WAIT_SECONDS").String()
	pollIntervalSeconds        = watchCommand.Flag("poll-interval-seconds", "Seconds between two fetches of a running build (default 10).").Envar("POLL_INTERVAL_SECONDS").String()
	noFailMissing              = watchCommand.Flag("no-fail-missing", "Don't fail if no build matches the locator.").Envar("NO_FAIL_MISSING").Bool()
	updateBuildNumber          = watchCommand.Flag("update-build-number", "Set the build number of the current build to the one of the remote build.").Envar("UPDATE_BUILD_NUMBER").Bool()
	returnOnTimeout            = watchCommand.Flag("return-on-timeout", "Stop waiting once max-wait-seconds has passed instead of waiting for the remote build to finish.").Envar("RETURN_ON_TIMEOUT").Bool()
	stopRemoteOnTimeout        = watchCommand.Flag("stop-remote-on-timeout", "Stop the remote build once max-wait-seconds has passed.").Envar("STOP_REMOTE_ON_TIMEOUT").Bool()
	remoteBuildNumberParameter = watchCommand.Flag("remote-build-number-parameter", "Parameter of the current build to set to the remote build number.").Envar("REMOTE_BUILD_NUMBER_PARAMETER").String()

	artifactsCommand      = kingpin.Command("artifacts", "Downloads the artifacts of a remote build.")
	artifactsBuildLocator = artifactsCommand.Flag("build-locator", "Locator of the build to download artifacts from.").Envar("BUILD_LOCATOR").Required().String()
	artifactsPath         = artifactsCommand.Flag("artifacts-path", "Artifacts path to start downloading from.").Default("/").Envar("ARTIFACTS_PATH").String()
	artifactsDirectory    = artifactsCommand.Flag("directory", "Directory to save artifacts to.").Default(".").Envar("ARTIFACTS_DIRECTORY").String()
	artifactsFlatten      = artifactsCommand.Flag("flatten", "Save all artifacts directly into the directory.").Envar("ARTIFACTS_FLATTEN").Bool()
	artifactsDryRun       = artifactsCommand.Flag("dry-run", "List artifacts without downloading them.").Envar("ARTIFACTS_DRY_RUN").Bool()
	artifactsConcurrency  = artifactsCommand.Flag("concurrency", "Number of parallel downloads (default 4).").Envar("ARTIFACTS_CONCURRENCY").Int()

	notifyCommand = kingpin.Command("notify", "Posts a message to a TamTam chat.")
	notifyMessage = notifyCommand.Arg("message", "The message to post.").Required().String()
)

func main() {

	// parse command line parameters
	command := kingpin.Parse()

	// configure logging to stderr, stdout is reserved for teamcity service messages
	initLogging(os.Stderr, *logFormat)

	closer := initJaeger(app)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	config, err := readConfig(command)
	if err != nil {
		log.Error().Err(err).Msg("Failed reading configuration")
		closer.Close()
		cancel()
		os.Exit(1)
	}

	teamcityapiClient := teamcityapi.NewTracingClient(teamcityapi.NewMetricsClient(teamcityapi.NewLoggingClient(teamcityapi.NewClient(config)), api.NewRequestCounter("teamcityapi_client"), api.NewRequestHistogram("teamcityapi_client")))
	tamtamapiClient := tamtamapi.NewTracingClient(tamtamapi.NewMetricsClient(tamtamapi.NewLoggingClient(tamtamapi.NewClient(config)), api.NewRequestCounter("tamtamapi_client"), api.NewRequestHistogram("tamtamapi_client")))

	var code int
	switch command {
	case watchCommand.FullCommand():
		code = runWatch(ctx, config, teamcityapiClient, tamtamapiClient, os.Stdout)

	case artifactsCommand.FullCommand():
		code = runArtifacts(ctx, config, teamcityapiClient)

	case notifyCommand.FullCommand():
		code = runNotify(ctx, tamtamapiClient)
	}

	pushMetrics(*pushgatewayURL, command)

	// os.Exit skips deferred calls
	closer.Close()
	cancel()
	os.Exit(code)
}

func runWatch(ctx context.Context, config *api.Config, teamcityapiClient teamcityapi.Client, tamtamapiClient tamtamapi.Client, stdout io.Writer) int {

	watcherService := watcher.NewTracingService(watcher.NewLoggingService(watcher.NewService(teamcityapiClient)))
	reporterService := reporter.NewTracingService(reporter.NewLoggingService(reporter.NewService(config, stdout, teamcityapiClient, tamtamapiClient)))

	build, outcome, err := watcherService.Watch(ctx, watcher.WatchParams{
		Locator:             *watchBuildLocator,
		MaxWaitSeconds:      *config.Watch.MaxWaitSeconds,
		PollIntervalSeconds: config.Watch.PollIntervalSeconds,
		NoFailMissing:       config.Watch.NoFailMissing,
		ReturnOnTimeout:     config.Watch.ReturnOnTimeout,
		OnTimedOut: func(ctx context.Context, build teamcityapi.Build) {
			if err := reporterService.ReportTimeout(ctx, build); err != nil {
				log.Warn().Err(err).Msg("Failed reporting timeout")
			}
		},
	})
	if err != nil {
		log.Error().Err(err).Msgf("Failed watching build matching locator %v", *watchBuildLocator)
		return exitCode(outcome, err)
	}

	if build != nil {
		err = reporterService.ReportRemoteBuild(ctx, *build)
		if err != nil {
			log.Error().Err(err).Msg("Failed reporting remote build")
			return exitCode(outcome, err)
		}
	}

	err = reporterService.ReportOutcome(ctx, build, outcome)
	if err != nil {
		log.Error().Err(err).Msgf("Failed reporting outcome %v", outcome)
	}

	return exitCode(outcome, err)
}

func runArtifacts(ctx context.Context, config *api.Config, teamcityapiClient teamcityapi.Client) int {

	artifactsService := artifacts.NewTracingService(artifacts.NewLoggingService(artifacts.NewService(config, teamcityapiClient)))

	downloaded, err := artifactsService.DownloadArtifacts(ctx, artifacts.DownloadParams{
		Locator:       *artifactsBuildLocator,
		ArtifactsPath: *artifactsPath,
		Directory:     *artifactsDirectory,
		Flatten:       *artifactsFlatten,
		DryRun:        *artifactsDryRun,
	})
	if err != nil {
		log.Error().Err(err).Msgf("Failed downloading artifacts of build %v; check the artifacts path, the credentials of %v and whether the locator matches a build", *artifactsBuildLocator, config.TeamCity.Username)
		return 1
	}

	log.Info().Msgf("Processed %v artifacts", len(downloaded))

	return 0
}

func runNotify(ctx context.Context, tamtamapiClient tamtamapi.Client) int {
	err := tamtamapiClient.SendMessage(ctx, tamtamapi.WrapLinks(*notifyMessage))
	if err != nil {
		log.Error().Err(err).Msg("Failed sending notification")
		return 1
	}

	return 0
}

// exitCode maps the result of watching a build to the process exit code
func exitCode(outcome watcher.Outcome, err error) int {
	if err != nil {
		return 1
	}

	switch outcome {
	case watcher.OutcomeSuccess, watcher.OutcomeCancelled, watcher.OutcomeTimedOut, watcher.OutcomeNotFound:
		return 0
	}

	return 1
}

func readConfig(command string) (*api.Config, error) {

	configReader := api.NewConfigReader()
	config, err := configReader.ReadConfigFromFile(*configPath)
	if err != nil {
		return nil, err
	}

	err = applyFlags(config)
	if err != nil {
		return nil, err
	}

	// posting a message is all the notify command does
	if command == notifyCommand.FullCommand() {
		config.Notify.Enable = true
	}

	config.SetDefaults()

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

// applyFlags overrides config file values with the flags that have been set
func applyFlags(config *api.Config) (err error) {

	if config.TeamCity == nil {
		config.TeamCity = &api.TeamCityConfig{}
	}
	if config.Watch == nil {
		config.Watch = &api.WatchConfig{}
	}
	if config.Messages == nil {
		config.Messages = &api.MessagesConfig{}
	}
	if config.Artifacts == nil {
		config.Artifacts = &api.ArtifactsConfig{}
	}
	if config.Notify == nil {
		config.Notify = &api.NotifyConfig{}
	}

	setString(&config.TeamCity.APIURL, *apiURL)
	setString(&config.TeamCity.Username, *apiUsername)
	setString(&config.TeamCity.Password, *apiPassword)
	setBool(&config.TeamCity.InsecureSkipVerify, *insecure)

	if *maxWaitSeconds != "" {
		value, err := strconv.Atoi(*maxWaitSeconds)
		if err != nil {
			return fmt.Errorf("Flag --max-wait-seconds should be an integer: %w", err)
		}
		config.Watch.MaxWaitSeconds = &value
	}
	if *pollIntervalSeconds != "" {
		value, err := strconv.Atoi(*pollIntervalSeconds)
		if err != nil {
			return fmt.Errorf("Flag --poll-interval-seconds should be an integer: %w", err)
		}
		if value <= 0 {
			return errors.New("Flag --poll-interval-seconds should be larger than zero")
		}
		config.Watch.PollIntervalSeconds = value
	}
	setBool(&config.Watch.NoFailMissing, *noFailMissing)
	setBool(&config.Watch.UpdateBuildNumber, *updateBuildNumber)
	setBool(&config.Watch.ReturnOnTimeout, *returnOnTimeout)
	setBool(&config.Watch.StopRemoteOnTimeout, *stopRemoteOnTimeout)
	setString(&config.Watch.RemoteBuildNumberParameter, *remoteBuildNumberParameter)

	setString(&config.Messages.FailedBuild, *failedBuildMessage)
	setString(&config.Messages.CancelledBuild, *cancelledBuildMessage)
	setString(&config.Messages.TimeoutBuild, *timeoutBuildMessage)

	if *artifactsConcurrency > 0 {
		config.Artifacts.Concurrency = *artifactsConcurrency
	}

	setBool(&config.Notify.Enable, *notifyEnable)
	setString(&config.Notify.URL, *notifyURL)
	setString(&config.Notify.Token, *notifyToken)
	setString(&config.Notify.BotName, *notifyBotName)

	return nil
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func setBool(target *bool, value bool) {
	if value {
		*target = true
	}
}

func initLogging(output io.Writer, format string) {

	// log as severity for stackdriver logging to recognize the level
	zerolog.LevelFieldName = "severity"

	if format == "console" {
		output = zerolog.ConsoleWriter{Out: output}
	}

	// set some default fields added to all logs
	log.Logger = zerolog.New(output).With().
		Timestamp().
		Str("app", app).
		Str("version", version).
		Logger()

	// use zerolog for any logs sent via standard log library
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	// log startup message
	log.Debug().
		Str("branch", branch).
		Str("revision", revision).
		Str("buildDate", buildDate).
		Str("goVersion", goVersion).
		Msgf("Starting %v version %v...", app, version)
}

// initJaeger returns an instance of Jaeger Tracer that can be configured with environment variables
// https://github.com/jaegertracing/jaeger-client-go#environment-variables
func initJaeger(service string) io.Closer {

	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Generating Jaeger config from environment variables failed")
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = service
	}

	// without an agent configured there's nothing to report to
	if os.Getenv("JAEGER_AGENT_HOST") == "" && os.Getenv("JAEGER_ENDPOINT") == "" {
		cfg.Disabled = true
	}

	closer, err := cfg.InitGlobalTracer(cfg.ServiceName, jaegercfg.Metrics(jprom.New()), jaegercfg.Logger(jaeger.NullLogger))
	if err != nil {
		log.Fatal().Err(err).Msg("Generating Jaeger tracer failed")
	}

	log.Debug().Msgf("Initialized tracer %T", opentracing.GlobalTracer())

	return closer
}

func pushMetrics(url, command string) {
	if url == "" {
		return
	}

	err := push.New(url, app).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("command", command).
		Push()
	if err != nil {
		log.Warn().Err(err).Msgf("Failed pushing metrics to %v", url)
	}
}
