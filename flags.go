package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Criss1210/tarea-4/browser"
	"github.com/Criss1210/tarea-4/framework"
	"github.com/Criss1210/tarea-4/sitetests"
	"github.com/Criss1210/tarea-4/suitedef"
)

const EnvVarPrefix = "SMOKE"

func envVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		EnvVars: envVars("CONFIG"),
		Usage:   "Path to a YAML file with run settings; flags override it",
	}
	BaseURL = &cli.StringFlag{
		Name:    "base-url",
		Value:   sitetests.DefaultBaseURL,
		EnvVars: envVars("BASE_URL"),
		Usage:   "Base URL of the site under test",
	}
	Browser = &cli.StringFlag{
		Name:    "browser",
		Value:   browser.EngineChromium,
		EnvVars: envVars("BROWSER"),
		Usage:   "Browser engine: chromium (or chrome), firefox or webkit",
	}
	Headless = &cli.BoolFlag{
		Name:    "headless",
		EnvVars: envVars("HEADLESS"),
		Usage:   "Run the browser without a window",
	}
	InstallDriver = &cli.BoolFlag{
		Name:    "install-driver",
		EnvVars: envVars("INSTALL_DRIVER"),
		Usage:   "Download the Playwright driver and browser before starting",
	}
	CaptureDir = &cli.StringFlag{
		Name:    "capture-dir",
		Value:   suitedef.DefaultCaptureDir,
		EnvVars: envVars("CAPTURE_DIR"),
		Usage:   "Directory where screenshots are saved",
	}
	ReportPath = &cli.StringFlag{
		Name:    "report",
		Value:   suitedef.DefaultReportPath,
		EnvVars: envVars("REPORT"),
		Usage:   "Path of the HTML report; a JSON summary is written next to it",
	}
	Timeout = &cli.DurationFlag{
		Name:    "timeout",
		Value:   browser.DefaultTimeout,
		EnvVars: envVars("TIMEOUT"),
		Usage:   "Timeout for each browser action",
	}
	UniqueErrorCaptures = &cli.BoolFlag{
		Name:    "unique-error-captures",
		EnvVars: envVars("UNIQUE_ERROR_CAPTURES"),
		Usage:   "Name each failure screenshot after its step instead of overwriting test_error",
	}
	Preflight = &cli.BoolFlag{
		Name:    "preflight",
		EnvVars: envVars("PREFLIGHT"),
		Usage:   "Check that the site is reachable before the first step and run no steps if it is not",
	}
	Run = &cli.StringSliceFlag{
		Name:  "run",
		Usage: "Regex pattern(s) to select steps to run",
	}
	Skip = &cli.StringSliceFlag{
		Name:  "skip",
		Usage: "Regex pattern(s) to select steps not to run",
	}
	Debug = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Show debug output for failed steps",
	}
	DebugAll = &cli.BoolFlag{
		Name:  "debug-all",
		Usage: "Show debug output for all steps",
	}
	LogFile = &cli.StringFlag{
		Name:    "log-file",
		EnvVars: envVars("LOG_FILE"),
		Usage:   "Also write the console output, without colors, to this file",
	}
	MetricsFile = &cli.StringFlag{
		Name:    "metrics-file",
		EnvVars: envVars("METRICS_FILE"),
		Usage:   "Write Prometheus metrics for the run to this file",
	}
	S3Bucket = &cli.StringFlag{
		Name:    "s3-bucket",
		EnvVars: envVars("S3_BUCKET"),
		Usage:   "Upload captures and reports to this bucket after the run",
	}
	S3Endpoint = &cli.StringFlag{
		Name:    "s3-endpoint",
		EnvVars: envVars("S3_ENDPOINT"),
		Usage:   "Endpoint of an S3-compatible service",
	}
	S3Region = &cli.StringFlag{
		Name:    "s3-region",
		EnvVars: envVars("S3_REGION"),
		Usage:   "Region of the bucket",
	}
	S3AccessKey = &cli.StringFlag{
		Name:    "s3-access-key",
		EnvVars: envVars("S3_ACCESS_KEY"),
		Usage:   "Access key ID for uploads; the default AWS credential chain is used when empty",
	}
	S3SecretKey = &cli.StringFlag{
		Name:    "s3-secret-key",
		EnvVars: envVars("S3_SECRET_KEY"),
		Usage:   "Secret access key for uploads",
	}
	S3Prefix = &cli.StringFlag{
		Name:    "s3-prefix",
		EnvVars: envVars("S3_PREFIX"),
		Usage:   "Key prefix for uploads; the run ID is appended",
	}
)

var Flags = []cli.Flag{
	ConfigFile,
	BaseURL,
	Browser,
	Headless,
	InstallDriver,
	CaptureDir,
	ReportPath,
	Timeout,
	UniqueErrorCaptures,
	Preflight,
	Run,
	Skip,
	Debug,
	DebugAll,
	LogFile,
	MetricsFile,
	S3Bucket,
	S3Endpoint,
	S3Region,
	S3AccessKey,
	S3SecretKey,
	S3Prefix,
}

type commandParams struct {
	config   suitedef.Config
	filters  framework.RegexFilters
	debug    bool
	debugAll bool
	logFile  string
}

// readParams builds the run settings: defaults, then the config file, then any flag or
// environment variable that was set explicitly.
func readParams(c *cli.Context) (commandParams, error) {
	var p commandParams

	p.config = suitedef.Default()
	if path := c.String(ConfigFile.Name); path != "" {
		loaded, err := suitedef.Load(path)
		if err != nil {
			return p, err
		}
		p.config = loaded
	}

	cfg := &p.config
	overrideString(c, BaseURL, &cfg.BaseURL)
	overrideString(c, Browser, &cfg.Browser)
	overrideBool(c, Headless, &cfg.Headless)
	overrideBool(c, InstallDriver, &cfg.InstallDriver)
	overrideString(c, CaptureDir, &cfg.CaptureDir)
	overrideString(c, ReportPath, &cfg.ReportPath)
	if c.IsSet(Timeout.Name) {
		cfg.Timeout = c.Duration(Timeout.Name)
	}
	overrideBool(c, UniqueErrorCaptures, &cfg.UniqueErrorCaptures)
	overrideBool(c, Preflight, &cfg.Preflight)
	overrideString(c, MetricsFile, &cfg.MetricsFile)
	overrideString(c, S3Bucket, &cfg.S3.Bucket)
	overrideString(c, S3Endpoint, &cfg.S3.Endpoint)
	overrideString(c, S3Region, &cfg.S3.Region)
	overrideString(c, S3AccessKey, &cfg.S3.AccessKeyID)
	overrideString(c, S3SecretKey, &cfg.S3.SecretAccessKey)
	overrideString(c, S3Prefix, &cfg.S3.Prefix)
	if c.IsSet(ReportPath.Name) {
		cfg.SummaryPath = summaryPathFor(cfg.ReportPath)
	}
	if err := cfg.Validate(); err != nil {
		return p, err
	}

	for _, pattern := range c.StringSlice(Run.Name) {
		if err := p.filters.MustMatch.Set(pattern); err != nil {
			return p, fmt.Errorf("--%s: %w", Run.Name, err)
		}
	}
	for _, pattern := range c.StringSlice(Skip.Name) {
		if err := p.filters.MustNotMatch.Set(pattern); err != nil {
			return p, fmt.Errorf("--%s: %w", Skip.Name, err)
		}
	}

	p.debug = c.Bool(Debug.Name)
	p.debugAll = c.Bool(DebugAll.Name)
	p.logFile = c.String(LogFile.Name)
	return p, nil
}

func overrideString(c *cli.Context, flag *cli.StringFlag, target *string) {
	if c.IsSet(flag.Name) {
		*target = c.String(flag.Name)
	}
}

func overrideBool(c *cli.Context, flag *cli.BoolFlag, target *bool) {
	if c.IsSet(flag.Name) {
		*target = c.Bool(flag.Name)
	}
}
