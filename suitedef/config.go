// Package suitedef defines the settings of a smoke-test run and how they are loaded.
package suitedef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"

	"github.com/Criss1210/tarea-4/browser"
	"github.com/Criss1210/tarea-4/errs"
	"github.com/Criss1210/tarea-4/sitetests"
)

const (
	DefaultCaptureDir       = "captures"
	DefaultReportPath       = "reporte.html"
	DefaultSummaryPath      = "reporte.json"
	DefaultPreflightTimeout = time.Second * 30
)

// Config holds the settings of a run. The zero value of each field means "use the default",
// except for booleans, which default to false.
type Config struct {
	BaseURL             string        `yaml:"base_url"`
	Browser             string        `yaml:"browser"`
	Headless            bool          `yaml:"headless"`
	InstallDriver       bool          `yaml:"install_driver"`
	CaptureDir          string        `yaml:"capture_dir"`
	ReportPath          string        `yaml:"report"`
	SummaryPath         string        `yaml:"summary"`
	ReportTitle         string        `yaml:"report_title"`
	Timeout             time.Duration `yaml:"timeout"`
	WaitTimeoutMS       *int          `yaml:"wait_timeout_ms"`
	UniqueErrorCaptures bool          `yaml:"unique_error_captures"`
	Preflight           bool          `yaml:"preflight"`
	PreflightTimeout    time.Duration `yaml:"preflight_timeout"`
	MetricsFile         string        `yaml:"metrics_file"`
	S3                  S3Config      `yaml:"s3"`
}

// S3Config describes where evidence is mirrored after the run. Mirroring is off when Bucket is
// empty.
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Prefix   string `yaml:"prefix"`
	// AccessKeyID and SecretAccessKey override the default AWS credential chain when both are set.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Default returns the settings that reproduce the standard run.
func Default() Config {
	return Config{
		BaseURL:          sitetests.DefaultBaseURL,
		Browser:          browser.EngineChromium,
		CaptureDir:       DefaultCaptureDir,
		ReportPath:       DefaultReportPath,
		SummaryPath:      DefaultSummaryPath,
		Timeout:          browser.DefaultTimeout,
		PreflightTimeout: DefaultPreflightTimeout,
	}
}

// Load reads a YAML file over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	config := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, errs.Wrap(errs.IO, "reading config file", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, errs.Wrap(errs.InvalidArgument, "parsing config file "+path, err)
	}
	return config, nil
}

// Validate checks the settings and normalizes the browser name.
func (c *Config) Validate() error {
	engine, err := browser.NormalizeEngine(c.Browser)
	if err != nil {
		return err
	}
	c.Browser = engine
	if c.BaseURL == "" {
		return errs.New(errs.InvalidArgument, "base URL is required")
	}
	if c.CaptureDir == "" {
		return errs.New(errs.InvalidArgument, "capture directory is required")
	}
	if c.ReportPath == "" {
		return errs.New(errs.InvalidArgument, "report path is required")
	}
	if c.Timeout < 0 {
		return errs.New(errs.InvalidArgument, fmt.Sprintf("timeout must not be negative, got %s", c.Timeout))
	}
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		return errs.New(errs.InvalidArgument, "S3 access key and secret key must be set together")
	}
	if c.WaitTimeoutMS != nil && *c.WaitTimeoutMS <= 0 {
		return errs.New(errs.InvalidArgument, fmt.Sprintf("wait timeout must be positive, got %dms", *c.WaitTimeoutMS))
	}
	return nil
}

// Launcher returns the browser launcher for these settings.
func (c Config) Launcher() browser.PlaywrightLauncher {
	return browser.PlaywrightLauncher{
		Engine:        c.Browser,
		Headless:      c.Headless,
		InstallDriver: c.InstallDriver,
		Timeout:       c.Timeout,
	}
}

// Site returns the settings of the site suite. Preflight progress is written to output.
func (c Config) Site(output io.Writer) sitetests.Config {
	return sitetests.Config{
		BaseURL:          c.BaseURL,
		WaitTimeoutMS:    ldvalue.NewOptionalIntFromPointer(c.WaitTimeoutMS),
		Preflight:        c.Preflight,
		PreflightTimeout: c.PreflightTimeout,
		PreflightOutput:  output,
	}
}

// MirrorEnabled is true if evidence should be uploaded after the run.
func (c Config) MirrorEnabled() bool {
	return c.S3.Bucket != ""
}
