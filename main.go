package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/Criss1210/tarea-4/browser"
	"github.com/Criss1210/tarea-4/evidence"
	"github.com/Criss1210/tarea-4/exitcodes"
	"github.com/Criss1210/tarea-4/framework"
	"github.com/Criss1210/tarea-4/metrics"
	"github.com/Criss1210/tarea-4/report"
	"github.com/Criss1210/tarea-4/s3mirror"
	"github.com/Criss1210/tarea-4/sitetests"
	"github.com/Criss1210/tarea-4/suitedef"
)

var Version = "v0.1.0"

// newLauncher is replaced in tests.
var newLauncher = func(cfg suitedef.Config) browser.Launcher {
	return cfg.Launcher()
}

func main() {
	app := newApp(os.Stdout)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func newApp(console io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "smoke"
	app.Version = Version
	app.Usage = "Browser smoke tests with an HTML evidence report"
	app.Flags = Flags
	app.Writer = console
	app.Action = func(c *cli.Context) error {
		return run(c, console)
	}
	// Exit codes are applied by main, so that tests can call the app directly.
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

// exitCodeFor maps the result of a run onto the process exit status.
func exitCodeFor(err error) int {
	var exitErr cli.ExitCoder
	switch {
	case err == nil:
		return exitcodes.Success
	case errors.As(err, &exitErr):
		return exitErr.ExitCode()
	case framework.IsRuntimeError(err):
		return exitcodes.RuntimeErr
	default:
		return exitcodes.StepFailure
	}
}

func run(c *cli.Context, console io.Writer) error {
	params, err := readParams(c)
	if err != nil {
		return &framework.RuntimeError{Op: "read configuration", Err: err}
	}
	cfg := params.config

	out, closeOutput, err := openOutput(console, params.logFile)
	if err != nil {
		return &framework.RuntimeError{Op: "open log file", Err: err}
	}
	defer func() {
		if err := closeOutput(); err != nil {
			fmt.Fprintf(console, "Error closing log file: %s\n", err)
		}
	}()
	logger := framework.NewTimestampLogger(out)

	runID := uuid.NewString()
	started := time.Now()
	recorder := metrics.NewRecorder(runID)

	runner := &framework.Runner{
		Launcher:    newLauncher(cfg),
		CaptureDir:  cfg.CaptureDir,
		ReportPath:  cfg.ReportPath,
		SummaryPath: cfg.SummaryPath,
		Report: report.Options{
			Title:   cfg.ReportTitle,
			RunID:   runID,
			Started: started,
		},
		UniqueErrorCaptures: cfg.UniqueErrorCaptures,
		Filter:              params.filters.AsFilter,
		StepLogger: &ConsoleStepLogger{
			Output:               out,
			DebugOutputOnFailure: params.debug || params.debugAll,
			DebugOutputOnSuccess: params.debugAll,
		},
		Logger:   logger,
		Observer: recorder,
	}
	if cfg.MirrorEnabled() {
		mirror, err := newMirror(c.Context, cfg)
		if err != nil {
			return &framework.RuntimeError{Op: "configure evidence upload", Err: err}
		}
		runner.Mirror = mirror
		runner.MirrorPrefix = path.Join(cfg.S3.Prefix, runID)
	}

	fmt.Fprintf(out, "Run %s against %s (%s)\n\n", runID, cfg.BaseURL, cfg.Browser)
	framework.PrintFilterDescription(out, params.filters)
	fmt.Fprintln(out, "Running smoke-test suite")

	results, runErr := runner.Run(c.Context, sitetests.NewSuite(cfg.Site(out)))

	fmt.Fprintln(out)
	printResults(out, results, cfg.ReportTitle)
	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Printf("Error writing metrics file: %s", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	fmt.Fprintf(out, "Report written to %s\n", cfg.ReportPath)
	if !results.OK() {
		return cli.Exit(fmt.Sprintf("%d step(s) failed", len(results.Failures)), exitcodes.StepFailure)
	}
	return nil
}

func newMirror(ctx context.Context, cfg suitedef.Config) (evidence.Mirror, error) {
	client, err := s3mirror.New(ctx, s3mirror.Config{
		Endpoint:        cfg.S3.Endpoint,
		Region:          cfg.S3.Region,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		BucketName:      cfg.S3.Bucket,
		UsePathStyle:    cfg.S3.Endpoint != "",
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func printResults(out io.Writer, results framework.Results, title string) {
	if title == "" {
		title = report.DefaultTitle
	}
	if rows := results.Rows(); len(rows) > 0 {
		report.WriteSummaryTable(out, title, rows)
		fmt.Fprintln(out)
	}
	for _, err := range results.SuiteErrors {
		fmt.Fprintf(out, "%s: %s\n", failLabel("Suite error"), strings.SplitN(err.Error(), "\n", 2)[0])
	}
	if len(results.Failures) > 0 {
		fmt.Fprintln(out, "To rerun the failed steps:")
		fmt.Fprintf(out, "  %s\n", rerunCommand(os.Args[0], results.Failures))
	}
}

func rerunCommand(program string, failures []framework.StepResult) string {
	var b commandBuilder
	b.add(program)
	for _, f := range failures {
		b.add("--"+Run.Name, "^"+regexp.QuoteMeta(f.ID.Name)+"$")
	}
	return b.String()
}

// summaryPathFor returns the JSON summary path kept next to an HTML report.
func summaryPathFor(reportPath string) string {
	ext := filepath.Ext(reportPath)
	if ext == ".json" {
		return strings.TrimSuffix(reportPath, ext) + ".summary.json"
	}
	return strings.TrimSuffix(reportPath, ext) + ".json"
}
