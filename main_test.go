package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/Criss1210/tarea-4/browser"
	"github.com/Criss1210/tarea-4/browser/browsertest"
	"github.com/Criss1210/tarea-4/exitcodes"
	"github.com/Criss1210/tarea-4/framework"
	"github.com/Criss1210/tarea-4/report"
	"github.com/Criss1210/tarea-4/sitetests"
	"github.com/Criss1210/tarea-4/suitedef"
)

func withFakeBrowser(t *testing.T, launcher *browsertest.Launcher) {
	saved := newLauncher
	newLauncher = func(suitedef.Config) browser.Launcher { return launcher }
	t.Cleanup(func() { newLauncher = saved })
}

func runApp(t *testing.T, args ...string) (string, int) {
	var out bytes.Buffer
	err := newApp(&out).RunContext(context.Background(), append([]string{"smoke"}, args...))
	return out.String(), exitCodeFor(err)
}

func fakeSite() *browsertest.Launcher {
	launcher := browsertest.NewLauncher()
	launcher.Session.ClickTargets[sitetests.QuestionLinkSelector] = "https://site.test/questions/1"
	return launcher
}

func TestRunWritesReportAndExitsZero(t *testing.T) {
	dir := t.TempDir()
	withFakeBrowser(t, fakeSite())

	out, code := runApp(t,
		"--base-url", "https://site.test",
		"--capture-dir", filepath.Join(dir, "captures"),
		"--report", filepath.Join(dir, "out.html"),
		"--metrics-file", filepath.Join(dir, "smoke.prom"),
	)
	assert.Equal(t, exitcodes.Success, code, out)
	assert.Contains(t, out, "PASSED")

	for _, file := range []string{"out.html", "out.json", "smoke.prom", "captures/login_pregunta.png"} {
		_, err := os.Stat(filepath.Join(dir, file))
		assert.NoError(t, err, file)
	}
}

func TestRunExitsOneWhenStepFails(t *testing.T) {
	dir := t.TempDir()
	launcher := fakeSite()
	launcher.Session.Missing[sitetests.CompanySearchSelector] = true
	withFakeBrowser(t, launcher)

	out, code := runApp(t,
		"--base-url", "https://site.test",
		"--capture-dir", filepath.Join(dir, "captures"),
		"--report", filepath.Join(dir, "reporte.html"),
	)
	assert.Equal(t, exitcodes.StepFailure, code, out)
	assert.Contains(t, out, "To rerun the failed steps:")
	assert.Contains(t, out, `--run '^Search and select company$'`)
}

func TestRunExitsTwoWhenBrowserCannotStart(t *testing.T) {
	dir := t.TempDir()
	launcher := browsertest.NewLauncher()
	launcher.StartErr = errors.New("no browser")
	withFakeBrowser(t, launcher)

	_, code := runApp(t,
		"--capture-dir", filepath.Join(dir, "captures"),
		"--report", filepath.Join(dir, "reporte.html"),
	)
	assert.Equal(t, exitcodes.RuntimeErr, code)
}

func TestInvalidFlagsAreRuntimeErrors(t *testing.T) {
	withFakeBrowser(t, fakeSite())

	_, code := runApp(t, "--browser", "netscape")
	assert.Equal(t, exitcodes.RuntimeErr, code)

	_, code = runApp(t, "--run", "(")
	assert.Equal(t, exitcodes.RuntimeErr, code)
}

func TestLogFileHasNoColorCodes(t *testing.T) {
	dir := t.TempDir()
	withFakeBrowser(t, fakeSite())
	logFile := filepath.Join(dir, "run.log")

	_, code := runApp(t,
		"--base-url", "https://site.test",
		"--capture-dir", filepath.Join(dir, "captures"),
		"--report", filepath.Join(dir, "reporte.html"),
		"--skip", "company",
		"--log-file", logFile,
	)
	require.Equal(t, exitcodes.Success, code)
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\x1b[")
	assert.Contains(t, string(data), "SKIPPED: Search and select company (excluded by filter)")
}

func TestAnsiStrippingWriter(t *testing.T) {
	var buf bytes.Buffer
	w := ansiStrippingWriter{w: &buf}
	n, err := w.Write([]byte("\x1b[31mFAILED\x1b[0m: step"))
	require.NoError(t, err)
	assert.Equal(t, len("\x1b[31mFAILED\x1b[0m: step"), n)
	assert.Equal(t, "FAILED: step", buf.String())
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, exitcodes.Success, exitCodeFor(nil))
	assert.Equal(t, exitcodes.StepFailure, exitCodeFor(cli.Exit("failed", exitcodes.StepFailure)))
	assert.Equal(t, exitcodes.RuntimeErr, exitCodeFor(&framework.RuntimeError{Op: "x", Err: errors.New("y")}))
	assert.Equal(t, exitcodes.StepFailure, exitCodeFor(errors.New("other")))
}

func TestRerunCommandQuotesPatterns(t *testing.T) {
	cmd := rerunCommand("./smoke", []framework.StepResult{
		{ID: framework.StepID{Name: "Tag search: Javascript"}},
	})
	assert.Equal(t, `./smoke --run '^Tag search: Javascript$'`, cmd)
}

func TestSummaryPathFor(t *testing.T) {
	assert.Equal(t, "reporte.json", summaryPathFor("reporte.html"))
	assert.Equal(t, filepath.Join("out", "r.json"), summaryPathFor(filepath.Join("out", "r.htm")))
	assert.Equal(t, "r.summary.json", summaryPathFor("r.json"))
}

func TestConsoleStepLoggerDumpsDebugOutputOnFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := &ConsoleStepLogger{Output: &buf, DebugOutputOnFailure: true}
	id := framework.StepID{Name: "step"}
	var captured framework.CapturingLogger
	captured.Printf("navigating to %s", "https://site.test")

	logger.StepFinished(id, false, captured.Output())
	assert.False(t, strings.Contains(buf.String(), "DEBUG"))
	logger.StepFinished(id, true, captured.Output())
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "navigating to https://site.test")
}

func TestPrintResultsShowsTable(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, framework.Results{Steps: []framework.StepResult{
		{ID: framework.StepID{Name: "Home"}, Status: report.StatusCompleted},
	}}, "")
	assert.Contains(t, buf.String(), "Home")
	assert.NotContains(t, buf.String(), "To rerun")
}

func readTestParams(t *testing.T, args ...string) commandParams {
	var params commandParams
	app := &cli.App{
		Flags: Flags,
		Action: func(c *cli.Context) error {
			var err error
			params, err = readParams(c)
			return err
		},
	}
	require.NoError(t, app.Run(append([]string{"smoke"}, args...)))
	return params
}

func TestPreflightIsOffUnlessRequested(t *testing.T) {
	assert.False(t, readTestParams(t).config.Preflight)
	assert.True(t, readTestParams(t, "--preflight").config.Preflight)
}

func TestS3CredentialFlags(t *testing.T) {
	params := readTestParams(t,
		"--s3-bucket", "evidence",
		"--s3-access-key", "smoke-key",
		"--s3-secret-key", "smoke-secret",
	)
	assert.Equal(t, "smoke-key", params.config.S3.AccessKeyID)
	assert.Equal(t, "smoke-secret", params.config.S3.SecretAccessKey)

	mirror, err := newMirror(context.Background(), params.config)
	require.NoError(t, err)
	assert.NotNil(t, mirror)
}
