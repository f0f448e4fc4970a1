package sitetests

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/Criss1210/tarea-4/browser/browsertest"
	"github.com/Criss1210/tarea-4/errs"
	"github.com/Criss1210/tarea-4/framework"
	"github.com/Criss1210/tarea-4/report"
)

const testBaseURL = "https://site.test"

func newRunner(t *testing.T, launcher *browsertest.Launcher) *framework.Runner {
	dir := t.TempDir()
	return &framework.Runner{
		Launcher:   launcher,
		CaptureDir: filepath.Join(dir, "captures"),
		ReportPath: filepath.Join(dir, "reporte.html"),
	}
}

func newFakeSite() *browsertest.Launcher {
	launcher := browsertest.NewLauncher()
	launcher.Session.Texts[QuestionLinkSelector] = "How do I exit Vim?"
	launcher.Session.ClickTargets[QuestionLinkSelector] = testBaseURL + "/questions/1"
	return launcher
}

func TestSuiteRunsAllStepsAgainstSite(t *testing.T) {
	launcher := newFakeSite()
	suite := NewSuite(Config{BaseURL: testBaseURL + "/"})

	results, err := newRunner(t, launcher).Run(context.Background(), suite)
	require.NoError(t, err)
	assert.True(t, results.OK())

	assert.Equal(t, []string{
		"maximize",
		"navigate https://site.test",
		"wait-for-load",
		"screenshot",
		"navigate https://site.test/questions",
		"find .s-post-summary .s-link",
		"text .s-post-summary .s-link",
		"click .s-post-summary .s-link",
		"wait-for-load",
		"screenshot",
		"navigate https://site.test/tags",
		`find input[placeholder="Filter by tag name"]`,
		`send-keys input[placeholder="Filter by tag name"] Javascript`,
		"wait-for-load",
		"screenshot",
		"navigate https://site.test/questions/ask",
		"screenshot",
		"navigate https://site.test/jobs/companies",
		`find input[placeholder="Search all companies"]`,
		`send-keys input[placeholder="Search all companies"] Contentful`,
		`press input[placeholder="Search all companies"] Enter`,
		"wait-for-load",
		"screenshot",
		"close",
	}, launcher.Session.Calls())

	var captures []string
	for _, r := range results.Steps {
		assert.Equal(t, report.StatusCompleted, r.Status)
		captures = append(captures, r.Capture.Name)
	}
	assert.Equal(t, []string{
		CaptureHome, CaptureFirstQuestion, CaptureTagSearch, CaptureAskPage, CaptureCompanySearch,
	}, captures)
}

func TestMissingElementFailsOnlyThatStep(t *testing.T) {
	launcher := newFakeSite()
	launcher.Session.Missing[TagFilterSelector] = true
	suite := NewSuite(Config{BaseURL: testBaseURL})

	results, err := newRunner(t, launcher).Run(context.Background(), suite)
	require.NoError(t, err)
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "Tag search: Javascript", results.Failures[0].ID.Name)
	assert.Equal(t, framework.DefaultErrorCapture, results.Failures[0].Capture.Name)
	assert.True(t, errs.Is(results.Failures[0].Errors[0], errs.ElementNotFound))
	assert.Len(t, results.Steps, 5)
	assert.Contains(t, launcher.Session.Calls(), "navigate https://site.test/jobs/companies")
}

func TestFirstQuestionFailsWhenClickDoesNotNavigate(t *testing.T) {
	launcher := newFakeSite()
	delete(launcher.Session.ClickTargets, QuestionLinkSelector)
	suite := NewSuite(Config{BaseURL: testBaseURL, WaitTimeoutMS: ldvalue.NewOptionalInt(50)})

	results, err := newRunner(t, launcher).Run(context.Background(), suite)
	require.NoError(t, err)
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "Select first question", results.Failures[0].ID.Name)
	assert.Contains(t, results.Failures[0].Row().Error, "page did not navigate away from https://site.test/questions")
}

func TestUnreachableSiteFailsEveryStepByDefault(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(500))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		launcher := newFakeSite()
		for _, path := range []string{"", "/questions", "/tags", "/questions/ask", "/jobs/companies"} {
			launcher.Session.NavigateErrors[server.URL+path] = errors.New("net::ERR_CONNECTION_REFUSED")
		}
		suite := NewSuite(Config{BaseURL: server.URL})
		assert.Nil(t, suite.Setup)

		results, err := newRunner(t, launcher).Run(context.Background(), suite)
		require.NoError(t, err)
		assert.Empty(t, results.SuiteErrors)
		assert.Empty(t, results.Skipped)
		require.Len(t, results.Failures, 5)
		for _, r := range results.Failures {
			assert.Equal(t, report.StatusFailed, r.Status)
			assert.Equal(t, framework.DefaultErrorCapture, r.Capture.Name)
			assert.True(t, errs.Is(r.Errors[0], errs.Navigation))
		}
		assert.Len(t, requests, 0)
		assert.Equal(t, 1, launcher.Session.Closes())
	})
}

func TestEnabledPreflightFailurePreventsSteps(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		launcher := newFakeSite()
		suite := NewSuite(Config{BaseURL: server.URL, Preflight: true, PreflightTimeout: 200 * time.Millisecond})

		results, err := newRunner(t, launcher).Run(context.Background(), suite)
		require.Error(t, err)
		assert.True(t, framework.IsRuntimeError(err))
		assert.Len(t, results.SuiteErrors, 1)
		assert.Len(t, results.Skipped, 5)
		assert.Equal(t, 1, launcher.Session.Closes())
	})
}

func TestEnabledPreflightSuccessRunsSteps(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(200), func(server *httptest.Server) {
		launcher := newFakeSite()
		launcher.Session.ClickTargets[QuestionLinkSelector] = server.URL + "/questions/1"
		suite := NewSuite(Config{BaseURL: server.URL, Preflight: true})

		results, err := newRunner(t, launcher).Run(context.Background(), suite)
		require.NoError(t, err)
		assert.True(t, results.OK())
	})
}

func TestURLResolution(t *testing.T) {
	st := &T{config: Config{BaseURL: "https://site.test/"}}
	assert.Equal(t, "https://site.test", st.URL(""))
	assert.Equal(t, "https://site.test/tags", st.URL("/tags"))
	assert.Equal(t, "https://site.test/tags", st.URL("tags"))
}
