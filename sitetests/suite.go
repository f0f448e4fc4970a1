package sitetests

import (
	"context"
	"io"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/Criss1210/tarea-4/browser"
	"github.com/Criss1210/tarea-4/framework"
)

// DefaultBaseURL is the site the suite runs against when no other is configured.
const DefaultBaseURL = "https://stackoverflow.com"

const defaultPreflightTimeout = time.Second * 30

// Config holds the site-specific settings of the suite.
type Config struct {
	BaseURL string
	// WaitTimeoutMS bounds waits for page changes inside a step.
	WaitTimeoutMS ldvalue.OptionalInt
	// Preflight enables a reachability check before the first step. When the site does not
	// answer, no step runs and the run ends with a suite error.
	Preflight        bool
	PreflightTimeout time.Duration
	// PreflightOutput receives the preflight progress; nil discards it.
	PreflightOutput io.Writer
}

// NewSuite returns the site suite. Steps run in the order in which they are listed here.
func NewSuite(config Config) framework.Suite {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	suite := framework.Suite{
		Name: "stackoverflow",
		Steps: []framework.Step{
			step(config, "StackOverflow home page", CaptureHome, DoHomePageStep),
			step(config, "Select first question", CaptureFirstQuestion, DoFirstQuestionStep),
			step(config, "Tag search: "+TagSearchText, CaptureTagSearch, DoTagSearchStep),
			step(config, "Login check on Ask page", CaptureAskPage, DoAskPageStep),
			step(config, "Search and select company", CaptureCompanySearch, DoCompanySearchStep),
		},
	}
	if config.Preflight {
		suite.Setup = func(ctx context.Context, _ browser.Session) error {
			output := config.PreflightOutput
			if output == nil {
				output = io.Discard
			}
			timeout := config.PreflightTimeout
			if timeout <= 0 {
				timeout = defaultPreflightTimeout
			}
			return framework.Preflight(ctx, config.BaseURL, timeout, output)
		}
	}
	return suite
}

func step(config Config, name, capture string, action func(*T)) framework.Step {
	return framework.Step{
		Name:    name,
		Capture: capture,
		Action: func(c *framework.Context) {
			action(&T{context: c, config: config})
		},
	}
}
