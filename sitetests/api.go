package sitetests

import (
	"fmt"
	"strings"
	"time"

	"github.com/Criss1210/tarea-4/browser"
	"github.com/Criss1210/tarea-4/framework"
)

const defaultWaitTimeout = time.Second * 10

// T represents one step of the site suite.
//
// It implements the same basic functionality as Go's testing.T, on top of the lower-level
// framework.Context, and adds browser interactions that fail the step immediately when they do
// not succeed. This keeps the step definitions free of error-handling boilerplate.
//
// Interaction failures are recorded with their original error, so the error code of the browser
// failure reaches the step result.
//
// To make other assertions, use the assert and require packages, passing the *T as if it were a
// *testing.T.
type T struct {
	context *framework.Context
	config  Config
}

// Errorf is called by assertions to log a step failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a step should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Debug logs some debug output for the step. The output will be passed to the step logger at
// the end of the step.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// URL resolves a site path against the configured base URL.
func (t *T) URL(path string) string {
	base := strings.TrimSuffix(t.config.BaseURL, "/")
	if path == "" {
		return base
	}
	return base + "/" + strings.TrimPrefix(path, "/")
}

// Navigate loads a site path and waits for its content.
func (t *T) Navigate(path string) {
	url := t.URL(path)
	t.Debug("navigating to %s", url)
	t.check(t.context.Session().Navigate(url))
}

// Find waits for the first visible element matching selector.
func (t *T) Find(selector string) browser.Element {
	el, err := t.context.Session().Find(selector)
	t.check(err)
	return el
}

func (t *T) Text(el browser.Element) string {
	text, err := el.Text()
	t.check(err)
	return text
}

func (t *T) Click(el browser.Element) {
	t.check(el.Click())
}

func (t *T) SendKeys(el browser.Element, text string) {
	t.check(el.SendKeys(text))
}

func (t *T) Press(el browser.Element, key string) {
	t.check(el.Press(key))
}

// WaitForLoad waits for the page's network activity to settle.
func (t *T) WaitForLoad() {
	t.check(t.context.Session().WaitForLoad())
}

// WaitForURLChange waits until the browser has left from.
func (t *T) WaitForURLChange(from string) {
	session := t.context.Session()
	err := framework.WaitFor(t.context.Context(), t.waitTimeout(), 0, func() (bool, error) {
		return session.URL() != from, nil
	})
	if err != nil {
		t.check(fmt.Errorf("page did not navigate away from %s: %w", from, err))
	}
	t.Debug("now at %s", session.URL())
}

func (t *T) check(err error) {
	if err != nil {
		t.context.Fail(err)
	}
}

func (t *T) waitTimeout() time.Duration {
	return time.Duration(t.config.WaitTimeoutMS.OrElse(int(defaultWaitTimeout/time.Millisecond))) * time.Millisecond
}
