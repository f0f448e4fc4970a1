// Package framework runs browser smoke-test suites and records their results.
//
// The general model is:
//
// 1. A Suite is an ordered list of Steps that share one browser session. Each step's action
// receives a Context, which is similar to Go's *testing.T: it exposes the session, collects
// failures, and can be passed to testify's require functions.
//
// 2. The Runner acquires the session, the capture directory, and the report before any step
// runs. A failing step is caught at the step boundary, a diagnostic screenshot is taken, and a
// Failed row is recorded; the next step runs regardless.
//
// 3. On every outcome where the session was acquired, the report is closed and the session is
// released exactly once.
//
// The site-specific code that knows what is being tested only defines the steps.
package framework
