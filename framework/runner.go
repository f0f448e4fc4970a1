package framework

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Criss1210/tarea-4/browser"
	"github.com/Criss1210/tarea-4/evidence"
	"github.com/Criss1210/tarea-4/report"
)

// DefaultErrorCapture is the capture name used for diagnostic screenshots of failed steps.
const DefaultErrorCapture = "test_error"

// SuiteErrorName is the row name used when a failure happens outside any step.
const SuiteErrorName = "Suite error"

const stoppedReason = "run stopped after an unrecoverable error"

// Step is one named unit of browser interaction.
type Step struct {
	Name string
	// Capture is the screenshot saved when the step completes. Defaults to step_<NN>.
	Capture string
	Action  func(*Context)
}

func (s Step) captureName(index int) string {
	if s.Capture != "" {
		return s.Capture
	}
	return fmt.Sprintf("step_%02d", index+1)
}

// Suite is an ordered list of steps sharing one browser session.
type Suite struct {
	Name string
	// Setup, if set, runs once before the first step. An error is recorded as a suite failure
	// and no steps are run.
	Setup func(ctx context.Context, session browser.Session) error
	Steps []Step
}

// Observer is notified of results as they are recorded.
type Observer interface {
	StepRecorded(result StepResult)
	RunFinished(results Results, elapsed time.Duration)
}

// Phase is the lifecycle state of a Runner.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSessionStarting
	PhaseRunning
	PhaseFinalizing
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseSessionStarting:
		return "SessionStarting"
	case PhaseRunning:
		return "Running"
	case PhaseFinalizing:
		return "Finalizing"
	case PhaseTerminated:
		return "Terminated"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Runner executes a Suite against a browser session, recording one report row per step.
//
// A step failure never stops the steps after it. The report is closed and the session released
// exactly once whenever the session was acquired, whatever happens during the steps.
type Runner struct {
	Launcher    browser.Launcher
	CaptureDir  string
	ReportPath  string
	SummaryPath string
	Report      report.Options

	// ErrorCapture is the diagnostic capture name; defaults to DefaultErrorCapture.
	ErrorCapture string
	// UniqueErrorCaptures names diagnostic captures <ErrorCapture>_<NN> so that a later failure
	// does not overwrite an earlier one.
	UniqueErrorCaptures bool

	Filter     Filter
	StepLogger StepLogger
	Logger     Logger
	Observer   Observer

	Mirror       evidence.Mirror
	MirrorPrefix string

	// OnPhaseChange, if set, is called on every state transition. stepIndex is only meaningful
	// for PhaseRunning.
	OnPhaseChange func(phase Phase, stepIndex int)

	phase Phase
	lock  sync.Mutex
}

type environment struct {
	ctx        context.Context
	session    browser.Session
	store      *evidence.Store
	sink       report.Sink
	stepLogger StepLogger
	logger     Logger
}

// Phase returns the current lifecycle state.
func (r *Runner) Phase() Phase {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.phase
}

func (r *Runner) setPhase(phase Phase, stepIndex int) {
	r.lock.Lock()
	r.phase = phase
	r.lock.Unlock()
	if r.OnPhaseChange != nil {
		r.OnPhaseChange(phase, stepIndex)
	}
}

// Run executes the suite. The returned error is a *RuntimeError when the run could not be
// carried out or a failure could not be documented; failed steps alone are reported only
// through Results.
func (r *Runner) Run(ctx context.Context, suite Suite) (results Results, err error) {
	logger := r.Logger
	if logger == nil {
		logger = NullLogger()
	}
	stepLogger := r.StepLogger
	if stepLogger == nil {
		stepLogger = nullStepLogger{}
	}

	r.setPhase(PhaseSessionStarting, -1)
	session, err := r.Launcher.Start()
	if err != nil {
		r.setPhase(PhaseTerminated, -1)
		return results, &RuntimeError{Op: "start browser session", Err: err}
	}
	abort := func(op string, cause error) (Results, error) {
		if err := session.Close(); err != nil {
			logger.Printf("Error closing browser session: %s", err)
		}
		r.setPhase(PhaseTerminated, -1)
		return results, &RuntimeError{Op: op, Err: cause}
	}
	if err := session.Maximize(); err != nil {
		return abort("maximize browser window", err)
	}

	store, err := evidence.EnsureDirectory(r.CaptureDir)
	if err != nil {
		return abort("prepare capture directory", err)
	}

	opts := r.Report
	if opts.CaptureLinkDir == "" {
		opts.CaptureLinkDir = captureLinkDir(r.ReportPath, r.CaptureDir)
	}
	htmlSink, err := report.OpenHTML(r.ReportPath, opts)
	if err != nil {
		return abort("open report", err)
	}
	var sink report.Sink = htmlSink
	if r.SummaryPath != "" {
		sink = report.MultiSink{htmlSink, report.NewJSONSink(r.SummaryPath, opts)}
	}

	env := &environment{
		ctx:        ctx,
		session:    session,
		store:      store,
		sink:       sink,
		stepLogger: stepLogger,
		logger:     logger,
	}
	started := time.Now()

	defer func() {
		r.setPhase(PhaseFinalizing, -1)
		if closeErr := sink.Close(); closeErr != nil {
			err = errors.Join(err, &RuntimeError{Op: "finalize report", Err: closeErr})
		}
		if closeErr := session.Close(); closeErr != nil {
			logger.Printf("Error closing browser session: %s", closeErr)
		}
		r.setPhase(PhaseTerminated, -1)
		r.afterRun(ctx, logger, results, store, opts.CaptureLinkDir, time.Since(started))
	}()

	if fatal := r.runSuite(ctx, env, suite, &results); fatal != nil {
		err = &RuntimeError{Op: "run suite", Err: fatal}
	}
	return results, err
}

func (r *Runner) runSuite(ctx context.Context, env *environment, suite Suite, results *Results) (fatal error) {
	defer func() {
		if p := recover(); p != nil {
			fatal = fmt.Errorf("unexpected panic in suite: %+v\n%s", p, string(debug.Stack()))
			r.recordSuiteError(env, fatal, results)
			// steps are recorded in order, so the first one without a result is next
			r.skipAfterPanic(env, suite.Steps, len(results.Steps), results)
		}
	}()

	if suite.Setup != nil {
		if err := suite.Setup(ctx, env.session); err != nil {
			fatal = fmt.Errorf("suite setup failed: %w", err)
			r.recordSuiteError(env, fatal, results)
			r.skipRemaining(env, suite.Steps, 0, "suite setup failed", results)
			return fatal
		}
	}

	for i, step := range suite.Steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.skipRemaining(env, suite.Steps, i, "run cancelled", results)
			return ctxErr
		}
		r.setPhase(PhaseRunning, i)
		if err := r.runStep(env, i, step, results); err != nil {
			r.skipRemaining(env, suite.Steps, i+1, stoppedReason, results)
			return err
		}
	}
	return nil
}

// runStep executes one step and records its row. It returns an error only when the failure
// could not be documented, in which case the run must not continue.
func (r *Runner) runStep(env *environment, index int, step Step, results *Results) error {
	id := StepID{Index: index, Name: step.Name}
	if r.Filter != nil && !r.Filter(id) {
		r.skip(env, id, "excluded by filter", results)
		return nil
	}

	env.stepLogger.StepStarted(id)
	started := time.Now()
	c := &Context{env: env, id: id}
	c.run(step.Action)

	var ref evidence.CaptureRef
	if !c.failed {
		saved, err := env.store.SaveCapture(env.session, step.captureName(index))
		if err != nil {
			c.addError(fmt.Errorf("saving capture: %w", err))
		} else {
			ref = saved
		}
	}

	result := StepResult{
		ID:       id,
		Status:   report.StatusCompleted,
		Capture:  ref,
		Duration: time.Since(started),
	}
	var fatal error
	if c.failed {
		result.Status = report.StatusFailed
		errRef, err := env.store.SaveCapture(env.session, r.errorCaptureName(index))
		if err != nil {
			fatal = fmt.Errorf("diagnostic capture for step %q failed: %w", step.Name, err)
			env.logger.Printf("%s", fatal)
		} else {
			result.Capture = errRef
		}
	}
	result.Errors = c.errors

	env.stepLogger.StepFinished(id, c.failed, c.debugLogger.Output())
	if err := env.sink.AppendResult(result.Row()); err != nil {
		fatal = errors.Join(fatal, fmt.Errorf("recording result of step %q: %w", step.Name, err))
	}
	r.record(result, results)
	return fatal
}

func (r *Runner) recordSuiteError(env *environment, err error, results *Results) {
	results.SuiteErrors = append(results.SuiteErrors, err)
	env.logger.Printf("Suite error: %s", err)

	row := report.Row{Name: SuiteErrorName, Status: report.StatusFailed, Error: errorSummary([]error{err})}
	ref, captureErr := env.store.SaveCapture(env.session, r.errorCaptureName(-1))
	if captureErr != nil {
		env.logger.Printf("Diagnostic capture for suite error failed: %s", captureErr)
	} else {
		row.Capture = ref
	}
	if appendErr := env.sink.AppendResult(row); appendErr != nil {
		env.logger.Printf("Error recording suite error: %s", appendErr)
	}
}

func (r *Runner) skipRemaining(env *environment, steps []Step, from int, reason string, results *Results) {
	for i := from; i < len(steps); i++ {
		r.skip(env, StepID{Index: i, Name: steps[i].Name}, reason, results)
	}
}

// skipAfterPanic is skipRemaining for a run whose hooks have already panicked once. A hook that
// panics again is logged and the remaining steps are still recorded.
func (r *Runner) skipAfterPanic(env *environment, steps []Step, from int, results *Results) {
	for i := from; i < len(steps); i++ {
		func() {
			defer func() {
				if p := recover(); p != nil {
					env.logger.Printf("Error recording skipped step %q: %+v", steps[i].Name, p)
				}
			}()
			r.skip(env, StepID{Index: i, Name: steps[i].Name}, stoppedReason, results)
		}()
	}
}

func (r *Runner) skip(env *environment, id StepID, reason string, results *Results) {
	r.record(StepResult{ID: id, Skipped: true, SkipReason: reason}, results)
	env.stepLogger.StepSkipped(id, reason)
}

func (r *Runner) record(result StepResult, results *Results) {
	results.Steps = append(results.Steps, result)
	switch {
	case result.Skipped:
		results.Skipped = append(results.Skipped, result)
	case result.Status != report.StatusCompleted:
		results.Failures = append(results.Failures, result)
	}
	if r.Observer != nil {
		r.Observer.StepRecorded(result)
	}
}

func (r *Runner) errorCaptureName(index int) string {
	name := r.ErrorCapture
	if name == "" {
		name = DefaultErrorCapture
	}
	if r.UniqueErrorCaptures {
		if index < 0 {
			return name + "_suite"
		}
		return fmt.Sprintf("%s_%02d", name, index+1)
	}
	return name
}

func (r *Runner) afterRun(
	ctx context.Context,
	logger Logger,
	results Results,
	store *evidence.Store,
	linkDir string,
	elapsed time.Duration,
) {
	if r.Observer != nil {
		r.Observer.RunFinished(results, elapsed)
	}
	if r.Mirror == nil {
		return
	}
	published, err := evidence.Publish(ctx, r.Mirror, store, linkDir, r.MirrorPrefix, r.ReportPath, r.SummaryPath)
	for _, key := range published.Keys {
		logger.Printf("Published %s", key)
	}
	if err != nil {
		logger.Printf("Error publishing evidence: %s", err)
	}
}

// captureLinkDir returns the capture directory as seen from the report's directory, in URL form.
func captureLinkDir(reportPath, captureDir string) string {
	rel, err := filepath.Rel(filepath.Dir(reportPath), captureDir)
	if err != nil {
		return filepath.ToSlash(filepath.Base(captureDir))
	}
	return filepath.ToSlash(rel)
}
