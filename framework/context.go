package framework

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/Criss1210/tarea-4/browser"
)

// Context is passed to a step's action. It gives the action the live browser session and
// implements require.TestingT, so assertions from testify's require package end the step.
type Context struct {
	env         *environment
	id          StepID
	debugLogger CapturingLogger
	failed      bool
	errors      []error
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			c.failed = true
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.errors) == 0 {
					addError = errors.New("step failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in step: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.errors = append(c.errors, addError)
				c.env.stepLogger.StepError(c.id, addError)
			}
		}
	}()

	if action == nil {
		c.Fail(errors.New("step has no action"))
	}
	action(c)
}

func (c *Context) ID() StepID {
	return c.id
}

// Context returns the context of the run, for bounding waits.
func (c *Context) Context() context.Context {
	return c.env.ctx
}

// Session returns the browser session shared by every step of the run.
func (c *Context) Session() browser.Session {
	return c.env.session
}

// Errorf records a failure without stopping the step.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.addError(fmt.Errorf(format, args...))
}

// Fail records err as the reason for the failure and stops the step.
func (c *Context) Fail(err error) {
	c.addError(err)
	c.FailNow()
}

// FailNow stops the step. Failures recorded so far are kept.
func (c *Context) FailNow() {
	c.failed = true
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

func (c *Context) addError(err error) {
	c.failed = true
	c.errors = append(c.errors, err)
	c.env.stepLogger.StepError(c.id, err)
}
