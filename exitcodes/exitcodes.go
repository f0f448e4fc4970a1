// Package exitcodes defines the exit codes of the smoke-test runner.
//
// * Success (0): every step that ran completed
// * StepFailure (1): at least one step failed
// * RuntimeErr (2): the run could not be carried out, or a failure could not be documented
package exitcodes

const (
	Success     = 0
	StepFailure = 1
	RuntimeErr  = 2
)
