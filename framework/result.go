package framework

import (
	"fmt"
	"strings"
	"time"

	"github.com/Criss1210/tarea-4/evidence"
	"github.com/Criss1210/tarea-4/report"
)

// Results accumulates the outcome of a suite run.
type Results struct {
	Steps    []StepResult
	Failures []StepResult
	Skipped  []StepResult
	// SuiteErrors are failures that happened outside any single step.
	SuiteErrors []error
}

// StepResult is the outcome of one step. It is created once and never modified.
type StepResult struct {
	ID         StepID
	Status     report.Status
	Capture    evidence.CaptureRef
	Errors     []error
	Duration   time.Duration
	Skipped    bool
	SkipReason string
}

// OK is true if every step that ran completed and nothing failed at suite level.
func (r Results) OK() bool {
	return len(r.Failures) == 0 && len(r.SuiteErrors) == 0
}

// Rows returns the report rows for the steps that ran, in execution order.
func (r Results) Rows() []report.Row {
	rows := make([]report.Row, 0, len(r.Steps))
	for _, s := range r.Steps {
		if s.Skipped {
			continue
		}
		rows = append(rows, s.Row())
	}
	return rows
}

// Row converts the result into a report row.
func (s StepResult) Row() report.Row {
	return report.Row{
		Name:     s.ID.Name,
		Status:   s.Status,
		Capture:  s.Capture,
		Duration: s.Duration,
		Error:    errorSummary(s.Errors),
	}
}

// StepID identifies a step by its position in the suite and its name.
type StepID struct {
	Index int
	Name  string
}

func (id StepID) String() string {
	return id.Name
}

// StepFailure describes a failed step as an error.
type StepFailure struct {
	ID  StepID
	Err error
}

func (f StepFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

func (f StepFailure) Unwrap() error {
	return f.Err
}

func errorSummary(errors []error) string {
	var lines []string
	for _, err := range errors {
		lines = append(lines, summarizeError(err.Error()))
	}
	return strings.Join(lines, "; ")
}

// summarizeError reduces an error message to one line. Assertion failures from testify are
// formatted as labelled blocks; only their Error and Messages blocks are kept.
func summarizeError(msg string) string {
	if !strings.Contains(msg, "Error Trace:") {
		msg = strings.TrimSpace(msg)
		if i := strings.IndexByte(msg, '\n'); i >= 0 {
			msg = msg[:i]
		}
		return msg
	}
	var parts []string
	keep := false
	for _, line := range strings.Split(msg, "\n") {
		content := strings.TrimPrefix(line, "\t")
		if content != "" && content[0] != ' ' && content[0] != '\t' {
			label, value, _ := strings.Cut(content, ":")
			keep = label == "Error" || label == "Messages"
			content = value
		}
		if text := strings.TrimSpace(content); keep && text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
