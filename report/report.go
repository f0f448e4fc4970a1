// Package report writes step results to durable report documents.
package report

import (
	"errors"
	"path"
	"time"

	"github.com/Criss1210/tarea-4/evidence"
)

// Status is the outcome shown in a report row.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
)

// CSSClass returns the class used to style a result cell: "success" for completed steps and
// "failure" for anything else.
func (s Status) CSSClass() string {
	if s == StatusCompleted {
		return "success"
	}
	return "failure"
}

// ErrClosed is returned by sinks that are used after Close.
var ErrClosed = errors.New("report sink is closed")

// Row is one recorded step result.
type Row struct {
	Name     string
	Status   Status
	Capture  evidence.CaptureRef
	Duration time.Duration
	Error    string
}

// Sink accumulates rows. AppendResult must not depend on a healthy browser session, since it is
// called from error-handling paths.
type Sink interface {
	AppendResult(row Row) error
	Close() error
}

// MultiSink fans each call out to all of its sinks.
type MultiSink []Sink

func (m MultiSink) AppendResult(row Row) error {
	var errs []error
	for _, s := range m {
		if err := s.AppendResult(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func captureHref(linkDir string, ref evidence.CaptureRef) string {
	if ref.IsZero() {
		return ""
	}
	return path.Join(linkDir, ref.File)
}
