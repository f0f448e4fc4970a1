package report

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/Criss1210/tarea-4/errs"
)

// Summary is the document written by JSONSink.
type Summary struct {
	RunID     string       `json:"runId"`
	Started   time.Time    `json:"started"`
	Finished  time.Time    `json:"finished"`
	Total     int          `json:"total"`
	Completed int          `json:"completed"`
	Failed    int          `json:"failed"`
	Rows      []SummaryRow `json:"rows"`
}

// SummaryRow is one row of a Summary.
type SummaryRow struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Capture    string `json:"capture,omitempty"`
	DurationMS int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// JSONSink collects rows in memory and writes a machine-readable summary when closed.
type JSONSink struct {
	path           string
	captureLinkDir string
	summary        Summary
	closed         bool
	lock           sync.Mutex
}

// NewJSONSink returns a sink that will write its summary to path.
func NewJSONSink(path string, opts Options) *JSONSink {
	opts = opts.withDefaults()
	return &JSONSink{
		path:           path,
		captureLinkDir: opts.CaptureLinkDir,
		summary: Summary{
			RunID:   opts.RunID,
			Started: opts.Started,
			Rows:    []SummaryRow{},
		},
	}
}

func (s *JSONSink) AppendResult(row Row) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.summary.Rows = append(s.summary.Rows, SummaryRow{
		Name:       row.Name,
		Status:     row.Status,
		Capture:    captureHref(s.captureLinkDir, row.Capture),
		DurationMS: row.Duration.Milliseconds(),
		Error:      row.Error,
	})
	s.summary.Total++
	if row.Status == StatusCompleted {
		s.summary.Completed++
	} else {
		s.summary.Failed++
	}
	return nil
}

func (s *JSONSink) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.summary.Finished = time.Now()

	data, err := json.MarshalIndent(s.summary, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Internal, "cannot encode report summary", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0644); err != nil {
		return errs.Wrap(errs.IO, "cannot write report summary "+s.path, err)
	}
	return nil
}
