package report

import (
	"fmt"
	"html/template"
	"os"
	"sync"
	"time"

	"github.com/Criss1210/tarea-4/errs"
)

const (
	DefaultTitle          = "Automated Test Report"
	DefaultStylesheet     = "styles.css"
	DefaultCaptureLinkDir = "captures"
)

var headerTemplate = template.Must(template.New("header").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="{{.Stylesheet}}">
</head>
<body>
  <h1>{{.Title}}</h1>
  <p class="run-info">Run {{.RunID}} started {{.Started}}</p>
  <table>
    <thead>
      <tr>
        <th>Scenario</th>
        <th>Result</th>
        <th>Capture</th>
      </tr>
    </thead>
    <tbody>
`))

var rowTemplate = template.Must(template.New("row").Parse(`      <tr>
        <td>{{.Name}}</td>
        <td class="{{.Class}}"{{if .Error}} title="{{.Error}}"{{end}}>{{.Status}}</td>
        <td>{{if .Href}}<a href="{{.Href}}" target="_blank">View</a>{{else}}unavailable{{end}}</td>
      </tr>
`))

const footer = `    </tbody>
  </table>
</body>
</html>
`

// Options configures an HTML report.
type Options struct {
	Title string
	// Stylesheet is the relative name of an external stylesheet; it is not generated.
	Stylesheet string
	// CaptureLinkDir is the capture directory relative to the report, used to build links.
	CaptureLinkDir string
	RunID          string
	Started        time.Time
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Stylesheet == "" {
		o.Stylesheet = DefaultStylesheet
	}
	if o.CaptureLinkDir == "" {
		o.CaptureLinkDir = DefaultCaptureLinkDir
	}
	if o.Started.IsZero() {
		o.Started = time.Now()
	}
	return o
}

// HTMLSink appends rows to an HTML document as they arrive. Each write is synced to disk, so a
// crash leaves every row recorded so far readable, though the document is unclosed.
type HTMLSink struct {
	file   *os.File
	opts   Options
	rows   int
	closed bool
	lock   sync.Mutex
}

// OpenHTML creates or truncates the report at path and writes its header.
func OpenHTML(path string, opts Options) (*HTMLSink, error) {
	opts = opts.withDefaults()
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "cannot create report "+path, err)
	}
	s := &HTMLSink{file: f, opts: opts}

	err = headerTemplate.Execute(f, map[string]string{
		"Title":      opts.Title,
		"Stylesheet": opts.Stylesheet,
		"RunID":      opts.RunID,
		"Started":    opts.Started.Format(time.RFC1123),
	})
	if err == nil {
		err = f.Sync()
	}
	if err != nil {
		f.Close()
		return nil, errs.Wrap(errs.IO, "cannot write report header to "+path, err)
	}
	return s, nil
}

// Path returns the report file location.
func (s *HTMLSink) Path() string {
	return s.file.Name()
}

// Rows returns how many rows have been appended.
func (s *HTMLSink) Rows() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.rows
}

func (s *HTMLSink) AppendResult(row Row) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return ErrClosed
	}

	err := rowTemplate.Execute(s.file, map[string]string{
		"Name":   row.Name,
		"Class":  row.Status.CSSClass(),
		"Status": string(row.Status),
		"Href":   captureHref(s.opts.CaptureLinkDir, row.Capture),
		"Error":  row.Error,
	})
	if err == nil {
		err = s.file.Sync()
	}
	if err != nil {
		return errs.Wrap(errs.IO, fmt.Sprintf("cannot append %q to report", row.Name), err)
	}
	s.rows++
	return nil
}

// Close writes the footer and closes the file. Only the first call has any effect; later calls
// return ErrClosed.
func (s *HTMLSink) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	_, err := s.file.WriteString(footer)
	if err == nil {
		err = s.file.Sync()
	}
	closeErr := s.file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return errs.Wrap(errs.IO, "cannot finalize report "+s.file.Name(), err)
	}
	return nil
}
