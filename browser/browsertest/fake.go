// Package browsertest provides an instrumented in-memory browser for unit tests.
package browsertest

import (
	"fmt"
	"sync"

	"github.com/Criss1210/tarea-4/browser"
	"github.com/Criss1210/tarea-4/errs"
)

// PNG is the image data returned by fake screenshots.
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

// Launcher starts a single shared fake Session.
type Launcher struct {
	Session  *Session
	StartErr error
	Starts   int
}

// NewLauncher returns a Launcher around a fresh Session.
func NewLauncher() *Launcher {
	return &Launcher{Session: NewSession()}
}

func (l *Launcher) Start() (browser.Session, error) {
	l.Starts++
	if l.StartErr != nil {
		return nil, l.StartErr
	}
	return l.Session, nil
}

// Session records every call made to it, in order. Failures are injected by populating the
// exported maps before the run.
type Session struct {
	// NavigateErrors makes Navigate fail for the given URLs.
	NavigateErrors map[string]error
	// Missing makes Find fail for the given selectors.
	Missing map[string]bool
	// Texts supplies element text by selector.
	Texts map[string]string
	// ClickTargets changes the current URL when the element with the given selector is clicked.
	ClickTargets map[string]string
	// ScreenshotErr makes every Screenshot call fail.
	ScreenshotErr error
	// ScreenshotData overrides the PNG returned by Screenshot.
	ScreenshotData []byte
	// OnCall, if set, runs at the start of every recorded call.
	OnCall func(call string)

	lock       sync.Mutex
	calls      []string
	currentURL string
	closes     int
}

// NewSession returns a Session with empty failure tables.
func NewSession() *Session {
	return &Session{
		NavigateErrors: make(map[string]error),
		Missing:        make(map[string]bool),
		Texts:          make(map[string]string),
		ClickTargets:   make(map[string]string),
	}
}

func (s *Session) record(format string, args ...interface{}) {
	call := fmt.Sprintf(format, args...)
	s.lock.Lock()
	s.calls = append(s.calls, call)
	s.lock.Unlock()
	if s.OnCall != nil {
		s.OnCall(call)
	}
}

// Calls returns a copy of the recorded calls.
func (s *Session) Calls() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.calls...)
}

// Closes returns how many times Close was called.
func (s *Session) Closes() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closes
}

func (s *Session) Maximize() error {
	s.record("maximize")
	return nil
}

func (s *Session) Navigate(url string) error {
	s.record("navigate %s", url)
	if err := s.NavigateErrors[url]; err != nil {
		return errs.Wrap(errs.Navigation, "could not navigate to "+url, err)
	}
	s.lock.Lock()
	s.currentURL = url
	s.lock.Unlock()
	return nil
}

func (s *Session) Find(selector string) (browser.Element, error) {
	s.record("find %s", selector)
	if s.Missing[selector] {
		return nil, errs.New(errs.ElementNotFound, fmt.Sprintf("no visible element matches %q", selector))
	}
	return &element{session: s, selector: selector}, nil
}

func (s *Session) WaitForLoad() error {
	s.record("wait-for-load")
	return nil
}

func (s *Session) URL() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.currentURL
}

func (s *Session) Screenshot() ([]byte, error) {
	s.record("screenshot")
	if s.ScreenshotErr != nil {
		return nil, errs.Wrap(errs.Capture, "could not take screenshot", s.ScreenshotErr)
	}
	if s.ScreenshotData != nil {
		return s.ScreenshotData, nil
	}
	return PNG, nil
}

func (s *Session) Close() error {
	s.record("close")
	s.lock.Lock()
	s.closes++
	s.lock.Unlock()
	return nil
}

type element struct {
	session  *Session
	selector string
}

func (e *element) Text() (string, error) {
	e.session.record("text %s", e.selector)
	return e.session.Texts[e.selector], nil
}

func (e *element) Click() error {
	e.session.record("click %s", e.selector)
	if target, ok := e.session.ClickTargets[e.selector]; ok {
		e.session.lock.Lock()
		e.session.currentURL = target
		e.session.lock.Unlock()
	}
	return nil
}

func (e *element) SendKeys(text string) error {
	e.session.record("send-keys %s %s", e.selector, text)
	return nil
}

func (e *element) Press(key string) error {
	e.session.record("press %s %s", e.selector, key)
	return nil
}
