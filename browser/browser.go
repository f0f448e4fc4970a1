// Package browser defines the browser capability used by the test steps, and a
// Playwright-backed implementation of it.
//
// Steps only ever see the Session and Element interfaces, so the suite can be driven by a
// fake browser in unit tests (see the browsertest package).
package browser

// Screenshotter is the part of a Session needed to produce evidence.
type Screenshotter interface {
	// Screenshot returns the current viewport as PNG data.
	Screenshot() ([]byte, error)
}

// Element is a located element on the current page.
type Element interface {
	Text() (string, error)
	Click() error
	// SendKeys types text into the element, one key at a time.
	SendKeys(text string) error
	// Press presses a single named key, such as "Enter", while the element has focus.
	Press(key string) error
}

// Session is one live browser automation connection. It is not safe for concurrent use.
type Session interface {
	Screenshotter

	// Maximize sizes the viewport to the configured screen size.
	Maximize() error
	// Navigate loads url and waits until its DOM content has loaded.
	Navigate(url string) error
	// Find waits for the first element matching selector to become visible.
	Find(selector string) (Element, error)
	// WaitForLoad waits until the page's network activity has settled.
	WaitForLoad() error
	// URL returns the URL of the current page.
	URL() string
	// Close ends the session and releases the browser.
	Close() error
}

// Launcher starts browser sessions.
type Launcher interface {
	Start() (Session, error)
}

// Named keys accepted by Element.Press.
const (
	KeyEnter = "Enter"
)
