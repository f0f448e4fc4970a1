package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/Criss1210/tarea-4/errs"
)

const (
	EngineChromium = "chromium"
	EngineFirefox  = "firefox"
	EngineWebKit   = "webkit"

	DefaultTimeout        = 15 * time.Second
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080
)

// NormalizeEngine maps user-facing browser names onto Playwright engine names.
func NormalizeEngine(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "chrome", "chromium":
		return EngineChromium, nil
	case "firefox":
		return EngineFirefox, nil
	case "webkit", "safari":
		return EngineWebKit, nil
	}
	return "", fmt.Errorf("unsupported browser %q (expected chromium, firefox or webkit)", name)
}

// PlaywrightLauncher starts sessions backed by a Playwright-driven browser.
type PlaywrightLauncher struct {
	Engine         string
	Headless       bool
	InstallDriver  bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
}

// Start launches the browser and opens a single page. Everything acquired so far is released
// if a later stage fails.
func (l PlaywrightLauncher) Start() (Session, error) {
	engine, err := NormalizeEngine(l.Engine)
	if err != nil {
		return nil, err
	}
	if l.InstallDriver {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{engine}}); err != nil {
			return nil, fmt.Errorf("could not install Playwright driver: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start Playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch engine {
	case EngineFirefox:
		browserType = pw.Firefox
	case EngineWebKit:
		browserType = pw.WebKit
	default:
		browserType = pw.Chromium
	}

	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch %s: %w", engine, err)
	}

	bctx, err := b.NewContext()
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("could not create page: %w", err)
	}

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timeoutMS := float64(timeout.Milliseconds())
	page.SetDefaultTimeout(timeoutMS)
	page.SetDefaultNavigationTimeout(timeoutMS)

	s := &playwrightSession{
		pw:      pw,
		browser: b,
		page:    page,
		width:   l.ViewportWidth,
		height:  l.ViewportHeight,
	}
	if s.width <= 0 {
		s.width = DefaultViewportWidth
	}
	if s.height <= 0 {
		s.height = DefaultViewportHeight
	}
	return s, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	width   int
	height  int
	closed  bool
}

func (s *playwrightSession) Maximize() error {
	return s.page.SetViewportSize(s.width, s.height)
}

func (s *playwrightSession) Navigate(url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return errs.Wrap(errs.Navigation, "could not navigate to "+url, err)
	}
	return nil
}

func (s *playwrightSession) Find(selector string) (Element, error) {
	loc := s.page.Locator(selector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateVisible,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ElementNotFound, fmt.Sprintf("no visible element matches %q", selector), err)
	}
	return playwrightElement{loc: loc, selector: selector}, nil
}

func (s *playwrightSession) WaitForLoad() error {
	err := s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	})
	if err != nil {
		return errs.Wrap(errs.Navigation, "page did not finish loading", err)
	}
	return nil
}

func (s *playwrightSession) URL() string {
	return s.page.URL()
}

func (s *playwrightSession) Screenshot() ([]byte, error) {
	data, err := s.page.Screenshot()
	if err != nil {
		return nil, errs.Wrap(errs.Capture, "could not take screenshot", err)
	}
	return data, nil
}

func (s *playwrightSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	browserErr := s.browser.Close()
	stopErr := s.pw.Stop()
	if browserErr != nil {
		return fmt.Errorf("could not close browser: %w", browserErr)
	}
	if stopErr != nil {
		return fmt.Errorf("could not stop Playwright: %w", stopErr)
	}
	return nil
}

type playwrightElement struct {
	loc      playwright.Locator
	selector string
}

func (e playwrightElement) Text() (string, error) {
	text, err := e.loc.InnerText()
	if err != nil {
		return "", errs.Wrap(errs.ElementNotFound, fmt.Sprintf("could not read text of %q", e.selector), err)
	}
	return text, nil
}

func (e playwrightElement) Click() error {
	if err := e.loc.Click(); err != nil {
		return errs.Wrap(errs.ElementNotFound, fmt.Sprintf("could not click %q", e.selector), err)
	}
	return nil
}

func (e playwrightElement) SendKeys(text string) error {
	if err := e.loc.PressSequentially(text); err != nil {
		return errs.Wrap(errs.ElementNotFound, fmt.Sprintf("could not type into %q", e.selector), err)
	}
	return nil
}

func (e playwrightElement) Press(key string) error {
	if err := e.loc.Press(key); err != nil {
		return errs.Wrap(errs.ElementNotFound, fmt.Sprintf("could not press %s on %q", key, e.selector), err)
	}
	return nil
}
