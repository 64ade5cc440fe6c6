package rod

import (
	"context"
	"regexp"
	"time"

	"github.com/fwojciec/matchcrawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Session implements matchcrawl.Session at compile time.
var _ matchcrawl.Session = (*Session)(nil)

// Delays holds the settle waits around isolated page handling. The page
// renders asynchronously after load, so reads need a grace period.
type Delays struct {
	PageOpen time.Duration
	Render   time.Duration
	Restore  time.Duration
}

// DefaultDelays returns the waits used against the live site.
func DefaultDelays() Delays {
	return Delays{
		PageOpen: time.Second,
		Render:   3 * time.Second,
		Restore:  time.Second,
	}
}

// Session drives a Chrome browser. It owns one shared navigation page;
// match pages are opened as isolated contexts via WithPage so an
// extraction failure can never corrupt the shared navigation state.
type Session struct {
	manager     *BrowserManager
	shared      *rod.Page
	findTimeout time.Duration
	delays      Delays
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithFindTimeout bounds how long element lookups wait for the page to
// render a match. Defaults to 5s.
func WithFindTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.findTimeout = d
	}
}

// WithDelays overrides the settle delays, mainly for tests.
func WithDelays(d Delays) SessionOption {
	return func(s *Session) {
		s.delays = d
	}
}

// NewSession creates a Session on top of a launched browser.
// Close must be called when the Session is no longer needed.
func NewSession(manager *BrowserManager, opts ...SessionOption) (*Session, error) {
	s := &Session{
		manager:     manager,
		findTimeout: 5 * time.Second,
		delays:      DefaultDelays(),
	}
	for _, opt := range opts {
		opt(s)
	}

	page, err := manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "opening shared page: %v", err)
	}
	s.shared = page
	return s, nil
}

// Navigate points the shared page at the URL and waits for it to load.
func (s *Session) Navigate(ctx context.Context, url string) error {
	page := s.shared.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "navigate %s: %v", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "load %s: %v", url, err)
	}
	return nil
}

// Find locates an element on the shared page.
func (s *Session) Find(strategy matchcrawl.Strategy) (matchcrawl.Element, error) {
	return find(s.shared, s.findTimeout, strategy)
}

// FindAll locates elements on the shared page.
func (s *Session) FindAll(strategy matchcrawl.Strategy) ([]matchcrawl.Element, error) {
	return findAll(s.shared, s.findTimeout, strategy)
}

// HTML returns the shared page's rendered HTML.
func (s *Session) HTML() (string, error) {
	return s.shared.HTML()
}

// WithPage opens an isolated browsing context, navigates it to the URL,
// waits for the content to render, and invokes fn with the page as scope.
// The page is closed and focus restored to the shared page on every exit
// path, including panics inside fn.
func (s *Session) WithPage(ctx context.Context, url string, fn func(matchcrawl.Scope) error) error {
	page, err := s.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "opening isolated page: %v", err)
	}
	// Close uses the original handle: the scoped page's context may already
	// be canceled when cleanup runs, and the close must still be delivered.
	defer func() {
		_ = page.Close()
		if _, err := s.shared.Activate(); err == nil {
			time.Sleep(s.delays.Restore)
		}
	}()

	scoped := page.Context(ctx)
	if err := wait(ctx, s.delays.PageOpen); err != nil {
		return err
	}
	if err := scoped.Navigate(url); err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "navigate %s: %v", url, err)
	}
	if err := scoped.WaitLoad(); err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "load %s: %v", url, err)
	}
	if err := wait(ctx, s.delays.Render); err != nil {
		return err
	}

	return fn(&pageScope{page: scoped, timeout: s.findTimeout})
}

// Close releases the shared page and the browser.
func (s *Session) Close() error {
	if s.shared != nil {
		_ = s.shared.Close()
		s.shared = nil
	}
	return s.manager.Close()
}

// pageScope adapts an isolated match page to matchcrawl.Scope.
type pageScope struct {
	page    *rod.Page
	timeout time.Duration
}

func (s *pageScope) Find(strategy matchcrawl.Strategy) (matchcrawl.Element, error) {
	return find(s.page, s.timeout, strategy)
}

func (s *pageScope) FindAll(strategy matchcrawl.Strategy) ([]matchcrawl.Element, error) {
	return findAll(s.page, s.timeout, strategy)
}

func (s *pageScope) HTML() (string, error) {
	return s.page.HTML()
}

// find resolves a strategy to a single element, waiting up to timeout for
// the page to render it.
func find(page *rod.Page, timeout time.Duration, strategy matchcrawl.Strategy) (matchcrawl.Element, error) {
	p := page.Timeout(timeout)

	var el *rod.Element
	var err error
	switch strategy.Kind {
	case matchcrawl.StrategyText:
		el, err = p.ElementR(strategy.Expr, strategy.Match)
	default:
		el, err = p.Element(strategy.Expr)
	}
	if err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "%s strategy %q did not match: %v", strategy.Kind, strategy.Expr, err)
	}
	return &element{el: el}, nil
}

// findAll resolves a strategy to all matching elements in page order. It
// waits briefly for at least one match, then reads whatever is rendered.
func findAll(page *rod.Page, timeout time.Duration, strategy matchcrawl.Strategy) ([]matchcrawl.Element, error) {
	p := page.Timeout(timeout)
	// Best effort wait; an empty result is a valid answer.
	_ = p.WaitElementsMoreThan(strategy.Expr, 0)

	els, err := page.Elements(strategy.Expr)
	if err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "%s strategy %q did not match: %v", strategy.Kind, strategy.Expr, err)
	}

	var pattern *regexp.Regexp
	if strategy.Kind == matchcrawl.StrategyText && strategy.Match != "" {
		pattern, err = regexp.Compile(strategy.Match)
		if err != nil {
			return nil, matchcrawl.Errorf(matchcrawl.EINVALID, "text strategy pattern %q: %v", strategy.Match, err)
		}
	}

	out := make([]matchcrawl.Element, 0, len(els))
	for _, el := range els {
		if pattern != nil {
			text, err := el.Text()
			if err != nil || !pattern.MatchString(text) {
				continue
			}
		}
		out = append(out, &element{el: el})
	}
	return out, nil
}

// element adapts a rod element to matchcrawl.Element.
type element struct {
	el *rod.Element
}

func (e *element) Text() (string, error) {
	return e.el.Text()
}

func (e *element) Attr(name string) (string, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "reading attribute %q: %v", name, err)
	}
	if v == nil {
		return "", matchcrawl.Errorf(matchcrawl.ENOTFOUND, "attribute %q not present", name)
	}
	return *v, nil
}

// Click scrolls the element into view and clicks it, falling back to a
// JavaScript click when an overlay intercepts the pointer.
func (e *element) Click() error {
	_ = e.el.ScrollIntoView()
	if err := e.el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		if _, jsErr := e.el.Eval("() => this.click()"); jsErr != nil {
			return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "click failed: %v", err)
		}
	}
	return nil
}

func (e *element) Elements(selector string) ([]matchcrawl.Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "descendant lookup %q: %v", selector, err)
	}
	out := make([]matchcrawl.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out, nil
}

// wait sleeps for d unless the context is canceled first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
