package matchcrawl

import "context"

// Element is a located node in the rendered page.
type Element interface {
	// Text returns the element's visible text.
	Text() (string, error)

	// Attr returns the value of the named attribute.
	// Returns ENOTFOUND if the attribute is absent.
	Attr(name string) (string, error)

	// Click scrolls the element into view and clicks it.
	Click() error

	// Elements returns the element's descendants matching a CSS selector.
	Elements(selector string) ([]Element, error)
}

// Scope locates elements within one rendered surface (the shared page or an
// isolated match page). Lookups honor a bounded wait internally; a
// strategy that does not match within it fails with EUNAVAILABLE.
type Scope interface {
	// Find returns the first element matched by the strategy.
	Find(s Strategy) (Element, error)

	// FindAll returns all elements matched by the strategy, in page order.
	FindAll(s Strategy) ([]Element, error)

	// HTML returns the current rendered HTML of the surface.
	HTML() (string, error)
}

// Session is the shared browsing session. Implementations may use browser
// automation to handle JavaScript-rendered content. The session owns
// exactly one shared navigation page; match pages are opened as isolated
// contexts via WithPage.
type Session interface {
	Scope

	// Navigate points the shared page at the URL and waits for it to load.
	Navigate(ctx context.Context, url string) error

	// WithPage opens an isolated browsing context, navigates it to the
	// URL, waits for the content to render, and invokes fn with the page
	// as scope. The page is closed and focus restored to the shared page
	// on every exit path, including panics.
	WithPage(ctx context.Context, url string, fn func(Scope) error) error

	// Close releases browser resources.
	// Must be called when the Session is no longer needed.
	Close() error
}
