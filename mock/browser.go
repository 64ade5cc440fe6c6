// Package mock provides function-field test doubles for matchcrawl
// interfaces.
package mock

import (
	"context"

	"github.com/fwojciec/matchcrawl"
)

var _ matchcrawl.Element = (*Element)(nil)

// Element is a mock implementation of matchcrawl.Element.
type Element struct {
	TextFn     func() (string, error)
	AttrFn     func(name string) (string, error)
	ClickFn    func() error
	ElementsFn func(selector string) ([]matchcrawl.Element, error)
}

func (e *Element) Text() (string, error) {
	return e.TextFn()
}

func (e *Element) Attr(name string) (string, error) {
	return e.AttrFn(name)
}

func (e *Element) Click() error {
	return e.ClickFn()
}

func (e *Element) Elements(selector string) ([]matchcrawl.Element, error) {
	return e.ElementsFn(selector)
}

// TextElement returns an Element that yields the given text and has no
// descendants or attributes.
func TextElement(text string) *Element {
	return &Element{
		TextFn: func() (string, error) { return text, nil },
		AttrFn: func(string) (string, error) {
			return "", matchcrawl.Errorf(matchcrawl.ENOTFOUND, "no attributes")
		},
		ClickFn: func() error { return nil },
		ElementsFn: func(string) ([]matchcrawl.Element, error) {
			return nil, nil
		},
	}
}

var _ matchcrawl.Scope = (*Scope)(nil)

// Scope is a mock implementation of matchcrawl.Scope.
type Scope struct {
	FindFn    func(s matchcrawl.Strategy) (matchcrawl.Element, error)
	FindAllFn func(s matchcrawl.Strategy) ([]matchcrawl.Element, error)
	HTMLFn    func() (string, error)
}

func (s *Scope) Find(strategy matchcrawl.Strategy) (matchcrawl.Element, error) {
	return s.FindFn(strategy)
}

func (s *Scope) FindAll(strategy matchcrawl.Strategy) ([]matchcrawl.Element, error) {
	return s.FindAllFn(strategy)
}

func (s *Scope) HTML() (string, error) {
	return s.HTMLFn()
}

// EmptyScope returns a Scope where nothing matches, every strategy failing
// with EUNAVAILABLE and the HTML being empty.
func EmptyScope() *Scope {
	return &Scope{
		FindFn: func(s matchcrawl.Strategy) (matchcrawl.Element, error) {
			return nil, matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "no match for %q", s.Expr)
		},
		FindAllFn: func(matchcrawl.Strategy) ([]matchcrawl.Element, error) {
			return nil, nil
		},
		HTMLFn: func() (string, error) { return "<html></html>", nil },
	}
}

var _ matchcrawl.Session = (*Session)(nil)

// Session is a mock implementation of matchcrawl.Session.
type Session struct {
	Scope

	NavigateFn func(ctx context.Context, url string) error
	WithPageFn func(ctx context.Context, url string, fn func(matchcrawl.Scope) error) error
	CloseFn    func() error
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.NavigateFn(ctx, url)
}

func (s *Session) WithPage(ctx context.Context, url string, fn func(matchcrawl.Scope) error) error {
	return s.WithPageFn(ctx, url, fn)
}

func (s *Session) Close() error {
	return s.CloseFn()
}
