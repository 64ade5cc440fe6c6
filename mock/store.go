package mock

import (
	"context"

	"github.com/fwojciec/matchcrawl"
)

var _ matchcrawl.MatchStore = (*MatchStore)(nil)

// MatchStore is a mock implementation of matchcrawl.MatchStore.
type MatchStore struct {
	LoadFn     func(ctx context.Context) ([]*matchcrawl.MatchRecord, error)
	ContainsFn func(id string) bool
	AppendFn   func(ctx context.Context, record *matchcrawl.MatchRecord) error
	LenFn      func() int
}

func (s *MatchStore) Load(ctx context.Context) ([]*matchcrawl.MatchRecord, error) {
	return s.LoadFn(ctx)
}

func (s *MatchStore) Contains(id string) bool {
	return s.ContainsFn(id)
}

func (s *MatchStore) Append(ctx context.Context, record *matchcrawl.MatchRecord) error {
	return s.AppendFn(ctx, record)
}

func (s *MatchStore) Len() int {
	return s.LenFn()
}

var _ matchcrawl.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of matchcrawl.Extractor.
type Extractor struct {
	MatchFn func(ctx context.Context, scope matchcrawl.Scope, url string, matchday int) (*matchcrawl.MatchRecord, error)
}

func (e *Extractor) Match(ctx context.Context, scope matchcrawl.Scope, url string, matchday int) (*matchcrawl.MatchRecord, error) {
	return e.MatchFn(ctx, scope, url, matchday)
}
