package matchcrawl

import "context"

// Extractor builds a match record from an isolated page scope.
// Implementations run independent field extractors so that one missing or
// slow field never aborts the others.
type Extractor interface {
	// Match extracts a record for the match rendered in scope.
	// A page that failed to render at all is reported as an error and the
	// record is discarded; per-field misses resolve to sentinels instead.
	Match(ctx context.Context, scope Scope, url string, matchday int) (*MatchRecord, error)
}
