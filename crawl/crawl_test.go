package crawl_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/matchcrawl"
	"github.com/fwojciec/matchcrawl/crawl"
	"github.com/fwojciec/matchcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://www.example.com/tournament/football/england/premier-league/17"

// matchListHTML renders a round view with one link per match ID.
func matchListHTML(ids ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<a class="event-hl-%s" href="/football/match/home-away/#id:%s">m</a>`, id, id)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// crawlSession builds a session whose shared page is already at the season
// and round of the given tournamentPage and whose round view lists the
// given matches.
func crawlSession(page *tournamentPage, html string) *mock.Session {
	s := page.session()
	s.HTMLFn = func() (string, error) { return html, nil }
	s.NavigateFn = func(context.Context, string) error { return nil }
	s.WithPageFn = func(ctx context.Context, url string, fn func(matchcrawl.Scope) error) error {
		return fn(mock.EmptyScope())
	}
	return s
}

// memoryStore is an in-memory MatchStore for crawler tests.
func memoryStore(existing ...string) (*mock.MatchStore, map[string]*matchcrawl.MatchRecord) {
	records := make(map[string]*matchcrawl.MatchRecord)
	for _, id := range existing {
		records[id] = &matchcrawl.MatchRecord{MatchID: id, SourceURL: "https://example.com/seeded"}
	}
	store := &mock.MatchStore{
		ContainsFn: func(id string) bool {
			_, ok := records[id]
			return ok
		},
		AppendFn: func(_ context.Context, rec *matchcrawl.MatchRecord) error {
			if err := rec.Validate(); err != nil {
				return err
			}
			if _, ok := records[rec.MatchID]; ok {
				return matchcrawl.Errorf(matchcrawl.ECONFLICT, "match %s already stored", rec.MatchID)
			}
			records[rec.MatchID] = rec
			return nil
		},
		LenFn: func() int { return len(records) },
	}
	return store, records
}

// staticExtractor returns a fresh record for every match page.
func staticExtractor() *mock.Extractor {
	return &mock.Extractor{
		MatchFn: func(_ context.Context, _ matchcrawl.Scope, url string, matchday int) (*matchcrawl.MatchRecord, error) {
			return &matchcrawl.MatchRecord{SourceURL: url, Matchday: matchday}, nil
		},
	}
}

func TestCrawler_Run(t *testing.T) {
	t.Parallel()

	t.Run("saves unseen matches and skips stored ones", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "24/25", round: 1, hasDropdowns: true}
		store, records := memoryStore("111")

		c := &crawl.Crawler{
			Session:   crawlSession(page, matchListHTML("111", "222")),
			Extractor: staticExtractor(),
			Store:     store,
			BaseURL:   baseURL,
		}
		c.Navigator = newNavigator(c.Session)

		result, err := c.Run(context.Background(), "24/25", 1, 1)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 0, result.Failed)

		require.Contains(t, records, "222")
		saved := records["222"]
		assert.Equal(t, "222", saved.MatchID)
		assert.Equal(t, 1, saved.Matchday)
		assert.Equal(t, "https://www.example.com/football/match/home-away/#id:222", saved.SourceURL)
	})

	t.Run("a second run over the same rounds saves nothing", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "24/25", round: 1, hasDropdowns: true}
		store, records := memoryStore("111", "222")

		extractorCalls := 0
		c := &crawl.Crawler{
			Session: crawlSession(page, matchListHTML("111", "222")),
			Extractor: &mock.Extractor{
				MatchFn: func(_ context.Context, _ matchcrawl.Scope, url string, matchday int) (*matchcrawl.MatchRecord, error) {
					extractorCalls++
					return &matchcrawl.MatchRecord{SourceURL: url, Matchday: matchday}, nil
				},
			},
			Store:   store,
			BaseURL: baseURL,
		}
		c.Navigator = newNavigator(c.Session)

		result, err := c.Run(context.Background(), "24/25", 1, 1)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Saved)
		assert.Equal(t, 2, result.Skipped)
		assert.Equal(t, 0, extractorCalls)
		assert.Len(t, records, 2)
	})

	t.Run("cancellation during extraction discards the record and closes the page", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "24/25", round: 1, hasDropdowns: true}
		store, records := memoryStore()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pageClosed := false
		session := crawlSession(page, matchListHTML("111"))
		session.WithPageFn = func(ctx context.Context, url string, fn func(matchcrawl.Scope) error) error {
			defer func() { pageClosed = true }()
			return fn(mock.EmptyScope())
		}

		c := &crawl.Crawler{
			Session: session,
			Extractor: &mock.Extractor{
				MatchFn: func(ctx context.Context, _ matchcrawl.Scope, _ string, _ int) (*matchcrawl.MatchRecord, error) {
					cancel()
					return nil, ctx.Err()
				},
			},
			Store:   store,
			BaseURL: baseURL,
		}
		c.Navigator = newNavigator(c.Session)

		result, err := c.Run(ctx, "24/25", 1, 1)

		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, pageClosed, "isolated page should be closed on cancellation")
		assert.Equal(t, 0, result.Saved)
		assert.Empty(t, records)
	})

	t.Run("a failed match is recorded for retry and the crawl continues", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "24/25", round: 1, hasDropdowns: true}
		store, records := memoryStore()

		c := &crawl.Crawler{
			Session: crawlSession(page, matchListHTML("111", "222")),
			Extractor: &mock.Extractor{
				MatchFn: func(_ context.Context, _ matchcrawl.Scope, url string, matchday int) (*matchcrawl.MatchRecord, error) {
					if strings.Contains(url, "111") {
						return nil, matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "page never rendered")
					}
					return &matchcrawl.MatchRecord{SourceURL: url, Matchday: matchday}, nil
				},
			},
			Store:   store,
			BaseURL: baseURL,
		}
		c.Navigator = newNavigator(c.Session)

		result, err := c.Run(context.Background(), "24/25", 1, 1)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, []string{"111"}, result.FailedIDs)
		assert.NotContains(t, records, "111", "failed match must stay out of the store")
		assert.Contains(t, records, "222")
	})

	t.Run("season selection failure is fatal", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "23/24", hasDropdowns: false}
		store, records := memoryStore()

		c := &crawl.Crawler{
			Session:   crawlSession(page, matchListHTML("111")),
			Extractor: staticExtractor(),
			Store:     store,
			BaseURL:   baseURL,
		}
		c.Navigator = newNavigator(c.Session)

		_, err := c.Run(context.Background(), "24/25", 1, 38)

		require.Error(t, err)
		assert.Empty(t, records)
	})

	t.Run("duplicate append counts as skipped", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "24/25", round: 1, hasDropdowns: true}

		// The store denies membership but rejects the insert, as when a
		// concurrent writer got there first.
		store := &mock.MatchStore{
			ContainsFn: func(string) bool { return false },
			AppendFn: func(context.Context, *matchcrawl.MatchRecord) error {
				return matchcrawl.Errorf(matchcrawl.ECONFLICT, "already stored")
			},
			LenFn: func() int { return 0 },
		}

		c := &crawl.Crawler{
			Session:   crawlSession(page, matchListHTML("111")),
			Extractor: staticExtractor(),
			Store:     store,
			BaseURL:   baseURL,
		}
		c.Navigator = newNavigator(c.Session)

		result, err := c.Run(context.Background(), "24/25", 1, 1)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Saved)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 0, result.Failed)
	})

	t.Run("an unreachable round is skipped without failing the run", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "24/25", round: 1, hasDropdowns: false}
		store, records := memoryStore()

		session := crawlSession(page, matchListHTML("111"))
		inner := session.FindFn
		session.FindFn = func(strategy matchcrawl.Strategy) (matchcrawl.Element, error) {
			// Round 2 is unreachable: no dropdown, no arrows.
			if strings.HasSuffix(strategy.Expr, ":last-child") || strings.HasSuffix(strategy.Expr, ":first-child") {
				return nil, matchcrawl.Errorf(matchcrawl.ENOTFOUND, "arrow gone")
			}
			return inner(strategy)
		}

		c := &crawl.Crawler{
			Session:   session,
			Extractor: staticExtractor(),
			Store:     store,
			BaseURL:   baseURL,
		}
		c.Navigator = newNavigator(session)

		result, err := c.Run(context.Background(), "24/25", 1, 2)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved, "round 1 is processed before round 2 fails")
		assert.Contains(t, records, "111")
	})

	t.Run("rejects an invalid base URL", func(t *testing.T) {
		t.Parallel()

		store, _ := memoryStore()
		c := &crawl.Crawler{
			Session:   crawlSession(&tournamentPage{season: "24/25"}, ""),
			Extractor: staticExtractor(),
			Store:     store,
			BaseURL:   "not-a-url",
		}
		c.Navigator = newNavigator(c.Session)

		_, err := c.Run(context.Background(), "24/25", 1, 1)

		require.Error(t, err)
		assert.Equal(t, matchcrawl.EINVALID, matchcrawl.ErrorCode(err))
	})
}
