// Package crawl orchestrates the match crawl: it steers the shared page to
// a season and round, discovers the round's matches, scrapes each unseen
// match in an isolated browsing context, and persists records through the
// deduplicating store. Execution is strictly sequential; the throttle and
// the retry backoff are the only timed suspension points besides the
// navigator's settle delays.
package crawl

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/fwojciec/matchcrawl"
	"github.com/google/uuid"
)

// DefaultBaseURL is the tournament page the crawl starts from.
const DefaultBaseURL = "https://www.sofascore.com/tournament/football/england/premier-league/17"

// Result holds the outcome of a crawl run. Failed matches stay out of the
// persisted ID set and are retried on the next run.
type Result struct {
	Saved     int
	Skipped   int
	Failed    int
	FailedIDs []string
}

// Crawler coordinates navigation, discovery, extraction and persistence.
type Crawler struct {
	Session   matchcrawl.Session
	Navigator *Navigator
	Extractor matchcrawl.Extractor
	Store     matchcrawl.MatchStore
	Throttle  *Throttle
	Logger    *slog.Logger

	// BaseURL is the shared tournament page. Defaults to DefaultBaseURL.
	BaseURL string

	// RunID tags log lines of one run. Assigned when empty.
	RunID string
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Run crawls the inclusive round range of one season. A failure to
// establish the season selection is fatal since no further progress is
// possible; every later failure is isolated to its round or match.
func (c *Crawler) Run(ctx context.Context, season string, startRound, endRound int) (*Result, error) {
	if c.RunID == "" {
		c.RunID = uuid.New().String()
	}
	logger := c.logger().With("run_id", c.RunID, "season", season)

	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	origin, err := siteOrigin(baseURL)
	if err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EINVALID, "invalid base URL %q: %v", baseURL, err)
	}

	if err := c.Session.Navigate(ctx, baseURL); err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "tournament page not reachable: %v", err)
	}

	if err := c.Navigator.SelectSeason(ctx, season); err != nil {
		return nil, err
	}

	logger.Info("crawl started", "start_round", startRound, "end_round", endRound, "known_matches", c.Store.Len())

	result := &Result{}
	for round := startRound; round <= endRound; round++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := c.Navigator.GoToRound(ctx, round); err != nil {
			if isCancellation(err) {
				return result, err
			}
			logger.Error("round not reachable, skipping", "round", round, "err", err)
			continue
		}

		links, err := DiscoverMatches(c.Session, origin)
		if err != nil {
			logger.Error("match discovery failed, skipping round", "round", round, "err", err)
			continue
		}
		logger.Info("round discovered", "round", round, "matches", len(links))

		for _, link := range links {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			if c.Store.Contains(link.MatchID) {
				logger.Debug("match already stored, skipping", "match_id", link.MatchID)
				result.Skipped++
				continue
			}

			if err := c.scrapeMatch(ctx, logger, link, round, result); err != nil {
				return result, err
			}

			if c.Throttle != nil {
				if err := c.Throttle.Wait(ctx); err != nil {
					return result, err
				}
			}
		}
	}

	logger.Info("crawl finished", "saved", result.Saved, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// scrapeMatch extracts and persists one match inside an isolated browsing
// context. Page-level failures are counted and absorbed so the crawl
// continues; only cancellation is returned.
func (c *Crawler) scrapeMatch(ctx context.Context, logger *slog.Logger, link MatchLink, round int, result *Result) error {
	var rec *matchcrawl.MatchRecord
	err := c.Session.WithPage(ctx, link.URL, func(scope matchcrawl.Scope) error {
		r, err := c.Extractor.Match(ctx, scope, link.URL, round)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		if isCancellation(err) {
			return err
		}
		logger.Error("match scrape failed, will retry next run", "match_id", link.MatchID, "err", err)
		result.Failed++
		result.FailedIDs = append(result.FailedIDs, link.MatchID)
		return nil
	}

	rec.MatchID = link.MatchID
	if err := c.Store.Append(ctx, rec); err != nil {
		if matchcrawl.ErrorCode(err) == matchcrawl.ECONFLICT {
			result.Skipped++
			return nil
		}
		if isCancellation(err) {
			return err
		}
		logger.Error("match not persisted", "match_id", link.MatchID, "err", err)
		result.Failed++
		result.FailedIDs = append(result.FailedIDs, link.MatchID)
		return nil
	}

	logger.Info("match saved", "match_id", link.MatchID, "round", round)
	result.Saved++
	return nil
}

// siteOrigin reduces a URL to its scheme://host origin for resolving
// relative match links.
func siteOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("missing scheme or host")
	}
	return u.Scheme + "://" + u.Host, nil
}

// isCancellation reports whether err is a context cancellation that must
// propagate through every layer.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
