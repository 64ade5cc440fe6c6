package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/matchcrawl"
	"github.com/fwojciec/matchcrawl/crawl"
)

// Compile-time interface verification.
var _ matchcrawl.Extractor = (*Pipeline)(nil)

// Pipeline extracts a match record from an isolated page scope. Field
// extractors run independently, each wrapped in the retry policy and backed
// by its fallback chain, so a missing or slow field degrades to the
// sentinel instead of aborting the record.
type Pipeline struct {
	Table  Table
	Retry  crawl.Policy
	Logger *slog.Logger

	// MinStatRows is the row count a half-time statistics view must reach
	// before it is read. Views that stay below it return empty, not an
	// error.
	MinStatRows int

	// StatPollWait is the fixed wait between statistics row polls.
	StatPollWait time.Duration

	// StatRetries bounds the tab-switch attempts per statistics view.
	StatRetries int
}

// NewPipeline returns a Pipeline with the defaults used against the live
// site.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Table:        DefaultTable(),
		Retry:        crawl.DefaultPolicy(),
		MinStatRows:  10,
		StatPollWait: 2 * time.Second,
		StatRetries:  3,
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Match extracts a record for the match rendered in scope. The caller owns
// the match ID and assigns it afterwards; everything else is filled here.
// Only cancellation aborts the record; per-field misses keep their
// sentinels.
func (p *Pipeline) Match(ctx context.Context, scope matchcrawl.Scope, url string, matchday int) (*matchcrawl.MatchRecord, error) {
	rec := newRecord(url, matchday)

	fields := []struct {
		name string
		fn   func() error
	}{
		{"date_time", func() error { return p.dateTime(scope, rec) }},
		{"teams", func() error { return p.teams(scope, rec) }},
		{"venue", func() error { return p.venue(scope, rec) }},
		{"referee", func() error { return p.referee(scope, rec) }},
		{"odds", func() error { return p.odds(scope, rec) }},
		{"crowd_voting", func() error { return p.crowdVoting(scope, rec) }},
	}
	for _, f := range fields {
		if err := p.field(ctx, f.name, f.fn); err != nil {
			return nil, err
		}
	}

	stats, err := p.statistics(ctx, scope)
	if err != nil {
		return nil, err
	}
	rec.Statistics = stats

	rec.Commentary = p.commentary(scope)

	rec.Fingerprint = fingerprint(rec)
	return rec, nil
}

// field runs one extractor under the retry policy. Exhausted retries are
// logged and absorbed (the field keeps its sentinel); cancellation
// propagates so the caller can discard the record and clean up.
func (p *Pipeline) field(ctx context.Context, name string, fn func() error) error {
	err := crawl.Do(ctx, p.Retry, func(context.Context) error { return fn() })
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	p.logger().Warn("field extraction exhausted", "field", name, "err", err)
	return nil
}

// newRecord pre-fills every field with the sentinel so a record is always
// complete, whatever subset of extractors succeeds.
func newRecord(url string, matchday int) *matchcrawl.MatchRecord {
	na := matchcrawl.NotFound
	return &matchcrawl.MatchRecord{
		Matchday:    matchday,
		SourceURL:   url,
		ScrapedAt:   time.Now().UTC(),
		DateTime:    matchcrawl.DateTime{Date: na, Time: na, Combined: na},
		Teams:       matchcrawl.Teams{Home: na, Away: na},
		Venue:       matchcrawl.Venue{Name: na, Location: na},
		Referee:     matchcrawl.Referee{Name: na, AvgRedCards: na, AvgYellowCards: na, Attendance: na},
		Odds:        matchcrawl.Odds{Home: na, Draw: na, Away: na},
		CrowdVoting: matchcrawl.CrowdVoting{HomePct: na, DrawPct: na, AwayPct: na, TotalVotes: na},
		Statistics: matchcrawl.Statistics{
			Overall:    []matchcrawl.StatRow{},
			FirstHalf:  []matchcrawl.StatRow{},
			SecondHalf: []matchcrawl.StatRow{},
		},
	}
}

// dateTime reads the kickoff date and time from the header widget, falling
// back to scanning the page body text for date patterns.
func (p *Pipeline) dateTime(scope matchcrawl.Scope, rec *matchcrawl.MatchRecord) error {
	if el, err := findChain(scope, p.Table.DateTimeContainer); err == nil {
		spans, err := el.Elements("span")
		if err == nil && len(spans) >= 2 {
			text, err := spans[1].Text()
			if err == nil {
				parts := strings.SplitN(strings.TrimSpace(text), "\n", 2)
				if len(parts) == 2 {
					rec.DateTime = matchcrawl.DateTime{
						Date:     parts[0],
						Time:     parts[1],
						Combined: parts[0] + " " + parts[1],
					}
					return nil
				}
			}
		}
	}

	body, err := scope.Find(matchcrawl.Strategy{Kind: matchcrawl.StrategyCSS, Expr: "body"})
	if err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "page body not readable")
	}
	text, err := body.Text()
	if err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "page body not readable: %v", err)
	}
	dt, ok := ParseDateTimeText(text)
	if !ok {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "no date found in page text")
	}
	rec.DateTime = dt
	return nil
}

// teams reads home and away from the alt text of the first two team images.
func (p *Pipeline) teams(scope matchcrawl.Scope, rec *matchcrawl.MatchRecord) error {
	els, idx := ResolveAll(scope, p.Table.TeamImages)
	if idx == -1 || len(els) < 2 {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "team images not rendered")
	}
	attr := p.Table.TeamImages.Strategies[idx].Attr
	home, err := els[0].Attr(attr)
	if err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "home team attribute: %v", err)
	}
	away, err := els[1].Attr(attr)
	if err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "away team attribute: %v", err)
	}
	rec.Teams = matchcrawl.Teams{Home: strings.TrimSpace(home), Away: strings.TrimSpace(away)}
	return nil
}

// venue reads the stadium name and location from the labeled info blocks,
// falling back to any span that names a stadium.
func (p *Pipeline) venue(scope matchcrawl.Scope, rec *matchcrawl.MatchRecord) error {
	blocks, _ := ResolveAll(scope, p.Table.InfoBlocks)
	for _, block := range blocks {
		name, okName := labelValue(block, "Name")
		location, okLoc := labelValue(block, "Location")
		if okName {
			rec.Venue.Name = name
		}
		if okLoc {
			rec.Venue.Location = location
		}
		if okName || okLoc {
			return nil
		}
	}

	if res := Resolve(scope, p.Table.VenueNameFallback); res.Found {
		rec.Venue.Name = res.Value
		return nil
	}
	return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "venue block not rendered")
}

// referee reads the referee name, card averages and attendance from the
// labeled info blocks. Card averages come from the "Avg. cards" text.
func (p *Pipeline) referee(scope matchcrawl.Scope, rec *matchcrawl.MatchRecord) error {
	blocks, idx := ResolveAll(scope, p.Table.InfoBlocks)
	if idx == -1 {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "info blocks not rendered")
	}

	var found bool
	for _, block := range blocks {
		text, err := block.Text()
		if err != nil {
			continue
		}

		if strings.Contains(text, "Attendance") {
			if v, ok := labelValue(block, "Attendance"); ok {
				rec.Referee.Attendance = v
				found = true
			}
		}
		if strings.Contains(text, "Referee") {
			if v, ok := labelValue(block, "Referee"); ok {
				// The value span nests the name above the card stats;
				// the first line is the name.
				rec.Referee.Name = strings.SplitN(v, "\n", 2)[0]
				found = true
			}
		}
		if strings.Contains(text, "Avg. cards") {
			if red, yellow, ok := ParseAvgCards(text); ok {
				rec.Referee.AvgRedCards = strconv.FormatFloat(red, 'f', -1, 64)
				rec.Referee.AvgYellowCards = strconv.FormatFloat(yellow, 'f', -1, 64)
				found = true
			}
		}
		if rec.Referee.Name != matchcrawl.NotFound {
			break
		}
	}
	if !found {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "referee block not rendered")
	}
	return nil
}

// odds reads the 1/X/2 outcome odds, in page order.
func (p *Pipeline) odds(scope matchcrawl.Scope, rec *matchcrawl.MatchRecord) error {
	els, idx := ResolveAll(scope, p.Table.Odds)
	if idx == -1 || len(els) < 3 {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "odds not rendered")
	}
	values := make([]string, 0, 3)
	for _, el := range els[:3] {
		text, err := el.Text()
		if err != nil {
			return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "odds value: %v", err)
		}
		values = append(values, strings.TrimSpace(text))
	}
	rec.Odds = matchcrawl.Odds{Home: values[0], Draw: values[1], Away: values[2]}
	return nil
}

// crowdVoting reads the "Who will win?" percentages and total vote count.
func (p *Pipeline) crowdVoting(scope matchcrawl.Scope, rec *matchcrawl.MatchRecord) error {
	block, err := findChain(scope, p.Table.VotingBlock)
	if err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "voting block not rendered")
	}

	percents := make([]string, 0, 3)
	if els, err := block.Elements(p.Table.VotePercentSelector); err == nil {
		for _, el := range els {
			text, err := el.Text()
			if err != nil {
				continue
			}
			if pct, ok := ParsePercentage(text); ok {
				percents = append(percents, strconv.Itoa(pct))
			}
			if len(percents) == 3 {
				break
			}
		}
	}
	if len(percents) == 3 {
		rec.CrowdVoting.HomePct = percents[0]
		rec.CrowdVoting.DrawPct = percents[1]
		rec.CrowdVoting.AwayPct = percents[2]
	}

	if spans, err := block.Elements("span"); err == nil {
		for _, span := range spans {
			text, err := span.Text()
			if err != nil {
				continue
			}
			if votes, ok := ParseTotalVotes(text); ok {
				rec.CrowdVoting.TotalVotes = strconv.FormatInt(votes, 10)
				break
			}
		}
	}
	return nil
}

// statistics reads the three statistics views. The overall view is already
// displayed; the half views each need a tab switch and a row-count poll.
func (p *Pipeline) statistics(ctx context.Context, scope matchcrawl.Scope) (matchcrawl.Statistics, error) {
	out := matchcrawl.Statistics{
		Overall:    []matchcrawl.StatRow{},
		FirstHalf:  []matchcrawl.StatRow{},
		SecondHalf: []matchcrawl.StatRow{},
	}

	rows, err := p.pollRows(ctx, scope, 1)
	if err != nil {
		return out, err
	}
	out.Overall = p.readRows(rows)

	firstHalf, err := p.tabView(ctx, scope, p.Table.FirstHalfTab, "first half")
	if err != nil {
		return out, err
	}
	out.FirstHalf = firstHalf

	secondHalf, err := p.tabView(ctx, scope, p.Table.SecondHalfTab, "second half")
	if err != nil {
		return out, err
	}
	out.SecondHalf = secondHalf

	return out, nil
}

// tabView switches to a statistics tab and reads its rows once at least
// MinStatRows have rendered. A view that never reaches the minimum after
// StatRetries attempts yields an empty slice rather than failing the
// record.
func (p *Pipeline) tabView(ctx context.Context, scope matchcrawl.Scope, tab matchcrawl.Chain, label string) ([]matchcrawl.StatRow, error) {
	for attempt := 0; attempt < p.StatRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		el, err := findChain(scope, tab)
		if err == nil {
			if err := el.Click(); err == nil {
				rows, err := p.pollRows(ctx, scope, p.MinStatRows)
				if err != nil {
					return nil, err
				}
				if len(rows) >= p.MinStatRows {
					return p.readRows(rows), nil
				}
			}
		}

		if err := sleepCtx(ctx, p.StatPollWait); err != nil {
			return nil, err
		}
	}

	p.logger().Warn("statistics view below minimum rows, returning empty", "view", label, "min", p.MinStatRows)
	return []matchcrawl.StatRow{}, nil
}

// pollRows waits for at least min stat rows, retrying with a fixed wait.
// It returns whatever rows were visible on the last attempt.
func (p *Pipeline) pollRows(ctx context.Context, scope matchcrawl.Scope, min int) ([]matchcrawl.Element, error) {
	var rows []matchcrawl.Element
	for attempt := 0; attempt < p.StatRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, _ = ResolveAll(scope, p.Table.StatRows)
		if len(rows) >= min {
			return rows, nil
		}

		if err := sleepCtx(ctx, p.StatPollWait); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// readRows converts row elements into StatRows via the three sibling
// sub-selectors. Unreadable cells keep the sentinel.
func (p *Pipeline) readRows(rows []matchcrawl.Element) []matchcrawl.StatRow {
	out := make([]matchcrawl.StatRow, 0, len(rows))
	for _, row := range rows {
		stat := matchcrawl.StatRow{
			Name:      matchcrawl.NotFound,
			HomeValue: matchcrawl.NotFound,
			AwayValue: matchcrawl.NotFound,
		}
		for _, sel := range p.Table.StatNameSelectors {
			if v, ok := childText(row, sel); ok {
				stat.Name = v
				break
			}
		}
		if v, ok := childText(row, p.Table.StatHomeSelector); ok {
			stat.HomeValue = v
		}
		if v, ok := childText(row, p.Table.StatAwaySelector); ok {
			stat.AwayValue = v
		}
		out = append(out, stat)
	}
	return out
}

// commentary reads visible commentary entries and classifies them by
// keyword. Best effort only: entries without usable text are skipped and
// duplicates are dropped.
func (p *Pipeline) commentary(scope matchcrawl.Scope) []matchcrawl.Event {
	entries, idx := ResolveAll(scope, p.Table.CommentaryEntries)
	if idx == -1 {
		return nil
	}

	var events []matchcrawl.Event
	seen := make(map[string]struct{})
	for _, entry := range entries {
		text := p.entryText(entry)
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}

		minute := matchcrawl.NotFound
		for _, sel := range p.Table.MinuteSelectors {
			if v, ok := childText(entry, sel); ok && strings.Contains(v, "'") {
				minute = v
				break
			}
		}
		if minute == matchcrawl.NotFound {
			if m, ok := ParseMinute(text); ok {
				minute = m
			}
		}

		events = append(events, matchcrawl.Event{
			Minute: minute,
			Text:   text,
			Type:   ClassifyEvent(text),
		})
	}
	return events
}

// entryText reads a commentary entry's text via the configured selectors,
// falling back to the entry's full text with the leading minute stripped.
func (p *Pipeline) entryText(entry matchcrawl.Element) string {
	for _, sel := range p.Table.TextSelectors {
		if v, ok := childText(entry, sel); ok && len(v) > 3 {
			return v
		}
	}
	full, err := entry.Text()
	if err != nil {
		return ""
	}
	full = strings.TrimSpace(full)
	if m, ok := ParseMinute(full); ok {
		full = strings.TrimSpace(strings.TrimPrefix(full, m))
	}
	return full
}

// findChain resolves a chain to its first matching element.
func findChain(scope matchcrawl.Scope, chain matchcrawl.Chain) (matchcrawl.Element, error) {
	for _, s := range chain.Strategies {
		if el, err := scope.Find(s); err == nil {
			return el, nil
		}
	}
	return nil, matchcrawl.Errorf(matchcrawl.ENOTFOUND, "no strategy matched for %s", chain.Field)
}

// childText returns the trimmed text of the first descendant matching sel.
func childText(el matchcrawl.Element, sel string) (string, bool) {
	children, err := el.Elements(sel)
	if err != nil || len(children) == 0 {
		return "", false
	}
	text, err := children[0].Text()
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

// sleepCtx waits for d unless the context is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// fingerprint hashes the record body for change detection across
// re-scrapes. The fingerprint itself is excluded from the hash.
func fingerprint(rec *matchcrawl.MatchRecord) string {
	clone := *rec
	clone.Fingerprint = ""
	clone.ScrapedAt = time.Time{}
	b, err := json.Marshal(&clone)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}
