package crawl

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/fwojciec/matchcrawl"
)

// Selectors for the season and round controls on the shared tournament page.
var (
	seasonLabel = matchcrawl.Strategy{
		Kind: matchcrawl.StrategyCSS,
		Expr: "div.Dropdown.kdhXwd button.DropdownButton div.Text",
	}
	seasonButton = matchcrawl.Strategy{
		Kind: matchcrawl.StrategyCSS,
		Expr: "div.Dropdown.kdhXwd button.DropdownButton",
	}
	roundLabel = matchcrawl.Strategy{
		Kind: matchcrawl.StrategyCSS,
		Expr: "div[data-panelid='round'] button.DropdownButton div.Text",
	}
	roundButton = matchcrawl.Strategy{
		Kind: matchcrawl.StrategyCSS,
		Expr: "div[data-panelid='round'] .DropdownButton",
	}
	nextRoundArrow = matchcrawl.Strategy{
		Kind: matchcrawl.StrategyPattern,
		Expr: "div.Wrapper.d_flex.ai_center button.Button:last-child",
	}
	prevRoundArrow = matchcrawl.Strategy{
		Kind: matchcrawl.StrategyPattern,
		Expr: "div.Wrapper.d_flex.ai_center button.Button:first-child",
	}
)

// listboxOption matches a dropdown option by its exact text.
func listboxOption(text string) matchcrawl.Strategy {
	return matchcrawl.Strategy{
		Kind:  matchcrawl.StrategyText,
		Expr:  "ul[role='listbox'] li[role='option']",
		Match: "^" + regexp.QuoteMeta(text) + "$",
	}
}

var roundPattern = regexp.MustCompile(`Round (\d+)`)

// ParseRound extracts the round number from a "Round N" label.
// The bool result is false if the label does not carry a round number.
func ParseRound(label string) (int, bool) {
	m := roundPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Waits holds the settle delays the navigator observes after UI actions.
// The page renders asynchronously, so every interaction needs time before
// its effect can be read back.
type Waits struct {
	Dropdown   time.Duration
	PageReload time.Duration
	StepPause  time.Duration
}

// DefaultWaits returns the delays used against the live site.
func DefaultWaits() Waits {
	return Waits{
		Dropdown:   1500 * time.Millisecond,
		PageReload: 4 * time.Second,
		StepPause:  500 * time.Millisecond,
	}
}

// Navigator drives season and round selection on the shared page. It owns
// the navigation state exclusively; no other component mutates it.
type Navigator struct {
	Session matchcrawl.Session
	Waits   Waits
	Logger  *slog.Logger

	season  string
	round   int
	atRound bool
}

// State reports the navigator's view of the page: the verified season and,
// when a round has been reached, its number.
func (n *Navigator) State() (season string, round int, atRound bool) {
	return n.season, n.round, n.atRound
}

// logger returns the configured logger or a discard logger.
func (n *Navigator) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// CurrentSeason reads the season displayed by the season dropdown.
func (n *Navigator) CurrentSeason() string {
	el, err := n.Session.Find(seasonLabel)
	if err != nil {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return text
}

// SelectSeason steers the shared page to the target season. It is a no-op
// when the displayed season already matches. A verified mismatch after one
// selection attempt is reported as EUNAVAILABLE; the caller treats this as
// run-fatal since no further progress is possible without the season.
func (n *Navigator) SelectSeason(ctx context.Context, season string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if n.CurrentSeason() == season {
		n.logger().Info("season already selected", "season", season)
		n.season = season
		return nil
	}

	btn, err := n.Session.Find(seasonButton)
	if err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "season dropdown not found")
	}
	if err := btn.Click(); err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "season dropdown not clickable: %v", err)
	}
	if err := sleep(ctx, n.Waits.Dropdown); err != nil {
		return err
	}

	opt, err := n.Session.Find(listboxOption(season))
	if err != nil {
		return matchcrawl.Errorf(matchcrawl.ENOTFOUND, "season option %q not found", season)
	}
	if err := opt.Click(); err != nil {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "season option %q not clickable: %v", season, err)
	}
	if err := sleep(ctx, n.Waits.PageReload); err != nil {
		return err
	}

	if got := n.CurrentSeason(); got != season {
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "season %q still displayed after selecting %q", got, season)
	}

	n.logger().Info("season selected", "season", season)
	n.season = season
	return nil
}

// CurrentRound reads the round number from the round label. An unparseable
// label yields 0, which makes stepping always move forward; this is a known
// approximation, not a guaranteed-correct recovery.
func (n *Navigator) CurrentRound() int {
	el, err := n.Session.Find(roundLabel)
	if err != nil {
		n.logger().Warn("round label not found, assuming round 0")
		return 0
	}
	text, err := el.Text()
	if err != nil {
		return 0
	}
	round, ok := ParseRound(text)
	if !ok {
		n.logger().Warn("round label not parseable, assuming round 0", "label", text)
		return 0
	}
	return round
}

// GoToRound steers the shared page to the target round. Calling it twice
// with the same target performs no UI interaction the second time. It first
// tries a direct dropdown selection and falls back to stepping the
// next/previous arrows |target-current| times.
func (n *Navigator) GoToRound(ctx context.Context, target int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	current := n.CurrentRound()
	if current == target {
		n.logger().Info("already at round", "round", target)
		n.round = target
		n.atRound = true
		return nil
	}

	dropErr := n.roundViaDropdown(ctx, target)
	if dropErr == nil {
		n.logger().Info("round selected via dropdown", "round", target)
		n.round = target
		n.atRound = true
		return nil
	}
	if isCancellation(dropErr) {
		return dropErr
	}

	if err := n.roundViaArrows(ctx, target, current); err != nil {
		if isCancellation(err) {
			return err
		}
		return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "round %d not reachable: %v; dropdown: %v", target, err, dropErr)
	}

	n.logger().Info("round reached via stepping", "round", target, "steps", abs(target-current))
	n.round = target
	n.atRound = true
	return nil
}

// roundViaDropdown opens the round dropdown and picks "Round {target}".
func (n *Navigator) roundViaDropdown(ctx context.Context, target int) error {
	btn, err := n.Session.Find(roundButton)
	if err != nil {
		return err
	}
	if err := btn.Click(); err != nil {
		return err
	}
	if err := sleep(ctx, n.Waits.Dropdown); err != nil {
		return err
	}

	opt, err := n.Session.Find(listboxOption("Round " + strconv.Itoa(target)))
	if err != nil {
		return err
	}
	if err := opt.Click(); err != nil {
		return err
	}
	return sleep(ctx, n.Waits.PageReload)
}

// roundViaArrows steps the next/previous control until the target round,
// pausing between steps. A missing arrow mid-sequence fails the navigation.
func (n *Navigator) roundViaArrows(ctx context.Context, target, current int) error {
	diff := target - current
	arrow := nextRoundArrow
	if diff < 0 {
		arrow = prevRoundArrow
	}

	for i := 0; i < abs(diff); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		el, err := n.Session.Find(arrow)
		if err != nil {
			return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "round arrow missing after %d of %d steps", i, abs(diff))
		}
		if err := el.Click(); err != nil {
			return matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "round arrow not clickable: %v", err)
		}
		if err := sleep(ctx, n.Waits.StepPause); err != nil {
			return err
		}
	}
	return sleep(ctx, n.Waits.PageReload)
}

// sleep waits for d, returning early with the context error on cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
