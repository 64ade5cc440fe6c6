package crawl_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/fwojciec/matchcrawl"
	"github.com/fwojciec/matchcrawl/crawl"
	"github.com/fwojciec/matchcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tournamentPage simulates the season and round controls of the shared
// page. Clicks mutate its state the way the real page would.
type tournamentPage struct {
	season       string
	round        int
	roundLabel   string // overrides "Round N" when set
	hasDropdowns bool

	seasonClicks int
	arrowClicks  int
}

func (p *tournamentPage) session() *mock.Session {
	s := &mock.Session{}
	s.FindFn = func(strategy matchcrawl.Strategy) (matchcrawl.Element, error) {
		switch {
		case strategy.Expr == "div.Dropdown.kdhXwd button.DropdownButton div.Text":
			return mock.TextElement(p.season), nil

		case strategy.Expr == "div[data-panelid='round'] button.DropdownButton div.Text":
			label := p.roundLabel
			if label == "" {
				label = "Round " + strconv.Itoa(p.round)
			}
			return mock.TextElement(label), nil

		case strategy.Expr == "div.Dropdown.kdhXwd button.DropdownButton":
			return clickable(func() { p.seasonClicks++ }), nil

		case strings.Contains(strategy.Expr, "listbox"):
			// A dropdown option; clicking it applies the option's text.
			if !p.hasDropdowns {
				return nil, matchcrawl.Errorf(matchcrawl.ENOTFOUND, "option not rendered")
			}
			target := strings.TrimSuffix(strings.TrimPrefix(strategy.Match, "^"), "$")
			return clickable(func() {
				if n, ok := crawl.ParseRound(target); ok {
					p.round = n
					return
				}
				p.season = target
			}), nil

		case strategy.Expr == "div[data-panelid='round'] .DropdownButton":
			if !p.hasDropdowns {
				return nil, matchcrawl.Errorf(matchcrawl.ENOTFOUND, "dropdown not rendered")
			}
			return clickable(func() {}), nil

		case strings.HasSuffix(strategy.Expr, ":first-child"):
			return clickable(func() { p.arrowClicks++; p.round-- }), nil

		case strings.HasSuffix(strategy.Expr, ":last-child"):
			return clickable(func() { p.arrowClicks++; p.round++ }), nil
		}
		return nil, matchcrawl.Errorf(matchcrawl.ENOTFOUND, "no element for %q", strategy.Expr)
	}
	return s
}

func clickable(fn func()) *mock.Element {
	return &mock.Element{
		TextFn:  func() (string, error) { return "", nil },
		ClickFn: func() error { fn(); return nil },
	}
}

func newNavigator(s matchcrawl.Session) *crawl.Navigator {
	// Zero waits keep the tests fast; the navigator only sleeps.
	return &crawl.Navigator{Session: s, Waits: crawl.Waits{}}
}

func TestNavigator_SelectSeason(t *testing.T) {
	t.Parallel()

	t.Run("no interaction when season already displayed", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "24/25", hasDropdowns: true}
		n := newNavigator(page.session())

		err := n.SelectSeason(context.Background(), "24/25")

		require.NoError(t, err)
		assert.Equal(t, 0, page.seasonClicks)
	})

	t.Run("selects the target season via the dropdown", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "23/24", hasDropdowns: true}
		n := newNavigator(page.session())

		err := n.SelectSeason(context.Background(), "24/25")

		require.NoError(t, err)
		assert.Equal(t, "24/25", page.season)
		assert.Equal(t, 1, page.seasonClicks)
	})

	t.Run("fails when the selection does not take effect", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "23/24", hasDropdowns: true}
		s := page.session()
		inner := s.FindFn
		s.FindFn = func(strategy matchcrawl.Strategy) (matchcrawl.Element, error) {
			// Options render but clicking them changes nothing.
			if strings.Contains(strategy.Expr, "listbox") {
				return clickable(func() {}), nil
			}
			return inner(strategy)
		}
		n := newNavigator(s)

		err := n.SelectSeason(context.Background(), "24/25")

		require.Error(t, err)
		assert.Equal(t, matchcrawl.EUNAVAILABLE, matchcrawl.ErrorCode(err))
	})

	t.Run("fails when the season option is missing", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "23/24", hasDropdowns: false}
		n := newNavigator(page.session())

		err := n.SelectSeason(context.Background(), "24/25")

		require.Error(t, err)
		assert.Equal(t, matchcrawl.ENOTFOUND, matchcrawl.ErrorCode(err))
	})

	t.Run("a canceled context performs no interaction", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{season: "23/24", hasDropdowns: true}
		n := newNavigator(page.session())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := n.SelectSeason(ctx, "24/25")

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, page.seasonClicks)
	})
}

func TestNavigator_GoToRound(t *testing.T) {
	t.Parallel()

	t.Run("no interaction when already at the target round", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{round: 7, hasDropdowns: true}
		n := newNavigator(page.session())

		require.NoError(t, n.GoToRound(context.Background(), 7))
		require.NoError(t, n.GoToRound(context.Background(), 7))

		assert.Equal(t, 0, page.arrowClicks)
		_, round, atRound := n.State()
		assert.Equal(t, 7, round)
		assert.True(t, atRound)
	})

	t.Run("selects the round via the dropdown when available", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{round: 1, hasDropdowns: true}
		n := newNavigator(page.session())

		err := n.GoToRound(context.Background(), 15)

		require.NoError(t, err)
		assert.Equal(t, 15, page.round)
		assert.Equal(t, 0, page.arrowClicks)
	})

	t.Run("steps backward with the previous arrow when the dropdown is missing", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{round: 5, hasDropdowns: false}
		n := newNavigator(page.session())

		err := n.GoToRound(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, 2, page.round)
		assert.Equal(t, 3, page.arrowClicks)

		// A repeat call finds the page already at the round.
		require.NoError(t, n.GoToRound(context.Background(), 2))
		assert.Equal(t, 3, page.arrowClicks)
	})

	t.Run("steps forward with the next arrow", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{round: 2, hasDropdowns: false}
		n := newNavigator(page.session())

		err := n.GoToRound(context.Background(), 4)

		require.NoError(t, err)
		assert.Equal(t, 4, page.round)
		assert.Equal(t, 2, page.arrowClicks)
	})

	t.Run("fails when an arrow goes missing mid-sequence", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{round: 1, hasDropdowns: false}
		s := page.session()
		inner := s.FindFn
		s.FindFn = func(strategy matchcrawl.Strategy) (matchcrawl.Element, error) {
			if strings.HasSuffix(strategy.Expr, ":last-child") && page.arrowClicks >= 2 {
				return nil, matchcrawl.Errorf(matchcrawl.ENOTFOUND, "arrow gone")
			}
			return inner(strategy)
		}
		n := newNavigator(s)

		err := n.GoToRound(context.Background(), 6)

		require.Error(t, err)
		assert.Equal(t, matchcrawl.EUNAVAILABLE, matchcrawl.ErrorCode(err))
		assert.Contains(t, matchcrawl.ErrorMessage(err), "dropdown", "both failure paths should be surfaced")
	})

	t.Run("a canceled context performs no UI interaction", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{round: 1, hasDropdowns: false}
		n := newNavigator(page.session())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := n.GoToRound(ctx, 5)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, page.arrowClicks)
	})

	t.Run("cancellation during dropdown selection skips the arrow fallback", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		page := &tournamentPage{round: 1, hasDropdowns: true}
		s := page.session()
		inner := s.FindFn
		s.FindFn = func(strategy matchcrawl.Strategy) (matchcrawl.Element, error) {
			// The option click lands just as the run is canceled.
			if strings.Contains(strategy.Expr, "listbox") {
				return clickable(func() { cancel() }), nil
			}
			return inner(strategy)
		}
		n := newNavigator(s)

		err := n.GoToRound(ctx, 5)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, page.arrowClicks)
	})

	t.Run("cancellation mid-step stops further clicks", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		page := &tournamentPage{round: 1, hasDropdowns: false}
		s := page.session()
		inner := s.FindFn
		s.FindFn = func(strategy matchcrawl.Strategy) (matchcrawl.Element, error) {
			if strings.HasSuffix(strategy.Expr, ":last-child") {
				return clickable(func() { page.arrowClicks++; cancel() }), nil
			}
			return inner(strategy)
		}
		n := newNavigator(s)

		err := n.GoToRound(ctx, 4)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, page.arrowClicks)
	})
}

func TestNavigator_CurrentRound(t *testing.T) {
	t.Parallel()

	t.Run("reads the round number from the label", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{round: 12, hasDropdowns: true}
		n := newNavigator(page.session())

		assert.Equal(t, 12, n.CurrentRound())
	})

	t.Run("unparseable label reads as round zero", func(t *testing.T) {
		t.Parallel()

		page := &tournamentPage{roundLabel: "All rounds", hasDropdowns: true}
		n := newNavigator(page.session())

		assert.Equal(t, 0, n.CurrentRound())
	})
}

func TestParseRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label  string
		want   int
		wantOK bool
	}{
		{"Round 1", 1, true},
		{"Round 38", 38, true},
		{"Matchday Round 7 of 38", 7, true},
		{"All rounds", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()
			got, ok := crawl.ParseRound(tt.label)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
