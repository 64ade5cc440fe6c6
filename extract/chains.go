package extract

import "github.com/fwojciec/matchcrawl"

// Table maps each logical field to its fallback chain. The table is plain
// data: new layout variants are added here without touching extraction
// logic. Chains are owned by the pipeline configuration and read-only at
// run time.
type Table struct {
	DateTimeContainer matchcrawl.Chain
	TeamImages        matchcrawl.Chain
	InfoBlocks        matchcrawl.Chain
	VenueNameFallback matchcrawl.Chain
	Odds              matchcrawl.Chain
	VotingBlock       matchcrawl.Chain
	StatRows          matchcrawl.Chain
	FirstHalfTab      matchcrawl.Chain
	SecondHalfTab     matchcrawl.Chain
	CommentaryEntries matchcrawl.Chain

	// Sub-selectors applied within an already-located stat row. The site
	// rotates hashed class suffixes between deployments, hence the list
	// of name variants.
	StatNameSelectors []string
	StatHomeSelector  string
	StatAwaySelector  string

	// Sub-selectors applied within a located voting block.
	VotePercentSelector string

	// Sub-selectors applied within a commentary entry.
	MinuteSelectors []string
	TextSelectors   []string
}

// DefaultTable returns the chains for the current site layout.
func DefaultTable() Table {
	return Table{
		DateTimeContainer: matchcrawl.Chain{
			Field: "date_time",
			Strategies: []matchcrawl.Strategy{
				{Kind: matchcrawl.StrategyCSS, Expr: "div.d_flex.ai_center.gap_sm.px_lg.py_sm"},
				{Kind: matchcrawl.StrategyPattern, Expr: "div[class*='gap_sm'][class*='px_lg']"},
			},
		},
		TeamImages: matchcrawl.Chain{
			Field: "teams",
			Strategies: []matchcrawl.Strategy{
				{Kind: matchcrawl.StrategyCSS, Expr: "img.Img.jmRURX[alt]", Attr: "alt"},
				{Kind: matchcrawl.StrategyPattern, Expr: "img[class*='Img'][alt]", Attr: "alt"},
			},
		},
		InfoBlocks: matchcrawl.Chain{
			Field: "info_blocks",
			Strategies: []matchcrawl.Strategy{
				{Kind: matchcrawl.StrategyPattern, Expr: "div[class*='bg_surface'][class*='elevation_2']"},
				{Kind: matchcrawl.StrategyPattern, Expr: "div[class*='bg_surface']"},
			},
		},
		VenueNameFallback: matchcrawl.Chain{
			Field: "venue_name",
			Strategies: []matchcrawl.Strategy{
				{Kind: matchcrawl.StrategyText, Expr: "span", Match: "Stadium|Arena|Ground"},
			},
		},
		Odds: matchcrawl.Chain{
			Field: "odds",
			Strategies: []matchcrawl.Strategy{
				{Kind: matchcrawl.StrategyCSS, Expr: `span.textStyle_display\.micro`},
				{Kind: matchcrawl.StrategyPattern, Expr: "span[class*='textStyle_display']"},
			},
		},
		VotingBlock: matchcrawl.Chain{
			Field: "crowd_voting",
			Strategies: []matchcrawl.Strategy{
				{Kind: matchcrawl.StrategyText, Expr: "div[class*='bg_surface']", Match: "Who will win\\?"},
			},
		},
		StatRows: matchcrawl.Chain{
			Field: "stat_rows",
			Strategies: []matchcrawl.Strategy{
				{Kind: matchcrawl.StrategyCSS, Expr: "div.Box.Flex.heNsMA.bnpRyo"},
				{Kind: matchcrawl.StrategyPattern, Expr: "div[class*='heNsMA']"},
			},
		},
		FirstHalfTab: matchcrawl.Chain{
			Field: "first_half_tab",
			Strategies: []matchcrawl.Strategy{
				{Kind: matchcrawl.StrategyCSS, Expr: "div[data-tabid='2']"},
			},
		},
		SecondHalfTab: matchcrawl.Chain{
			Field: "second_half_tab",
			Strategies: []matchcrawl.Strategy{
				{Kind: matchcrawl.StrategyCSS, Expr: "div[data-tabid='3']"},
			},
		},
		CommentaryEntries: matchcrawl.Chain{
			Field: "commentary",
			Strategies: []matchcrawl.Strategy{
				{Kind: matchcrawl.StrategyCSS, Expr: "div.fPSBzf.bYPztT"},
				{Kind: matchcrawl.StrategyPattern, Expr: "div[class*='commentary-entry']"},
				{Kind: matchcrawl.StrategyPattern, Expr: "div[class*='match-event']"},
			},
		},

		StatNameSelectors: []string{"span.Text.lluFbU", "span.Text.eSKwCR", "span.Text.llXWMP"},
		StatHomeSelector:  "bdi.Box.iQnHnj span.Text",
		StatAwaySelector:  "bdi.Box.fdyVPU span.Text",

		VotePercentSelector: "div.Text",

		MinuteSelectors: []string{"span.textStyle_assistive.default", "span[class*='minute']"},
		TextSelectors:   []string{"span.textStyle_body.small", "span[class*='body']"},
	}
}
