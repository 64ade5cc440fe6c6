package matchcrawl

// NotFound is the sentinel value a field resolves to when every strategy in
// its chain is exhausted. It is a valid result, not an error: one missing
// field never aborts extraction of the others.
const NotFound = "N/A"

// StrategyKind discriminates the ways a strategy locates an element.
type StrategyKind int

// Strategy kinds.
const (
	// StrategyCSS matches a single element by exact CSS selector.
	StrategyCSS StrategyKind = iota

	// StrategyPattern matches by CSS attribute pattern
	// (e.g. div[class*='bg_surface']), tolerant of hashed class suffixes.
	StrategyPattern

	// StrategyText matches the first element whose selector matches Expr
	// and whose visible text matches the Match regular expression.
	StrategyText
)

// String returns the kind's name for logging.
func (k StrategyKind) String() string {
	switch k {
	case StrategyCSS:
		return "css"
	case StrategyPattern:
		return "pattern"
	case StrategyText:
		return "text"
	}
	return "unknown"
}

// Strategy is a single, immutable way to find an element. Chains declare
// strategies statically per field; the rendered page varies by locale, A/B
// layout and load timing, so redundant strategies raise the probability
// that at least one matches.
type Strategy struct {
	Kind StrategyKind

	// Expr is the locating expression (a CSS selector).
	Expr string

	// Match is the text pattern for StrategyText strategies.
	Match string

	// Attr, when set, reads the named attribute instead of the element text.
	Attr string
}

// Chain is an ordered list of strategies for one logical field, tried
// strictly in declaration order.
type Chain struct {
	Field      string
	Strategies []Strategy
}

// FieldResult is the outcome of resolving a chain. It always holds a
// concrete value: either the content produced by the winning strategy or
// the NotFound sentinel.
type FieldResult struct {
	// Value is the post-trim extracted content, or NotFound.
	Value string

	// Strategy is the index of the winning strategy, -1 when none matched.
	Strategy int

	// Found reports whether any strategy produced usable content.
	Found bool
}

// Missing is the FieldResult for an exhausted chain.
func Missing() FieldResult {
	return FieldResult{Value: NotFound, Strategy: -1}
}

// Found constructs a successful FieldResult for strategy index i.
func Found(value string, i int) FieldResult {
	return FieldResult{Value: value, Strategy: i, Found: true}
}
