// Package extract builds match records from rendered match pages. Each
// logical field is declared as an ordered fallback chain of locator
// strategies; resolution tries them in order and degrades to an explicit
// "not found" sentinel instead of failing, so one missing field never
// aborts extraction of the others.
package extract

import (
	"strings"

	"github.com/fwojciec/matchcrawl"
)

// Resolve tries the chain's strategies strictly in declaration order and
// returns the content of the first strategy yielding a non-empty post-trim
// string, together with the winning strategy's index. Exhausting the chain
// yields the sentinel result; this is a successful outcome, not an error.
func Resolve(scope matchcrawl.Scope, chain matchcrawl.Chain) matchcrawl.FieldResult {
	for i, s := range chain.Strategies {
		el, err := scope.Find(s)
		if err != nil {
			continue
		}
		value, err := content(el, s)
		if err != nil {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		return matchcrawl.Found(value, i)
	}
	return matchcrawl.Missing()
}

// ResolveAll resolves a multi-element field: the first strategy matching at
// least one element wins. Returns the elements and the winning strategy
// index, or (nil, -1) when the chain is exhausted.
func ResolveAll(scope matchcrawl.Scope, chain matchcrawl.Chain) ([]matchcrawl.Element, int) {
	for i, s := range chain.Strategies {
		els, err := scope.FindAll(s)
		if err != nil || len(els) == 0 {
			continue
		}
		return els, i
	}
	return nil, -1
}

// content reads the strategy's target: the named attribute when declared,
// the visible text otherwise.
func content(el matchcrawl.Element, s matchcrawl.Strategy) (string, error) {
	if s.Attr != "" {
		return el.Attr(s.Attr)
	}
	return el.Text()
}

// labelValue scans the block's spans for one whose text equals label and
// returns the text of the span that follows it. This mirrors the page's
// "label above value" markup without depending on its hashed class names.
func labelValue(block matchcrawl.Element, label string) (string, bool) {
	spans, err := block.Elements("span")
	if err != nil {
		return "", false
	}
	for i, span := range spans {
		text, err := span.Text()
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != label || i+1 >= len(spans) {
			continue
		}
		value, err := spans[i+1].Text()
		if err != nil {
			continue
		}
		value = strings.TrimSpace(value)
		if value != "" {
			return value, true
		}
	}
	return "", false
}
