package crawl

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/matchcrawl"
)

// matchLinkSelector matches the anchor elements of the round's match list.
// The class carries a hashed suffix, so only the stable prefix is matched.
const matchLinkSelector = "a[class*='event-hl-']"

// matchIDPattern extracts the match ID from a URL fragment like "#id:12345".
var matchIDPattern = regexp.MustCompile(`#id:(\d+)`)

// MatchLink is one discovered match of the current round.
type MatchLink struct {
	URL     string
	MatchID string
}

// DiscoverMatches extracts the match links of the round currently displayed
// by the scope. Relative references are resolved against origin. Links are
// returned in page order; duplicates within one round are not filtered, the
// caller deduplicates against the persisted ID set.
func DiscoverMatches(scope matchcrawl.Scope, origin string) ([]MatchLink, error) {
	html, err := scope.HTML()
	if err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EUNAVAILABLE, "round view not readable: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EINTERNAL, "round view not parseable: %v", err)
	}

	var links []MatchLink
	doc.Find(matchLinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, "/football/match/") {
			return
		}
		links = append(links, MatchLink{
			URL:     absoluteURL(href, origin),
			MatchID: ExtractMatchID(href),
		})
	})

	return links, nil
}

// absoluteURL prefixes the origin when the reference is relative.
func absoluteURL(href, origin string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimSuffix(origin, "/") + href
}

// ExtractMatchID derives the match ID from a match URL: the "#id:N"
// fragment when present, otherwise the last non-empty path segment.
func ExtractMatchID(href string) string {
	if m := matchIDPattern.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	trimmed := strings.TrimRight(href, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx != -1 {
		return trimmed[idx+1:]
	}
	return trimmed
}
