package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/matchcrawl"
)

var (
	percentPattern    = regexp.MustCompile(`(\d+)%`)
	totalVotesPattern = regexp.MustCompile(`(?i)Total votes[:\s]*([\d.,]+)\s*([kM]?)`)
	avgCardsPattern   = regexp.MustCompile(`(?is)Avg\.\s*cards\D*?(\d+\.?\d*)\D+?(\d+\.?\d*)`)
	decimalPattern    = regexp.MustCompile(`\d+\.\d+`)
	minutePattern     = regexp.MustCompile(`(\d{1,3}(?:\+\d+)?)'`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
		regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{4}`),
		regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`),
		regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{4}`),
		regexp.MustCompile(`\d{1,2} [A-Za-z]{3,}\.? \d{4}`),
	}
	timePattern = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// ParsePercentage extracts a percentage value from text like "83%".
func ParsePercentage(text string) (int, bool) {
	m := percentPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseTotalVotes extracts the vote count from text like "Total votes: 121k"
// or "Total votes: 2.3M", applying the k/M suffix multipliers.
func ParseTotalVotes(text string) (int64, bool) {
	m := totalVotesPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	number, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(m[2]) {
	case "k":
		number *= 1_000
	case "m":
		number *= 1_000_000
	}
	return int64(number), true
}

// ParseAvgCards extracts the red and yellow card averages from text like
// "Avg. cards 1.5 2.3". When the labeled pattern does not match, the first
// two decimal numbers in the text are used instead.
func ParseAvgCards(text string) (red, yellow float64, ok bool) {
	if m := avgCardsPattern.FindStringSubmatch(text); m != nil {
		red, errR := strconv.ParseFloat(m[1], 64)
		yellow, errY := strconv.ParseFloat(m[2], 64)
		if errR == nil && errY == nil {
			return red, yellow, true
		}
	}

	numbers := decimalPattern.FindAllString(text, 2)
	if len(numbers) < 2 {
		return 0, 0, false
	}
	red, errR := strconv.ParseFloat(numbers[0], 64)
	yellow, errY := strconv.ParseFloat(numbers[1], 64)
	if errR != nil || errY != nil {
		return 0, 0, false
	}
	return red, yellow, true
}

// ParseDateTimeText scans free page text for the first recognizable date
// and time. It is the last-resort fallback when the header widget is not
// rendered.
func ParseDateTimeText(text string) (matchcrawl.DateTime, bool) {
	var date string
	for _, p := range datePatterns {
		if m := p.FindString(text); m != "" {
			date = m
			break
		}
	}
	if date == "" {
		return matchcrawl.DateTime{}, false
	}

	clock := timePattern.FindString(text)
	dt := matchcrawl.DateTime{Date: date, Time: clock, Combined: strings.TrimSpace(date + " " + clock)}
	if clock == "" {
		dt.Time = matchcrawl.NotFound
		dt.Combined = date
	}
	return dt, true
}

// ParseMinute extracts a commentary timestamp like "45+2'" from entry text.
func ParseMinute(text string) (string, bool) {
	m := minutePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1] + "'", true
}

// keyword classification table, checked in order: the first matching
// keyword decides the event type.
var eventKeywords = []struct {
	keywords []string
	typ      matchcrawl.EventType
}{
	{[]string{"goal"}, matchcrawl.EventGoal},
	{[]string{"substitution", "subbed", "substituted"}, matchcrawl.EventSubstitution},
	{[]string{"yellow card", "booked"}, matchcrawl.EventYellowCard},
	{[]string{"red card", "sent off"}, matchcrawl.EventRedCard},
	{[]string{"corner"}, matchcrawl.EventCorner},
	{[]string{"foul"}, matchcrawl.EventFoul},
	{[]string{"offside"}, matchcrawl.EventOffside},
	{[]string{"penalty"}, matchcrawl.EventPenalty},
	{[]string{"attempt", "shot"}, matchcrawl.EventAttempt},
	{[]string{"free kick"}, matchcrawl.EventFreeKick},
	{[]string{"kick-off", "kick off"}, matchcrawl.EventKickOff},
	{[]string{"half time", "half-time"}, matchcrawl.EventHalfTime},
	{[]string{"full time", "full-time"}, matchcrawl.EventFullTime},
	{[]string{"var"}, matchcrawl.EventVAR},
	{[]string{"injury"}, matchcrawl.EventInjury},
}

// ClassifyEvent classifies commentary text into an event type by keyword.
// This is best effort; unrecognized text classifies as EventOther.
func ClassifyEvent(text string) matchcrawl.EventType {
	lowered := strings.ToLower(text)
	for _, e := range eventKeywords {
		for _, kw := range e.keywords {
			if strings.Contains(lowered, kw) {
				return e.typ
			}
		}
	}
	return matchcrawl.EventOther
}
