package matchcrawl

import (
	"context"
	"time"
)

// MatchRecord is one scraped match. MatchID is globally unique within a
// store; the presence of an ID prevents re-scraping even when some fields
// resolved to the "not found" sentinel.
type MatchRecord struct {
	MatchID     string      `json:"match_id"`
	Matchday    int         `json:"matchday"`
	SourceURL   string      `json:"source_url"`
	Fingerprint string      `json:"fingerprint,omitempty"`
	ScrapedAt   time.Time   `json:"scraped_at"`
	DateTime    DateTime    `json:"date_time_info"`
	Teams       Teams       `json:"teams"`
	Venue       Venue       `json:"venue"`
	Referee     Referee     `json:"referee"`
	Odds        Odds        `json:"odds"`
	CrowdVoting CrowdVoting `json:"crowd_voting"`
	Statistics  Statistics  `json:"statistics"`
	Commentary  []Event     `json:"commentary,omitempty"`
}

// Validate returns an error if the record contains invalid fields.
func (r *MatchRecord) Validate() error {
	if r.MatchID == "" {
		return Errorf(EINVALID, "match ID required")
	}
	if r.SourceURL == "" {
		return Errorf(EINVALID, "match source URL required")
	}
	return nil
}

// DateTime holds the kickoff date and time as displayed.
type DateTime struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Combined string `json:"date_time"`
}

// Teams holds the home and away team names.
type Teams struct {
	Home string `json:"home_team"`
	Away string `json:"away_team"`
}

// Venue holds the stadium name and its location.
type Venue struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Referee holds the referee's name, season card averages and the attendance
// figure displayed alongside them.
type Referee struct {
	Name           string `json:"name"`
	AvgRedCards    string `json:"avg_red_cards"`
	AvgYellowCards string `json:"avg_yellow_cards"`
	Attendance     string `json:"attendance"`
}

// Odds holds pre-match odds for the 1/X/2 outcomes.
type Odds struct {
	Home string `json:"1"`
	Draw string `json:"X"`
	Away string `json:"2"`
}

// CrowdVoting holds the "Who will win?" poll percentages and vote count.
type CrowdVoting struct {
	HomePct    string `json:"home"`
	DrawPct    string `json:"draw"`
	AwayPct    string `json:"away"`
	TotalVotes string `json:"total_votes"`
}

// StatRow is one statistics line (e.g. "Ball possession 61% 39%").
type StatRow struct {
	Name      string `json:"name"`
	HomeValue string `json:"home_value"`
	AwayValue string `json:"away_value"`
}

// Statistics groups the three statistics views of a match page.
type Statistics struct {
	Overall    []StatRow `json:"overall"`
	FirstHalf  []StatRow `json:"first_half"`
	SecondHalf []StatRow `json:"second_half"`
}

// EventType classifies a commentary entry by keyword.
type EventType string

// Commentary event types.
const (
	EventGoal         EventType = "goal"
	EventSubstitution EventType = "substitution"
	EventYellowCard   EventType = "yellow_card"
	EventRedCard      EventType = "red_card"
	EventCorner       EventType = "corner"
	EventFoul         EventType = "foul"
	EventOffside      EventType = "offside"
	EventPenalty      EventType = "penalty"
	EventAttempt      EventType = "attempt"
	EventFreeKick     EventType = "free_kick"
	EventKickOff      EventType = "kick_off"
	EventHalfTime     EventType = "half_time"
	EventFullTime     EventType = "full_time"
	EventVAR          EventType = "var"
	EventInjury       EventType = "injury"
	EventOther        EventType = "other"
)

// Event is one best-effort classified commentary entry.
type Event struct {
	Minute string    `json:"time"`
	Text   string    `json:"text"`
	Type   EventType `json:"type"`
}

// MatchStore persists match records and answers membership queries across
// runs. Append persists the full snapshot before returning, so a crash
// after Append loses at most the in-flight record.
type MatchStore interface {
	// Load reads all previously persisted records. A missing backing
	// store yields an empty result, never an error.
	Load(ctx context.Context) ([]*MatchRecord, error)

	// Contains reports whether a record with the given match ID exists.
	Contains(id string) bool

	// Append stores a new record and persists it durably.
	// Returns ECONFLICT if a record with the same match ID exists.
	Append(ctx context.Context, record *MatchRecord) error

	// Len returns the number of stored records.
	Len() int
}
