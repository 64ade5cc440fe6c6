package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fwojciec/matchcrawl"
)

// Compile-time interface verification.
var _ matchcrawl.MatchStore = (*Store)(nil)

// Store implements matchcrawl.MatchStore using SQLite. Records are stored
// as JSON payloads keyed by match ID; each Append is a durable insert, so
// unlike the snapshot store there is no full rewrite.
type Store struct {
	db  *DB
	ids map[string]struct{}
	n   int
}

// NewStore creates a new Store on an opened DB.
// Call Load before use.
func NewStore(db *DB) *Store {
	return &Store{
		db:  db,
		ids: make(map[string]struct{}),
	}
}

// Load reads all previously persisted records in insertion order and
// rebuilds the ID set for membership tests.
func (s *Store) Load(ctx context.Context) ([]*matchcrawl.MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload
		FROM matches
		ORDER BY position
	`)
	if err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EINTERNAL, "loading matches: %v", err)
	}
	defer rows.Close()

	var records []*matchcrawl.MatchRecord
	s.ids = make(map[string]struct{})
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, matchcrawl.Errorf(matchcrawl.EINTERNAL, "scanning match row: %v", err)
		}
		var rec matchcrawl.MatchRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, matchcrawl.Errorf(matchcrawl.EINTERNAL, "decoding match payload: %v", err)
		}
		records = append(records, &rec)
		s.ids[rec.MatchID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EINTERNAL, "loading matches: %v", err)
	}

	s.n = len(records)
	return records, nil
}

// Contains reports whether a record with the given match ID exists.
func (s *Store) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Append durably stores a new record.
// Returns ECONFLICT if a record with the same match ID exists.
func (s *Store) Append(ctx context.Context, record *matchcrawl.MatchRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if s.Contains(record.MatchID) {
		return matchcrawl.Errorf(matchcrawl.ECONFLICT, "match %s already stored", record.MatchID)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return matchcrawl.Errorf(matchcrawl.EINTERNAL, "encoding match %s: %v", record.MatchID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matches (match_id, matchday, source_url, fingerprint, scraped_at, payload, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.MatchID, record.Matchday, record.SourceURL, record.Fingerprint,
		record.ScrapedAt.Format(time.RFC3339), string(payload), s.n)
	if err != nil {
		return matchcrawl.Errorf(matchcrawl.EINTERNAL, "inserting match %s: %v", record.MatchID, err)
	}

	s.ids[record.MatchID] = struct{}{}
	s.n++
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return s.n
}
