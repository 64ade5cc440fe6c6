// Package fs implements the match store as a JSON array snapshot on disk.
// The snapshot is rewritten wholesale after every appended record: write
// efficiency is traded for simplicity and crash consistency. A crash after
// a successful write loses at most the in-flight record and never corrupts
// prior ones, because the write goes to a temporary file that replaces the
// snapshot atomically.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/matchcrawl"
)

// Ensure Store implements matchcrawl.MatchStore at compile time.
var _ matchcrawl.MatchStore = (*Store)(nil)

// Store is a JSON snapshot MatchStore.
type Store struct {
	path    string
	records []*matchcrawl.MatchRecord
	ids     map[string]struct{}
}

// NewStore creates a Store backed by the file at path.
// Call Load before use.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		ids:  make(map[string]struct{}),
	}
}

// Load reads the snapshot. A missing file yields an empty store, never an
// error; any other read or decode failure is surfaced.
func (s *Store) Load(ctx context.Context) ([]*matchcrawl.MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s.records, nil
	}
	if err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EINTERNAL, "reading store %s: %v", s.path, err)
	}

	var records []*matchcrawl.MatchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, matchcrawl.Errorf(matchcrawl.EINTERNAL, "decoding store %s: %v", s.path, err)
	}

	s.records = records
	s.ids = make(map[string]struct{}, len(records))
	for _, r := range records {
		s.ids[r.MatchID] = struct{}{}
	}
	return s.records, nil
}

// Contains reports whether a record with the given match ID exists.
func (s *Store) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Append stores a new record and rewrites the full snapshot.
// Returns ECONFLICT if a record with the same match ID exists.
func (s *Store) Append(ctx context.Context, record *matchcrawl.MatchRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Contains(record.MatchID) {
		return matchcrawl.Errorf(matchcrawl.ECONFLICT, "match %s already stored", record.MatchID)
	}

	s.records = append(s.records, record)
	if err := s.persist(); err != nil {
		// Roll back the in-memory append so a later retry can succeed.
		s.records = s.records[:len(s.records)-1]
		return err
	}
	s.ids[record.MatchID] = struct{}{}
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return len(s.records)
}

// persist rewrites the snapshot via a temporary file and an atomic rename.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return matchcrawl.Errorf(matchcrawl.EINTERNAL, "encoding store: %v", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return matchcrawl.Errorf(matchcrawl.EINTERNAL, "creating store directory %s: %v", dir, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return matchcrawl.Errorf(matchcrawl.EINTERNAL, "writing store snapshot: %v", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return matchcrawl.Errorf(matchcrawl.EINTERNAL, "replacing store snapshot: %v", err)
	}
	return nil
}
