// Package slog provides logging decorators for matchcrawl interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/matchcrawl"
)

// Ensure LoggingStore implements matchcrawl.MatchStore.
var _ matchcrawl.MatchStore = (*LoggingStore)(nil)

// LoggingStore wraps a MatchStore with logging of load and append
// operations.
type LoggingStore struct {
	next   matchcrawl.MatchStore
	logger *slog.Logger
}

// NewLoggingStore creates a new LoggingStore.
func NewLoggingStore(next matchcrawl.MatchStore, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger}
}

// Load logs the number of loaded records and delegates.
func (s *LoggingStore) Load(ctx context.Context) (records []*matchcrawl.MatchRecord, err error) {
	defer func(begin time.Time) {
		s.logger.Info("store load",
			"records", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Load(ctx)
}

// Contains delegates to the wrapped store.
func (s *LoggingStore) Contains(id string) bool {
	return s.next.Contains(id)
}

// Append logs the appended match ID and delegates.
func (s *LoggingStore) Append(ctx context.Context, record *matchcrawl.MatchRecord) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("store append",
			"match_id", record.MatchID,
			"matchday", record.Matchday,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Append(ctx, record)
}

// Len delegates to the wrapped store.
func (s *LoggingStore) Len() int {
	return s.next.Len()
}
