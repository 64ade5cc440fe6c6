package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/matchcrawl"
)

// Ensure LoggingSession implements matchcrawl.Session.
var _ matchcrawl.Session = (*LoggingSession)(nil)

// LoggingSession wraps a Session with debug logging of page-level
// operations. Element lookups are too frequent to log individually and
// delegate silently.
type LoggingSession struct {
	next   matchcrawl.Session
	logger *slog.Logger
}

// NewLoggingSession creates a new LoggingSession.
func NewLoggingSession(next matchcrawl.Session, logger *slog.Logger) *LoggingSession {
	return &LoggingSession{next: next, logger: logger}
}

// Navigate logs the URL being visited and delegates.
func (s *LoggingSession) Navigate(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("navigate",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Navigate(ctx, url)
}

// WithPage logs the isolated page's lifetime and delegates.
func (s *LoggingSession) WithPage(ctx context.Context, url string, fn func(matchcrawl.Scope) error) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("isolated page",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.WithPage(ctx, url, fn)
}

// Find delegates to the wrapped session.
func (s *LoggingSession) Find(strategy matchcrawl.Strategy) (matchcrawl.Element, error) {
	return s.next.Find(strategy)
}

// FindAll delegates to the wrapped session.
func (s *LoggingSession) FindAll(strategy matchcrawl.Strategy) ([]matchcrawl.Element, error) {
	return s.next.FindAll(strategy)
}

// HTML delegates to the wrapped session.
func (s *LoggingSession) HTML() (string, error) {
	return s.next.HTML()
}

// Close delegates to the wrapped session.
func (s *LoggingSession) Close() error {
	return s.next.Close()
}
