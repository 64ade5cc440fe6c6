package main

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	"github.com/fwojciec/matchcrawl"
	"github.com/fwojciec/matchcrawl/crawl"
	"github.com/fwojciec/matchcrawl/extract"
	"github.com/fwojciec/matchcrawl/fs"
	"github.com/fwojciec/matchcrawl/rod"
	"github.com/fwojciec/matchcrawl/sqlite"
	mcslog "github.com/fwojciec/matchcrawl/slog"
)

var seasonPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	if err := c.validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(deps.Stderr, &slog.HandlerOptions{Level: level}))

	store, closeStore, err := c.openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := store.Load(deps.Ctx); err != nil {
		return fmt.Errorf("loading store: %w", err)
	}

	manager, err := rod.NewBrowserManager(rod.WithHeadless(c.Headless))
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	defer manager.Close()

	base, err := rod.NewSession(manager)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	session := rod.NewLoggingSession(base, logger)
	defer session.Close()

	pipeline := extract.NewPipeline()
	pipeline.Logger = logger

	crawler := &crawl.Crawler{
		Session:   session,
		Navigator: &crawl.Navigator{Session: session, Waits: crawl.DefaultWaits(), Logger: logger},
		Extractor: pipeline,
		Store:     store,
		Throttle:  crawl.NewThrottle(c.Rate, time.Second, 3*time.Second),
		Logger:    logger,
		BaseURL:   c.URL,
	}

	result, err := crawler.Run(deps.Ctx, c.Season, c.Start, c.End)
	if result != nil {
		fmt.Fprintf(deps.Stdout, "saved %d, skipped %d, failed %d, total stored %d\n",
			result.Saved, result.Skipped, result.Failed, store.Len())
		for _, id := range result.FailedIDs {
			fmt.Fprintf(deps.Stdout, "failed: %s\n", id)
		}
	}
	return err
}

// validate checks the flag combination before any resource is opened.
func (c *CrawlCmd) validate() error {
	if !seasonPattern.MatchString(c.Season) {
		return matchcrawl.Errorf(matchcrawl.EINVALID, "season %q must use YY/YY format, e.g. 24/25", c.Season)
	}
	if c.Start < 1 {
		return matchcrawl.Errorf(matchcrawl.EINVALID, "start matchday must be at least 1, got %d", c.Start)
	}
	if c.End < c.Start {
		return matchcrawl.Errorf(matchcrawl.EINVALID, "end matchday %d is before start matchday %d", c.End, c.Start)
	}
	if c.Rate <= 0 {
		return matchcrawl.Errorf(matchcrawl.EINVALID, "rate must be positive, got %g", c.Rate)
	}
	return nil
}

// openStore builds the match store from flags: the SQLite archive when --db
// is set, the JSON snapshot otherwise. Both are wrapped in the logging
// decorator.
func (c *CrawlCmd) openStore(logger *slog.Logger) (matchcrawl.MatchStore, func(), error) {
	if c.DB != "" {
		db := sqlite.NewDB(c.DB)
		if err := db.Open(); err != nil {
			return nil, nil, fmt.Errorf("opening database %s: %w", c.DB, err)
		}
		return mcslog.NewLoggingStore(sqlite.NewStore(db), logger), func() { db.Close() }, nil
	}

	if _, err := os.Stat(c.Store); err != nil && !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("checking store %s: %w", c.Store, err)
	}
	return mcslog.NewLoggingStore(fs.NewStore(c.Store), logger), func() {}, nil
}
