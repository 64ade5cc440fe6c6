package main

import (
	"context"
	"io"
)

// Dependencies holds shared context and writers for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Crawl CrawlCmd `cmd:"" help:"Crawl a season's matchdays into the store"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Season   string  `default:"24/25" help:"Season selector in YY/YY format"`
	Start    int     `default:"1" help:"First matchday, inclusive"`
	End      int     `default:"38" help:"Last matchday, inclusive"`
	Headless bool    `default:"true" negatable:"" help:"Run the browser headless"`
	Store    string  `default:"matches.json" help:"JSON snapshot path"`
	DB       string  `help:"SQLite archive path, used instead of the JSON snapshot"`
	Rate     float64 `default:"0.5" help:"Maximum page requests per second"`
	URL      string  `help:"Tournament page URL override"`
	Verbose  bool    `short:"v" help:"Enable debug logging"`
}
