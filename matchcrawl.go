// Package matchcrawl crawls a dynamically rendered football-statistics site
// and extracts structured match records into a durable, deduplicating store.
// It steers a shared browser page to a requested season and round, discovers
// the matches of that round, and scrapes each match in an isolated browsing
// context so a mid-extraction failure never corrupts the shared navigation
// state.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, sqlite/, fs/).
package matchcrawl
