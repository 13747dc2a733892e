// Package model holds the entities shared between the ingestion pipeline
// and the storage layer.
package model

import "time"

// Article is the persisted news record.
type Article struct {
	ID          int64
	Title       string
	URL         string // normalized, unique across the store
	SourceKey   string
	SourceTitle string
	Summary     string
	Snippet     string
	ImageURL    string
	PublishedAt *time.Time
	CreatedAt   time.Time
	DedupKey    string
}

// Candidate is the transient per-entry record built during ingestion,
// before the duplicate/persist decision.
type Candidate struct {
	Title       string
	URL         string // normalized
	RawURL      string
	Snippet     string
	ImageURL    string
	PublishedAt *time.Time
	DedupKey    string
}

// RecentText is the title+snippet pair used by near-duplicate comparison.
type RecentText struct {
	Title   string
	Snippet string
}
