// Package dedup decides whether a candidate article duplicates something
// already stored: an exact check on normalized URL / dedup key, then a
// fuzzy token-set comparison against the most recent articles.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"newsbrief/internal/model"
)

const (
	// DefaultThreshold is the token-set similarity (0-100) at or above
	// which two articles count as near-duplicates.
	DefaultThreshold = 88
	// DefaultRecentLimit bounds the near-duplicate scan to the newest
	// stored articles so per-entry cost stays flat as the corpus grows.
	DefaultRecentLimit = 300
)

// Store is the slice of the persistence layer the engine needs.
type Store interface {
	// FindExisting returns a stored article matching the normalized URL or
	// the dedup key, or nil when none exists.
	FindExisting(ctx context.Context, url, dedupKey string) (*model.Article, error)
	// Recent returns title+snippet pairs of the newest articles, newest first.
	Recent(ctx context.Context, limit int) ([]model.RecentText, error)
}

type Engine struct {
	store       Store
	threshold   int
	recentLimit int
}

func NewEngine(store Store, threshold, recentLimit int) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Engine{store: store, threshold: threshold, recentLimit: recentLimit}
}

// MakeDedupKey builds the fixed-length exact-duplicate fingerprint for a
// title + normalized URL pair.
func MakeDedupKey(title, url string) string {
	sum := sha256.Sum256([]byte(title + "|" + url))
	return hex.EncodeToString(sum[:])[:32]
}

// IsDuplicate reports whether the candidate duplicates a stored article.
// The exact stage short-circuits; the fuzzy stage only runs when it misses.
func (e *Engine) IsDuplicate(ctx context.Context, cand *model.Candidate) (bool, error) {
	existing, err := e.store.FindExisting(ctx, cand.URL, cand.DedupKey)
	if err != nil {
		return false, fmt.Errorf("failed to check existing article: %w", err)
	}
	if existing != nil {
		return true, nil
	}

	base := strings.TrimSpace(cand.Title)
	if cand.Snippet != "" {
		base = strings.TrimSpace(base + " " + cand.Snippet)
	}
	// Empty text never matches, otherwise empty-snippet articles would all
	// collapse into one.
	if base == "" {
		return false, nil
	}

	recent, err := e.store.Recent(ctx, e.recentLimit)
	if err != nil {
		return false, fmt.Errorf("failed to load recent articles: %w", err)
	}
	for _, r := range recent {
		other := r.Title
		if r.Snippet != "" {
			other = other + " " + r.Snippet
		}
		if other == "" {
			continue
		}
		if fuzzy.TokenSetRatio(base, other) >= e.threshold {
			return true, nil
		}
	}
	return false, nil
}
