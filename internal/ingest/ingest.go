// Package ingest drives the pipeline: per source it fetches the feed and
// runs every entry through extraction, dedup and summarization before
// persisting it. Sources and entries are processed sequentially so the
// per-run page cache and the recent-duplicate window stay consistent.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsbrief/internal/cache"
	"newsbrief/internal/config"
	"newsbrief/internal/dedup"
	"newsbrief/internal/extract"
	"newsbrief/internal/logger"
	"newsbrief/internal/metrics"
	"newsbrief/internal/model"
	"newsbrief/internal/retry"
	"newsbrief/internal/summarize"
	"newsbrief/internal/urlnorm"
)

const (
	DefaultLimitPerSource = 20

	userFeedKeyPrefix = "user_rss_"
	userFeedTitle     = "Пользовательский RSS"
	untitledFallback  = "(без заголовка)"
)

// Store is the persistence boundary the orchestrator writes through.
type Store interface {
	dedup.Store
	Insert(ctx context.Context, a *model.Article) (int64, error)
}

// FeedSource fetches and parses one feed URL; malformed feeds yield zero items.
type FeedSource interface {
	Fetch(ctx context.Context, url string) []*gofeed.Item
}

// PageFetcher retrieves a single article page body.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Options select and bound the work of one run.
type Options struct {
	// SelectedKeys restricts predefined sources; user-supplied extra feeds
	// are always processed.
	SelectedKeys   []string
	LimitPerSource int
	ExtraFeeds     []string
}

type Config struct {
	Sources          []config.Source
	DedupThreshold   int
	DedupRecentLimit int
	MaxSentences     int
	RetryAttempts    int
	RetryDelay       time.Duration
}

type Ingester struct {
	store        Store
	feeds        FeedSource
	fetcher      PageFetcher
	engine       *dedup.Engine
	sources      []config.Source
	maxSentences int
	retryCfg     retry.RetryConfig
}

func New(store Store, feeds FeedSource, fetcher PageFetcher, cfg Config) *Ingester {
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	maxSentences := cfg.MaxSentences
	if maxSentences <= 0 {
		maxSentences = summarize.DefaultMaxSentences
	}

	return &Ingester{
		store:        store,
		feeds:        feeds,
		fetcher:      fetcher,
		engine:       dedup.NewEngine(store, cfg.DedupThreshold, cfg.DedupRecentLimit),
		sources:      cfg.Sources,
		maxSentences: maxSentences,
		retryCfg:     retry.RetryConfig{MaxAttempts: attempts, Delay: delay, Backoff: true},
	}
}

// Run processes every source once and returns per-source counts of newly
// added articles. Failures degrade to zero counts; Run itself never fails.
func (ing *Ingester) Run(ctx context.Context, opts Options) map[string]int {
	start := time.Now()
	defer func() {
		metrics.Global.RecordRunDuration(time.Since(start))
		metrics.Global.SetLastRun()
	}()

	stats := make(map[string]int)
	pages := cache.New()

	selected := make(map[string]bool, len(opts.SelectedKeys))
	for _, k := range opts.SelectedKeys {
		if k != "" {
			selected[k] = true
		}
	}

	limit := opts.LimitPerSource
	if limit <= 0 {
		limit = DefaultLimitPerSource
	}

	sources := make([]config.Source, 0, len(ing.sources)+len(opts.ExtraFeeds))
	sources = append(sources, ing.sources...)
	for i, u := range opts.ExtraFeeds {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		sources = append(sources, config.Source{
			Key:     fmt.Sprintf("%s%d", userFeedKeyPrefix, i),
			Title:   userFeedTitle,
			Type:    "rss",
			URL:     u,
			Enabled: true,
		})
	}

	for _, src := range sources {
		userExtra := strings.HasPrefix(src.Key, userFeedKeyPrefix)
		// The selection filter applies to predefined sources only.
		if len(selected) > 0 && !selected[src.Key] && !userExtra {
			continue
		}
		if src.Type != "rss" || src.URL == "" {
			continue
		}
		if !src.Enabled && !userExtra {
			continue
		}

		items := ing.feeds.Fetch(ctx, src.URL)
		added := 0
		for i, item := range items {
			if i >= limit {
				break
			}
			if ing.processEntry(ctx, src, item, pages) {
				added++
			}
		}
		stats[src.Key] = added
		logger.Info("source processed", "source", src.Key, "added", added)
	}

	return stats
}

// processEntry runs one feed entry through the pipeline. It reports whether
// an article was persisted; every failure mode degrades to false.
func (ing *Ingester) processEntry(ctx context.Context, src config.Source, item *gofeed.Item, pages *cache.Cache) bool {
	metrics.Global.IncrementEntriesProcessed()

	title := strings.TrimSpace(item.Title)
	rawLink := strings.TrimSpace(item.Link)
	if rawLink == "" {
		logger.Debug("entry without link skipped", "source", src.Key, "title", title)
		return false
	}
	link := urlnorm.Normalize(rawLink)

	var published *time.Time
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		published = &t
	}

	snippet := strings.TrimSpace(item.Description)
	if snippet == "" {
		snippet = strings.TrimSpace(item.Content)
	}
	if snippet != "" {
		snippet = extract.FirstParagraph(snippet)
	}
	imageURL := extract.ImageFromEntry(item)

	if snippet == "" {
		body := ing.fetchPage(ctx, link, pages)
		if body != "" {
			snippet = extract.FirstParagraph(body)
			if imageURL == "" {
				imageURL = extract.ImageFromHTML(body)
			}
		}
	}

	cand := &model.Candidate{
		Title:       title,
		URL:         link,
		RawURL:      rawLink,
		Snippet:     snippet,
		ImageURL:    imageURL,
		PublishedAt: published,
		DedupKey:    dedup.MakeDedupKey(title, link),
	}

	dup, err := ing.engine.IsDuplicate(ctx, cand)
	if err != nil {
		metrics.Global.SetError(err.Error())
		logger.Error("duplicate check failed", "url", link, "error", err)
		return false
	}
	if dup {
		metrics.Global.IncrementDuplicatesFiltered()
		logger.Debug("duplicate skipped", "source", src.Key, "title", title)
		return false
	}

	text := cand.Snippet
	if text == "" {
		text = title
	}
	summary := summarize.Summarize(text, ing.maxSentences)

	if title == "" {
		title = untitledFallback
	}
	art := &model.Article{
		Title:       title,
		URL:         link,
		SourceKey:   src.Key,
		SourceTitle: src.Title,
		Summary:     summary,
		Snippet:     cand.Snippet,
		ImageURL:    cand.ImageURL,
		PublishedAt: published,
		DedupKey:    cand.DedupKey,
	}
	if _, err := ing.store.Insert(ctx, art); err != nil {
		// Entry-level isolation: log and move on, the unique url index
		// backstops insert races.
		metrics.Global.SetError(err.Error())
		logger.Error("failed to insert article", "url", link, "error", err)
		return false
	}

	metrics.Global.IncrementArticlesAdded()
	logger.Debug("article added", "source", src.Key, "title", title)
	return true
}

// fetchPage retrieves a page body through the per-run cache, retrying with
// doubling backoff. Exhaustion yields an empty body, never an error.
func (ing *Ingester) fetchPage(ctx context.Context, url string, pages *cache.Cache) string {
	if url == "" {
		return ""
	}
	if body, ok := pages.Get(url); ok {
		return body
	}

	var body string
	err := retry.WithRetry(ctx, ing.retryCfg, func() error {
		b, err := ing.fetcher.FetchPage(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		metrics.Global.IncrementFetchFailures()
		logger.Warn("page fetch failed, proceeding without content", "url", url, "error", err)
		return ""
	}

	metrics.Global.IncrementPagesFetched()
	pages.Set(url, body)
	return body
}
