// Package storage persists articles in PostgreSQL. The unique index on url
// is the backstop against duplicate inserts racing past the dedup engine.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"newsbrief/internal/logger"
	"newsbrief/internal/model"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("article store connected")
	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(512) NOT NULL,
		url VARCHAR(1024) UNIQUE NOT NULL,
		source_key VARCHAR(128) NOT NULL,
		source_title VARCHAR(256) NOT NULL,
		summary TEXT,
		snippet TEXT,
		image_url VARCHAR(1024),
		published_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		dedup_key VARCHAR(64)
	);

	CREATE INDEX IF NOT EXISTS idx_articles_dedup_key ON articles(dedup_key);
	CREATE INDEX IF NOT EXISTS idx_articles_source_time ON articles(source_key, published_at DESC);

	-- Full-text index over title/summary/snippet for the query layer
	CREATE INDEX IF NOT EXISTS idx_articles_fts ON articles USING GIN (
		to_tsvector('simple', title || ' ' || coalesce(summary, '') || ' ' || coalesce(snippet, ''))
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Lightweight migration for tables created before the image field existed.
	if _, err := s.db.Exec(`ALTER TABLE articles ADD COLUMN IF NOT EXISTS image_url VARCHAR(1024)`); err != nil {
		return fmt.Errorf("failed to add image_url column: %w", err)
	}

	return nil
}

// FindExisting returns the article matching the normalized URL or the dedup
// key, or nil when there is none.
func (s *PostgresStore) FindExisting(ctx context.Context, url, dedupKey string) (*model.Article, error) {
	query := selectArticle + ` WHERE url = $1 OR dedup_key = $2 LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, url, dedupKey)
	art, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query existing article: %w", err)
	}
	return art, nil
}

// Recent returns title+snippet of the newest articles, newest first. This
// is the comparison pool for near-duplicate detection.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]model.RecentText, error) {
	if limit <= 0 {
		limit = 300
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, COALESCE(snippet, '') FROM articles ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent articles: %w", err)
	}
	defer rows.Close()

	var items []model.RecentText
	for rows.Next() {
		var r model.RecentText
		if err := rows.Scan(&r.Title, &r.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan recent article: %w", err)
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// Insert stores one article and returns its id. Each insert commits on its
// own, so one failing entry cannot poison the rest of a source's batch.
func (s *PostgresStore) Insert(ctx context.Context, a *model.Article) (int64, error) {
	query := `
		INSERT INTO articles (title, url, source_key, source_title, summary, snippet, image_url, published_at, dedup_key)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, NULLIF($9, ''))
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		a.Title, a.URL, a.SourceKey, a.SourceTitle, a.Summary, a.Snippet, a.ImageURL, a.PublishedAt, a.DedupKey,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert article: %w", err)
	}
	return id, nil
}

// RecentArticles returns full article records, newest first.
func (s *PostgresStore) RecentArticles(ctx context.Context, limit int) ([]model.Article, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, selectArticle+` ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()
	return collectArticles(rows)
}

// Search runs a full-text query over title/summary/snippet. Ranking is
// left to the caller's query layer.
func (s *PostgresStore) Search(ctx context.Context, q string, limit int) ([]model.Article, error) {
	if limit <= 0 {
		limit = 50
	}

	query := selectArticle + `
		WHERE to_tsvector('simple', title || ' ' || coalesce(summary, '') || ' ' || coalesce(snippet, ''))
			@@ plainto_tsquery('simple', $1)
		ORDER BY id DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}
	defer rows.Close()
	return collectArticles(rows)
}

// CountArticles reports the stored article total, used by health checks.
func (s *PostgresStore) CountArticles(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const selectArticle = `
	SELECT id, title, url, source_key, source_title,
	       COALESCE(summary, ''), COALESCE(snippet, ''), COALESCE(image_url, ''),
	       published_at, created_at, COALESCE(dedup_key, '')
	FROM articles`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*model.Article, error) {
	var a model.Article
	var published sql.NullTime
	err := row.Scan(
		&a.ID, &a.Title, &a.URL, &a.SourceKey, &a.SourceTitle,
		&a.Summary, &a.Snippet, &a.ImageURL,
		&published, &a.CreatedAt, &a.DedupKey,
	)
	if err != nil {
		return nil, err
	}
	if published.Valid {
		t := published.Time.UTC()
		a.PublishedAt = &t
	}
	return &a, nil
}

func collectArticles(rows *sql.Rows) ([]model.Article, error) {
	var items []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}
