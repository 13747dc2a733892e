package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"newsbrief/internal/config"
	"newsbrief/internal/feed"
	"newsbrief/internal/ingest"
	"newsbrief/internal/logger"
	"newsbrief/internal/metrics"
	"newsbrief/internal/storage"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sources, err := config.LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		logger.Warn("failed to load sources config, using defaults", "path", cfg.SourcesConfigPath, "error", err)
		sources = config.DefaultSources()
	}

	store, err := storage.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open article store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer(store)
	}

	ing := ingest.New(store, feed.NewParser(), ingest.NewHTTPFetcher(cfg.RequestTimeout), ingest.Config{
		Sources:          sources,
		DedupThreshold:   cfg.DedupThreshold,
		DedupRecentLimit: cfg.DedupRecentLimit,
		MaxSentences:     cfg.SummaryMaxSentences,
		RetryAttempts:    cfg.RetryAttempts,
		RetryDelay:       cfg.RetryDelay,
	})

	opts := ingest.Options{
		SelectedKeys:   splitCSV(os.Getenv("SELECTED_SOURCES")),
		LimitPerSource: cfg.LimitPerSource,
		ExtraFeeds:     splitCSV(os.Getenv("EXTRA_FEEDS")),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce(ctx, ing, opts)

	if cfg.RefreshMinutes <= 0 {
		return
	}

	ticker := time.NewTicker(time.Duration(cfg.RefreshMinutes) * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-ticker.C:
			runOnce(ctx, ing, opts)
		}
	}
}

func runOnce(ctx context.Context, ing *ingest.Ingester, opts ingest.Options) {
	stats := ing.Run(ctx, opts)
	total := 0
	for _, n := range stats {
		total += n
	}
	logger.Info("ingestion run finished", "sources", len(stats), "added", total)
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func startMonitoringServer(store *storage.PostgresStore) {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		healthHandler(w, r, store)
	})
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request, store *storage.PostgresStore) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	count, err := store.CountArticles(r.Context())
	if err != nil {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"articles":   count,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
