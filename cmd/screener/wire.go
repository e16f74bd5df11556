package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"StockScreener/internal/analyzer"
	"StockScreener/internal/cache"
	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
	"StockScreener/internal/pipeline"
	"StockScreener/internal/recorder"
	"StockScreener/internal/refiner"
)

// app holds the wired components of one process.
type app struct {
	runner   *pipeline.Runner
	analyzer *analyzer.Analyzer
	fetcher  collector.Fetcher
	telegram *notifier.TelegramNotifier
	notifier notifier.Notifier
	recorder recorder.Recorder
	metrics  *metrics.Recorder
	cache    cache.Cache
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{analyzer: analyzer.New(), metrics: metrics.New()}

	raw, screener := buildSource(cfg)
	a.fetcher = raw
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
		if err != nil {
			log.Warn().Err(err).Msg("redis cache unavailable, using memory cache")
			a.cache = cache.NewMemoryCache()
		} else {
			a.cache = rc
		}
	case "memory":
		a.cache = cache.NewMemoryCache()
	}
	if a.cache != nil {
		a.fetcher = collector.NewCachedFetcher(raw, a.cache, cfg.Cache.TTL)
	}
	log.Info().Str("fetcher", raw.Name()).Str("cache", cfg.Cache.Backend).Msg("data source ready")

	ref, err := refiner.New(ctx, refiner.Config{
		Provider:          cfg.AI.Provider,
		APIKey:            cfg.AIKey(),
		Model:             cfg.AI.Model,
		BaseURL:           cfg.AI.BaseURL,
		MaxTokens:         cfg.AI.MaxTokens,
		Temperature:       cfg.AI.Temperature,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
		Timeout:           cfg.AI.Timeout,
	})
	if err != nil {
		return nil, err
	}

	var notifiers notifier.Multi
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		a.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		notifiers = append(notifiers, a.telegram)
	}
	if cfg.Slack.WebhookURL != "" {
		notifiers = append(notifiers, notifier.NewSlackNotifier(cfg.Slack.WebhookURL, cfg.Proxy))
	}
	if cfg.Notify.DryRun || len(notifiers) == 0 {
		notifiers = append(notifiers, notifier.LogNotifier{})
	}

	a.notifier = notifiers
	a.recorder = buildRecorder(cfg)

	a.runner = pipeline.NewRunner(
		collector.NewCollector(a.fetcher, screener),
		a.analyzer,
		ref,
		notifiers,
		a.recorder,
		a.metrics,
		pipeline.Options{
			Condition:    cfg.Screening.Condition,
			MaxStocks:    cfg.Screening.MaxStocks,
			HistoryDays:  cfg.Screening.HistoryDays,
			Workers:      cfg.Screening.Workers,
			Fundamentals: cfg.Screening.Fundamentals,
			Indices:      cfg.Screening.Indices,
		},
	)
	return a, nil
}

// buildSource picks the fetcher and the screener. A configured watchlist
// always wins over the broker condition search.
func buildSource(cfg *config.Config) (collector.Fetcher, collector.Screener) {
	var (
		fetcher  collector.Fetcher
		screener collector.Screener
	)
	provider := cfg.DataSource.Provider
	if provider == "auto" {
		provider = "yahoo"
		if cfg.DataSource.BaseURL != "" {
			provider = "broker"
		}
	}
	switch provider {
	case "broker":
		bf := collector.NewBrokerFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.RequestsPerSecond)
		fetcher, screener = bf, bf
	case "mock":
		mf := &collector.MockFetcher{}
		fetcher, screener = mf, mf
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
		screener = &collector.StaticScreener{Stocks: collector.MockStocks}
	}

	if len(cfg.Screening.Watchlist) > 0 {
		stocks := make([]model.Stock, len(cfg.Screening.Watchlist))
		for i, code := range cfg.Screening.Watchlist {
			stocks[i] = model.Stock{Code: code}
		}
		screener = &collector.StaticScreener{Stocks: stocks}
	}
	return fetcher, screener
}

func buildRecorder(cfg *config.Config) recorder.Recorder {
	var recs recorder.MultiRecorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, skipping")
		} else {
			recs = append(recs, sr)
		}
	}
	if cfg.Database.ExportDir != "" {
		je, err := recorder.NewJSONExporter(cfg.Database.ExportDir)
		if err != nil {
			log.Warn().Err(err).Msg("init json exporter failed, skipping")
		} else {
			recs = append(recs, je)
		}
	}
	switch len(recs) {
	case 0:
		return recorder.NewNoopRecorder()
	case 1:
		return recs[0]
	}
	return recs
}

func (a *app) Close() error {
	var errs []error
	errs = append(errs, a.recorder.Close())
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	return errors.Join(errs...)
}
