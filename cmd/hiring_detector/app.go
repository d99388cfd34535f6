package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gravity-outreach/hiring-detector/internal/analyze"
	"github.com/gravity-outreach/hiring-detector/internal/config"
	"github.com/gravity-outreach/hiring-detector/internal/detector"
	"github.com/gravity-outreach/hiring-detector/internal/fetch"
	"github.com/gravity-outreach/hiring-detector/internal/llm"
	"github.com/gravity-outreach/hiring-detector/internal/locate"
	"github.com/gravity-outreach/hiring-detector/internal/platform"
	"github.com/gravity-outreach/hiring-detector/internal/ratelimit"
	"github.com/gravity-outreach/hiring-detector/internal/search"
	"github.com/gravity-outreach/hiring-detector/internal/store"
)

// app bundles the wired pipeline and its teardown.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	checker *detector.Checker
	store   *store.Store

	llmClient llm.Client
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildApp wires the full pipeline from configuration. Missing
// credentials disable the layer they power; warnings are logged here.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}

	var llmClient llm.Client
	if cfg.GeminiAPIKey != "" {
		limiter := ratelimit.New(cfg.RateRPM)
		llmClient, err = llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey, limiter)
		if err != nil {
			return nil, fmt.Errorf("failed to build LLM client: %w", err)
		}
	}
	extractor := analyze.NewExtractor(llmClient, logger)

	searcher, err := search.NewClient(ctx, cfg.GoogleSearchKey, cfg.GoogleSearchCX, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build search client: %w", err)
	}
	locator := locate.New(searcher, logger)

	var renderer fetch.Renderer
	if cfg.UseBrowser {
		renderer = fetch.NewChromeRenderer(int64(cfg.Concurrency), logger)
	}
	fetcher := fetch.New(renderer, logger)

	var resultStore *store.Store
	if cfg.DatabaseURL != "" {
		resultStore, err = store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := resultStore.EnsureSchema(ctx); err != nil {
			resultStore.Close()
			return nil, err
		}
	}

	checker := detector.NewChecker(platform.NewRegistry(logger), locator, fetcher, extractor, logger)
	return &app{
		cfg:       cfg,
		logger:    logger,
		checker:   checker,
		store:     resultStore,
		llmClient: llmClient,
	}, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.llmClient != nil {
		_ = a.llmClient.Close()
	}
	_ = a.logger.Sync()
}
