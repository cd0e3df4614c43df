package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Market-intel-core-v1/server/internal/ambassador"
	"github.com/Market-intel-core-v1/server/internal/api"
	"github.com/Market-intel-core-v1/server/internal/breaker"
	"github.com/Market-intel-core-v1/server/internal/core"
	"github.com/Market-intel-core-v1/server/internal/llm"
	"github.com/Market-intel-core-v1/server/internal/market/analysis"
	"github.com/Market-intel-core-v1/server/internal/market/demand"
	"github.com/Market-intel-core-v1/server/internal/market/model"
	"github.com/Market-intel-core-v1/server/internal/market/pricing"
	"github.com/Market-intel-core-v1/server/internal/market/repo"
	"github.com/Market-intel-core-v1/server/internal/market/vision"
	"github.com/Market-intel-core-v1/server/internal/moderation"
	logx "github.com/Market-intel-core-v1/server/pkg/logger"
	"github.com/Market-intel-core-v1/server/pkg/randx"
	pkgredis "github.com/Market-intel-core-v1/server/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"
)

// AppConfig defines all configurable parameters of the server, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	HTTP  api.HTTPConfig
	Redis pkgredis.Config
	Store model.StoreConfig

	// External collaborators
	Gemini     model.GeminiConfig
	Search     model.SearchConfig
	Breaker    model.BreakerConfig
	Ambassador model.AmbassadorConfig
}

func loadConfig() (AppConfig, error) {
	var cfg AppConfig
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		// .env is optional; the environment may already be populated
		logx.Warn().Err(err).Msg("Could not load .env file")
	}

	cfg, err := loadConfig()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis successfully")

	handler, err := buildHandler(ctx, cfg, rdb)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build handler")
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logx.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logx.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// buildHandler wires every component. Collaborators without credentials are
// left unset so their callers take the documented fallback.
func buildHandler(ctx context.Context, cfg AppConfig, rdb redis.UniversalClient) (http.Handler, error) {
	rnd := randx.NewLocked(nil)

	var (
		analyzer   vision.Analyzer
		classifier moderation.Classifier
		matchOpts  []ambassador.MatcherOption
	)
	if cfg.Gemini.Enabled() {
		client, err := llm.NewClient(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		analyzer, classifier, matchOpts, err = geminiComponents(ctx, cfg, client)
		if err != nil {
			return nil, err
		}
	} else {
		logx.Warn().Msg("GEMINI_API_KEY not set; vision, moderation and embeddings use fallbacks")
	}

	var searcher pricing.Searcher
	if cfg.Search.Enabled() {
		cs, err := pricing.NewCustomSearch(ctx, cfg.Search)
		if err != nil {
			return nil, err
		}
		searcher = cs
	} else {
		logx.Warn().Msg("Search credentials not set; competitor prices are synthetic")
	}

	discovery := pricing.NewDiscovery(searcher,
		pricing.WithCache(pricing.NewRedisQuoteCache(rdb, cfg.Search.CacheTTL)),
		pricing.WithBreaker(breaker.New[[]model.SearchResult]("search", cfg.Search.Timeout, cfg.Breaker)),
		pricing.WithRand(rnd),
	)

	analysisSvc := analysis.NewService(
		vision.NewIdentifier(analyzer),
		discovery,
		demand.NewScorer(demand.WithRand(rnd)),
		analysis.WithRepository(repo.NewRedisDemandRepository(rdb, cfg.Store.DemandTTL, cfg.Store.HistoryLimit)),
	)

	matcher := ambassador.NewMatcher(ambassador.NewScraper(cfg.Ambassador), cfg.Ambassador, matchOpts...)

	h := api.NewHandler(
		analysisSvc,
		moderation.NewScorer(classifier, rnd),
		matcher,
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		cfg.HTTP,
	)
	return api.NewRouter(h, cfg.HTTP), nil
}

func geminiComponents(ctx context.Context, cfg AppConfig, client *genai.Client) (vision.Analyzer, moderation.Classifier, []ambassador.MatcherOption, error) {
	analyzer := vision.NewGeminiAnalyzer(client.Models, cfg.Gemini.VisionModel,
		breaker.New[model.VisualMatch]("vision", cfg.Gemini.Timeout, cfg.Breaker))

	cm, err := llm.NewChatModel(ctx, client, cfg.Gemini.ModerationModel, cfg.Gemini)
	if err != nil {
		return nil, nil, nil, err
	}
	classifier, err := moderation.NewChainClassifier(ctx, cm,
		breaker.New[map[string]float64]("classifier", cfg.Gemini.Timeout, cfg.Breaker))
	if err != nil {
		return nil, nil, nil, err
	}

	embedder := ambassador.NewGeminiEmbedder(client.Models, cfg.Gemini.EmbeddingModel,
		breaker.New[[][]float64]("embeddings", cfg.Gemini.Timeout, cfg.Breaker))

	return analyzer, classifier, []ambassador.MatcherOption{ambassador.WithEmbedder(embedder)}, nil
}
