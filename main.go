package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/zenese/server/internal/core"
	"github.com/zenese/server/internal/travel/chat"
	"github.com/zenese/server/internal/travel/model"
	"github.com/zenese/server/internal/travel/parser"
	"github.com/zenese/server/internal/travel/refresh"
	"github.com/zenese/server/internal/travel/search"
	"github.com/zenese/server/internal/travel/trips"
	logx "github.com/zenese/server/pkg/logger"
	"github.com/zenese/server/pkg/metrics"
	pkgredis "github.com/zenese/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider (only required for the gemini parser strategy)
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Travel configs
	Parser     model.ParserConfig
	QueryModel model.QueryModelConfig
	Search     model.SearchConfig
	Refresh    model.RefreshConfig
	Metrics    model.MetricsConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.Options{Environment: core.ParseEnvironment(cfg.Environment)})

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	m := metrics.NewMetrics(cfg.Metrics.Namespace)
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.Metrics.Addr, nil); err != nil {
			logx.Error().Err(err).Msg("metrics listener stopped")
		}
	}()

	store := trips.NewStore(trips.NewRedisBlobStore(rdb))

	searcher, err := buildSearcher(cfg, rdb, m)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build flight searcher")
	}

	qp, err := buildParser(ctx, cfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build query parser")
	}

	controller := chat.NewController(qp, searcher, store)
	orchestrator := refresh.NewOrchestrator(store, searcher, m)

	interval, err := time.ParseDuration(cfg.Refresh.Interval)
	if err != nil {
		logx.Fatal().Err(err).Str("interval", cfg.Refresh.Interval).Msg("Invalid REFRESH_INTERVAL")
	}
	go runRefreshLoop(ctx, orchestrator, interval)

	runChatLoop(ctx, controller)
}

func buildSearcher(cfg AppConfig, rdb redis.Cmdable, m *metrics.Metrics) (search.Searcher, error) {
	specs, err := search.ParseProviders(cfg.Search.Providers)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Search.TimeoutSeconds) * time.Second
	providers := make([]search.Provider, 0, len(specs))
	for _, spec := range specs {
		providers = append(providers, search.Provider{
			Name:         spec.Name,
			Priority:     spec.Priority,
			MonthlyQuota: spec.MonthlyQuota,
			Searcher:     search.NewProviderClient(cfg.Search.BaseURL, spec.Name, timeout),
		})
	}

	return search.NewRouter(providers, search.NewRedisQuotaCounter(rdb), m), nil
}

func buildParser(ctx context.Context, cfg AppConfig) (parser.QueryParser, error) {
	switch cfg.Parser.Strategy {
	case "gemini":
		return parser.NewGemini(ctx, parser.GeminiConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.QueryModel,
		})
	default:
		return parser.NewRule(), nil
	}
}

// runRefreshLoop is the external periodic trigger for the orchestrator.
func runRefreshLoop(ctx context.Context, o *refresh.Orchestrator, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logx.Info().Msg("refresh loop stopped")
			return
		case <-ticker.C:
			if err := o.RefreshAll(ctx); err != nil {
				if err == refresh.ErrRefreshInFlight {
					logx.Debug().Msg("skipping refresh tick, previous run still in flight")
					continue
				}
				logx.Error().Err(err).Msg("price refresh failed")
			}
		}
	}
}

// runChatLoop drives one conversation over stdin.
func runChatLoop(ctx context.Context, c *chat.Controller) {
	for _, msg := range c.Messages() {
		fmt.Println(msg.Text)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}
		if reply := c.HandleTurn(ctx, scanner.Text()); reply != "" {
			fmt.Println(reply)
		}
	}
}
