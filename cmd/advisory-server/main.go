// Command advisory-server runs the conversational agricultural advisory
// service: one HTTP endpoint taking farmer queries in English, Hindi or
// Hinglish and answering from weather, market, scheme, soil and pest
// data sources.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/aggregator"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/alerts"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/cache"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/aws"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/config"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/database"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/logger"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/observability"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/compose"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/nlp/extract"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/nlp/intent"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/nlp/lexicon"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/nlp/normalize"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/providers"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/ratelimit"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/server"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/session"
)

const workerPoolSize = 64

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting advisory server", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// Redis backs the three shared stores: sessions, the provider
	// cache and the admission counters.
	redisClient, err := connectRedis(cfg, log)
	if err != nil {
		log.WithError(err).Error("redis unavailable", nil)
		os.Exit(1)
	}
	defer redisClient.Close()

	pgClient, err := connectPostgres(cfg, log)
	if err != nil {
		log.WithError(err).Error("postgres unavailable", nil)
		os.Exit(1)
	}
	defer pgClient.Close()

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		log.WithError(err).Error("elasticsearch client init failed", nil)
		os.Exit(1)
	}

	pool, err := ants.NewPool(workerPoolSize)
	if err != nil {
		log.WithError(err).Error("worker pool init failed", nil)
		os.Exit(1)
	}
	defer pool.Release()

	registry := providers.NewRegistry(
		providers.NewWeatherAdapter(cfg.Providers.Weather),
		providers.NewMarketAdapter(pgClient.GetDB(), cfg.Providers.Market),
		providers.NewSchemeAdapter(esClient.Client, cfg.Database.Elasticsearch.Index, cfg.Providers.Scheme),
		providers.NewSoilAdapter(cfg.Providers.Soil),
		providers.NewPestAdapter(cfg.Providers.Pest),
	)

	var cacheStore cache.Store
	if cfg.Cache.Store == "memory" {
		cacheStore = cache.NewMemoryStore(cfg.Cache.MaxEntries, cfg.Cache.StaleFactor)
	} else {
		cacheStore = cache.NewRedisStore(redisClient.GetClient(), cfg.Cache.StaleFactor)
	}
	loader := cache.NewLoader(cacheStore, log)

	appCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	var sessionStore session.Store
	if cfg.Session.Store == "memory" {
		memStore := session.NewMemoryStore(cfg.Session.TTLDuration())
		go memStore.RunSweeper(appCtx, cfg.Session.SweepInterval(), log)
		sessionStore = memStore
	} else {
		sessionStore = session.NewRedisStore(redisClient.GetClient(), cfg.Session.TTLDuration())
	}
	sessions := session.NewManager(sessionStore)

	limiter := ratelimit.New(redisClient.GetClient(), cfg.RateLimit, log)

	notifier := buildNotifier(cfg, log)

	handler := server.NewQueryHandler(
		cfg,
		log,
		normalize.New(cfg.NLP.HindiScriptMin),
		extract.New(lexicon.NewMatcher(cfg.NLP.FuzzyThreshold)),
		intent.New(cfg.NLP.IntentThreshold),
		sessions,
		aggregator.New(registry, loader, pool, log),
		compose.New(),
		limiter,
		notifier,
	)

	checks := map[string]server.HealthCheck{
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx) },
		"postgres": func(ctx context.Context) error { return pgClient.Ping(ctx) },
		"elasticsearch": func(context.Context) error {
			return esClient.Ping()
		},
	}

	srv := server.New(cfg, log, handler, checks, obs)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server failed", nil)
			os.Exit(1)
		}
	case sig := <-stop:
		log.Info("shutting down", map[string]interface{}{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown incomplete", nil)
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}

// connectRedis retries with backoff: redis restarts faster than this
// service and must not take it down.
func connectRedis(cfg *config.Config, log logger.Logger) (*database.RedisClient, error) {
	return retryWithBackoff(log, "redis", func() (*database.RedisClient, error) {
		client, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	})
}

func connectPostgres(cfg *config.Config, log logger.Logger) (*database.PostgresClient, error) {
	return retryWithBackoff(log, "postgres", func() (*database.PostgresClient, error) {
		return database.NewPostgres(cfg.Database.Postgres)
	})
}

func retryWithBackoff[T any](log logger.Logger, name string, connect func() (T, error)) (T, error) {
	var zero T
	backoff := time.Second
	for attempt := 1; ; attempt++ {
		v, err := connect()
		if err == nil {
			return v, nil
		}
		if attempt >= 5 {
			return zero, err
		}
		log.WithError(err).Warn("connection failed, retrying", map[string]interface{}{
			"dependency": name,
			"attempt":    attempt,
			"backoff":    backoff.String(),
		})
		time.Sleep(backoff)
		backoff *= 2
	}
}

// buildNotifier wires the severe weather alerting when enabled. AWS
// client failures only disable alerting, never the service.
func buildNotifier(cfg *config.Config, log logger.Logger) *alerts.Notifier {
	if !cfg.Alerts.Enabled {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snsClient, err := aws.NewSNSClient(ctx, cfg.Alerts.Region)
	if err != nil {
		log.WithError(err).Warn("sns init failed, alerting disabled", nil)
		return nil
	}
	sesClient, err := aws.NewSESClient(ctx, cfg.Alerts.Region)
	if err != nil {
		log.WithError(err).Warn("ses init failed, alerting disabled", nil)
		return nil
	}
	return alerts.NewNotifier(cfg.Alerts, snsClient, sesClient, log)
}
