// README: Entry point; loads config, wires the generator and optional geocoding/event log, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"wanderplan/internal/ai"
	"wanderplan/internal/config"
	httptransport "wanderplan/internal/http"
	"wanderplan/internal/infra"
	"wanderplan/internal/maps"
	"wanderplan/internal/modules/genlog"
	"wanderplan/internal/modules/itinerary"
	"wanderplan/internal/observability"
	"wanderplan/internal/platform/logger"
)

const shutdownGrace = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet; fall back to a development logger.
		boot, _ := logger.New("development")
		if boot == nil {
			boot = logger.Nop()
		}
		boot.Fatal("config load failed", "error", err)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel := observability.InitOTel(ctx, log, cfg.Otel)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = shutdownOTel(sctx)
	}()

	style, err := itinerary.ParseStyle(cfg.AI.PromptStyle)
	if err != nil {
		log.Fatal("invalid prompt style", "error", err)
	}

	generator, closeGenerator, err := newGenerator(ctx, cfg, log)
	if err != nil {
		log.Fatal("gemini init failed", "error", err)
	}
	defer closeGenerator()

	deps := itinerary.ServiceDeps{Generator: generator, Logger: log}

	if cfg.DB.DSN != "" {
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal("postgres init failed", "error", err)
		}
		defer db.Close()
		deps.Recorder = genlog.NewStore(db)
		log.Info("generation log enabled")
	}

	if cfg.Maps.APIKey != "" {
		var cache maps.GeoCache
		if cfg.Redis.Addr != "" {
			rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
			if err != nil {
				log.Fatal("redis init failed", "error", err)
			}
			defer rdb.Close()
			cache = maps.NewRedisGeoCache(rdb)
		}
		geocoder, err := maps.NewGeocodeService(cfg.Maps.APIKey, cache, cfg.Maps.CacheTTL)
		if err != nil {
			log.Fatal("geocoder init failed", "error", err)
		}
		deps.Resolver = geocoder
		log.Info("geocoding enabled", "cached", cache != nil)
	}

	svc := itinerary.NewService(deps, itinerary.Options{
		Style:   style,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	})

	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Itinerary:    svc,
		Logger:       log,
		AllowOrigins: cfg.HTTP.AllowOrigins,
		ServiceName:  cfg.Otel.ServiceName,
		Tracing:      cfg.Otel.Enabled,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout(cfg.AI.Timeout),
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", server.Addr, "model", cfg.AI.Model, "transport", cfg.AI.Transport, "prompt_style", style)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("http server failed", "error", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	}
}

// newGenerator picks the upstream implementation named by GEMINI_TRANSPORT.
func newGenerator(ctx context.Context, cfg config.Config, log *logger.Logger) (ai.TextGenerator, func(), error) {
	gcfg := ai.GeminiConfig{APIKey: cfg.AI.GeminiKey, Model: cfg.AI.Model, BaseURL: cfg.AI.BaseURL}
	if cfg.AI.Transport == config.TransportSDK {
		p, err := ai.NewGeminiProvider(ctx, gcfg, log)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	}
	c, err := ai.NewGeminiClient(gcfg, &http.Client{}, log)
	if err != nil {
		return nil, nil, err
	}
	return c, func() {}, nil
}

// writeTimeout leaves room for the upstream call plus response rendering.
func writeTimeout(upstream time.Duration) time.Duration {
	if upstream <= 0 {
		return 0
	}
	return upstream + 10*time.Second
}
