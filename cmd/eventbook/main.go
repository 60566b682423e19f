package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/eventbook/pkg/api"
	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/config"
	"github.com/platinummonkey/eventbook/pkg/observability"
	"github.com/platinummonkey/eventbook/pkg/session"
	"github.com/platinummonkey/eventbook/pkg/sso"
	"github.com/platinummonkey/eventbook/pkg/storage"
	"github.com/platinummonkey/eventbook/pkg/storage/cache"
	"github.com/platinummonkey/eventbook/pkg/storage/memory"
	"github.com/platinummonkey/eventbook/pkg/storage/sqlstore"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "", "Path to a YAML config file (overrides EVENTBOOK_CONFIG_FILE)")
	flag.Parse()

	if *configFile != "" {
		os.Setenv("EVENTBOOK_CONFIG_FILE", *configFile)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLoggerWithFormat(cfg.Observability.Level(), cfg.Observability.LogFormat, os.Stdout).
		WithField("service", "eventbook")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("eventbook exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *observability.Logger) error {
	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	health := observability.NewHealthChecker(version)

	otelProviders, err := observability.InitOTel(ctx, cfg.Observability.OTel(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	shutdown.RegisterShutdownFunc("otel", func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, otelProviders, logger)
	})

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
		if otelProviders != nil {
			otelMetrics, err := observability.NewOTelMetrics(otel.Meter(observability.MeterName))
			if err != nil {
				return err
			}
			metrics.AttachOTel(otelMetrics)
		}
	}

	store, err := openStore(cfg.Storage, metrics, health, logger)
	if err != nil {
		return err
	}
	shutdown.RegisterShutdownFunc("storage", func(context.Context) error {
		return store.Close()
	})

	codec, err := auth.NewTokenCodec([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return err
	}
	authService, err := auth.NewService(store, codec, auth.NewPasswordHasher())
	if err != nil {
		return err
	}

	sessionConfig, err := cfg.Session()
	if err != nil {
		return err
	}
	tokens, err := session.New(sessionConfig)
	if err != nil {
		return err
	}

	opts := api.Options{
		Auth:        authService,
		Store:       store,
		Tokens:      tokens,
		Logger:      logger,
		Metrics:     metrics,
		CORSOrigins: cfg.Server.CORSOrigins,
	}
	if cfg.Google.Enabled() {
		federated, err := newFederated(ctx, cfg, store, authService, tokens, metrics)
		if err != nil {
			return err
		}
		opts.Federated = federated
		logger.Info("Google sign-in enabled")
	}

	var handler http.Handler = api.NewServer(opts)
	if cfg.Observability.OTelEnabled {
		handler = observability.InstrumentHandler(handler, "eventbook")
	}

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	shutdown.RegisterServer(apiServer)

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, health)
	if metrics != nil {
		observability.RegisterMetricsEndpoint(healthMux, metrics)
	}
	healthServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:      healthMux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	shutdown.RegisterServer(healthServer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("API server listening on %s", apiServer.Addr)
		return serve(apiServer)
	})
	g.Go(func() error {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		return serve(healthServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return shutdown.Shutdown(context.Background())
	})

	return g.Wait()
}

func serve(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", server.Addr, err)
	}
	return nil
}

// openStore builds the configured backend, wrapped with the event cache when
// Redis or the in-process cache is configured
func openStore(cfg storage.Config, metrics *observability.Metrics, health *observability.HealthChecker,
	logger *observability.Logger) (storage.Store, error) {
	var backend storage.Store
	switch cfg.Driver {
	case "postgres", "sqlite":
		sqlStore, err := sqlstore.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s store: %w", cfg.Driver, err)
		}
		if metrics != nil {
			metrics.ObserveDB(sqlStore.DB())
		}
		backend = sqlStore
	default:
		backend = memory.New()
	}
	health.AddCheck("storage", true, backend.HealthCheck)
	logger.WithField("driver", cfg.Driver).Info("storage initialized")

	if cfg.L1CacheSize <= 0 && cfg.RedisURL == "" {
		return backend, nil
	}

	var redisClient *cache.RedisClient
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			// The cache is best effort; run on the in-process tier alone
			logger.WithError(err).Warn("redis unavailable, using in-process event cache only")
		} else {
			redisClient = client
			health.AddRedis(client.GetClient())
		}
	}

	cached := cache.New(backend, cfg, redisClient)
	if metrics != nil {
		metrics.ObserveCache(func() (uint64, uint64) {
			stats := cached.Stats()
			return stats.Hits, stats.Misses
		})
	}
	return cached, nil
}

func newFederated(ctx context.Context, cfg *config.Config, store auth.UserStore, minter sso.TokenMinter,
	tokens session.TokenSource, metrics *observability.Metrics) (*sso.Handlers, error) {
	provider, err := sso.NewGoogleProvider(ctx, sso.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	})
	if err != nil {
		return nil, err
	}

	policy, err := sso.ParseMergePolicy(cfg.Auth.FederatedMerge)
	if err != nil {
		return nil, err
	}

	return sso.NewHandlers(
		provider,
		sso.NewResolver(store, policy),
		minter,
		session.NewRedirect(tokens, cfg.Auth.FrontendURL),
		cfg.Auth.CookieSecure,
		metrics,
	), nil
}
