package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/listing"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/postgres"
	"github.com/utafrali/storefront/internal/repository/woocommerce"
	"github.com/utafrali/storefront/internal/security"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

// ServiceName identifies the service in logs, metrics and traces.
const ServiceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	listingService *service.ListingService
	tracerShutdown func(context.Context) error
	stopLimiter    context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		Insecure:       cfg.OTELInsecure,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	repo, err := a.newCatalogRepository(ctx)
	if err != nil {
		a.closeResources()
		return nil, err
	}
	healthHandler.RegisterCritical("catalog", repo.Ping)

	publisher := a.newPublisher(ctx, healthHandler)

	tokens, err := security.NewTokenManager(cfg.AntiforgerySecret, cfg.AntiforgeryTTL())
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("create token manager: %w", err)
	}

	limiter := a.newLimiter(ctx, healthHandler)

	// Build the dependency graph.
	assembler := listing.NewAssembler(listing.Links{
		BaseURL:      cfg.ShopBaseURL,
		CategoryBase: cfg.CategoryBase,
		BrandBase:    cfg.BrandBase,
	}, cfg.DescriptionWordLimit, logger)

	a.listingService = service.NewListingService(repo, assembler, publisher, service.Config{
		CategoryTaxonomy: cfg.CategoryTaxonomy,
		BrandCandidates:  cfg.BrandCandidates(),
		ReservedSlugs:    cfg.ReservedSlugs(),
		PageSize:         cfg.ListingPageSize,
		MaxLimit:         cfg.ListingMaxLimit,
	}, logger)

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:       ServiceName,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		SecureCookies:     cfg.SecureCookies || cfg.IsProduction(),
		Labels:            handler.Labels(cfg.Labels),
	}, a.listingService, tokens, limiter, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// newCatalogRepository connects the configured catalog source.
func (a *App) newCatalogRepository(ctx context.Context) (repository.CatalogRepository, error) {
	cfg := a.cfg

	switch cfg.CatalogSource {
	case config.SourceWooCommerce:
		clientCfg := httpclient.DefaultConfig()
		clientCfg.Timeout = time.Duration(cfg.WooCommerceTimeoutSecs) * time.Second

		opts := []httpclient.RequestOption{httpclient.WithHeader("Accept", "application/json")}
		if cfg.WooCommerceConsumerKey != "" {
			opts = append(opts, httpclient.WithBasicAuth(cfg.WooCommerceConsumerKey, cfg.WooCommerceConsumerSecret))
		}
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(clientCfg, opts...),
			httpclient.DefaultCircuitBreakerConfig("woocommerce"),
			a.logger,
		)
		a.logger.Info("using WooCommerce REST catalog", slog.String("base_url", cfg.WooCommerceBaseURL))
		return woocommerce.NewCatalogRepository(client, cfg.WooCommerceBaseURL), nil

	default:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)

		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, ServiceName); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}

		// Configure slow query logging.
		if cfg.SlowQueryThresholdMs > 0 {
			database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)
		}

		repo, err := postgres.NewCatalogRepository(pool, cfg.WPTablePrefix)
		if err != nil {
			return nil, fmt.Errorf("create catalog repository: %w", err)
		}
		return repo, nil
	}
}

// newPublisher returns a Kafka-backed publisher, or a no-op one when Kafka is
// disabled.
func (a *App) newPublisher(ctx context.Context, healthHandler *health.Handler) event.Publisher {
	if !a.cfg.KafkaEnabled {
		a.logger.Info("kafka disabled, listing events are not published")
		return event.NopPublisher{}
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
	if err := pingKafkaWithRetry(ctx, producer, a.logger); err != nil {
		a.logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
			slog.String("error", err.Error()),
		)
	} else {
		a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))
	}
	a.producer = producer
	healthHandler.RegisterNonCritical("kafka", producer.Ping)

	return event.NewProducer(producer, a.logger)
}

// newLimiter returns the load-more rate limiter. A reachable Redis shares the
// budget across replicas; otherwise each replica limits on its own.
func (a *App) newLimiter(ctx context.Context, healthHandler *health.Handler) middleware.Limiter {
	limiterCtx, stop := context.WithCancel(context.Background())
	a.stopLimiter = stop

	redisCfg, enabled := a.cfg.Redis()
	if !enabled {
		return middleware.NewLocalLimiter(limiterCtx, a.cfg.RateLimitRPS, a.cfg.RateLimitBurst)
	}

	client, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		a.logger.Warn("redis unavailable, falling back to in-process rate limiting",
			slog.String("error", err.Error()),
		)
		return middleware.NewLocalLimiter(limiterCtx, a.cfg.RateLimitRPS, a.cfg.RateLimitBurst)
	}
	a.redis = client
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	a.logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr))

	return middleware.NewRedisLimiter(client, a.cfg.RateLimitRPS)
}

// Run starts the HTTP server, then blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Probe taxonomies in the background; requests resolve them lazily too.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		a.listingService.WarmUp(warmCtx)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer, Redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Release connections.
	errs = append(errs, a.closeResources()...)

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeResources() []error {
	var errs []error

	if a.stopLimiter != nil {
		a.stopLimiter()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errs
}

// pingKafkaWithRetry attempts to ping the Kafka producer with exponential
// backoff (3 attempts, 1s/2s/4s with ±25% jitter).
func pingKafkaWithRetry(ctx context.Context, producer *pkgkafka.Producer, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if lastErr = producer.Ping(ctx); lastErr == nil {
			return nil
		}
		if attempt < 2 {
			base := time.Duration(1<<uint(attempt)) * time.Second
			jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
			wait := base + jitter
			logger.Warn("kafka producer ping failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", 3),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("kafka ping: context canceled during retry: %w", ctx.Err())
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("kafka producer ping failed after 3 attempts: %w", lastErr)
}
