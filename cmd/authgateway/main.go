package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authgateway/modules/gateway"
	"github.com/dmitrymomot/authgateway/pkg/audit"
	"github.com/dmitrymomot/authgateway/pkg/clientip"
	"github.com/dmitrymomot/authgateway/pkg/config"
	"github.com/dmitrymomot/authgateway/pkg/httpserver"
	"github.com/dmitrymomot/authgateway/pkg/idp"
	"github.com/dmitrymomot/authgateway/pkg/logger"
	"github.com/dmitrymomot/authgateway/pkg/ratelimiter"
	"github.com/dmitrymomot/authgateway/pkg/redis"
	"github.com/dmitrymomot/authgateway/pkg/requestid"
	"github.com/dmitrymomot/authgateway/pkg/tenant"
	"github.com/dmitrymomot/authgateway/svc/auth"
)

// appConfig holds settings that belong to no single package.
type appConfig struct {
	TenantsFile        string        `env:"TENANTS_FILE" envDefault:"tenants.yaml"`
	TenantCacheBackend string        `env:"TENANT_CACHE_BACKEND" envDefault:"memory"` // memory, redis or none
	TenantCacheTTL     time.Duration `env:"TENANT_CACHE_TTL" envDefault:"60s"`
	TenantCacheSize    int           `env:"TENANT_CACHE_SIZE" envDefault:"1000"`
	ClientBuildTimeout time.Duration `env:"IDP_CLIENT_BUILD_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout    time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.New(append(logger.FromConfig(logCfg),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
			clientip.LoggerExtractor(),
		),
	)...)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error("authgateway stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	var (
		appCfg   appConfig
		redisCfg redis.Config
		limitCfg ratelimiter.LimiterConfig
		idpCfg   idp.Config
		auditCfg audit.Config
		httpCfg  httpserver.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&appCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&limitCfg) },
		func() error { return config.Load(&idpCfg) },
		func() error { return config.Load(&auditCfg) },
		func() error { return config.Load(&httpCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	entries, err := tenant.LoadEntries(appCfg.TenantsFile)
	if err != nil {
		return fmt.Errorf("load tenants from %s: %w", appCfg.TenantsFile, err)
	}
	registry := tenant.NewRegistry(entries, log)

	var redisClient goredis.UniversalClient
	if needsRedis(appCfg, limitCfg, auditCfg) {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close redis client", logger.Error(err))
			}
		}()
		redisClient = client
	}

	resolver := tenant.NewResolver(registry,
		tenant.WithCache(tenantCache(appCfg, redisClient, registry, log)),
		tenant.WithResolverLogger(log),
	)
	defer func() { _ = resolver.Close() }()

	limiter, closeLimiter, err := newLimiter(limitCfg, redisClient, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	clients := idp.NewClientCache(idp.NewFactory(idpCfg, log),
		idp.WithBuildTimeout(appCfg.ClientBuildTimeout),
		idp.WithCacheLogger(log),
	)

	auditBackend, err := audit.NewStorage(auditCfg, redisClient, log)
	if err != nil {
		return err
	}
	auditWriter, closeAudit := audit.NewAsyncWriter(auditBackend, auditCfg.AsyncOptions(log))
	auditLog := audit.NewLogger(auditWriter,
		audit.WithTenantExtractor(tenant.KeyFromContext),
		audit.WithRequestIDExtractor(requestid.Lookup),
		audit.WithIPExtractor(func(ctx context.Context) (string, bool) {
			ip := clientip.GetIPFromContext(ctx)
			return ip, ip != ""
		}),
		audit.WithMetadataFilter(audit.NewMetadataFilter(
			audit.WithCustomField("first_name", audit.FilterActionMask),
			audit.WithCustomField("last_name", audit.FilterActionMask),
		)),
	)

	checks := map[string]httpserver.CheckFunc{}
	if redisClient != nil {
		checks["redis"] = redis.Healthcheck(redisClient)
	}

	router := gateway.Router(gateway.Options{
		Auth:         auth.NewService(clients, auditLog, auth.WithLogger(log)),
		Resolver:     resolver,
		Limiter:      limiter,
		HealthChecks: checks,
		Logger:       log,
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	runErr := srv.Run(ctx, router)

	// In-flight requests are done once Run returns; release what they used.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appCfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	if err := clients.Close(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("close identity provider clients: %w", err))
	}
	if err := closeAudit(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("flush audit log: %w", err))
	}
	log.Info("authgateway stopped")
	return errors.Join(errs...)
}

func needsRedis(app appConfig, limit ratelimiter.LimiterConfig, a audit.Config) bool {
	return (limit.Enabled && limit.Backend == "redis") ||
		app.TenantCacheBackend == "redis" ||
		a.Backend == "redis"
}

func tenantCache(cfg appConfig, client goredis.UniversalClient, registry *tenant.Registry, log *slog.Logger) tenant.Cache {
	switch cfg.TenantCacheBackend {
	case "redis":
		return tenant.NewRedisCache(client, registry, "tenant:", cfg.TenantCacheTTL, log)
	case "none":
		return tenant.NewNoOpCache()
	default:
		return tenant.NewMemoryCache(cfg.TenantCacheSize, cfg.TenantCacheTTL)
	}
}

func newLimiter(cfg ratelimiter.LimiterConfig, client goredis.UniversalClient, log *slog.Logger) (*ratelimiter.Limiter, func(), error) {
	var store ratelimiter.Store
	closeFn := func() {}
	switch {
	case !cfg.Enabled:
		store = ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	case cfg.Backend == "memory":
		ms := ratelimiter.NewMemoryStore()
		store = ms
		closeFn = func() { _ = ms.Close() }
	case cfg.Backend == "redis":
		store = ratelimiter.NewBreakerStore(ratelimiter.NewRedisStore(client), cfg.Breaker, log)
	default:
		return nil, nil, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}

	l, err := ratelimiter.NewLimiterFromConfig(store, cfg, ratelimiter.WithLimiterLogger(log))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return l, closeFn, nil
}
