package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/baechuer/docvault/internal/application/auth"
	"github.com/baechuer/docvault/internal/application/documents"
	"github.com/baechuer/docvault/internal/audit"
	"github.com/baechuer/docvault/internal/config"
	"github.com/baechuer/docvault/internal/domain"
	"github.com/baechuer/docvault/internal/infrastructure/db/postgres"
	"github.com/baechuer/docvault/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/docvault/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/docvault/internal/infrastructure/metrics"
	"github.com/baechuer/docvault/internal/infrastructure/redis"
	"github.com/baechuer/docvault/internal/infrastructure/security"
	"github.com/baechuer/docvault/internal/logger"
	http_handlers "github.com/baechuer/docvault/internal/transport/http/handlers"
	"github.com/baechuer/docvault/internal/transport/http/middleware"
	"github.com/baechuer/docvault/internal/transport/http/response"
	"github.com/baechuer/docvault/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB   func(addr string, debug bool) (*sql.DB, error)
	Migrate func(ctx context.Context, db *sql.DB) error

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(url, exchange string) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type Publisher interface {
	auth.EventPublisher
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	checks := map[string]http_handlers.Check{}

	// 1) stores: postgres when configured, in-memory otherwise
	var (
		userRepo auth.UserRepo
		docRepo  documents.Repo
	)
	if cfg.DBAddr != "" {
		db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			return fail(domain.ErrDBUnavailable(err))
		}
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })

		if cfg.DBMigrate && deps.Migrate != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := deps.Migrate(ctx, db)
			cancel()
			if err != nil {
				return fail(err)
			}
		}

		userRepo = postgres.NewUserRepo(db)
		docRepo = postgres.NewDocumentRepo(db)
		checks["db"] = db.PingContext
	} else {
		logger.Logger.Warn().Msg("DB_ADDR not set; using in-memory stores")
		userRepo = memory.NewUserRepo()
		docRepo = memory.NewDocumentRepo()
	}

	// 2) redis: revocation registry + rate limiter
	var redisCli *redis.Client
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		switch {
		case err == nil:
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			checks["redis"] = c.Ping
		case cfg.Env == "dev":
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-memory revocation registry")
			_ = c.Close()
		default:
			_ = c.Close()
			return fail(domain.ErrRedisUnavailable(err))
		}
	}

	var revoked auth.RevocationRegistry
	if redisCli != nil {
		revoked = redis.NewRevocationRegistry(redisCli)
	} else {
		mem := memory.NewRevocationRegistry()
		ctx, cancel := context.WithCancel(context.Background())
		go mem.RunSweeper(ctx, cfg.RevocationSweepInterval, logger.Logger)
		cleanupFns = append(cleanupFns, cancel)
		revoked = mem
	}

	// 3) publisher
	var pub auth.EventPublisher = memory.NewNoopPublisher(logger.Logger)
	if cfg.RabbitURL != "" && deps.NewPublisher != nil {
		p, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExch)
		switch {
		case err == nil:
			pub = p
			cleanupFns = append(cleanupFns, func() { _ = p.Close() })
		case cfg.Env == "dev":
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		default:
			return fail(domain.ErrRabbitUnavailable(err))
		}
	}

	// 4) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)

	// 5) metrics + audit
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	auditLog := audit.New(logger.Logger)

	// 6) services
	authSvc := auth.NewService(
		userRepo,
		hasher,
		signer,
		revoked,
		pub,
		auth.Config{AccessTTL: cfg.AccessTokenTTL},
	).WithAudit(auditLog.Record).WithObserver(m)

	docSvc := documents.NewService(docRepo).WithAudit(auditLog.Record)

	if cfg.SeedAdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := authSvc.EnsureAdmin(ctx, auth.AdminSeed{
			Email:    cfg.SeedAdminEmail,
			Password: cfg.SeedAdminPassword,
		})
		cancel()
		if err != nil {
			return fail(err)
		}
	}

	// 7) handlers + middleware
	authMW := middleware.Auth(authSvc, response.WriteError)
	adminMW := middleware.RequireRoles(response.WriteError, domain.RoleAdmin)
	selfMW := middleware.RequireSelfOrAdmin("id", response.WriteError)

	rl := func(key string, limit int) func(http.Handler) http.Handler {
		if !cfg.RateLimitEnabled || limit <= 0 {
			return nil
		}
		fw := middleware.FixedWindowConfig{
			RouteKey:   key,
			Limit:      limit,
			Window:     cfg.RateLimitWindow,
			TrustProxy: cfg.TrustProxyHeaders,
		}
		if redisCli != nil {
			return middleware.RateLimitFixedWindow(redis.NewFixedWindowLimiter(redisCli), fw, response.WriteError)
		}
		return middleware.RateLimitInProcess(fw, response.WriteError)
	}

	// 8) router
	mux, err := deps.NewRouter(router.Deps{
		Health:    http_handlers.NewHealthHandler(checks),
		Auth:      http_handlers.NewAuthHandler(authSvc),
		Users:     http_handlers.NewUserHandler(authSvc),
		Documents: http_handlers.NewDocumentHandler(docSvc),
		Metrics:   m.Handler(),

		RequestIDMW: middleware.RequestID,
		AccessLogMW: middleware.AccessLog,
		MetricsMW:   middleware.Metrics(m),
		SecurityMW:  middleware.SecurityHeaders(cfg.Env == "prod"),
		AuthMW:      authMW,
		AdminMW:     adminMW,
		SelfMW:      selfMW,
		AuthRateMW:  rl("auth", cfg.RateLimitAuth),
		APIRateMW:   rl("api", cfg.RateLimitAPI),
	})
	if err != nil {
		return fail(err)
	}

	// 9) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() { runCleanup(cleanupFns) })
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		Migrate:    postgres.Migrate,
		NewRedis:   redis.New,
		NewPublisher: func(url, exchange string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
