// Package app wires the storefront server: configuration, storage, domain
// services, HTTP routes, and graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/towelexpress/storefront/internal/domain/order"
	"github.com/towelexpress/storefront/internal/domain/user"
	"github.com/towelexpress/storefront/internal/handler"
	"github.com/towelexpress/storefront/internal/repository"
	"github.com/towelexpress/storefront/internal/verify"
	"github.com/towelexpress/storefront/pkg/health"
	"github.com/towelexpress/storefront/pkg/httpmiddleware"
)

// phoneFilterCapacity sizes the registered-phone bloom filter. Far above any
// realistic user count for this shop; the filter stays tiny anyway.
const (
	phoneFilterCapacity  = 100_000
	phoneFilterErrorRate = 0.01
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Verification code store: Redis when configured, in-memory otherwise.
	var verifyStore verify.Store = verify.NewMemoryStore()
	var redisStore *verify.RedisStore
	if cfg.RedisURL != "" {
		redisStore, err = verify.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return errors.Wrap(err, "create redis store")
		}
		defer func() { _ = redisStore.Close() }()
		verifyStore = redisStore
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if redisStore != nil {
		healthSvc.AddReadinessCheck("redis", 5*time.Second, redisStore.Ping)
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	// Domain services.
	userSvc := user.NewService(userRepo, user.NewPhoneFilter(phoneFilterCapacity, phoneFilterErrorRate))
	if err := userSvc.WarmFilter(ctx); err != nil {
		return errors.Wrap(err, "warm phone filter")
	}
	orderSvc := order.NewService(orderRepo, order.SimulatedPayer{Latency: cfg.Payment.Latency})
	verifySvc := verify.NewService(verifyStore, verify.LogSender{Logger: lg.Named("sms")})

	healthSvc.SetReady(true)

	// HTTP routes: health probes + API.
	h := handler.New(productRepo, userSvc, orderSvc, verifySvc)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.RegisterRoutes(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
