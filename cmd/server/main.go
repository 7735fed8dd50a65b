package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/lifevault/internal/audit"
	"github.com/dmitrymomot/lifevault/internal/auth"
	"github.com/dmitrymomot/lifevault/internal/config"
	"github.com/dmitrymomot/lifevault/internal/httpapi"
	"github.com/dmitrymomot/lifevault/internal/store"
	"github.com/dmitrymomot/lifevault/internal/store/migrations"
	"github.com/dmitrymomot/lifevault/internal/twofactor"
	"github.com/dmitrymomot/lifevault/internal/vault"
	"github.com/dmitrymomot/lifevault/pkg/httpserver"
	"github.com/dmitrymomot/lifevault/pkg/logger"
	"github.com/dmitrymomot/lifevault/pkg/pg"
	"github.com/dmitrymomot/lifevault/pkg/qrcode"
	"github.com/dmitrymomot/lifevault/pkg/ratelimiter"
	"github.com/dmitrymomot/lifevault/pkg/redis"
	"github.com/dmitrymomot/lifevault/pkg/totp"
	"github.com/dmitrymomot/lifevault/pkg/vaultcrypto"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(
		logger.WithConfig(cfg.Log, cfg.Service),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
		logger.WithContextExtractors(auth.LogUserID),
	)
	logger.SetAsDefault(log)

	// The master key is read once; only the derived cipher is kept.
	cipher, err := vaultcrypto.NewFromConfig(cfg.VaultCrypto)
	if err != nil {
		return fmt.Errorf("vault crypto: %w", err)
	}
	cfg.VaultCrypto = vaultcrypto.Config{}

	tokens, err := auth.NewIssuer(cfg.Auth)
	if err != nil {
		return err
	}

	var (
		data    store.Store
		pending store.PendingStore
		limits  ratelimiter.Store
		checks  []httpserver.Check
	)

	if cfg.Postgres.Enabled() {
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool, migrations.FS, cfg.Postgres, log); err != nil {
			return err
		}
		data = store.NewPostgresStore(pool)
		checks = append(checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
		log.InfoContext(ctx, "using postgres storage")
	} else {
		data = store.NewMemoryStore()
		log.WarnContext(ctx, "DATABASE_URL is not set, data is kept in memory")
	}

	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.ErrorContext(ctx, "failed to close redis client", logger.Error(err))
			}
		}()
		pending = store.NewRedisPendingStore(client, cfg.PendingKeyPrefix)
		limits = ratelimiter.NewRedisStore(client)
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
		log.InfoContext(ctx, "using redis for pending enrollments and rate limits")
	} else {
		pending = store.NewMemoryPendingStore(nil)
		mem := ratelimiter.NewMemoryStore()
		defer mem.Close()
		limits = mem
	}

	verifyLimiter, err := ratelimiter.NewBucket(limits, cfg.VerifyLimit, ratelimiter.WithKeyPrefix("2fa:verify:"))
	if err != nil {
		return fmt.Errorf("verify limiter: %w", err)
	}
	loginLimiter, err := ratelimiter.NewBucket(limits, cfg.LoginLimit, ratelimiter.WithKeyPrefix("2fa:login-ip:"))
	if err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}

	recorder := audit.NewRecorder(data, audit.WithLogger(log))
	twoFactor := twofactor.NewService(
		data,
		pending,
		totp.NewAuthenticatorFromConfig(cfg.TOTP),
		recorder,
		twofactor.WithLimiter(verifyLimiter),
		twofactor.WithLogger(log),
		twofactor.WithConfig(cfg.TwoFactor),
	)
	vaultSvc := vault.NewService(data, cipher, recorder,
		vault.WithLogger(log),
		vault.WithConfig(cfg.Vault),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:          log,
		Tokens:          tokens,
		TwoFactor:       twoFactor,
		Vault:           vaultSvc,
		QR:              qrcode.NewEncoder(),
		LoginLimiter:    loginLimiter,
		ReadinessChecks: checks,
	})

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	if err := srv.Run(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.InfoContext(ctx, "server stopped", slog.String("service", cfg.Service))
	return nil
}
