package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	webAdapter "facturatie/internal/adapters/web"
	"facturatie/internal/app"
	"facturatie/internal/backend"
	"facturatie/internal/config"
	"facturatie/internal/db"
	"facturatie/internal/logger"
	"facturatie/internal/prefs"
	"facturatie/internal/rates"
	"facturatie/internal/reminder"
)

func newServeCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API on PORT.

Postgres (DATABASE_URL) keeps the sent-reminder log and Redis (REDIS_ADDR)
caches exchange rates and stores preferences. Without them the server runs
with in-memory stores.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ValidateServe(); err != nil {
				return fmt.Errorf("invalid security configuration: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg config.Config) error {
	log := logger.WithComponent("serve")

	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)
	defer func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Warn().Err(err).Msg("close error")
			}
		}
	}()

	var sentLog reminder.SentLog = reminder.NewMemoryLog()
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback: %w", err)
		}
		closers = append(closers, func() error { pool.Close(); return nil })
		if _, err := db.Migrate(pool); err != nil {
			return err
		}
		sentLog = reminder.NewPostgresLog(pool)
		log.Info().Msg("reminder log: postgres")
	} else {
		log.Info().Msg("reminder log: in-memory")
	}

	memPrefs := prefs.NewMemoryStore(nil)
	var (
		rateCache  rates.Cache = rates.NewMemoryCache(nil)
		prefsStore prefs.Store = memPrefs
		redisUp    bool
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-memory stores")
			_ = client.Close()
		} else {
			rateCache = rates.NewRedisCache(client)
			prefsStore = prefs.NewRedisStore(client, "facturatie:")
			closers = append(closers, client.Close)
			redisUp = true
			log.Info().Str("addr", cfg.RedisAddr).Msg("cache: redis")
		}
	}

	runCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if !redisUp {
		memPrefs.StartPurge(runCtx, 10*time.Minute)
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	svc := app.NewAppService(app.Deps{
		Backend:     client,
		Rates:       rates.NewProvider(client, rateCache, cfg.RatesCacheTTL, cfg.Business.FallbackRates),
		Reminders:   reminder.NewPlanner(cfg.Business.Reminders, sentLog),
		Prefs:       prefs.NewService(prefsStore, nil),
		Accounts:    cfg.Business.Accounts,
		StrictInput: cfg.StrictNumericInput,
	})

	handler := webAdapter.NewHandler(svc, webAdapter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		JWTSecret:      cfg.JWTSecret,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.BackendTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Address()).Str("backend", cfg.BackendURL).Msg("facturatie listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-runCtx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
	return nil
}
