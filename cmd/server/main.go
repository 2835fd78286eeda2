package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	authhandler "velofit/internal/auth/handler"
	authservice "velofit/internal/auth/service"
	sessionstore "velofit/internal/auth/store/session"
	"velofit/internal/auth/token"
	bikehandler "velofit/internal/bike/handler"
	bikeservice "velofit/internal/bike/service"
	bikestore "velofit/internal/bike/store/bike"
	localemw "velofit/internal/locale/middleware"
	"velofit/internal/pages"
	"velofit/internal/platform/config"
	"velofit/internal/platform/database"
	"velofit/internal/platform/health"
	"velofit/internal/platform/httpserver"
	"velofit/internal/platform/logger"
	"velofit/internal/platform/metrics"
	platformredis "velofit/internal/platform/redis"
	rlmodels "velofit/internal/ratelimit/models"
	rlservice "velofit/internal/ratelimit/service"
	attemptstore "velofit/internal/ratelimit/store/attempt"
	"velofit/internal/ratelimit/tracer"
	httptransport "velofit/internal/transport/http"
	"velofit/internal/verification/sender"
	verifservice "velofit/internal/verification/service"
	codestore "velofit/internal/verification/store/code"
	"velofit/internal/verification/workers/cleanup"
	"velofit/migrations"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing velofit",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mx := metrics.New()

	// Persistence. Empty URLs fall back to in-memory stores (development).
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if pool != nil {
		if err := migrations.Apply(ctx, pool.DB()); err != nil {
			return err
		}
		log.Info("database migrations applied")
	} else {
		log.Warn("no DATABASE_URL configured, using in-memory stores")
	}

	redisCfg := platformredis.DefaultConfig()
	redisCfg.URL = cfg.RedisURL
	redisClient, err := platformredis.New(redisCfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var attempts rlservice.Store
	var codes verifservice.CodeStore
	var cleanupCodes cleanup.CodeStore
	var bikes bikeservice.Store
	if pool != nil {
		pgCodes := codestore.NewPostgres(pool.DB())
		attempts = attemptstore.NewPostgres(pool.DB())
		codes = pgCodes
		cleanupCodes = pgCodes
		bikes = bikestore.NewPostgres(pool.DB())
	} else {
		memCodes := codestore.New()
		attempts = attemptstore.New()
		codes = memCodes
		cleanupCodes = memCodes
		bikes = bikestore.New()
	}

	var sessions authservice.SessionStore
	if redisClient != nil {
		sessions = sessionstore.NewRedis(redisClient.Client)
	} else {
		log.Warn("no REDIS_URL configured, using in-memory session store")
		sessions = sessionstore.New()
	}

	// Services.
	consumeTracer := tracer.NewNoop()
	if cfg.TracingEnabled {
		consumeTracer = tracer.NewOTel()
		log.Info("rate limiter tracing enabled")
	}
	limiter, err := rlservice.New(attempts, rlmodels.NamespaceEmailVerification,
		rlservice.WithLogger(log),
		rlservice.WithMetrics(mx),
		rlservice.WithTracer(consumeTracer),
	)
	if err != nil {
		return err
	}

	var codeSender sender.Sender
	if cfg.SMTP.Host != "" {
		codeSender = sender.NewSMTP(cfg.SMTP)
	} else {
		log.Warn("no SMTP_HOST configured, verification codes are logged")
		codeSender = sender.NewLog(log)
	}

	verification, err := verifservice.New(codes, limiter, codeSender,
		verifservice.WithLogger(log),
		verifservice.WithMetrics(mx),
	)
	if err != nil {
		return err
	}

	signer, err := token.New(cfg.JWTSigningKey)
	if err != nil {
		return err
	}
	sessionSvc, err := authservice.New(sessions, signer,
		authservice.WithLogger(log),
		authservice.WithMetrics(mx),
		authservice.WithSessionTTL(cfg.SessionTTL),
	)
	if err != nil {
		return err
	}

	bikeSvc, err := bikeservice.New(bikes, bikeservice.WithLogger(log))
	if err != nil {
		return err
	}

	cleaner, err := cleanup.New(cleanupCodes, cleanup.WithLogger(log))
	if err != nil {
		return err
	}

	// HTTP surface.
	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(checkCtx)
		})
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(checkCtx)
		})
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:  log,
		Metrics: mx,
		Locale: localemw.New(sessionSvc,
			localemw.WithLogger(log),
			localemw.WithMetrics(mx),
			localemw.WithSecureCookies(cfg.IsProduction()),
		),
		Health: healthHandler,
		Auth:   authhandler.New(verification, sessionSvc, log, cfg.IsProduction()),
		Bikes:  bikehandler.New(bikeSvc),
		Pages:  pages.New(),
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := cleaner.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
