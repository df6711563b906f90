package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	httpctx "github.com/dtroode/filegate-session/internal/api/http/context"
	"github.com/dtroode/filegate-session/internal/api/http/middleware"
	"github.com/dtroode/filegate-session/internal/api/http/router"
	httpServer "github.com/dtroode/filegate-session/internal/api/http/server"
	redisCache "github.com/dtroode/filegate-session/internal/cache/redis"
	"github.com/dtroode/filegate-session/internal/config"
	"github.com/dtroode/filegate-session/internal/credential"
	"github.com/dtroode/filegate-session/internal/identity"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/metrics"
	"github.com/dtroode/filegate-session/internal/model"
	"github.com/dtroode/filegate-session/internal/oauth"
	"github.com/dtroode/filegate-session/internal/registry"
	"github.com/dtroode/filegate-session/internal/repository/postgres"
	"github.com/dtroode/filegate-session/internal/reva"
	"github.com/dtroode/filegate-session/internal/server"
	"github.com/dtroode/filegate-session/internal/service"
	storage "github.com/dtroode/filegate-session/internal/storage/minio"
	"github.com/dtroode/filegate-session/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogJSON)

	store := registry.NewStore(cfg.Registry.File, logger)
	if _, err := store.Load(); err != nil {
		logger.Fatal("failed to load operator configuration", "path", cfg.Registry.File, "error", err)
	}
	go reloadOnHangup(ctx, store, logger)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	var sessionStore model.SessionStore = postgres.NewSessionRepository(db)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := redisCache.Ping(ctx, rdb); err != nil {
			logger.Error("session index cache unavailable, continuing without it", "addr", cfg.Redis.Addr, "error", err)
		} else {
			sessionStore = redisCache.NewSessionStore(sessionStore, rdb, logger)
		}
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(promRegistry)

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	revaClient := reva.NewClient(cfg.Reva.Timeout, cfg.Reva.UseTLS, logger)
	defer func() {
		if err := revaClient.Close(); err != nil {
			logger.Error("failed to close reva connections", "error", err)
		}
	}()

	verifier := identity.NewDispatcher(
		identity.NewOkta(store, logger),
		identity.NewReva(revaClient, store, logger),
	)

	validator := credential.NewValidator(logger)
	merger := service.NewMerger(sessionStore, store, collector, logger)
	applicationService := service.NewApplication(store, userRepo, sessionStore, validator, merger, collector, logger)

	services := router.Services{
		Verifier:     verifier,
		Issuer:       service.NewIssuer(userRepo, sessionStore, tokenManager, collector, logger),
		Application:  applicationService,
		Applications: applicationService,
		Configuration: service.NewConfiguration(
			validator,
			merger,
			store,
			storage.NewProber(logger),
			oauth.NewOwncloud(nil, logger),
			cfg.Storage.AWSEndpoint,
			logger,
		),
		RevaLogin: service.NewRevaLogin(revaClient, store, logger),
	}

	rateLimiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst), logger)
	defer rateLimiter.Stop()

	addr := fmt.Sprintf(":%s", cfg.HTTP.Port)
	r := router.New(services, tokenManager, sessionStore, httpctx.NewManager(), collector, promRegistry, rateLimiter, logger)
	srv := httpServer.NewHTTPServer(&http.Server{
		Addr:              addr,
		Handler:           r.Register(),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}, addr)

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// reloadOnHangup re-reads the operator configuration on every SIGHUP until ctx is done.
func reloadOnHangup(ctx context.Context, store *registry.Store, logger *logger.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logger.Info("received SIGHUP, reloading operator configuration")
			_ = store.Reload()
		}
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
