package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/punchclock/internal/auth"
	"github.com/geocoder89/punchclock/internal/config"
	httpx "github.com/geocoder89/punchclock/internal/http"
	"github.com/geocoder89/punchclock/internal/http/handlers"
	"github.com/geocoder89/punchclock/internal/lock"
	"github.com/geocoder89/punchclock/internal/observability"
	"github.com/geocoder89/punchclock/internal/redisclient"
	"github.com/geocoder89/punchclock/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	startCtx, cancelStart := config.WithTimeout(15 * time.Second)
	defer cancelStart()

	shutdownTracer, err := observability.InitTracer(startCtx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	loc, _ := cfg.Location()

	store, err := storage.Open(startCtx, cfg, loc, log, prom)
	if err != nil {
		log.Error("storage open failed", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}

	// per-employee clock lock; redis when configured
	var locker lock.Locker = lock.NewLocal()
	checks := map[string]handlers.Check{}

	var rdb *redisclient.Client
	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(startCtx); err != nil {
			log.Error("redis ping failed", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		locker = lock.NewRedis(rdb.Raw(), 10*time.Second, log)
		checks["redis"] = httpx.PingCheck(rdb)
	}

	secret := cfg.SecretKey
	if secret == "" {
		secret = randomSecret()
		log.Warn("SECRET_KEY not set, sessions will not survive a restart")
	}

	sessions, err := auth.NewManager(secret, cfg.SessionTTL())
	if err != nil {
		log.Error("session manager init failed", "err", err)
		os.Exit(1)
	}

	// set up routers with the log
	router, err := httpx.NewRouter(httpx.Deps{
		Log:      log,
		Config:   cfg,
		Store:    store,
		Locker:   locker,
		Sessions: sessions,
		Prom:     prom,
		Gatherer: reg,
		Checks:   checks,
	})
	if err != nil {
		log.Error("router init failed", "err", err)
		os.Exit(1)
	}

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := store.Close(); err != nil {
			log.Error("storage close failed", "err", err)
		}
		if rdb != nil {
			if err := rdb.Close(); err != nil {
				log.Error("redis close failed", "err", err)
			}
		}
		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
