package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/PratikDhanave/profile-sync-service/internal/config"
	"github.com/PratikDhanave/profile-sync-service/internal/httpserver"
	"github.com/PratikDhanave/profile-sync-service/internal/logging"
	"github.com/PratikDhanave/profile-sync-service/internal/profilesync"
	"github.com/PratikDhanave/profile-sync-service/internal/store"
)

// main boots the service: config → logger → store → HTTP server.
func main() {
	// Pick up a local .env when present; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New("profile-sync", cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	// The store client lives for the whole process and is shared by all requests.
	st, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("profile store unavailable", zap.Error(err), zap.String("driver", cfg.Store.Driver))
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	syncer := profilesync.New(st, logger,
		profilesync.WithTimeout(cfg.Store.Timeout),
		profilesync.WithMetrics(profilesync.NewMetrics(reg)),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpserver.NewRouter(st, syncer, reg, logger),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := httpserver.Run(ctx, srv, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
