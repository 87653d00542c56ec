package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/bulkorder/internal/config"
	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/JonMunkholm/bulkorder/internal/database"
	"github.com/JonMunkholm/bulkorder/internal/enrich"
	"github.com/JonMunkholm/bulkorder/internal/logging"
	"github.com/JonMunkholm/bulkorder/internal/quotestore"
	"github.com/JonMunkholm/bulkorder/internal/report"
	"github.com/JonMunkholm/bulkorder/internal/token"
	"github.com/JonMunkholm/bulkorder/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Overload lets .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"reports_bucket", cfg.Reports.Bucket,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if err := database.EnsureSchema(ctx, pool); err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	redisClient, err := quotestore.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	enricher, err := enrich.NewClient(enrich.Config{
		B2BURL:    cfg.Backend.B2BURL,
		BCURL:     cfg.Backend.BCURL,
		Token:     cfg.Backend.Token,
		Timeout:   cfg.Backend.Timeout,
		RateLimit: cfg.Backend.RateLimit,
		RateBurst: cfg.Backend.RateBurst,
	})
	if err != nil {
		slog.Error("failed to create enrichment client", "error", err)
		os.Exit(1)
	}

	issuer, err := token.NewIssuer(cfg.Security.MasqueradeSecret, cfg.Security.MasqueradeTokenTTL)
	if err != nil {
		slog.Error("failed to create token issuer", "error", err)
		os.Exit(1)
	}

	// One tip center for the whole process; the service raises tips and the
	// server lists and dismisses them.
	tips := core.NewTipCenter(cfg.Tips.AutoHide)

	deps := core.Dependencies{
		Enricher: enricher,
		Store:    database.NewStore(pool),
		Quotes:   quotestore.New(redisClient, cfg.Redis.QuoteTTL),
		Notifier: tips,
		Tokens:   issuer,
	}
	if cfg.Reports.Bucket != "" {
		archiver, err := report.NewS3Archiver(ctx, cfg.Reports.Region, cfg.Reports.Bucket, cfg.Reports.Prefix)
		if err != nil {
			slog.Error("failed to configure report archive", "error", err)
			os.Exit(1)
		}
		deps.Reports = archiver
	}

	service, err := core.NewService(deps, core.Options{
		MaxFileSize:      cfg.Upload.MaxFileSize,
		MaxConcurrent:    cfg.Upload.MaxConcurrent,
		MaxWaitTime:      cfg.Upload.MaxWaitTime,
		UploadTimeout:    cfg.Upload.Timeout,
		SessionTTL:       cfg.Upload.SessionTTL,
		DefaultCurrency:  cfg.Backend.DefaultCurrency,
		DefaultChannelID: cfg.Backend.DefaultChannelID,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}
	for _, t := range service.Targets().All() {
		slog.Debug("list target registered", "key", t.Key, "label", t.Label)
	}

	server := web.NewServer(service, tips, issuer, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSweeper(jobCtx, cfg.Tips.SweepInterval, tips)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		status := service.LimiterStatus()
		slog.Info("waiting for enrichments to finish", "active", status.Active)
		if err := service.WaitForUploads(shutdownCtx); err != nil {
			slog.Warn("enrichments did not finish in time", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
