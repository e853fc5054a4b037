package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/shiprec/internal/bootstrap"
	"github.com/JonMunkholm/shiprec/internal/config"
	"github.com/JonMunkholm/shiprec/internal/core"
	_ "github.com/JonMunkholm/shiprec/internal/core/kinds" // register all kinds
	"github.com/JonMunkholm/shiprec/internal/logging"
	"github.com/JonMunkholm/shiprec/internal/metrics"
	"github.com/JonMunkholm/shiprec/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env values win over the environment
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := bootstrap.OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := os.MkdirAll(cfg.Exchange.ExportPath, 0o750); err != nil {
		return err
	}

	opts := []core.Option{core.WithMetrics(metrics.New(prometheus.DefaultRegisterer))}
	archiver, err := bootstrap.NewArchiver(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	if archiver != nil {
		opts = append(opts, core.WithArchiver(archiver))
	}

	service := core.NewService(st, core.Config{
		ExportDir:     cfg.Exchange.ExportPath,
		JobTimeout:    cfg.Exchange.JobTimeout,
		MaxConcurrent: cfg.Exchange.MaxConcurrent,
		MaxWait:       cfg.Exchange.JobWait,
	}, opts...)
	slog.Info("kinds registered", "count", core.KindCount(), "kinds", core.Keys())

	server := web.NewServer(service, cfg, prometheus.DefaultGatherer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	if cfg.Exchange.ExportInterval > 0 {
		g.Go(func() error {
			service.StartExportScheduler(gctx, cfg.Exchange.ExportInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}

		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for jobs to complete", "active", status.Active, "kinds", status.BusyKinds)
		}
		if err := service.Shutdown(shutdownCtx); err != nil {
			slog.Warn("jobs did not complete in time", "error", err)
		}
		return nil
	})

	return g.Wait()
}
