package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/docgrid/docgrid/internal/adapters/http"
	"github.com/docgrid/docgrid/internal/bootstrap"
	"github.com/docgrid/docgrid/internal/config"
	"github.com/docgrid/docgrid/internal/observability/logging"
	"github.com/docgrid/docgrid/internal/observability/metrics"
)

const serviceName = "docgrid-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app.ExtractUC.SetFallbackObserver(func(primary, fallback string) {
		httpMetrics.Pipeline().RecordFallback(serviceName, primary, fallback)
	})
	router := httpadapter.NewRouter(
		app.Extractor, app.Editor, app.Admin,
		app.Docs, app.Collections, app.Queue,
		httpMetrics, serviceName,
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown error", "error", err)
	}
}
