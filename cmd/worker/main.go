package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docgrid/docgrid/internal/bootstrap"
	"github.com/docgrid/docgrid/internal/config"
	"github.com/docgrid/docgrid/internal/core/domain"
	"github.com/docgrid/docgrid/internal/observability/logging"
	"github.com/docgrid/docgrid/internal/observability/metrics"
)

const serviceName = "docgrid-worker"

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

	pipelineMetrics := metrics.NewWorkerMetrics()
	app.ExtractUC.SetFallbackObserver(func(primary, fallback string) {
		pipelineMetrics.RecordFallback(serviceName, primary, fallback)
	})
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: pipelineMetrics.Handler(),
	}
	go func() {
		slog.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeExtractionJobs(ctx, func(handlerCtx context.Context, job domain.ExtractionJob) error {
		pipelineMetrics.ObserveQueueLag(serviceName, time.Since(job.RequestedAt))
		pipelineMetrics.StartExtraction()
		start := time.Now()

		jobCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()

		var report *domain.ExtractionReport
		var runErr error
		if job.Request.CollectionID != "" && job.Request.DocumentID == "" {
			report, runErr = app.Extractor.ExtractCollection(jobCtx, job.Request)
		} else {
			report, runErr = app.Extractor.ExtractDocument(jobCtx, job.Request)
		}

		successCount := 0
		if report != nil {
			successCount = report.SuccessCount
		}
		pipelineMetrics.FinishExtraction(serviceName, "", time.Since(start), successCount, runErr)
		return runErr
	})
	if err != nil {
		slog.Error("worker subscribe error", "error", err)
		os.Exit(1)
	}
}
