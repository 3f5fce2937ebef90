package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/complykit/adgm-corporate-agent/internal/bootstrap"
	"github.com/complykit/adgm-corporate-agent/internal/config"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "worker")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if app.Bus == nil {
		log.Fatal("worker requires NATS_URL to be configured")
	}

	go serveMetrics(app, cfg.WorkerMetricsPort)

	log.Printf("worker subscribed to %s", cfg.NATSRequestSubject)
	err = app.Bus.SubscribeAnalysisRequests(ctx, func(handlerCtx context.Context, path string) error {
		analyzeCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		started := time.Now()
		rep, err := app.AnalyzeUC.AnalyzeFile(analyzeCtx, path)
		if err != nil {
			app.Metrics.RecordAnalyze("worker", "error", time.Since(started))
			return err
		}
		app.Metrics.RecordAnalyze("worker", "ok", time.Since(started))
		for _, issue := range rep.IssuesFound {
			app.Metrics.RecordFinding("worker", string(issue.Origin), string(issue.Severity))
		}
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func serveMetrics(app *bootstrap.App, port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Metrics.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("metrics server error: %v", err)
	}
}
