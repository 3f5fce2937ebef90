package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/complykit/adgm-corporate-agent/internal/bootstrap"
	"github.com/complykit/adgm-corporate-agent/internal/config"
)

// Ingestion is a single sequential pass: it reads the set of already-ingested
// hashes once and then writes. Run one ingest process at a time.
func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "ingest")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	stats, err := app.IngestUC.IngestDir(ctx, cfg.DataSourcesDir)
	if err != nil {
		log.Fatalf("ingest error: %v", err)
	}

	app.Metrics.RecordChunksIngested("ingest", stats.ChunksAdded)
	app.Logger.Info("corpus ingest finished",
		"dir", cfg.DataSourcesDir,
		"files_seen", stats.FilesSeen,
		"files_skipped", stats.FilesSkipped,
		"files_failed", stats.FilesFailed,
		"chunks_added", stats.ChunksAdded,
		"chunk_failures", stats.ChunkFailures)
}
