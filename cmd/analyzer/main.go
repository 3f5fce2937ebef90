package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/complykit/adgm-corporate-agent/internal/bootstrap"
	"github.com/complykit/adgm-corporate-agent/internal/config"
	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/report"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "analyzer")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	paths, err := listDocuments(cfg.DocsDir)
	if err != nil {
		log.Fatalf("scan docs dir: %v", err)
	}
	if len(paths) == 0 {
		app.Logger.Info("no documents to analyze", "dir", cfg.DocsDir)
		return
	}

	var reports []*domain.Report
	failed := 0
	for _, path := range paths {
		started := time.Now()
		rep, err := app.AnalyzeUC.AnalyzeFile(ctx, path)
		if err != nil {
			failed++
			app.Metrics.RecordAnalyze("analyzer", "error", time.Since(started))
			app.Logger.Error("analysis failed", "file", path, "error", err)
			continue
		}
		app.Metrics.RecordAnalyze("analyzer", "ok", time.Since(started))
		for _, issue := range rep.IssuesFound {
			app.Metrics.RecordFinding("analyzer", string(issue.Origin), string(issue.Severity))
		}
		app.Logger.Info("document analyzed",
			"file", rep.FileAnalyzed,
			"doc_type", rep.DocType,
			"issues", len(rep.IssuesFound))
		reports = append(reports, rep)
	}

	if len(reports) > 0 {
		summaryName := fmt.Sprintf("summary_%s.xlsx", time.Now().UTC().Format("20060102T150405Z"))
		summaryPath := filepath.Join(cfg.OutputsDir, summaryName)
		if err := report.WriteSummaryWorkbook(summaryPath, reports); err != nil {
			app.Logger.Error("write summary workbook", "error", err)
		} else {
			app.Logger.Info("summary workbook written", "path", summaryPath)
		}
	}

	app.Logger.Info("batch finished", "analyzed", len(reports), "failed", failed)
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Skip Office lock files and hidden files.
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".docx") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}
