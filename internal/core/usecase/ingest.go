package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/complykit/adgm-corporate-agent/internal/core/domain"
	"github.com/complykit/adgm-corporate-agent/internal/core/ports"
	"github.com/complykit/adgm-corporate-agent/internal/observability/logging"
)

const defaultMaxSegmentChars = 6000

// CorpusIngestUseCase chunks a directory of reference sources into the
// similarity-search store, deduplicated by file content hash. Re-ingesting a
// file whose hash is already stored is a no-op for that file. The
// read-hashes-then-write sequence assumes a single ingestion run at a time.
type CorpusIngestUseCase struct {
	store      ports.VectorStore
	readers    []ports.CorpusReader
	chunker    ports.Chunker
	maxSegment int
	logger     *slog.Logger
	newID      func() string
}

func NewCorpusIngestUseCase(
	store ports.VectorStore,
	readers []ports.CorpusReader,
	chunker ports.Chunker,
	maxSegment int,
	logger *slog.Logger,
) *CorpusIngestUseCase {
	if maxSegment <= 0 {
		maxSegment = defaultMaxSegmentChars
	}
	return &CorpusIngestUseCase{
		store:      store,
		readers:    readers,
		chunker:    chunker,
		maxSegment: maxSegment,
		logger:     logging.ForComponent(logger, "ingest"),
		newID:      uuid.NewString,
	}
}

func (uc *CorpusIngestUseCase) IngestDir(ctx context.Context, dir string) (domain.IngestStats, error) {
	var stats domain.IngestStats

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, fmt.Errorf("read corpus dir: %w", err)
	}

	ingested, err := uc.store.FileHashes(ctx)
	if err != nil {
		uc.logger.Warn("listing ingested hashes failed, assuming empty store", "error", err)
		ingested = map[string]bool{}
	}
	uc.logger.Info("existing ingested files", "count", len(ingested))

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		reader := uc.readerFor(path)
		if reader == nil {
			uc.logger.Info("skipping unsupported file", "file", name)
			continue
		}
		stats.FilesSeen++

		hash, err := fileChecksum(path)
		if err != nil {
			uc.logger.Warn("checksum failed", "file", name, "error", err)
			stats.FilesFailed++
			continue
		}
		if ingested[hash] {
			uc.logger.Info("skipping already ingested", "file", name)
			stats.FilesSkipped++
			continue
		}

		units, err := reader.ReadUnits(ctx, path)
		if err != nil {
			uc.logger.Warn("reading corpus file failed", "file", name, "error", err)
			stats.FilesFailed++
			continue
		}

		added := uc.ingestUnits(ctx, name, hash, units, &stats)
		ingested[hash] = true
		uc.logger.Info("ingested", "file", name, "chunks", added)
	}

	uc.logger.Info("ingestion complete", "chunks_added", stats.ChunksAdded)
	return stats, nil
}

func (uc *CorpusIngestUseCase) ingestUnits(
	ctx context.Context,
	sourceFile, fileHash string,
	units []domain.SourceUnit,
	stats *domain.IngestStats,
) int {
	added := 0
	for _, unit := range units {
		for segIdx, segment := range splitSegments(unit.Text, uc.maxSegment) {
			for chunkIdx, text := range uc.chunker.Split(segment) {
				chunk := domain.CorpusChunk{
					ID:           uc.newID(),
					Text:         text,
					SourceFile:   sourceFile,
					FileHash:     fileHash,
					Page:         unit.Page,
					ParaIndex:    unit.ParaIndex,
					SegmentIndex: segIdx,
					ChunkIndex:   chunkIdx,
					CharCount:    len([]rune(text)),
				}
				if err := uc.store.Add(ctx, chunk.ID, chunk.Text, CleanMetadata(chunk.Metadata())); err != nil {
					uc.logger.Warn("storing chunk failed", "file", sourceFile, "error", err)
					stats.ChunkFailures++
					continue
				}
				stats.ChunksAdded++
				added++
			}
		}
	}
	return added
}

func (uc *CorpusIngestUseCase) readerFor(path string) ports.CorpusReader {
	for _, r := range uc.readers {
		if r.Supports(path) {
			return r
		}
	}
	return nil
}

// CleanMetadata restricts metadata to scalar values: nil entries are dropped
// and anything that is not a bool, number or string is stringified.
func CleanMetadata(metadata map[string]any) map[string]any {
	clean := make(map[string]any, len(metadata))
	for k, v := range metadata {
		switch value := v.(type) {
		case nil:
			continue
		case bool, int, int32, int64, float32, float64, string:
			clean[k] = value
		default:
			clean[k] = fmt.Sprintf("%v", value)
		}
	}
	return clean
}

// splitSegments cuts oversized unit text into fixed-size pieces before the
// sliding-window chunker runs, so one giant page cannot defeat the window.
func splitSegments(text string, maxSegment int) []string {
	runes := []rune(text)
	if len(runes) <= maxSegment {
		return []string{text}
	}
	var segments []string
	for start := 0; start < len(runes); start += maxSegment {
		end := start + maxSegment
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, string(runes[start:end]))
	}
	return segments
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
