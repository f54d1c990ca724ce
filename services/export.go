package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"content-agent/config"
	"content-agent/models"
	"content-agent/storage"

	"go.uber.org/zap"
)

// ExportPrefix ist das Verzeichnis der Exporte im Bucket.
const ExportPrefix = "exports/"

// ObjectStore ist der Objektspeicher, in den exportiert wird.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	List(ctx context.Context, prefix string) ([]storage.Object, error)
	Delete(ctx context.Context, key string) error
}

// HistoryReader liest die neuesten Analysen.
type HistoryReader interface {
	FindRecent(ctx context.Context, limit int) ([]models.Analysis, error)
}

// ExportResult beschreibt einen abgeschlossenen Export.
type ExportResult struct {
	Key     string
	Link    string
	Records int
	Deleted int
}

// ExportService schreibt den Analyseverlauf als gzip-komprimierte JSON-Lines-Datei in den Objektspeicher
// und behält nur die neuesten Exporte.
type ExportService struct {
	history    HistoryReader
	objects    ObjectStore
	keep       int
	maxRecords int
	Logger     *zap.Logger

	now func() time.Time
}

// NewExportService erstellt einen neuen ExportService.
func NewExportService(cfg *config.Config, history HistoryReader, objects ObjectStore, logger *zap.Logger) *ExportService {
	return &ExportService{
		history:    history,
		objects:    objects,
		keep:       cfg.ExportKeep,
		maxRecords: cfg.ExportMaxRecords,
		Logger:     logger,
		now:        time.Now,
	}
}

// Run führt einen Export inklusive Rotation aus.
func (s *ExportService) Run(ctx context.Context) (*ExportResult, error) {
	result, err := s.run(ctx)
	if err != nil {
		exportsCounter.WithLabelValues("failure").Inc()
		s.Logger.Error("History export failed", zap.Error(err))
		return nil, err
	}
	exportsCounter.WithLabelValues("success").Inc()
	s.Logger.Info("History export completed",
		zap.String("key", result.Key),
		zap.Int("records", result.Records),
		zap.Int("deleted", result.Deleted))
	return result, nil
}

func (s *ExportService) run(ctx context.Context) (*ExportResult, error) {
	analyses, err := s.history.FindRecent(ctx, s.maxRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to read analyses: %w", err)
	}

	data, err := encodeJSONLines(analyses)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	key := fmt.Sprintf("%sanalyses-%s.jsonl.gz", ExportPrefix, s.now().UTC().Format("2006-01-02T15-04-05Z"))
	link, err := s.objects.Put(ctx, key, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	deleted, err := s.rotate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate exports: %w", err)
	}

	return &ExportResult{Key: key, Link: link, Records: len(analyses), Deleted: deleted}, nil
}

// rotate löscht alle bis auf die neuesten keep Exporte.
func (s *ExportService) rotate(ctx context.Context) (int, error) {
	objects, err := s.objects.List(ctx, ExportPrefix)
	if err != nil {
		return 0, err
	}
	if s.keep <= 0 || len(objects) <= s.keep {
		return 0, nil
	}

	sort.Slice(objects, func(i, j int) bool {
		if objects[i].LastModified.Equal(objects[j].LastModified) {
			return objects[i].Key > objects[j].Key
		}
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	deleted := 0
	for _, obj := range objects[s.keep:] {
		s.Logger.Info("Deleting old export", zap.String("key", obj.Key))
		if err := s.objects.Delete(ctx, obj.Key); err != nil {
			s.Logger.Warn("Failed to delete export", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}

func encodeJSONLines(analyses []models.Analysis) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := json.NewEncoder(gz)
	for i := range analyses {
		if err := enc.Encode(&analyses[i]); err != nil {
			return nil, err
		}
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
