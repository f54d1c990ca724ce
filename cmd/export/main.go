package main

import (
	"context"
	"log"
	"time"

	"content-agent/config"
	"content-agent/services"
	"content-agent/storage"

	"go.uber.org/zap"
)

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}
	if !cfg.ExportEnabled() {
		logging.Fatal("Export is not configured. Set EXPORT_S3_BUCKET and EXPORT_S3_URL.")
	}

	db, err := storage.OpenDB(cfg)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	store := storage.NewAnalysisStore(db, logging)

	objects, err := storage.NewS3Store(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := services.NewExportService(cfg, store, objects, logging).Run(ctx)
	if err != nil {
		logging.Fatal("Export failed", zap.Error(err))
	}
	logging.Info("Export uploaded", zap.String("link", result.Link), zap.Int("records", result.Records))
}
