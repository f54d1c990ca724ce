package storage

import (
	"context"
	"errors"
	"strconv"

	"content-agent/apperr"
	"content-agent/models"

	"github.com/morikuni/failure/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnalysisStore speichert und liest Analyse-Datensätze.
// Ein Store ohne Datenbankverbindung meldet bei jedem Aufruf apperr.PersistenceUnavailable.
type AnalysisStore struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewAnalysisStore erstellt einen neuen Store. db darf nil sein.
func NewAnalysisStore(db *gorm.DB, logger *zap.Logger) *AnalysisStore {
	return &AnalysisStore{DB: db, Logger: logger}
}

// Migrate legt das Schema an.
func (s *AnalysisStore) Migrate() error {
	if s.DB == nil {
		return unavailable(nil)
	}
	return s.DB.AutoMigrate(&models.Analysis{})
}

// Ping prüft, ob die Datenbank erreichbar ist.
func (s *AnalysisStore) Ping(ctx context.Context) error {
	if s.DB == nil {
		return unavailable(nil)
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return unavailable(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

// Save legt einen neuen Datensatz an und gibt dessen ID zurück.
func (s *AnalysisStore) Save(ctx context.Context, a *models.Analysis) (uint, error) {
	if s.DB == nil {
		return 0, unavailable(nil)
	}
	a.ContentPreview = models.TruncateRunes(a.ContentPreview, models.ContentPreviewLimit)
	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		s.Logger.Error("Failed to save analysis", zap.String("url", a.URL), zap.Error(err))
		return 0, unavailable(err)
	}
	return a.ID, nil
}

// FindByID liest einen Datensatz. Fehlt er, trägt der Fehler den Code apperr.NotFound.
func (s *AnalysisStore) FindByID(ctx context.Context, id uint) (*models.Analysis, error) {
	if s.DB == nil {
		return nil, unavailable(nil)
	}
	var a models.Analysis
	if err := s.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, failure.New(apperr.NotFound,
				failure.Message("Analysis not found"),
				failure.Context{"id": strconv.FormatUint(uint64(id), 10)},
			)
		}
		return nil, unavailable(err)
	}
	return &a, nil
}

// FindRecent liefert die neuesten Datensätze zuerst.
func (s *AnalysisStore) FindRecent(ctx context.Context, limit int) ([]models.Analysis, error) {
	if s.DB == nil {
		return nil, unavailable(nil)
	}
	var analyses []models.Analysis
	q := s.DB.WithContext(ctx).Order("created_at desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&analyses).Error; err != nil {
		return nil, unavailable(err)
	}
	return analyses, nil
}

// DeleteByID löscht einen Datensatz und meldet, ob er existiert hat.
func (s *AnalysisStore) DeleteByID(ctx context.Context, id uint) (bool, error) {
	if s.DB == nil {
		return false, unavailable(nil)
	}
	res := s.DB.WithContext(ctx).Delete(&models.Analysis{}, id)
	if res.Error != nil {
		return false, unavailable(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func unavailable(cause error) error {
	if cause == nil {
		return failure.New(apperr.PersistenceUnavailable, failure.Message("Database is not available"))
	}
	return failure.Translate(cause, apperr.PersistenceUnavailable, failure.Message("Database is not available"))
}
