package storage

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"content-agent/apperr"
	"content-agent/config"
	"content-agent/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newStore(t *testing.T) *AnalysisStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	s := NewAnalysisStore(db, zaptest.NewLogger(t))
	require.NoError(t, s.Migrate())
	return s
}

func record(url string) *models.Analysis {
	return &models.Analysis{
		URL:              url,
		Title:            "Title",
		ContentPreview:   "preview",
		AnalysisResult:   "summary",
		OverallRating:    4,
		EvaluationStatus: models.StatusComputed,
		RelatedResources: "[]",
		AIProvider:       "gemini",
	}
}

func TestAnalysisStore_SaveAndFind(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	code := "explained"
	a := record("https://example.com")
	a.CodeAnalysis = &code
	a.ContentPreview = strings.Repeat("é", 800)

	id, err := s.Save(ctx, a)
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got.URL)
	assert.Equal(t, strings.Repeat("é", models.ContentPreviewLimit), got.ContentPreview)
	require.NotNil(t, got.CodeAnalysis)
	assert.Equal(t, "explained", *got.CodeAnalysis)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAnalysisStore_FindByIDMissing(t *testing.T) {
	s := newStore(t)
	_, err := s.FindByID(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestAnalysisStore_FindRecentOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, url := range []string{"https://a.com", "https://b.com", "https://c.com"} {
		a := record(url)
		a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := s.Save(ctx, a)
		require.NoError(t, err)
	}

	all, err := s.FindRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "https://c.com", all[0].URL)
	assert.Equal(t, "https://a.com", all[2].URL)

	limited, err := s.FindRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "https://b.com", limited[1].URL)
}

func TestAnalysisStore_DeleteByID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, record("https://example.com"))
	require.NoError(t, err)

	ok, err := s.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.FindByID(ctx, id)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestAnalysisStore_Unavailable(t *testing.T) {
	s := NewAnalysisStore(nil, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := s.Save(ctx, record("https://example.com"))
	assert.Equal(t, apperr.PersistenceUnavailable, apperr.CodeOf(err))
	_, err = s.FindByID(ctx, 1)
	assert.Equal(t, apperr.PersistenceUnavailable, apperr.CodeOf(err))
	_, err = s.FindRecent(ctx, 1)
	assert.Equal(t, apperr.PersistenceUnavailable, apperr.CodeOf(err))
	_, err = s.DeleteByID(ctx, 1)
	assert.Equal(t, apperr.PersistenceUnavailable, apperr.CodeOf(err))
	assert.Error(t, s.Ping(ctx))
	assert.Error(t, s.Migrate())
}

func TestAnalysisStore_ClosedDatabase(t *testing.T) {
	s := newStore(t)
	sqlDB, err := s.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = s.Save(context.Background(), record("https://example.com"))
	assert.Equal(t, apperr.PersistenceUnavailable, apperr.CodeOf(err))
	assert.Error(t, s.Ping(context.Background()))
}

func TestOpenDB_UnsupportedDriver(t *testing.T) {
	_, err := OpenDB(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestOpenDB_SQLite(t *testing.T) {
	db, err := OpenDB(&config.Config{DBDriver: "sqlite", SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	s := NewAnalysisStore(db, zaptest.NewLogger(t))
	require.NoError(t, s.Migrate())
	assert.NoError(t, s.Ping(context.Background()))
}
