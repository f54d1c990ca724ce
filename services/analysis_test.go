package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"content-agent/apperr"
	"content-agent/models"
	"content-agent/providers"
	"content-agent/storage"

	"github.com/google/uuid"
	"github.com/morikuni/failure/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const plainPage = `<html><head><title>Plain</title></head><body><p>Only prose here.</p></body></html>`

const codePage = `<html><head><title>Snippet</title></head><body><p>Try this:</p><pre><code>print(1)</code></pre></body></html>`

func newTestStore(t *testing.T) *storage.AnalysisStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := storage.NewAnalysisStore(db, zaptest.NewLogger(t))
	require.NoError(t, store.Migrate())
	return store
}

type pipeline struct {
	svc    *AnalysisService
	store  *storage.AnalysisStore
	gemini *fakeProvider
}

func newPipeline(t *testing.T, src fakeSource) *pipeline {
	t.Helper()
	cfg := testConfig()
	log := zaptest.NewLogger(t)
	store := newTestStore(t)

	var gem *fakeProvider
	if src == nil {
		gem = workingProvider("gemini")
		src = fakeSource{providers.Gemini: gem}
	}
	return &pipeline{
		svc:    NewAnalysisService(cfg, NewExtractor(cfg, log), src, store, log),
		store:  store,
		gemini: gem,
	}
}

func TestAnalyze_PlainPage(t *testing.T) {
	p := newPipeline(t, nil)
	server := pageServer(t, plainPage, nil)

	resp, err := p.svc.Analyze(context.Background(), server.URL, "")
	require.NoError(t, err)

	assert.NotZero(t, resp.AnalysisID)
	assert.Equal(t, server.URL, resp.URL)
	assert.Equal(t, "Plain", resp.Title)
	assert.Equal(t, "## Summary\nA page about Go.", resp.Analysis)
	assert.False(t, resp.HasCode)
	assert.Nil(t, resp.CodeAnalysis)
	assert.Equal(t, models.StatusComputed, resp.Evaluation.Status)
	assert.Len(t, resp.RelatedResources, 2)
	assert.Equal(t, models.StatusComputed, resp.ResourcesStatus)
	assert.Equal(t, "gemini", resp.AIProvider)
	assert.False(t, resp.Timestamp.IsZero())

	record, found := p.svc.Get(context.Background(), resp.AnalysisID)
	require.True(t, found)
	assert.Equal(t, server.URL, record.URL)
	assert.Equal(t, "Only prose here.", record.ContentPreview)
	assert.Equal(t, resp.Analysis, record.AnalysisResult)
	assert.Nil(t, record.CodeAnalysis)
	assert.Equal(t, 4.5, record.CredibilityScore)
	assert.Equal(t, "gemini", record.AIProvider)

	var stored []models.RelatedResource
	require.NoError(t, json.Unmarshal([]byte(record.RelatedResources), &stored))
	assert.Equal(t, resp.RelatedResources, stored)
}

func TestAnalyze_PageWithCode(t *testing.T) {
	p := newPipeline(t, nil)
	server := pageServer(t, codePage, nil)

	resp, err := p.svc.Analyze(context.Background(), server.URL, "gemini")
	require.NoError(t, err)

	assert.True(t, resp.HasCode)
	require.NotNil(t, resp.CodeAnalysis)
	assert.NotEmpty(t, *resp.CodeAnalysis)

	record, found := p.svc.Get(context.Background(), resp.AnalysisID)
	require.True(t, found)
	require.NotNil(t, record.CodeAnalysis)
	assert.Equal(t, *resp.CodeAnalysis, *record.CodeAnalysis)

	assert.Contains(t, p.gemini.prompts, "print(1)\n\nprint(1)")
}

func TestAnalyze_InvalidURLBeforeAnyIO(t *testing.T) {
	p := newPipeline(t, nil)
	var hits int32
	pageServer(t, plainPage, &hits)

	for _, url := range []string{"not-a-url", "", "ftp://x.com"} {
		_, err := p.svc.Analyze(context.Background(), url, "")
		require.Error(t, err)
		assert.Equal(t, apperr.InvalidInput, apperr.CodeOf(err))
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
	assert.Empty(t, p.gemini.prompts)
	assert.Empty(t, p.svc.List(context.Background(), 0))
}

func TestAnalyze_UnavailableProviderPersistsNothing(t *testing.T) {
	p := newPipeline(t, nil)
	var hits int32
	server := pageServer(t, plainPage, &hits)

	_, err := p.svc.Analyze(context.Background(), server.URL, "groq")
	require.Error(t, err)
	assert.Equal(t, apperr.ProviderUnavailable, apperr.CodeOf(err))
	assert.Equal(t, 500, apperr.HTTPStatus(err))

	assert.Empty(t, p.svc.List(context.Background(), 0))
	assert.Empty(t, p.gemini.prompts)
}

func TestAnalyze_DeleteRemovesRecord(t *testing.T) {
	p := newPipeline(t, nil)
	server := pageServer(t, plainPage, nil)

	first, err := p.svc.Analyze(context.Background(), server.URL, "")
	require.NoError(t, err)
	second, err := p.svc.Analyze(context.Background(), server.URL+"/other", "")
	require.NoError(t, err)

	recent := p.svc.List(context.Background(), 0)
	require.Len(t, recent, 2)
	assert.Equal(t, second.AnalysisID, recent[0].ID)

	assert.True(t, p.svc.Delete(context.Background(), first.AnalysisID))

	_, found := p.svc.Get(context.Background(), first.AnalysisID)
	assert.False(t, found)

	recent = p.svc.List(context.Background(), 0)
	require.Len(t, recent, 1)
	assert.Equal(t, second.AnalysisID, recent[0].ID)

	assert.False(t, p.svc.Delete(context.Background(), first.AnalysisID))
}

func TestAnalyze_ExtractionFailure(t *testing.T) {
	p := newPipeline(t, nil)

	_, err := p.svc.Analyze(context.Background(), "http://127.0.0.1:1/unreachable", "")
	require.Error(t, err)
	assert.Equal(t, apperr.ExtractionFailed, apperr.CodeOf(err))
	assert.Empty(t, p.gemini.prompts)
	assert.Empty(t, p.svc.List(context.Background(), 0))
}

func TestAnalyze_SummaryFailureIsFatal(t *testing.T) {
	gem := workingProvider("gemini")
	gem.summaryErr = failure.New(apperr.ProviderCallFailed, failure.Message("Analysis with Gemini failed"))
	p := newPipeline(t, fakeSource{providers.Gemini: gem})
	server := pageServer(t, plainPage, nil)

	_, err := p.svc.Analyze(context.Background(), server.URL, "")
	require.Error(t, err)
	assert.Equal(t, apperr.ProviderCallFailed, apperr.CodeOf(err))
	assert.Equal(t, "Analysis with Gemini failed", apperr.Message(err))
	assert.Empty(t, p.svc.List(context.Background(), 0))
}

func TestAnalyze_EnrichmentFailuresAreAbsorbed(t *testing.T) {
	groq := workingProvider("groq")
	groq.evaluation = "not json at all"
	groq.resourcesErr = fmt.Errorf("rate limited")
	groq.code = ""
	p := newPipeline(t, fakeSource{providers.Groq: groq})
	server := pageServer(t, codePage, nil)

	resp, err := p.svc.Analyze(context.Background(), server.URL, "GROQ")
	require.NoError(t, err)

	assert.Equal(t, "groq", resp.AIProvider)
	assert.Equal(t, models.StatusFallback, resp.Evaluation.Status)
	assert.Equal(t, 3.0, resp.Evaluation.OverallRating)
	assert.NotNil(t, resp.RelatedResources)
	assert.Empty(t, resp.RelatedResources)
	assert.Equal(t, models.StatusFallback, resp.ResourcesStatus)
	require.NotNil(t, resp.CodeAnalysis)
	assert.Equal(t, providers.EmptyResponsePlaceholder, *resp.CodeAnalysis)

	record, found := p.svc.Get(context.Background(), resp.AnalysisID)
	require.True(t, found)
	assert.Equal(t, models.StatusFallback, record.EvaluationStatus)
	assert.Equal(t, "[]", record.RelatedResources)
}

func TestAnalyze_PersistenceFailureIsFatal(t *testing.T) {
	cfg := testConfig()
	log := zaptest.NewLogger(t)
	svc := NewAnalysisService(cfg, NewExtractor(cfg, log), fakeSource{providers.Gemini: workingProvider("gemini")},
		storage.NewAnalysisStore(nil, log), log)
	server := pageServer(t, plainPage, nil)

	_, err := svc.Analyze(context.Background(), server.URL, "")
	require.Error(t, err)
	assert.Equal(t, apperr.PersistenceUnavailable, apperr.CodeOf(err))

	// Lesepfade liefern ohne Datenbank leere Ergebnisse.
	_, found := svc.Get(context.Background(), 1)
	assert.False(t, found)
	assert.Empty(t, svc.List(context.Background(), 10))
	assert.False(t, svc.Delete(context.Background(), 1))
}

func TestAnalyze_SummaryMaxChars(t *testing.T) {
	gem := workingProvider("gemini")
	cfg := testConfig()
	cfg.SummaryMaxChars = 10
	log := zaptest.NewLogger(t)
	svc := NewAnalysisService(cfg, NewExtractor(cfg, log), fakeSource{providers.Gemini: gem}, newTestStore(t), log)
	server := pageServer(t, `<html><body>`+strings.Repeat("word ", 50)+`</body></html>`, nil)

	_, err := svc.Analyze(context.Background(), server.URL, "")
	require.NoError(t, err)
	assert.Equal(t, "word word ", gem.prompts[0])
}

func TestClampLimit(t *testing.T) {
	svc := NewAnalysisService(testConfig(), nil, fakeSource{}, nil, zaptest.NewLogger(t))
	assert.Equal(t, 20, svc.ClampLimit(0))
	assert.Equal(t, 20, svc.ClampLimit(-5))
	assert.Equal(t, 7, svc.ClampLimit(7))
	assert.Equal(t, 100, svc.ClampLimit(1000))
}
