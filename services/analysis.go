package services

import (
	"context"
	"encoding/json"
	"time"

	"content-agent/apperr"
	"content-agent/config"
	"content-agent/models"
	"content-agent/providers"

	"github.com/morikuni/failure/v2"
	"go.uber.org/zap"
)

// Stage bezeichnet einen Schritt der Analyse-Pipeline.
type Stage string

const (
	StageValidating       Stage = "validating"
	StageExtracting       Stage = "extracting"
	StageSummarizing      Stage = "summarizing"
	StageEvaluating       Stage = "evaluating"
	StageFindingResources Stage = "finding_resources"
	StageAnalyzingCode    Stage = "analyzing_code"
	StagePersisting       Stage = "persisting"
)

// ContentExtractor lädt und zerlegt eine Seite.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (*models.ContentData, error)
}

// AnalysisGateway ist die Persistenzschicht für Analyse-Datensätze.
type AnalysisGateway interface {
	Save(ctx context.Context, a *models.Analysis) (uint, error)
	FindByID(ctx context.Context, id uint) (*models.Analysis, error)
	FindRecent(ctx context.Context, limit int) ([]models.Analysis, error)
	DeleteByID(ctx context.Context, id uint) (bool, error)
}

// AnalysisResponse bündelt das Ergebnis einer abgeschlossenen Analyse.
type AnalysisResponse struct {
	AnalysisID       uint                     `json:"analysis_id"`
	URL              string                   `json:"url"`
	Title            string                   `json:"title"`
	Analysis         string                   `json:"analysis"`
	CodeAnalysis     *string                  `json:"code_analysis,omitempty"`
	Evaluation       models.EvaluationResult  `json:"evaluation"`
	RelatedResources []models.RelatedResource `json:"related_resources"`
	ResourcesStatus  string                   `json:"resources_status"`
	HasCode          bool                     `json:"has_code"`
	AIProvider       string                   `json:"ai_provider"`
	Timestamp        time.Time                `json:"timestamp"`
}

// AnalysisService führt die Pipeline aus und bietet Lese- und Löschzugriff auf den Verlauf.
// Der Service hält keinen Zustand zwischen Anfragen.
type AnalysisService struct {
	extractor ContentExtractor
	providers ProviderSource
	evaluator *Evaluator
	resources *ResourceFinder
	code      *CodeAnalyzer
	store     AnalysisGateway

	summaryMaxChars int
	defaultLimit    int
	maxLimit        int

	Logger *zap.Logger
}

// NewAnalysisService erstellt den Service samt Anreicherungsschritten.
func NewAnalysisService(cfg *config.Config, extractor ContentExtractor, ps ProviderSource, store AnalysisGateway, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		extractor:       extractor,
		providers:       ps,
		evaluator:       NewEvaluator(ps, logger),
		resources:       NewResourceFinder(ps, logger),
		code:            NewCodeAnalyzer(ps, logger),
		store:           store,
		summaryMaxChars: cfg.SummaryMaxChars,
		defaultLimit:    cfg.HistoryDefaultLimit,
		maxLimit:        cfg.HistoryMaxLimit,
		Logger:          logger,
	}
}

// Analyze führt alle Schritte strikt nacheinander aus.
// Validierung, Extraktion, Zusammenfassung und Speicherung brechen die Analyse bei Fehlern ab;
// Bewertung, Ressourcensuche und Code-Analyse liefern stattdessen Ersatzwerte.
func (s *AnalysisService) Analyze(ctx context.Context, url, providerID string) (resp *AnalysisResponse, err error) {
	variant := providers.ParseVariant(providerID)
	log := s.Logger.With(zap.String("url", url), zap.String("provider", variant.String()))

	defer func() {
		outcome := "success"
		if err != nil {
			outcome = string(apperr.CodeOf(err))
			log.Error("Analysis failed", zap.String("code", outcome), zap.Error(err))
		}
		analysesCounter.WithLabelValues(variant.String(), outcome).Inc()
	}()

	log.Info("Starting analysis", zap.String("stage", string(StageValidating)))
	if !IsValidURL(url) {
		return nil, failure.New(apperr.InvalidInput,
			failure.Message("Invalid URL format"),
			failure.Context{"url": url},
		)
	}

	start := time.Now()
	content, err := s.extractor.Extract(ctx, url)
	observe(StageExtracting, start)
	if err != nil {
		return nil, err
	}
	log.Debug("Content extracted", zap.String("title", content.Title), zap.Bool("has_code", content.HasCode))

	start = time.Now()
	summary, err := s.summarize(ctx, content, variant)
	observe(StageSummarizing, start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	evaluation, evalErr := s.evaluator.Assess(ctx, url, content.MainContent, variant)
	observe(StageEvaluating, start)
	if evalErr != nil {
		log.Warn("Evaluation failed, using fallback", zap.Error(evalErr))
		fallbackCounter.WithLabelValues(string(StageEvaluating)).Inc()
		evaluation = models.FallbackEvaluation(evalErr)
	}

	start = time.Now()
	resourcesStatus := models.StatusComputed
	related, resErr := s.resources.Lookup(ctx, content.MainContent, url, variant)
	observe(StageFindingResources, start)
	if resErr != nil {
		log.Warn("Resource lookup failed, returning none", zap.Error(resErr))
		fallbackCounter.WithLabelValues(string(StageFindingResources)).Inc()
		related = []models.RelatedResource{}
		resourcesStatus = models.StatusFallback
	}
	if related == nil {
		related = []models.RelatedResource{}
	}

	var codeAnalysis *string
	if content.HasCode {
		start = time.Now()
		text := s.code.Analyze(ctx, JoinCodeBlocks(content.CodeBlocks), variant)
		observe(StageAnalyzingCode, start)
		codeAnalysis = &text
	}

	relatedJSON, err := json.Marshal(related)
	if err != nil {
		return nil, failure.Translate(err, apperr.Internal)
	}

	record := &models.Analysis{
		URL:               url,
		Title:             content.Title,
		ContentPreview:    models.TruncateRunes(content.MainContent, models.ContentPreviewLimit),
		AnalysisResult:    summary,
		CodeAnalysis:      codeAnalysis,
		OverallRating:     evaluation.OverallRating,
		CredibilityScore:  evaluation.CredibilityScore,
		QualityScore:      evaluation.QualityScore,
		RecencyScore:      evaluation.RecencyScore,
		SourcesScore:      evaluation.SourcesScore,
		ObjectivityScore:  evaluation.ObjectivityScore,
		EvaluationSummary: evaluation.Summary,
		EvaluationStatus:  evaluation.Status,
		RelatedResources:  string(relatedJSON),
		AIProvider:        variant.String(),
	}

	start = time.Now()
	id, err := s.store.Save(ctx, record)
	observe(StagePersisting, start)
	if err != nil {
		return nil, err
	}
	log.Info("Analysis completed", zap.Uint("analysis_id", id))

	return &AnalysisResponse{
		AnalysisID:       id,
		URL:              url,
		Title:            content.Title,
		Analysis:         summary,
		CodeAnalysis:     codeAnalysis,
		Evaluation:       evaluation,
		RelatedResources: related,
		ResourcesStatus:  resourcesStatus,
		HasCode:          content.HasCode,
		AIProvider:       variant.String(),
		Timestamp:        time.Now().UTC(),
	}, nil
}

func (s *AnalysisService) summarize(ctx context.Context, content *models.ContentData, v providers.Variant) (string, error) {
	p, err := s.providers.Provider(v)
	if err != nil {
		return "", err
	}
	text := content.MainContent
	if s.summaryMaxChars > 0 {
		text = models.TruncateRunes(text, s.summaryMaxChars)
	}
	return p.Summarize(ctx, text, content.URL)
}

// Get liest einen Datensatz. Ist die Datenbank nicht erreichbar, gilt er als nicht vorhanden.
func (s *AnalysisService) Get(ctx context.Context, id uint) (*models.Analysis, bool) {
	a, err := s.store.FindByID(ctx, id)
	if err != nil {
		if !failure.Is(err, apperr.NotFound) {
			s.Logger.Warn("Reading analysis failed", zap.Uint("id", id), zap.Error(err))
		}
		return nil, false
	}
	return a, true
}

// List liefert die neuesten Analysen zuerst; bei Datenbankfehlern eine leere Liste.
func (s *AnalysisService) List(ctx context.Context, limit int) []models.Analysis {
	analyses, err := s.store.FindRecent(ctx, s.ClampLimit(limit))
	if err != nil {
		s.Logger.Warn("Listing analyses failed", zap.Error(err))
		return []models.Analysis{}
	}
	return analyses
}

// Delete löscht einen Datensatz und meldet, ob er existiert hat.
func (s *AnalysisService) Delete(ctx context.Context, id uint) bool {
	ok, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		s.Logger.Warn("Deleting analysis failed", zap.Uint("id", id), zap.Error(err))
		return false
	}
	return ok
}

// ClampLimit setzt fehlende Limits auf den Standardwert und begrenzt zu große.
func (s *AnalysisService) ClampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

func observe(stage Stage, start time.Time) {
	stageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}
