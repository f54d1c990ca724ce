package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"content-agent/models"
	"content-agent/providers"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const evaluationExcerptLimit = 2000

// EvaluationOptions sind die Modellparameter der Bewertung.
var EvaluationOptions = providers.Options{Temperature: 0.3, MaxTokens: 2000}

const evaluationPrompt = `Evaluate the credibility and quality of the following web content.

URL: %s

Content excerpt:
%s

Respond with a single JSON object and nothing else, using exactly these fields:
{
  "overall_rating": <number 1-5>,
  "credibility_score": <number 1-5>,
  "quality_score": <number 1-5>,
  "recency_score": <number 1-5>,
  "sources_score": <number 1-5>,
  "objectivity_score": <number 1-5>,
  "summary": "<short assessment>",
  "strengths": ["<strength>", "..."],
  "weaknesses": ["<weakness>", "..."],
  "recommendation": "<recommendation for the reader>"
}`

// ProviderSource liefert den Client einer Provider-Variante.
type ProviderSource interface {
	Provider(v providers.Variant) (providers.Provider, error)
}

// evaluationPayload ist die erwartete Form der Modellantwort.
// Fehlende Werte gelten als fehlerhafte Antwort.
type evaluationPayload struct {
	OverallRating    *float64 `json:"overall_rating" validate:"required"`
	CredibilityScore *float64 `json:"credibility_score" validate:"required"`
	QualityScore     *float64 `json:"quality_score" validate:"required"`
	RecencyScore     *float64 `json:"recency_score" validate:"required"`
	SourcesScore     *float64 `json:"sources_score" validate:"required"`
	ObjectivityScore *float64 `json:"objectivity_score" validate:"required"`
	Summary          string   `json:"summary"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Recommendation   string   `json:"recommendation"`
}

// Evaluator bewertet Glaubwürdigkeit und Qualität einer Quelle.
type Evaluator struct {
	providers ProviderSource
	validate  *validator.Validate
	Logger    *zap.Logger
}

// NewEvaluator erstellt einen neuen Evaluator.
func NewEvaluator(ps ProviderSource, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		providers: ps,
		validate:  validator.New(),
		Logger:    logger,
	}
}

// Assess fragt die Bewertung beim Provider an und gibt jeden Fehler zurück.
func (e *Evaluator) Assess(ctx context.Context, url, content string, v providers.Variant) (models.EvaluationResult, error) {
	p, err := e.providers.Provider(v)
	if err != nil {
		return models.EvaluationResult{}, err
	}

	prompt := fmt.Sprintf(evaluationPrompt, url, models.TruncateRunes(content, evaluationExcerptLimit))
	raw, err := p.CompleteJSON(ctx, prompt, EvaluationOptions)
	if err != nil {
		return models.EvaluationResult{}, err
	}

	var payload evaluationPayload
	if err := json.Unmarshal([]byte(jsonObject(raw)), &payload); err != nil {
		return models.EvaluationResult{}, fmt.Errorf("malformed evaluation response: %w", err)
	}
	if err := e.validate.Struct(payload); err != nil {
		return models.EvaluationResult{}, fmt.Errorf("incomplete evaluation response: %w", err)
	}

	return models.EvaluationResult{
		OverallRating:    models.ClampScore(*payload.OverallRating),
		CredibilityScore: models.ClampScore(*payload.CredibilityScore),
		QualityScore:     models.ClampScore(*payload.QualityScore),
		RecencyScore:     models.ClampScore(*payload.RecencyScore),
		SourcesScore:     models.ClampScore(*payload.SourcesScore),
		ObjectivityScore: models.ClampScore(*payload.ObjectivityScore),
		Summary:          payload.Summary,
		Strengths:        nonNil(payload.Strengths),
		Weaknesses:       nonNil(payload.Weaknesses),
		Recommendation:   payload.Recommendation,
		Status:           models.StatusComputed,
	}, nil
}

// Evaluate schlägt nie fehl: jeder Fehler ergibt das neutrale Ersatzergebnis.
func (e *Evaluator) Evaluate(ctx context.Context, url, content string, v providers.Variant) models.EvaluationResult {
	result, err := e.Assess(ctx, url, content, v)
	if err != nil {
		e.Logger.Warn("Evaluation failed, using fallback", zap.String("url", url), zap.Error(err))
		return models.FallbackEvaluation(err)
	}
	return result
}

// jsonObject schneidet Markdown-Zäune und Begleittext um das erste JSON-Objekt ab.
func jsonObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return strings.TrimSpace(raw)
	}
	return raw[start : end+1]
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
