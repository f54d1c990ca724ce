package models

import "fmt"

const (
	// StatusComputed markiert ein vom Provider berechnetes Ergebnis.
	StatusComputed = "computed"
	// StatusFallback markiert einen Platzhalter nach einem internen Fehler.
	StatusFallback = "fallback"

	MinScore     = 1.0
	MaxScore     = 5.0
	neutralScore = 3.0
)

// EvaluationResult ist die strukturierte Bewertung von Glaubwürdigkeit und Qualität einer Quelle.
type EvaluationResult struct {
	OverallRating    float64  `json:"overall_rating"`
	CredibilityScore float64  `json:"credibility_score"`
	QualityScore     float64  `json:"quality_score"`
	RecencyScore     float64  `json:"recency_score"`
	SourcesScore     float64  `json:"sources_score"`
	ObjectivityScore float64  `json:"objectivity_score"`
	Summary          string   `json:"summary"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Recommendation   string   `json:"recommendation"`
	Status           string   `json:"status"`
}

// FallbackEvaluation erzeugt das neutrale Ersatzergebnis (alle Werte 3) für einen fehlgeschlagenen Bewertungsschritt.
func FallbackEvaluation(cause error) EvaluationResult {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return EvaluationResult{
		OverallRating:    neutralScore,
		CredibilityScore: neutralScore,
		QualityScore:     neutralScore,
		RecencyScore:     neutralScore,
		SourcesScore:     neutralScore,
		ObjectivityScore: neutralScore,
		Summary:          fmt.Sprintf("Evaluation failed: %s", msg),
		Strengths:        []string{},
		Weaknesses:       []string{},
		Recommendation:   "The source could not be evaluated due to a technical error.",
		Status:           StatusFallback,
	}
}

// Scores gibt die sechs Teilwerte in fester Reihenfolge zurück.
func (e EvaluationResult) Scores() []float64 {
	return []float64{
		e.OverallRating,
		e.CredibilityScore,
		e.QualityScore,
		e.RecencyScore,
		e.SourcesScore,
		e.ObjectivityScore,
	}
}

// ClampScore begrenzt einen Wert auf [MinScore, MaxScore].
func ClampScore(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// RelatedResource ist ein vorgeschlagenes externes Lernmaterial zum Thema.
type RelatedResource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Relevance   string `json:"relevance"`
}
