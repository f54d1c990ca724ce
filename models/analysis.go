package models

import (
	"time"
	"unicode/utf8"
)

// ContentPreviewLimit ist die maximale Länge der gespeicherten Inhaltsvorschau in Zeichen.
const ContentPreviewLimit = 500

// Analysis ist der persistierte Datensatz einer abgeschlossenen Analyse.
// Datensätze werden nur angelegt und gelöscht, nie aktualisiert.
type Analysis struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	URL            string  `json:"url" gorm:"index;not null"`
	Title          string  `json:"title"`
	ContentPreview string  `json:"content_preview" gorm:"type:text"`
	AnalysisResult string  `json:"analysis_result" gorm:"type:text;not null"`
	CodeAnalysis   *string `json:"code_analysis,omitempty" gorm:"type:text"`

	// Flache Bewertung
	OverallRating     float64 `json:"overall_rating"`
	CredibilityScore  float64 `json:"credibility_score"`
	QualityScore      float64 `json:"quality_score"`
	RecencyScore      float64 `json:"recency_score"`
	SourcesScore      float64 `json:"sources_score"`
	ObjectivityScore  float64 `json:"objectivity_score"`
	EvaluationSummary string  `json:"evaluation_summary" gorm:"type:text"`
	EvaluationStatus  string  `json:"evaluation_status"`

	RelatedResources string `json:"related_resources" gorm:"type:text"` // JSON-String
	AIProvider       string `json:"ai_provider" gorm:"index"`
}

// TableName gibt explizit den Tabellennamen an.
func (Analysis) TableName() string {
	return "analyses"
}

// TruncateRunes kürzt s auf höchstens n Zeichen (nicht Bytes).
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
