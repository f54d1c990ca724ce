package providers

import (
	"context"
	"fmt"
	"strings"
)

// Provider ist das Interface, das jeder KI-Provider (z.B. Gemini, Groq) implementieren muss.
type Provider interface {
	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "gemini").
	Name() string

	// Summarize fasst den Inhalt einer Seite zusammen und erklärt ihn.
	// Fehler sind Pipeline-Fehler und werden nicht ersetzt.
	Summarize(ctx context.Context, content, url string) (string, error)

	// ExplainCode erkennt und erklärt Code-Fragmente. Fehler werden als kurzer Text zurückgegeben.
	ExplainCode(ctx context.Context, code string) string

	// CompleteJSON fordert ein JSON-Objekt für den gegebenen Prompt an und gibt den Rohtext zurück.
	CompleteJSON(ctx context.Context, prompt string, opts Options) (string, error)
}

// Options steuern einen einzelnen Modellaufruf.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// Standardparameter der einzelnen Aufrufarten.
var (
	SummaryOptions = Options{Temperature: 0.7, MaxTokens: 8000}
	CodeOptions    = Options{Temperature: 0.7, MaxTokens: 4000}
)

// Variant wählt einen der beiden austauschbaren Provider.
type Variant int

const (
	Gemini Variant = iota
	Groq
)

// String gibt den Bezeichner der Variante zurück.
func (v Variant) String() string {
	switch v {
	case Gemini:
		return "gemini"
	case Groq:
		return "groq"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant wertet einen Provider-Bezeichner ohne Beachtung der Groß-/Kleinschreibung aus.
// Leere oder unbekannte Bezeichner ergeben Gemini.
func ParseVariant(s string) Variant {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "groq":
		return Groq
	default:
		return Gemini
	}
}

// Texte, die anstelle leerer oder fehlgeschlagener Antworten geliefert werden.
const (
	EmptyResponsePlaceholder = "Sorry, the analysis failed: the model returned no content."
	codeErrorFormat          = "Code analysis failed: %s"
)

// CodeErrorText formatiert die Meldung für eine fehlgeschlagene Code-Erklärung.
func CodeErrorText(err error) string {
	return fmt.Sprintf(codeErrorFormat, err.Error())
}

// OrPlaceholder ersetzt eine leere Modellantwort durch den Platzhalter.
func OrPlaceholder(text string) string {
	if strings.TrimSpace(text) == "" {
		return EmptyResponsePlaceholder
	}
	return text
}
