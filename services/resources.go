package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"content-agent/models"
	"content-agent/providers"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	resourceExcerptLimit = 1000
	maxRelatedResources  = 5
)

// ResourceOptions sind die Modellparameter der Ressourcensuche.
var ResourceOptions = providers.Options{Temperature: 0.5, MaxTokens: 2000}

const resourcePrompt = `Suggest up to %d high-quality external resources related to the topic of the following content.

URL: %s

Topic excerpt:
%s

Respond with a single JSON object and nothing else:
{
  "resources": [
    {
      "title": "<title>",
      "url": "<url>",
      "type": "<article|book|course|documentation|video>",
      "description": "<one sentence>",
      "relevance": "<why it is relevant>"
    }
  ]
}`

type resourcePayload struct {
	Resources []models.RelatedResource `json:"resources"`
}

// ResourceFinder schlägt verwandte Ressourcen zu einem Thema vor.
type ResourceFinder struct {
	providers ProviderSource
	Logger    *zap.Logger
}

// NewResourceFinder erstellt einen neuen ResourceFinder.
func NewResourceFinder(ps ProviderSource, logger *zap.Logger) *ResourceFinder {
	return &ResourceFinder{providers: ps, Logger: logger}
}

// Lookup fragt die Vorschläge an. Fehlt die Liste in der Antwort, ist das Ergebnis leer.
func (f *ResourceFinder) Lookup(ctx context.Context, excerpt, url string, v providers.Variant) ([]models.RelatedResource, error) {
	p, err := f.providers.Provider(v)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(resourcePrompt, maxRelatedResources, url, models.TruncateRunes(excerpt, resourceExcerptLimit))
	raw, err := p.CompleteJSON(ctx, prompt, ResourceOptions)
	if err != nil {
		return nil, err
	}

	var payload resourcePayload
	if err := json.Unmarshal([]byte(jsonObject(raw)), &payload); err != nil {
		return nil, fmt.Errorf("malformed resources response: %w", err)
	}

	resources := lo.Filter(payload.Resources, func(r models.RelatedResource, _ int) bool {
		return strings.TrimSpace(r.Title) != "" || strings.TrimSpace(r.URL) != ""
	})
	return lo.Slice(resources, 0, maxRelatedResources), nil
}

// FindRelated schlägt nie fehl: jeder Fehler ergibt eine leere Liste.
func (f *ResourceFinder) FindRelated(ctx context.Context, excerpt, url string, v providers.Variant) []models.RelatedResource {
	resources, err := f.Lookup(ctx, excerpt, url, v)
	if err != nil {
		f.Logger.Warn("Resource lookup failed", zap.String("url", url), zap.Error(err))
		return []models.RelatedResource{}
	}
	return resources
}
