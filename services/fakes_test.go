package services

import (
	"context"
	"strings"
	"sync"

	"content-agent/apperr"
	"content-agent/providers"

	"github.com/morikuni/failure/v2"
)

// fakeProvider antwortet je nach Prompt mit vorbereiteten Texten.
type fakeProvider struct {
	name string

	summary    string
	summaryErr error
	code       string

	evaluation    string
	evaluationErr error
	resources     string
	resourcesErr  error

	mu      sync.Mutex
	prompts []string
	options []providers.Options
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Summarize(_ context.Context, content, _ string) (string, error) {
	f.record(content, providers.SummaryOptions)
	if f.summaryErr != nil {
		return "", f.summaryErr
	}
	return providers.OrPlaceholder(f.summary), nil
}

func (f *fakeProvider) ExplainCode(_ context.Context, code string) string {
	f.record(code, providers.CodeOptions)
	return f.code
}

func (f *fakeProvider) CompleteJSON(_ context.Context, prompt string, opts providers.Options) (string, error) {
	f.record(prompt, opts)
	if strings.Contains(prompt, `"resources"`) {
		return f.resources, f.resourcesErr
	}
	return f.evaluation, f.evaluationErr
}

func (f *fakeProvider) record(prompt string, opts providers.Options) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.options = append(f.options, opts)
}

// fakeSource liefert pro Variante einen Provider oder einen Fehler.
type fakeSource map[providers.Variant]providers.Provider

func (s fakeSource) Provider(v providers.Variant) (providers.Provider, error) {
	if p, ok := s[v]; ok {
		return p, nil
	}
	return nil, failure.New(apperr.ProviderUnavailable,
		failure.Message(v.String()+" is not configured"),
	)
}

const validEvaluation = "```json\n" + `{
  "overall_rating": 4,
  "credibility_score": 4.5,
  "quality_score": 4,
  "recency_score": 3,
  "sources_score": 2,
  "objectivity_score": 5,
  "summary": "Solid introduction.",
  "strengths": ["clear"],
  "weaknesses": ["few sources"],
  "recommendation": "Worth reading."
}` + "\n```"

const validResources = `{"resources":[
  {"title":"Effective Go","url":"https://go.dev/doc/effective_go","type":"documentation","description":"Idioms","relevance":"Core reference"},
  {"title":"Go Tour","url":"https://go.dev/tour","type":"course","description":"Interactive","relevance":"Hands-on"}
]}`

func workingProvider(name string) *fakeProvider {
	return &fakeProvider{
		name:       name,
		summary:    "## Summary\nA page about Go.",
		code:       "This code creates a channel.",
		evaluation: validEvaluation,
		resources:  validResources,
	}
}
