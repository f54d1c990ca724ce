package gemini

import (
	"context"
	"strings"

	"content-agent/apperr"
	"content-agent/config"
	"content-agent/providers"

	"github.com/morikuni/failure/v2"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Client implementiert das Provider-Interface für Google Gemini.
type Client struct {
	client   *genai.Client
	model    string
	language string
	Logger   *zap.Logger
}

// New erstellt einen neuen Gemini-Client. Ohne GEMINI_API_KEY schlägt der Aufruf fehl.
func New(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, failure.New(apperr.ProviderUnavailable,
			failure.Message("GEMINI_API_KEY is not configured"),
			failure.Context{"provider": "gemini"},
		)
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GeminiBaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.GeminiBaseURL}
	}

	gc, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, failure.Translate(err, apperr.ProviderUnavailable,
			failure.Message("Gemini client could not be created"),
		)
	}

	return &Client{
		client:   gc,
		model:    cfg.GeminiModel,
		language: cfg.SummaryLanguage,
		Logger:   logger.With(zap.String("provider", "gemini"), zap.String("model", cfg.GeminiModel)),
	}, nil
}

// Name gibt den Namen des Providers zurück.
func (c *Client) Name() string {
	return "gemini"
}

// Summarize lässt den Seiteninhalt von Gemini zusammenfassen und erklären.
func (c *Client) Summarize(ctx context.Context, content, url string) (string, error) {
	c.Logger.Debug("Requesting summary", zap.String("url", url), zap.Int("content_length", len(content)))

	text, err := c.generate(ctx, providers.SummaryPrompt(c.language, url, content), generationConfig(providers.SummaryOptions, false))
	if err != nil {
		return "", failure.Translate(err, apperr.ProviderCallFailed,
			failure.Message("Analysis with Gemini failed"),
			failure.Context{"provider": "gemini"},
		)
	}
	return providers.OrPlaceholder(text), nil
}

// ExplainCode erklärt Code-Fragmente; Fehler werden als Text zurückgegeben.
func (c *Client) ExplainCode(ctx context.Context, code string) string {
	text, err := c.generate(ctx, providers.CodePrompt(c.language, code), generationConfig(providers.CodeOptions, false))
	if err != nil {
		c.Logger.Warn("Code explanation failed", zap.Error(err))
		return providers.CodeErrorText(err)
	}
	return providers.OrPlaceholder(text)
}

// CompleteJSON fordert eine JSON-Antwort an.
func (c *Client) CompleteJSON(ctx context.Context, prompt string, opts providers.Options) (string, error) {
	text, err := c.generate(ctx, prompt, generationConfig(opts, true))
	if err != nil {
		return "", failure.Translate(err, apperr.ProviderCallFailed, failure.Context{"provider": "gemini"})
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string, gc *genai.GenerateContentConfig) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), gc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

func generationConfig(opts providers.Options, jsonMode bool) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: int32(opts.MaxTokens),
	}
	if jsonMode {
		gc.ResponseMIMEType = "application/json"
	}
	return gc
}
