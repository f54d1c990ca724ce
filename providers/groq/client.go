package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"content-agent/apperr"
	"content-agent/config"
	"content-agent/providers"

	"github.com/morikuni/failure/v2"
	"go.uber.org/zap"
)

const systemPrompt = "You are a careful assistant that explains web content to a general audience."

// Client implementiert das Provider-Interface für Groq über die OpenAI-kompatible REST-API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	language   string
	httpClient *http.Client
	Logger     *zap.Logger
}

// New erstellt einen neuen Groq-Client. Ohne GROQ_API_KEY schlägt der Aufruf fehl.
func New(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	if cfg.GroqAPIKey == "" {
		return nil, failure.New(apperr.ProviderUnavailable,
			failure.Message("GROQ_API_KEY is not configured"),
			failure.Context{"provider": "groq"},
		)
	}
	return &Client{
		apiKey:     cfg.GroqAPIKey,
		baseURL:    strings.TrimRight(cfg.GroqBaseURL, "/"),
		model:      cfg.GroqModel,
		language:   cfg.SummaryLanguage,
		httpClient: &http.Client{},
		Logger:     logger.With(zap.String("provider", "groq"), zap.String("model", cfg.GroqModel)),
	}, nil
}

// Name gibt den Namen des Providers zurück.
func (c *Client) Name() string {
	return "groq"
}

// Summarize lässt den Seiteninhalt von Groq zusammenfassen und erklären.
func (c *Client) Summarize(ctx context.Context, content, url string) (string, error) {
	c.Logger.Debug("Requesting summary", zap.String("url", url), zap.Int("content_length", len(content)))

	text, err := c.complete(ctx, providers.SummaryPrompt(c.language, url, content), providers.SummaryOptions, false)
	if err != nil {
		return "", failure.Translate(err, apperr.ProviderCallFailed,
			failure.Message("Analysis with Groq failed"),
			failure.Context{"provider": "groq"},
		)
	}
	return providers.OrPlaceholder(text), nil
}

// ExplainCode erklärt Code-Fragmente; Fehler werden als Text zurückgegeben.
func (c *Client) ExplainCode(ctx context.Context, code string) string {
	text, err := c.complete(ctx, providers.CodePrompt(c.language, code), providers.CodeOptions, false)
	if err != nil {
		c.Logger.Warn("Code explanation failed", zap.Error(err))
		return providers.CodeErrorText(err)
	}
	return providers.OrPlaceholder(text)
}

// CompleteJSON fordert über response_format ein JSON-Objekt an.
func (c *Client) CompleteJSON(ctx context.Context, prompt string, opts providers.Options) (string, error) {
	text, err := c.complete(ctx, prompt, opts, true)
	if err != nil {
		return "", failure.Translate(err, apperr.ProviderCallFailed, failure.Context{"provider": "groq"})
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, prompt string, opts providers.Options, jsonMode bool) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("Groq API returned non-200 status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", fmt.Errorf("groq request failed with status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("groq API error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
