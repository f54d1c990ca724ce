package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"content-agent/apperr"
	"content-agent/config"
	"content-agent/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/morikuni/failure/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

var validURL = regexp.MustCompile(`(?i)^https?://(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|localhost|\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})(?::\d+)?(?:/?|[/?]\S+)$`)

// IsValidURL prüft rein syntaktisch, ob s eine http(s)-URL mit gültigem Host ist.
func IsValidURL(s string) bool {
	return validURL.MatchString(s)
}

// Metadaten-Quellen in der Reihenfolge, in der sie geprüft werden.
var (
	authorProbes = []metaProbe{
		{selector: `meta[name="author"]`, attr: "content"},
		{selector: `meta[property="article:author"]`, attr: "content"},
	}
	dateProbes = []metaProbe{
		{selector: `meta[name="publish-date"]`, attr: "content"},
		{selector: `meta[property="article:published_time"]`, attr: "content"},
		{selector: `time[datetime]`, attr: "datetime"},
		{selector: `time`},
	}
)

type metaProbe struct {
	selector string
	attr     string // leer = sichtbarer Text
}

// CustomTransport fügt jeder Anfrage einen User-Agent-Header hinzu.
type CustomTransport struct {
	Transport http.RoundTripper
	UserAgent string
}

func (t *CustomTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	return t.Transport.RoundTrip(req)
}

// Extractor lädt eine Seite und zerlegt sie in ContentData.
type Extractor struct {
	httpClient *http.Client
	Logger     *zap.Logger
}

// NewExtractor erstellt einen Extractor mit festem Timeout und Browser-User-Agent.
func NewExtractor(cfg *config.Config, logger *zap.Logger) *Extractor {
	return &Extractor{
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout,
			Transport: &CustomTransport{
				Transport: http.DefaultTransport,
				UserAgent: cfg.FetchUserAgent,
			},
		},
		Logger: logger,
	}
}

// Extract lädt url und extrahiert Titel, Text, Code-Blöcke, Autor und Datum.
func (e *Extractor) Extract(ctx context.Context, url string) (*models.ContentData, error) {
	log := e.Logger.With(zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, extractionError(url, err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		log.Warn("Fetch failed", zap.Error(err))
		return nil, extractionError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("Unexpected status", zap.Int("status", resp.StatusCode))
		return nil, extractionError(url, fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, extractionError(url, err)
	}

	content, err := Parse(url, body)
	if err != nil {
		return nil, err
	}
	log.Debug("Page extracted",
		zap.String("title", content.Title),
		zap.Int("content_length", len(content.MainContent)),
		zap.Int("code_blocks", len(content.CodeBlocks)))
	return content, nil
}

// Parse zerlegt bereits geladenes Markup.
func Parse(url string, r io.Reader) (*models.ContentData, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, extractionError(url, err)
	}

	doc.Find("script, style").Remove()

	title := NormalizeText(doc.Find("title").First().Text())
	mainContent := NormalizeText(doc.Find("body").Text())

	var codeBlocks []string
	doc.Find("code, pre").Each(func(_ int, s *goquery.Selection) {
		if code := strings.TrimSpace(s.Text()); code != "" {
			codeBlocks = append(codeBlocks, code)
		}
	})

	return models.NewContentData(
		url,
		title,
		mainContent,
		codeBlocks,
		firstMatch(doc, authorProbes),
		firstMatch(doc, dateProbes),
	), nil
}

func firstMatch(doc *goquery.Document, probes []metaProbe) string {
	for _, p := range probes {
		sel := doc.Find(p.selector).First()
		if sel.Length() == 0 {
			continue
		}
		var v string
		if p.attr == "" {
			v = sel.Text()
		} else {
			v, _ = sel.Attr(p.attr)
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func extractionError(url string, cause error) error {
	return failure.Translate(cause, apperr.ExtractionFailed,
		failure.Message("Failed to extract content from the page"),
		failure.Context{"url": url},
	)
}
