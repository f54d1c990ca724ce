package services

import (
	"context"
	"strings"

	"content-agent/providers"

	"go.uber.org/zap"
)

// CodeBlockSeparator trennt die Code-Blöcke einer Seite vor der Analyse.
const CodeBlockSeparator = "\n\n"

// CodeAnalyzer erklärt die auf einer Seite gefundenen Code-Fragmente.
type CodeAnalyzer struct {
	providers ProviderSource
	Logger    *zap.Logger
}

// NewCodeAnalyzer erstellt einen neuen CodeAnalyzer.
func NewCodeAnalyzer(ps ProviderSource, logger *zap.Logger) *CodeAnalyzer {
	return &CodeAnalyzer{providers: ps, Logger: logger}
}

// Analyze liefert immer einen Text; Fehler werden als kurze Meldung zurückgegeben.
func (a *CodeAnalyzer) Analyze(ctx context.Context, code string, v providers.Variant) string {
	p, err := a.providers.Provider(v)
	if err != nil {
		a.Logger.Warn("Code analysis skipped", zap.Error(err))
		return providers.CodeErrorText(err)
	}
	return providers.OrPlaceholder(p.ExplainCode(ctx, code))
}

// JoinCodeBlocks fügt die Blöcke in Dokumentreihenfolge zusammen.
func JoinCodeBlocks(blocks []string) string {
	return strings.Join(blocks, CodeBlockSeparator)
}
