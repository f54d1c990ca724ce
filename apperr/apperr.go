// Package apperr definiert die stabilen Fehlercodes der Analyse-Pipeline.
package apperr

import (
	"net/http"

	"github.com/morikuni/failure/v2"
)

// Code ist ein maschinenlesbarer Fehlercode, der im Fehler-Envelope ausgeliefert wird.
type Code string

const (
	InvalidInput           Code = "INVALID_INPUT"
	ExtractionFailed       Code = "EXTRACTION_FAILED"
	ProviderUnavailable    Code = "PROVIDER_UNAVAILABLE"
	ProviderCallFailed     Code = "PROVIDER_CALL_FAILED"
	PersistenceUnavailable Code = "PERSISTENCE_UNAVAILABLE"
	NotFound               Code = "NOT_FOUND"

	// Internal wird gemeldet, wenn ein Fehler keinen der obigen Codes trägt.
	Internal Code = "INTERNAL_ERROR"
)

var knownCodes = []Code{
	InvalidInput,
	ExtractionFailed,
	ProviderUnavailable,
	ProviderCallFailed,
	PersistenceUnavailable,
	NotFound,
}

// CodeOf liefert den Code des Fehlers oder Internal.
func CodeOf(err error) Code {
	for _, c := range knownCodes {
		if failure.Is(err, c) {
			return c
		}
	}
	return Internal
}

// HTTPStatus bildet einen Fehler auf den HTTP-Status ab.
// Nur Eingabefehler sind Client-Fehler; alles andere ist ein Serverfehler.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case InvalidInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message liefert die für Menschen lesbare Fehlermeldung.
func Message(err error) string {
	if msg := failure.MessageOf(err); msg != "" {
		return msg.String()
	}
	return err.Error()
}
