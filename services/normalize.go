package services

import (
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Typografische Ligaturen, wie sie in Webfonts und kopierten PDFs vorkommen.
var ligatures = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬆ", "st",
)

// NormalizeText ersetzt Ligaturen, normalisiert nach NFC und fasst Leerraum zu einzelnen Leerzeichen zusammen.
func NormalizeText(s string) string {
	s = ligatures.Replace(s)
	if normalized, _, err := transform.String(norm.NFC, s); err == nil {
		s = normalized
	}
	return strings.Join(strings.Fields(s), " ")
}
