package http

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeQuery baja a minúsculas y quita acentos para que la búsqueda del
// panel encuentre "Boyacá" con "boyaca".
func normalizeQuery(q string) string {
	folded, _, err := transform.String(foldTransformer, q)
	if err != nil {
		folded = q
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
