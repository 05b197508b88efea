package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// La búsqueda debe encontrar "Boyacá" escribiendo "boyaca" y viceversa.
func TestNormalizeQuery_QuitaAcentosYBajaMinusculas(t *testing.T) {
	cases := map[string]string{
		"Boyacá":        "boyaca",
		"  CÓRDOBA  ":   "cordoba",
		"maíz":          "maiz",
		"ya normal":     "ya normal",
		"":              "",
		"Río Magdalena": "rio magdalena",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeQuery(in), "entrada: %q", in)
	}
}
