package bot

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests calculadora de lote
// ──────────────────────────────────────────────────────────────────────────────

// Con comisión y flete: subtotal, comisión sobre el subtotal y total sumado.
func TestDealTotal_ConComisionYFlete(t *testing.T) {
	price := decimal.NewFromInt(12500)
	qty := decimal.NewFromInt(10)
	pct := decimal.NewFromFloat(1.5)
	delivery := decimal.NewFromInt(800)

	subtotal, commission, total := dealTotal(price, qty, pct, delivery)

	assert.True(t, subtotal.Equal(decimal.NewFromInt(125000)), "subtotal = precio × cantidad")
	assert.True(t, commission.Equal(decimal.NewFromInt(1875)), "comisión = 1.5% del subtotal")
	assert.True(t, total.Equal(decimal.NewFromInt(127675)))
}

// Sin comisión ni flete el total es el subtotal.
func TestDealTotal_SinExtras(t *testing.T) {
	subtotal, commission, total := dealTotal(
		decimal.NewFromInt(900), decimal.NewFromInt(20), decimal.Zero, decimal.Zero)

	assert.True(t, subtotal.Equal(decimal.NewFromInt(18000)))
	assert.True(t, commission.IsZero())
	assert.True(t, total.Equal(subtotal))
}

// El usuario escribe montos con coma decimal y espacios de miles.
func TestParseAmount_AceptaComaYEspacios(t *testing.T) {
	v, err := parseAmount("12 500,50")
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.NewFromFloat(12500.50)))
}

func TestParseAmount_RechazaTexto(t *testing.T) {
	_, err := parseAmount("mucho")
	assert.Error(t, err)
}
