package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/telebot.v3"
)

// Calculadora de lote: total = precio × cantidad + comisión % + flete.
const (
	stepCalcPrice      = "precio"
	stepCalcQty        = "cantidad"
	stepCalcCommission = "comision"
	stepCalcDelivery   = "flete"
)

var cien = decimal.NewFromInt(100)

func (b *Bot) startCalc(c telebot.Context) error {
	b.deps.Sessions.Begin(c.Sender().ID, flowCalc, stepCalcPrice)
	return c.Send("🧮 Calculadora de lote.\n¿Precio por tonelada? (ej. 12500 o 12 500,50)", cancelMenu())
}

func (b *Bot) stepCalc(c telebot.Context, sess *Session, text string) error {
	id := c.Sender().ID
	switch sess.Step {
	case stepCalcPrice:
		v, err := parseAmount(text)
		if err != nil || !v.IsPositive() {
			return c.Send("No veo un número. Envíe el precio de nuevo, ej. 12500")
		}
		b.deps.Sessions.Put(id, "precio", v.String())
		b.deps.Sessions.Advance(id, stepCalcQty)
		return c.Send("¿Cuántas toneladas? (ej. 10)")
	case stepCalcQty:
		v, err := parseAmount(text)
		if err != nil || !v.IsPositive() {
			return c.Send("No veo un número. Envíe la cantidad de nuevo, ej. 10")
		}
		b.deps.Sessions.Put(id, "cantidad", v.String())
		b.deps.Sessions.Advance(id, stepCalcCommission)
		return c.Send("¿Comisión del marketplace en porcentaje? (ej. 1.5) Envíe - para omitir.")
	case stepCalcCommission:
		pct := decimal.Zero
		if text != "-" {
			v, err := parseAmount(text)
			if err != nil || v.IsNegative() || v.GreaterThan(cien) {
				return c.Send("Envíe un porcentaje entre 0 y 100, o - para omitir.")
			}
			pct = v
		}
		b.deps.Sessions.Put(id, "comision", pct.String())
		b.deps.Sessions.Advance(id, stepCalcDelivery)
		return c.Send("¿Costo del flete? Envíe - para omitir.")
	case stepCalcDelivery:
		delivery := decimal.Zero
		if text != "-" {
			v, err := parseAmount(text)
			if err != nil || v.IsNegative() {
				return c.Send("Envíe el costo del flete como número, o - para omitir.")
			}
			delivery = v
		}
		price, _ := decimal.NewFromString(sess.Data["precio"])
		qty, _ := decimal.NewFromString(sess.Data["cantidad"])
		pct, _ := decimal.NewFromString(sess.Data["comision"])
		b.deps.Sessions.Clear(id)

		subtotal, commission, total := dealTotal(price, qty, pct, delivery)
		var sb strings.Builder
		sb.WriteString("🧮 Resultado\n")
		fmt.Fprintf(&sb, "Precio: %s/t\n", price.String())
		fmt.Fprintf(&sb, "Cantidad: %s t\n", qty.String())
		fmt.Fprintf(&sb, "Subtotal: %s\n", subtotal.StringFixed(2))
		fmt.Fprintf(&sb, "Comisión (%s%%): %s\n", pct.String(), commission.StringFixed(2))
		fmt.Fprintf(&sb, "Flete: %s\n", delivery.StringFixed(2))
		fmt.Fprintf(&sb, "Total: %s", total.StringFixed(2))
		return c.Send(sb.String(), mainMenu())
	default:
		return b.startCalc(c)
	}
}

// parseAmount admite coma decimal y espacios de miles (12 500,50).
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// dealTotal desglosa el total de una operación: subtotal, comisión y total final.
func dealTotal(price, qty, commissionPct, delivery decimal.Decimal) (subtotal, commission, total decimal.Decimal) {
	subtotal = price.Mul(qty)
	commission = subtotal.Mul(commissionPct).Div(cien)
	total = subtotal.Add(commission).Add(delivery)
	return subtotal, commission, total
}
