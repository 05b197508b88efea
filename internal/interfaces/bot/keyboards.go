package bot

import (
	"fmt"
	"strings"

	"gopkg.in/telebot.v3"

	"github.com/agrolink/agromercado/internal/domain/entity"
)

// Botones del menú principal.
const (
	btnNewLot      = "🌾 Publicar lote"
	btnBrowseLots  = "🔍 Buscar lotes"
	btnMyLots      = "📋 Mis lotes"
	btnIncoming    = "📨 Ofertas recibidas"
	btnMyOffers    = "📤 Mis ofertas"
	btnDeals       = "🤝 Acuerdos"
	btnChats       = "💬 Chats"
	btnLogistics   = "🚛 Logística"
	btnProfile     = "👤 Mi perfil"
	btnCalculator  = "🧮 Calculadora"
	btnCancel      = "❌ Cancelar"
)

// Submenú de logística.
const (
	btnMyVehicles    = "🚚 Mis vehículos"
	btnAddVehicle    = "➕ Registrar vehículo"
	btnFindVehicles  = "🔎 Buscar transporte"
	btnNewShipment   = "📦 Publicar flete"
	btnMyShipments   = "📦 Mis fletes"
	btnShipmentBoard = "🗂 Fletes activos"
)

func mainMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	markup.Reply(
		markup.Row(markup.Text(btnNewLot), markup.Text(btnBrowseLots)),
		markup.Row(markup.Text(btnMyLots), markup.Text(btnIncoming)),
		markup.Row(markup.Text(btnMyOffers), markup.Text(btnDeals)),
		markup.Row(markup.Text(btnChats), markup.Text(btnLogistics)),
		markup.Row(markup.Text(btnProfile), markup.Text(btnCalculator)),
	)
	return markup
}

func logisticsMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	markup.Reply(
		markup.Row(markup.Text(btnAddVehicle), markup.Text(btnMyVehicles)),
		markup.Row(markup.Text(btnNewShipment), markup.Text(btnMyShipments)),
		markup.Row(markup.Text(btnFindVehicles), markup.Text(btnShipmentBoard)),
		markup.Row(markup.Text(btnCancel)),
	)
	return markup
}

func cancelMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	markup.Reply(markup.Row(markup.Text(btnCancel)))
	return markup
}

// roleLabel etiqueta legible del rol.
func roleLabel(role string) string {
	switch role {
	case entity.RoleFarmer:
		return "Agricultor"
	case entity.RoleBuyer:
		return "Comprador"
	case entity.RoleLogistic:
		return "Transportista"
	default:
		return "Invitado"
	}
}

// lotTypeLabel etiqueta legible del tipo de lote.
func lotTypeLabel(t string) string {
	if t == entity.LotTypeBuy {
		return "COMPRA"
	}
	return "VENTA"
}

// formatLot ficha de un lote para el chat.
func formatLot(l *entity.Lot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lote #%d · %s\n", l.ID, lotTypeLabel(l.Type))
	fmt.Fprintf(&b, "Cultivo: %s\n", l.Crop)
	fmt.Fprintf(&b, "Volumen: %s t\n", l.VolumeTons.StringFixed(1))
	fmt.Fprintf(&b, "Región: %s", l.Region)
	if l.Location != "" {
		fmt.Fprintf(&b, " (%s)", l.Location)
	}
	b.WriteString("\n")
	if l.Price == entity.PriceNegotiable {
		b.WriteString("Precio: negociable\n")
	} else {
		fmt.Fprintf(&b, "Precio: %s/t\n", l.Price)
	}
	if l.Comment != "" {
		fmt.Fprintf(&b, "Nota: %s\n", l.Comment)
	}
	fmt.Fprintf(&b, "Vistas: %d", l.ViewsCount)
	return b.String()
}

// formatOffer resumen de una contraoferta.
func formatOffer(o *entity.Offer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Oferta #%d · lote #%d\n", o.ID, o.LotID)
	fmt.Fprintf(&b, "Precio ofrecido: %s/t\n", o.OfferedPrice.StringFixed(2))
	if o.Message != "" {
		fmt.Fprintf(&b, "Mensaje: %s\n", o.Message)
	}
	fmt.Fprintf(&b, "Estado: %s", offerStatusLabel(o.Status))
	return b.String()
}

func offerStatusLabel(s string) string {
	switch s {
	case entity.OfferStatusPending:
		return "pendiente"
	case entity.OfferStatusAccepted:
		return "aceptada"
	case entity.OfferStatusRejected:
		return "rechazada"
	default:
		return s
	}
}
