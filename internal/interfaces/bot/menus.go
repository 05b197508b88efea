package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"

	"github.com/agrolink/agromercado/internal/application/dto"
	"github.com/agrolink/agromercado/internal/domain/entity"
)

// dispatchMenu atiende los botones del menú. Devuelve handled=false si el
// texto no es un botón conocido.
func (b *Bot) dispatchMenu(c telebot.Context, text string) (bool, error) {
	user := currentUser(c)
	if !user.IsRegistered() {
		return false, nil
	}
	switch text {
	case btnNewLot:
		return true, b.startLotFlow(c)
	case btnBrowseLots:
		b.deps.Sessions.Begin(user.TelegramID, flowBrowse, "filtro")
		return true, c.Send("¿De qué región quiere ver lotes? Envíe - para ver todos.", cancelMenu())
	case btnMyLots:
		return true, b.showMyLots(c)
	case btnIncoming:
		return true, b.showIncomingOffers(c)
	case btnMyOffers:
		return true, b.showMyOffers(c)
	case btnDeals:
		return true, b.showDeals(c)
	case btnChats:
		return true, b.showChats(c)
	case btnLogistics:
		return true, c.Send("Logística", logisticsMenu())
	case btnProfile:
		return true, b.showProfile(c)
	case btnCalculator:
		return true, b.startCalc(c)
	case btnAddVehicle:
		return true, b.startVehicleFlow(c)
	case btnMyVehicles:
		return true, b.showMyVehicles(c)
	case btnFindVehicles:
		b.deps.Sessions.Begin(user.TelegramID, flowFindVeh, "region")
		return true, c.Send("¿En qué región necesita transporte?", cancelMenu())
	case btnNewShipment:
		return true, b.startShipmentFlow(c)
	case btnMyShipments:
		return true, b.showMyShipments(c)
	case btnShipmentBoard:
		return true, b.showShipmentBoard(c)
	}
	return false, nil
}

const browsePageSize = 5

// stepBrowse toma el filtro de región y muestra la primera página del tablón.
func (b *Bot) stepBrowse(c telebot.Context, text string) error {
	user := currentUser(c)
	b.deps.Sessions.Clear(user.TelegramID)
	region := text
	if region == "-" {
		region = ""
	}
	return b.renderLotsPage(c, region, 0)
}

// renderLotsPage muestra una página de lotes activos con botones de acción y,
// si la página vino completa, el botón para pedir la siguiente.
func (b *Bot) renderLotsPage(c telebot.Context, region string, offset int) error {
	user := currentUser(c)
	lots, err := b.deps.Market.BrowseLots(context.Background(), dto.LotFilterRequest{Region: region}, browsePageSize, offset)
	if err != nil {
		return c.Send("No se pudo cargar el tablón, intente de nuevo.", mainMenu())
	}
	if len(lots) == 0 {
		if offset == 0 {
			return c.Send("No hay lotes activos con ese filtro por ahora.", mainMenu())
		}
		return c.Send("No hay más lotes.", mainMenu())
	}
	for _, lot := range lots {
		if lot.OwnerUserID == user.ID {
			continue
		}
		viewed, err := b.deps.Market.ViewLot(context.Background(), lot.ID, user.ID)
		if err != nil {
			continue
		}
		markup := &telebot.ReplyMarkup{}
		markup.InlineKeyboard = [][]telebot.InlineButton{
			{
				{Unique: cbLotOffer, Text: "💰 Contraofertar", Data: strconv.FormatInt(lot.ID, 10)},
				{Unique: cbLotContact, Text: "🤝 Contacto", Data: strconv.FormatInt(lot.OwnerUserID, 10)},
			},
		}
		if err := c.Send(formatLot(viewed), markup); err != nil {
			return err
		}
	}
	if len(lots) == browsePageSize {
		markup := &telebot.ReplyMarkup{}
		markup.InlineKeyboard = [][]telebot.InlineButton{
			{{Unique: cbBrowseMore, Text: "➡️ Ver más", Data: fmt.Sprintf("%s|%d", region, offset+browsePageSize)}},
		}
		return c.Send("¿Seguir viendo?", markup)
	}
	return nil
}

func (b *Bot) showMyLots(c telebot.Context) error {
	user := currentUser(c)
	lots, err := b.deps.Market.MyLots(context.Background(), user.ID, 10, 0)
	if err != nil {
		return c.Send("No se pudieron cargar sus lotes.")
	}
	if len(lots) == 0 {
		return c.Send("Todavía no publicó ningún lote. Use " + btnNewLot + ".")
	}
	for _, lot := range lots {
		markup := &telebot.ReplyMarkup{}
		var row []telebot.InlineButton
		if lot.Status == entity.LotStatusActive {
			row = append(row,
				telebot.InlineButton{Unique: cbLotStatus, Text: "⏸ Pausar", Data: fmt.Sprintf("%d|%s", lot.ID, entity.LotStatusInactive)},
				telebot.InlineButton{Unique: cbLotStatus, Text: "✅ Vendido", Data: fmt.Sprintf("%d|%s", lot.ID, entity.LotStatusSold)},
			)
		} else if lot.Status == entity.LotStatusInactive {
			row = append(row,
				telebot.InlineButton{Unique: cbLotStatus, Text: "▶️ Reactivar", Data: fmt.Sprintf("%d|%s", lot.ID, entity.LotStatusActive)},
			)
		}
		row = append(row,
			telebot.InlineButton{Unique: cbLotStatus, Text: "🗑 Eliminar", Data: fmt.Sprintf("%d|%s", lot.ID, entity.LotStatusDeleted)},
		)
		markup.InlineKeyboard = [][]telebot.InlineButton{
			row,
			{
				{Unique: cbLotOffers, Text: "📨 Ver ofertas", Data: strconv.FormatInt(lot.ID, 10)},
				{Unique: cbLotPrice, Text: "✏️ Precio", Data: strconv.FormatInt(lot.ID, 10)},
			},
		}
		if err := c.Send(formatLot(lot)+"\nEstado: "+lot.Status, markup); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) showIncomingOffers(c telebot.Context) error {
	user := currentUser(c)
	offers, err := b.deps.Negotiation.IncomingOffers(context.Background(), user.ID)
	if err != nil {
		return c.Send("No se pudieron cargar las ofertas recibidas.")
	}
	if len(offers) == 0 {
		return c.Send("No tiene ofertas pendientes.")
	}
	for _, o := range offers {
		markup := &telebot.ReplyMarkup{}
		markup.InlineKeyboard = [][]telebot.InlineButton{
			{
				{Unique: cbOfferAccept, Text: "✅ Aceptar", Data: strconv.FormatInt(o.ID, 10)},
				{Unique: cbOfferReject, Text: "❌ Rechazar", Data: strconv.FormatInt(o.ID, 10)},
			},
		}
		if err := c.Send(formatOffer(o), markup); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) showMyOffers(c telebot.Context) error {
	user := currentUser(c)
	offers, err := b.deps.Negotiation.MyOffers(context.Background(), user.ID)
	if err != nil {
		return c.Send("No se pudieron cargar sus ofertas.")
	}
	if len(offers) == 0 {
		return c.Send("Todavía no envió contraofertas.")
	}
	var sb strings.Builder
	sb.WriteString("Sus contraofertas:\n\n")
	for _, o := range offers {
		fmt.Fprintf(&sb, "· Lote #%d: %s/t — %s\n", o.LotID, o.OfferedPrice.StringFixed(2), offerStatusLabel(o.Status))
	}
	return c.Send(sb.String())
}

func (b *Bot) showDeals(c telebot.Context) error {
	user := currentUser(c)
	deals, err := b.deps.Negotiation.AcceptedDeals(context.Background(), user.ID)
	if err != nil {
		return c.Send("No se pudieron cargar sus acuerdos.")
	}
	if len(deals) == 0 {
		return c.Send("Todavía no cerró ningún acuerdo.")
	}
	for _, o := range deals {
		counterpart := o.SenderUserID
		lot, err := b.deps.Market.GetLot(context.Background(), o.LotID)
		if err == nil && o.SenderUserID == user.ID {
			counterpart = lot.OwnerUserID
		}
		markup := &telebot.ReplyMarkup{}
		markup.InlineKeyboard = [][]telebot.InlineButton{
			{{Unique: cbChatOpen, Text: "💬 Abrir chat", Data: fmt.Sprintf("%d|%d", counterpart, o.LotID)}},
		}
		if err := c.Send(formatOffer(o), markup); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) showChats(c telebot.Context) error {
	user := currentUser(c)
	sessions, err := b.deps.Chat.MyChats(context.Background(), user.ID)
	if err != nil {
		return c.Send("No se pudieron cargar sus chats.")
	}
	if len(sessions) == 0 {
		return c.Send("No tiene chats activos. Se abren desde un acuerdo o tras intercambiar contactos.")
	}
	for _, s := range sessions {
		other, err := b.deps.Users.ProfileByID(context.Background(), s.Counterpart(user.ID))
		label := "U????"
		if err == nil {
			label = other.AnonymousID()
		}
		text := "Chat con " + label
		if s.LotID != nil {
			text += fmt.Sprintf(" · lote #%d", *s.LotID)
		}
		markup := &telebot.ReplyMarkup{}
		markup.InlineKeyboard = [][]telebot.InlineButton{
			{{Unique: cbChatOpen, Text: "💬 Continuar", Data: fmt.Sprintf("%d|0", s.Counterpart(user.ID))}},
		}
		if err := c.Send(text, markup); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) showProfile(c telebot.Context) error {
	// Se relee el perfil por si el panel lo tocó desde el último update.
	user, err := b.deps.Users.Profile(context.Background(), currentUser(c).TelegramID)
	if err != nil {
		return c.Send("No se pudo cargar su perfil.")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Identificador: %s\n", user.AnonymousID())
	fmt.Fprintf(&sb, "Rol: %s\n", roleLabel(user.Role))
	fmt.Fprintf(&sb, "Región: %s\n", user.Region)
	if user.Company != "" {
		fmt.Fprintf(&sb, "Empresa: %s\n", user.Company)
	}
	fmt.Fprintf(&sb, "Plan: %s", user.Plan)
	if user.PlanExpiresAt != nil {
		fmt.Fprintf(&sb, " (vence %s)", user.PlanExpiresAt.Format("2006-01-02"))
	}
	if user.Plan != entity.PlanPro {
		sb.WriteString("\nActive el plan pro con /pro.")
	}
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{{Unique: cbEditRegion, Text: "✏️ Cambiar región"}},
	}
	return c.Send(sb.String(), markup)
}

func (b *Bot) showMyVehicles(c telebot.Context) error {
	user := currentUser(c)
	vehicles, err := b.deps.Logistics.MyVehicles(context.Background(), user.ID)
	if err != nil {
		return c.Send("No se pudo cargar su flota.")
	}
	if len(vehicles) == 0 {
		return c.Send("No tiene vehículos registrados.", logisticsMenu())
	}
	var sb strings.Builder
	sb.WriteString("Su flota:\n\n")
	for _, v := range vehicles {
		fmt.Fprintf(&sb, "· #%d %s · %s t x%d · %s · %s\n",
			v.ID, bodyTypeLabel(v.BodyType), v.CapacityTons.StringFixed(1), v.CountUnits, v.BaseRegion, v.Status)
	}
	return c.Send(sb.String(), logisticsMenu())
}

func (b *Bot) showMyShipments(c telebot.Context) error {
	user := currentUser(c)
	shipments, err := b.deps.Logistics.MyShipments(context.Background(), user.ID)
	if err != nil {
		return c.Send("No se pudieron cargar sus fletes.")
	}
	if len(shipments) == 0 {
		return c.Send("No tiene fletes publicados.", logisticsMenu())
	}
	var sb strings.Builder
	sb.WriteString("Sus fletes:\n\n")
	for _, s := range shipments {
		fmt.Fprintf(&sb, "· #%d %s · %s t · %s → %s · %s\n",
			s.ID, s.CargoType, s.VolumeTons.StringFixed(1), s.FromRegion, s.ToRegion, s.Status)
	}
	return c.Send(sb.String(), logisticsMenu())
}

func (b *Bot) showShipmentBoard(c telebot.Context) error {
	shipments, err := b.deps.Logistics.BrowseShipments(context.Background(), 10, 0)
	if err != nil {
		return c.Send("No se pudo cargar el tablón de fletes.")
	}
	if len(shipments) == 0 {
		return c.Send("No hay fletes activos por ahora.", logisticsMenu())
	}
	for _, s := range shipments {
		markup := &telebot.ReplyMarkup{}
		markup.InlineKeyboard = [][]telebot.InlineButton{
			{{Unique: cbLotContact, Text: "🤝 Intercambiar contacto", Data: strconv.FormatInt(s.CreatorUserID, 10)}},
		}
		msg := fmt.Sprintf("Flete #%d · %s · %s t · %s → %s",
			s.ID, s.CargoType, s.VolumeTons.StringFixed(1), s.FromRegion, s.ToRegion)
		if s.Comment != "" {
			msg += "\nNota: " + s.Comment
		}
		if err := c.Send(msg, markup); err != nil {
			return err
		}
	}
	return nil
}
