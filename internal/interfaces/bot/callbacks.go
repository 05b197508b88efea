package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"

	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
)

// Uniques de los botones inline. Telebot enruta los callbacks por este valor.
const (
	cbRole          = "sel_role"
	cbLotType       = "sel_lot_type"
	cbLotOffer      = "lot_offer"
	cbLotOffers     = "lot_offers"
	cbLotContact    = "lot_contact"
	cbOfferAccept   = "offer_accept"
	cbOfferReject   = "offer_reject"
	cbContactAccept = "contact_accept"
	cbContactReject = "contact_reject"
	cbChatOpen      = "chat_open"
	cbChatClose     = "chat_close"
	cbLotStatus     = "lot_status"
	cbLotPrice      = "lot_price"
	cbBodyType      = "sel_body_type"
	cbBrowseMore    = "browse_more"
	cbEditRegion    = "edit_region"
)

// cbSelectRole paso de rol del registro.
func (b *Bot) cbSelectRole(c telebot.Context) error {
	id := c.Sender().ID
	sess := b.deps.Sessions.Current(id)
	if sess == nil || sess.Flow != flowRegister {
		b.deps.Sessions.Begin(id, flowRegister, "rol")
	}
	b.deps.Sessions.Put(id, "rol", c.Data())
	b.deps.Sessions.Advance(id, stepRegion)
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Send("¿En qué región trabaja? (ej. Boyacá)")
}

// cbSelectLotType paso de tipo del flujo de publicación.
func (b *Bot) cbSelectLotType(c telebot.Context) error {
	id := c.Sender().ID
	sess := b.deps.Sessions.Current(id)
	if sess == nil || sess.Flow != flowLot {
		return c.Respond(&telebot.CallbackResponse{Text: "Ese flujo ya terminó. Use el menú."})
	}
	b.deps.Sessions.Put(id, "tipo", c.Data())
	b.deps.Sessions.Advance(id, stepLotCrop)
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Send("¿Qué cultivo es? (ej. maíz amarillo)", cancelMenu())
}

// cbSelectBodyType paso de carrocería del registro de vehículo.
func (b *Bot) cbSelectBodyType(c telebot.Context) error {
	id := c.Sender().ID
	sess := b.deps.Sessions.Current(id)
	if sess == nil || sess.Flow != flowVehicle {
		return c.Respond(&telebot.CallbackResponse{Text: "Ese flujo ya terminó. Use el menú."})
	}
	b.deps.Sessions.Put(id, "carroceria", c.Data())
	b.deps.Sessions.Advance(id, stepVehCapacity)
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Send("¿Capacidad por unidad en toneladas? (ej. 34)", cancelMenu())
}

// cbMakeOffer arranca el flujo de contraoferta sobre el lote del botón.
func (b *Bot) cbMakeOffer(c telebot.Context) error {
	lotID, err := strconv.ParseInt(c.Data(), 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: "Lote inválido."})
	}
	id := c.Sender().ID
	b.deps.Sessions.Begin(id, flowOffer, stepOfferPrice)
	b.deps.Sessions.Put(id, "lot_id", strconv.FormatInt(lotID, 10))
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Send(fmt.Sprintf("¿Cuánto ofrece por tonelada del lote #%d?", lotID), cancelMenu())
}

// cbLotOffers muestra al dueño todas las ofertas de uno de sus lotes, con
// botones de decisión para las que siguen pendientes.
func (b *Bot) cbLotOffers(c telebot.Context) error {
	lotID, err := strconv.ParseInt(c.Data(), 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: "Lote inválido."})
	}
	user := currentUser(c)
	offers, err := b.deps.Negotiation.OffersForLot(context.Background(), lotID, user.ID)
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return c.Respond(&telebot.CallbackResponse{Text: "Ese lote no es suyo."})
	case errors.Is(err, domain.ErrNotFound):
		return c.Respond(&telebot.CallbackResponse{Text: "El lote ya no existe."})
	case err != nil:
		return c.Respond(&telebot.CallbackResponse{Text: "No se pudieron cargar las ofertas."})
	}
	if err := c.Respond(); err != nil {
		return err
	}
	if len(offers) == 0 {
		return c.Send(fmt.Sprintf("El lote #%d no tiene ofertas todavía.", lotID))
	}
	for _, o := range offers {
		var markup *telebot.ReplyMarkup
		if o.Status == entity.OfferStatusPending {
			markup = &telebot.ReplyMarkup{}
			markup.InlineKeyboard = [][]telebot.InlineButton{
				{
					{Unique: cbOfferAccept, Text: "✅ Aceptar", Data: strconv.FormatInt(o.ID, 10)},
					{Unique: cbOfferReject, Text: "❌ Rechazar", Data: strconv.FormatInt(o.ID, 10)},
				},
			}
		}
		if markup != nil {
			if err := c.Send(formatOffer(o), markup); err != nil {
				return err
			}
			continue
		}
		if err := c.Send(formatOffer(o)); err != nil {
			return err
		}
	}
	return nil
}

// cbRequestContact pide intercambio de contacto con el usuario del botón y le
// manda los botones de respuesta al destinatario.
func (b *Bot) cbRequestContact(c telebot.Context) error {
	toUserID, err := strconv.ParseInt(c.Data(), 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: "Usuario inválido."})
	}
	user := currentUser(c)
	req, err := b.deps.Chat.RequestContact(context.Background(), user.ID, toUserID)
	switch {
	case errors.Is(err, domain.ErrContactPending):
		return c.Respond(&telebot.CallbackResponse{Text: "Ya hay una solicitud pendiente con ese usuario."})
	case errors.Is(err, domain.ErrValidation):
		return c.Respond(&telebot.CallbackResponse{Text: "No puede solicitarse contacto a sí mismo."})
	case err != nil:
		return c.Respond(&telebot.CallbackResponse{Text: "No se pudo enviar la solicitud."})
	}

	if err := c.Respond(); err != nil {
		return err
	}
	// Solicitud nueva: el destinatario recibe los botones de decisión.
	if req.Status == entity.ContactStatusPending {
		if to, perr := b.deps.Users.ProfileByID(context.Background(), toUserID); perr == nil {
			markup := &telebot.ReplyMarkup{}
			markup.InlineKeyboard = [][]telebot.InlineButton{
				{
					{Unique: cbContactAccept, Text: "✅ Aceptar", Data: strconv.FormatInt(req.ID, 10)},
					{Unique: cbContactReject, Text: "❌ Rechazar", Data: strconv.FormatInt(req.ID, 10)},
				},
			}
			_, _ = b.tb.Send(&telebot.User{ID: to.TelegramID}, fmt.Sprintf(
				"%s quiere intercambiar contactos con usted.", user.AnonymousID()), markup)
		}
		return c.Send("Solicitud de contacto enviada. Le avisaremos la respuesta.")
	}
	return c.Send("Ya intercambiaron contactos con ese usuario. Puede abrir el chat desde 💬 Chats.")
}

// cbRespondContact resuelve una solicitud de contacto dirigida al usuario.
func (b *Bot) cbRespondContact(accept bool) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		requestID, err := strconv.ParseInt(c.Data(), 10, 64)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: "Solicitud inválida."})
		}
		user := currentUser(c)
		req, err := b.deps.Chat.RespondContact(context.Background(), requestID, user.ID, accept)
		switch {
		case errors.Is(err, domain.ErrAlreadyDecided):
			return c.Respond(&telebot.CallbackResponse{Text: "Esa solicitud ya fue respondida."})
		case errors.Is(err, domain.ErrForbidden):
			return c.Respond(&telebot.CallbackResponse{Text: "Esa solicitud no es para usted."})
		case err != nil:
			return c.Respond(&telebot.CallbackResponse{Text: "No se pudo responder la solicitud."})
		}
		if err := c.Respond(); err != nil {
			return err
		}
		if !accept {
			return c.Send("Solicitud rechazada.")
		}
		markup := &telebot.ReplyMarkup{}
		markup.InlineKeyboard = [][]telebot.InlineButton{
			{{Unique: cbChatOpen, Text: "💬 Abrir chat", Data: fmt.Sprintf("%d|0", req.FromUserID)}},
		}
		return c.Send("Contacto aceptado. El chat anónimo quedó habilitado.", markup)
	}
}

// cbDecideOffer acepta o rechaza una contraoferta pendiente. Si dos decisiones
// compiten, solo la primera gana y las demás ven el aviso de ya decidida.
func (b *Bot) cbDecideOffer(accept bool) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		offerID, err := strconv.ParseInt(c.Data(), 10, 64)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: "Oferta inválida."})
		}
		user := currentUser(c)
		decide := b.deps.Negotiation.RejectOffer
		if accept {
			decide = b.deps.Negotiation.AcceptOffer
		}
		offer, err := decide(context.Background(), offerID, user.ID)
		switch {
		case errors.Is(err, domain.ErrAlreadyDecided):
			return c.Respond(&telebot.CallbackResponse{Text: "Esta oferta ya fue decidida."})
		case errors.Is(err, domain.ErrForbidden):
			return c.Respond(&telebot.CallbackResponse{Text: "Solo el dueño del lote puede decidir."})
		case errors.Is(err, domain.ErrNotFound):
			return c.Respond(&telebot.CallbackResponse{Text: "La oferta ya no existe."})
		case err != nil:
			return c.Respond(&telebot.CallbackResponse{Text: "No se pudo procesar, intente de nuevo."})
		}
		if err := c.Respond(); err != nil {
			return err
		}
		if accept {
			markup := &telebot.ReplyMarkup{}
			markup.InlineKeyboard = [][]telebot.InlineButton{
				{{Unique: cbLotContact, Text: "🤝 Intercambiar contacto", Data: strconv.FormatInt(offer.SenderUserID, 10)}},
			}
			return c.Send(fmt.Sprintf(
				"Oferta #%d aceptada a %s/t. Intercambie contactos para coordinar la entrega.",
				offer.ID, offer.OfferedPrice.StringFixed(2)), markup)
		}
		return c.Send(fmt.Sprintf("Oferta #%d rechazada.", offer.ID))
	}
}

// cbOpenChat abre la sesión con el interlocutor del botón y deja al usuario en
// modo relay: todo texto siguiente va al chat hasta cancelar.
func (b *Bot) cbOpenChat(c telebot.Context) error {
	parts := strings.SplitN(c.Data(), "|", 2)
	otherID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: "Chat inválido."})
	}
	var lotID *int64
	if len(parts) == 2 {
		if v, perr := strconv.ParseInt(parts[1], 10, 64); perr == nil && v > 0 {
			lotID = &v
		}
	}
	user := currentUser(c)
	session, err := b.deps.Chat.OpenChat(context.Background(), user.ID, otherID, lotID)
	switch {
	case errors.Is(err, domain.ErrContactPending):
		return c.Respond(&telebot.CallbackResponse{Text: "Primero deben intercambiar contactos."})
	case err != nil:
		return c.Respond(&telebot.CallbackResponse{Text: "No se pudo abrir el chat."})
	}
	if err := c.Respond(); err != nil {
		return err
	}
	b.deps.Sessions.Begin(user.TelegramID, flowChat, stepChatRelay)
	b.deps.Sessions.Put(user.TelegramID, "session_id", strconv.FormatInt(session.ID, 10))

	other, perr := b.deps.Users.ProfileByID(context.Background(), session.Counterpart(user.ID))
	label := "su interlocutor"
	if perr == nil {
		label = other.AnonymousID()
	}

	// Últimos mensajes para retomar el hilo.
	if history, herr := b.deps.Chat.History(context.Background(), session.ID, user.ID, 10, 0); herr == nil && len(history) > 0 {
		var sb strings.Builder
		for _, m := range history {
			who := "Usted"
			if m.SenderUserID != user.ID {
				who = label
			}
			fmt.Fprintf(&sb, "%s: %s\n", who, m.Content)
		}
		if err := c.Send(sb.String()); err != nil {
			return err
		}
	}

	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{{Unique: cbChatClose, Text: "🔚 Cerrar chat", Data: strconv.FormatInt(session.ID, 10)}},
	}
	if err := c.Send(fmt.Sprintf(
		"Chat con %s abierto. Todo lo que escriba se le reenviará. Use %s para salir.",
		label, btnCancel), markup); err != nil {
		return err
	}
	return c.Send("Escriba su mensaje.", cancelMenu())
}

// cbCloseChat cierra la sesión para ambos participantes.
func (b *Bot) cbCloseChat(c telebot.Context) error {
	sessionID, err := strconv.ParseInt(c.Data(), 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: "Chat inválido."})
	}
	user := currentUser(c)
	if err := b.deps.Chat.CloseChat(context.Background(), sessionID, user.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return c.Respond(&telebot.CallbackResponse{Text: "Ese chat no es suyo."})
		case errors.Is(err, domain.ErrNotFound):
			return c.Respond(&telebot.CallbackResponse{Text: "El chat ya no existe."})
		default:
			return c.Respond(&telebot.CallbackResponse{Text: "No se pudo cerrar el chat."})
		}
	}
	b.deps.Sessions.Clear(user.TelegramID)
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Send("Chat cerrado.", mainMenu())
}

// cbBrowseMore siguiente página del tablón con el mismo filtro.
func (b *Bot) cbBrowseMore(c telebot.Context) error {
	parts := strings.SplitN(c.Data(), "|", 2)
	if len(parts) != 2 {
		return c.Respond(&telebot.CallbackResponse{Text: "Página inválida."})
	}
	offset, err := strconv.Atoi(parts[1])
	if err != nil || offset < 0 {
		return c.Respond(&telebot.CallbackResponse{Text: "Página inválida."})
	}
	if err := c.Respond(); err != nil {
		return err
	}
	return b.renderLotsPage(c, parts[0], offset)
}

// cbEditRegion arranca el cambio de región del perfil.
func (b *Bot) cbEditRegion(c telebot.Context) error {
	b.deps.Sessions.Begin(c.Sender().ID, flowEditRegion, "region")
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Send("¿Su nueva región de trabajo?", cancelMenu())
}

// cbEditLotPrice arranca la edición de precio del lote del botón.
func (b *Bot) cbEditLotPrice(c telebot.Context) error {
	lotID, err := strconv.ParseInt(c.Data(), 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: "Lote inválido."})
	}
	id := c.Sender().ID
	b.deps.Sessions.Begin(id, flowEditPrice, "price")
	b.deps.Sessions.Put(id, "lot_id", strconv.FormatInt(lotID, 10))
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Send(fmt.Sprintf(
		"¿Nuevo precio por tonelada del lote #%d? Envíe un número o la palabra negociable.", lotID), cancelMenu())
}

// cbLotStatus cambio de estado de un lote propio desde Mis lotes.
func (b *Bot) cbLotStatus(c telebot.Context) error {
	parts := strings.SplitN(c.Data(), "|", 2)
	if len(parts) != 2 {
		return c.Respond(&telebot.CallbackResponse{Text: "Acción inválida."})
	}
	lotID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: "Lote inválido."})
	}
	user := currentUser(c)
	if err := b.deps.Market.SetLotStatus(context.Background(), lotID, user.ID, parts[1]); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return c.Respond(&telebot.CallbackResponse{Text: "Ese lote no es suyo."})
		case errors.Is(err, domain.ErrNotFound):
			return c.Respond(&telebot.CallbackResponse{Text: "El lote ya no existe."})
		default:
			return c.Respond(&telebot.CallbackResponse{Text: "No se pudo cambiar el estado."})
		}
	}
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Send(fmt.Sprintf("Lote #%d actualizado.", lotID))
}
