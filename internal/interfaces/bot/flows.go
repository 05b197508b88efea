package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/telebot.v3"

	"github.com/agrolink/agromercado/internal/application/dto"
	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
)

// Flujos conversacionales y sus pasos.
const (
	flowRegister   = "registro"
	flowLot        = "lote"
	flowOffer      = "oferta"
	flowBrowse     = "buscar_lotes"
	flowVehicle    = "vehiculo"
	flowShipment   = "flete"
	flowFindVeh    = "buscar_transporte"
	flowChat       = "chat"
	flowCalc       = "calculadora"
	flowEditRegion = "editar_region"
	flowEditPrice  = "editar_precio"

	stepRegion  = "region"
	stepPhone   = "phone"
	stepCompany = "company"

	stepLotCrop     = "crop"
	stepLotVolume   = "volume"
	stepLotRegion   = "region"
	stepLotLocation = "location"
	stepLotPrice    = "price"
	stepLotComment  = "comment"

	stepOfferPrice   = "price"
	stepOfferMessage = "message"

	stepVehCapacity = "capacity"
	stepVehUnits    = "units"
	stepVehRegion   = "region"

	stepShipCargo  = "cargo"
	stepShipVolume = "volume"
	stepShipFrom   = "from"
	stepShipTo     = "to"

	stepChatRelay = "relay"
)

// handleText despacha botones del menú y pasos de flujo.
func (b *Bot) handleText(c telebot.Context) error {
	text := c.Text()
	user := currentUser(c)

	if text == btnCancel {
		b.deps.Sessions.Clear(user.TelegramID)
		return c.Send("Operación cancelada.", mainMenu())
	}

	// Botones de menú cortan cualquier flujo a medias.
	if handled, err := b.dispatchMenu(c, text); handled {
		return err
	}

	sess := b.deps.Sessions.Current(user.TelegramID)
	if sess == nil {
		if !user.IsRegistered() {
			return b.startRegistration(c)
		}
		return c.Send("No le entendí. Use el menú o /menu.", mainMenu())
	}

	switch sess.Flow {
	case flowRegister:
		return b.stepRegistration(c, sess, text)
	case flowLot:
		return b.stepLot(c, sess, text)
	case flowOffer:
		return b.stepOffer(c, sess, text)
	case flowBrowse:
		return b.stepBrowse(c, text)
	case flowVehicle:
		return b.stepVehicle(c, sess, text)
	case flowShipment:
		return b.stepShipment(c, sess, text)
	case flowFindVeh:
		return b.stepFindVehicles(c, text)
	case flowChat:
		return b.stepChatRelay(c, sess, text)
	case flowCalc:
		return b.stepCalc(c, sess, text)
	case flowEditRegion:
		return b.stepEditRegion(c, text)
	case flowEditPrice:
		return b.stepEditPrice(c, sess, text)
	default:
		b.deps.Sessions.Clear(user.TelegramID)
		return c.Send("Menú principal", mainMenu())
	}
}

// ── Registro ─────────────────────────────────────────────────────────────────

func (b *Bot) startRegistration(c telebot.Context) error {
	b.deps.Sessions.Begin(c.Sender().ID, flowRegister, "rol")
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{{Unique: cbRole, Text: "🌱 Agricultor", Data: entity.RoleFarmer}},
		{{Unique: cbRole, Text: "🛒 Comprador", Data: entity.RoleBuyer}},
		{{Unique: cbRole, Text: "🚛 Transportista", Data: entity.RoleLogistic}},
	}
	return c.Send("Para empezar, ¿cuál es su rol?", markup)
}

func (b *Bot) stepRegistration(c telebot.Context, sess *Session, text string) error {
	id := c.Sender().ID
	switch sess.Step {
	case stepRegion:
		b.deps.Sessions.Put(id, "region", text)
		b.deps.Sessions.Advance(id, stepPhone)
		return c.Send("¿Su teléfono de contacto? (solo lo verá quien acepte intercambiar contactos)")
	case stepPhone:
		b.deps.Sessions.Put(id, "phone", text)
		b.deps.Sessions.Advance(id, stepCompany)
		return c.Send("¿Nombre de su finca o empresa? Envíe - para omitir.")
	case stepCompany:
		company := text
		if company == "-" {
			company = ""
		}
		user, err := b.deps.Users.CompleteRegistration(context.Background(), id, dto.RegisterProfileRequest{
			Role:    sess.Data["rol"],
			Region:  sess.Data["region"],
			Phone:   sess.Data["phone"],
			Company: company,
		})
		b.deps.Sessions.Clear(id)
		if err != nil {
			return c.Send("No se pudo completar el registro, intente de nuevo con /start.")
		}
		return c.Send(fmt.Sprintf(
			"Registro completo. Usted es %s y su identificador anónimo es %s.",
			roleLabel(user.Role), user.AnonymousID()), mainMenu())
	default:
		return c.Send("Elija su rol con los botones de arriba.")
	}
}

// stepEditRegion cambia la región del perfil sin rehacer el registro.
func (b *Bot) stepEditRegion(c telebot.Context, text string) error {
	user := currentUser(c)
	b.deps.Sessions.Clear(user.TelegramID)
	updated, err := b.deps.Users.UpdateRegion(context.Background(), user.TelegramID, text)
	if err != nil {
		return c.Send("No se pudo cambiar la región, intente de nuevo.", mainMenu())
	}
	return c.Send("Región actualizada a "+updated.Region+".", mainMenu())
}

// ── Publicación de lote ──────────────────────────────────────────────────────

func (b *Bot) startLotFlow(c telebot.Context) error {
	b.deps.Sessions.Begin(c.Sender().ID, flowLot, "tipo")
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{{Unique: cbLotType, Text: "Vendo grano", Data: entity.LotTypeSell}},
		{{Unique: cbLotType, Text: "Compro grano", Data: entity.LotTypeBuy}},
	}
	return c.Send("¿Qué tipo de anuncio quiere publicar?", markup)
}

func (b *Bot) stepLot(c telebot.Context, sess *Session, text string) error {
	id := c.Sender().ID
	switch sess.Step {
	case stepLotCrop:
		b.deps.Sessions.Put(id, "crop", text)
		b.deps.Sessions.Advance(id, stepLotVolume)
		return c.Send("¿Cuántas toneladas? (ej. 25.5)")
	case stepLotVolume:
		if _, err := parsePositiveDecimal(text); err != nil {
			return c.Send("Volumen inválido. Envíe un número mayor que cero, ej. 25.5")
		}
		b.deps.Sessions.Put(id, "volume", text)
		b.deps.Sessions.Advance(id, stepLotRegion)
		return c.Send("¿En qué región está el grano?")
	case stepLotRegion:
		b.deps.Sessions.Put(id, "region", text)
		b.deps.Sessions.Advance(id, stepLotLocation)
		return c.Send("¿Municipio o punto de entrega? Envíe - para omitir.")
	case stepLotLocation:
		location := text
		if location == "-" {
			location = ""
		}
		b.deps.Sessions.Put(id, "location", location)
		b.deps.Sessions.Advance(id, stepLotPrice)
		return c.Send("¿Precio por tonelada? Envíe un número o la palabra negociable.")
	case stepLotPrice:
		if text != entity.PriceNegotiable {
			if _, err := parsePositiveDecimal(text); err != nil {
				return c.Send("Precio inválido. Envíe un número mayor que cero o la palabra negociable.")
			}
		}
		b.deps.Sessions.Put(id, "price", text)
		b.deps.Sessions.Advance(id, stepLotComment)
		return c.Send("Comentario adicional (calidad, humedad, entrega). Envíe - para omitir.")
	case stepLotComment:
		comment := text
		if comment == "-" {
			comment = ""
		}
		volume, _ := parsePositiveDecimal(sess.Data["volume"])
		user := currentUser(c)
		lot, err := b.deps.Market.CreateLot(context.Background(), user.ID, dto.CreateLotRequest{
			Type:       sess.Data["tipo"],
			Crop:       sess.Data["crop"],
			VolumeTons: volume,
			Region:     sess.Data["region"],
			Location:   sess.Data["location"],
			Price:      sess.Data["price"],
			Comment:    comment,
		})
		b.deps.Sessions.Clear(id)
		if err != nil {
			return c.Send("No se pudo publicar el lote, revise los datos e intente de nuevo.", mainMenu())
		}
		return c.Send(fmt.Sprintf("Lote #%d publicado y visible para compradores.", lot.ID), mainMenu())
	default:
		return c.Send("Elija el tipo de anuncio con los botones de arriba.")
	}
}

// stepEditPrice cambia el precio de un lote propio desde Mis lotes.
func (b *Bot) stepEditPrice(c telebot.Context, sess *Session, text string) error {
	if text != entity.PriceNegotiable {
		if _, err := parsePositiveDecimal(text); err != nil {
			return c.Send("Precio inválido. Envíe un número mayor que cero o la palabra negociable.")
		}
	}
	user := currentUser(c)
	lotID, _ := strconv.ParseInt(sess.Data["lot_id"], 10, 64)
	b.deps.Sessions.Clear(user.TelegramID)
	lot, err := b.deps.Market.GetLot(context.Background(), lotID)
	if err != nil {
		return c.Send("El lote ya no existe.", mainMenu())
	}
	lot.Price = text
	if err := b.deps.Market.UpdateLot(context.Background(), user.ID, lot); err != nil {
		return c.Send("No se pudo actualizar el precio.", mainMenu())
	}
	return c.Send(fmt.Sprintf("Precio del lote #%d actualizado a %s.", lot.ID, text), mainMenu())
}

// ── Contraoferta ─────────────────────────────────────────────────────────────

func (b *Bot) stepOffer(c telebot.Context, sess *Session, text string) error {
	id := c.Sender().ID
	switch sess.Step {
	case stepOfferPrice:
		if _, err := parsePositiveDecimal(text); err != nil {
			return c.Send("Precio inválido. Envíe un número mayor que cero.")
		}
		b.deps.Sessions.Put(id, "price", text)
		b.deps.Sessions.Advance(id, stepOfferMessage)
		return c.Send("Mensaje para el dueño del lote. Envíe - para omitir.")
	case stepOfferMessage:
		message := text
		if message == "-" {
			message = ""
		}
		lotID, _ := strconv.ParseInt(sess.Data["lot_id"], 10, 64)
		price, _ := parsePositiveDecimal(sess.Data["price"])
		user := currentUser(c)
		_, err := b.deps.Negotiation.CreateOffer(context.Background(), dto.CreateOfferRequest{
			LotID:        lotID,
			SenderUserID: user.ID,
			OfferedPrice: price,
			Message:      message,
		})
		b.deps.Sessions.Clear(id)
		switch {
		case err == nil:
			return c.Send("Contraoferta enviada. Le avisaremos cuando el dueño decida.", mainMenu())
		case err == domain.ErrSelfOffer:
			return c.Send("No puede ofertar sobre su propio lote.", mainMenu())
		case err == domain.ErrLotInactive:
			return c.Send("Ese lote ya no está activo.", mainMenu())
		default:
			return c.Send("No se pudo enviar la contraoferta, intente de nuevo.", mainMenu())
		}
	default:
		return c.Send("Envíe el precio que ofrece por tonelada.")
	}
}

// ── Vehículo ─────────────────────────────────────────────────────────────────

func (b *Bot) startVehicleFlow(c telebot.Context) error {
	b.deps.Sessions.Begin(c.Sender().ID, flowVehicle, "carroceria")
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{{Unique: cbBodyType, Text: "Tolva granelera", Data: entity.BodyTypeGrain}},
		{{Unique: cbBodyType, Text: "Volqueta", Data: entity.BodyTypeTipper}},
		{{Unique: cbBodyType, Text: "Carpado", Data: entity.BodyTypeTarp}},
	}
	return c.Send("¿Qué tipo de carrocería tiene el vehículo?", markup)
}

func (b *Bot) stepVehicle(c telebot.Context, sess *Session, text string) error {
	id := c.Sender().ID
	switch sess.Step {
	case stepVehCapacity:
		if _, err := parsePositiveDecimal(text); err != nil {
			return c.Send("Capacidad inválida. Envíe las toneladas, ej. 34")
		}
		b.deps.Sessions.Put(id, "capacity", text)
		b.deps.Sessions.Advance(id, stepVehUnits)
		return c.Send("¿Cuántas unidades iguales tiene? (1 si es un solo vehículo)")
	case stepVehUnits:
		units, err := strconv.Atoi(text)
		if err != nil || units <= 0 {
			return c.Send("Cantidad inválida. Envíe un número entero mayor que cero.")
		}
		b.deps.Sessions.Put(id, "units", text)
		b.deps.Sessions.Advance(id, stepVehRegion)
		return c.Send("¿Región base del vehículo?")
	case stepVehRegion:
		capacity, _ := parsePositiveDecimal(sess.Data["capacity"])
		units, _ := strconv.Atoi(sess.Data["units"])
		user := currentUser(c)
		_, err := b.deps.Logistics.RegisterVehicle(context.Background(), user.ID,
			sess.Data["carroceria"], capacity, units, text, "")
		b.deps.Sessions.Clear(id)
		if err != nil {
			return c.Send("No se pudo registrar el vehículo.", logisticsMenu())
		}
		return c.Send("Vehículo registrado como disponible.", logisticsMenu())
	default:
		return c.Send("Elija la carrocería con los botones de arriba.")
	}
}

// ── Flete ────────────────────────────────────────────────────────────────────

func (b *Bot) startShipmentFlow(c telebot.Context) error {
	b.deps.Sessions.Begin(c.Sender().ID, flowShipment, stepShipCargo)
	return c.Send("¿Qué carga necesita mover? (ej. maíz amarillo)", cancelMenu())
}

func (b *Bot) stepShipment(c telebot.Context, sess *Session, text string) error {
	id := c.Sender().ID
	switch sess.Step {
	case stepShipCargo:
		b.deps.Sessions.Put(id, "cargo", text)
		b.deps.Sessions.Advance(id, stepShipVolume)
		return c.Send("¿Cuántas toneladas?")
	case stepShipVolume:
		if _, err := parsePositiveDecimal(text); err != nil {
			return c.Send("Volumen inválido. Envíe un número mayor que cero.")
		}
		b.deps.Sessions.Put(id, "volume", text)
		b.deps.Sessions.Advance(id, stepShipFrom)
		return c.Send("¿Región de origen?")
	case stepShipFrom:
		b.deps.Sessions.Put(id, "from", text)
		b.deps.Sessions.Advance(id, stepShipTo)
		return c.Send("¿Región de destino?")
	case stepShipTo:
		volume, _ := parsePositiveDecimal(sess.Data["volume"])
		user := currentUser(c)
		s, err := b.deps.Logistics.CreateShipment(context.Background(), user.ID,
			sess.Data["cargo"], volume, sess.Data["from"], "", text, "", "")
		b.deps.Sessions.Clear(id)
		if err != nil {
			return c.Send("No se pudo publicar el flete.", logisticsMenu())
		}
		return c.Send(fmt.Sprintf("Flete #%d publicado para los transportistas.", s.ID), logisticsMenu())
	default:
		return c.Send("Describa la carga que necesita mover.")
	}
}

func (b *Bot) stepFindVehicles(c telebot.Context, text string) error {
	b.deps.Sessions.Clear(c.Sender().ID)
	vehicles, err := b.deps.Logistics.FindVehicles(context.Background(), text, 10, 0)
	if err != nil || len(vehicles) == 0 {
		return c.Send("No hay transporte disponible en esa región por ahora.", logisticsMenu())
	}
	for _, v := range vehicles {
		owner, err := b.deps.Users.ProfileByID(context.Background(), v.OwnerUserID)
		label := "T????"
		if err == nil {
			label = owner.AnonymousID()
		}
		markup := &telebot.ReplyMarkup{}
		markup.InlineKeyboard = [][]telebot.InlineButton{
			{{Unique: cbLotContact, Text: "🤝 Intercambiar contacto", Data: strconv.FormatInt(v.OwnerUserID, 10)}},
		}
		msg := fmt.Sprintf("%s · %s · %s t x%d · %s",
			label, bodyTypeLabel(v.BodyType), v.CapacityTons.StringFixed(1), v.CountUnits, v.BaseRegion)
		if err := c.Send(msg, markup); err != nil {
			return err
		}
	}
	return nil
}

// ── Chat ─────────────────────────────────────────────────────────────────────

func (b *Bot) stepChatRelay(c telebot.Context, sess *Session, text string) error {
	sessionID, _ := strconv.ParseInt(sess.Data["session_id"], 10, 64)
	user := currentUser(c)
	_, err := b.deps.Chat.SendMessage(context.Background(), sessionID, user.ID, text)
	if err != nil {
		b.deps.Sessions.Clear(user.TelegramID)
		return c.Send("El chat ya no está disponible.", mainMenu())
	}
	return nil
}

func parsePositiveDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("debe ser mayor que cero")
	}
	return d, nil
}

func bodyTypeLabel(t string) string {
	switch t {
	case entity.BodyTypeGrain:
		return "tolva"
	case entity.BodyTypeTipper:
		return "volqueta"
	case entity.BodyTypeTarp:
		return "carpado"
	default:
		return t
	}
}
