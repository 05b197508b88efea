package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/agrolink/agromercado/internal/application/usecase"
	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
	"github.com/agrolink/agromercado/pkg/logger"
)

// Clave de locals de telebot donde el middleware deja al usuario resuelto.
const ctxUserKey = "current_user"

// Deps dependencias del bot.
type Deps struct {
	Users       *usecase.UserUseCase
	Market      *usecase.MarketUseCase
	Negotiation *usecase.NegotiationUseCase
	Chat        *usecase.ChatUseCase
	Logistics   *usecase.LogisticsUseCase
	Settings    repository.SettingRepository
	Sessions    *SessionStore
	Log         *logger.Logger
}

// Bot superficie de Telegram del marketplace.
type Bot struct {
	tb   *telebot.Bot
	deps Deps
}

// NewTelebot crea el cliente de Telegram con long polling. Se construye aparte
// del Bot porque el messenger de salida se necesita antes de armar los casos
// de uso que el Bot recibe en Deps.
func NewTelebot(token string, pollTimeout time.Duration) (*telebot.Bot, error) {
	return telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: pollTimeout},
	})
}

// New monta la superficie del bot sobre un cliente ya creado.
func New(tb *telebot.Bot, deps Deps) *Bot {
	b := &Bot{tb: tb, deps: deps}
	b.register()
	return b
}

// Telebot expone el cliente para adaptadores de salida.
func (b *Bot) Telebot() *telebot.Bot {
	return b.tb
}

// Start arranca el long polling (bloqueante) y se detiene con el contexto.
func (b *Bot) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		b.tb.Stop()
	}()
	b.tb.Start()
}

func (b *Bot) register() {
	b.tb.Use(b.resolveUser)

	b.tb.Handle("/start", b.handleStart)
	b.tb.Handle("/menu", b.handleMenu)
	b.tb.Handle("/pro", b.handleSubscription)
	b.tb.Handle(telebot.OnText, b.handleText)

	// Callbacks inline
	b.tb.Handle(&telebot.InlineButton{Unique: cbRole}, b.cbSelectRole)
	b.tb.Handle(&telebot.InlineButton{Unique: cbLotType}, b.cbSelectLotType)
	b.tb.Handle(&telebot.InlineButton{Unique: cbLotOffer}, b.cbMakeOffer)
	b.tb.Handle(&telebot.InlineButton{Unique: cbLotOffers}, b.cbLotOffers)
	b.tb.Handle(&telebot.InlineButton{Unique: cbLotContact}, b.cbRequestContact)
	b.tb.Handle(&telebot.InlineButton{Unique: cbOfferAccept}, b.cbDecideOffer(true))
	b.tb.Handle(&telebot.InlineButton{Unique: cbOfferReject}, b.cbDecideOffer(false))
	b.tb.Handle(&telebot.InlineButton{Unique: cbContactAccept}, b.cbRespondContact(true))
	b.tb.Handle(&telebot.InlineButton{Unique: cbContactReject}, b.cbRespondContact(false))
	b.tb.Handle(&telebot.InlineButton{Unique: cbChatOpen}, b.cbOpenChat)
	b.tb.Handle(&telebot.InlineButton{Unique: cbChatClose}, b.cbCloseChat)
	b.tb.Handle(&telebot.InlineButton{Unique: cbLotStatus}, b.cbLotStatus)
	b.tb.Handle(&telebot.InlineButton{Unique: cbLotPrice}, b.cbEditLotPrice)
	b.tb.Handle(&telebot.InlineButton{Unique: cbBodyType}, b.cbSelectBodyType)
	b.tb.Handle(&telebot.InlineButton{Unique: cbBrowseMore}, b.cbBrowseMore)
	b.tb.Handle(&telebot.InlineButton{Unique: cbEditRegion}, b.cbEditRegion)
}

// resolveUser upsert perezoso del usuario y corte para baneados.
func (b *Bot) resolveUser(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}
		user, err := b.deps.Users.Ensure(context.Background(), sender.ID)
		if err != nil {
			b.deps.Log.Error().Err(err).Int64("telegram_id", sender.ID).Msg("bot: error resolviendo usuario")
			return c.Send("Ocurrió un error, intente de nuevo en unos minutos.")
		}
		if user.IsBanned {
			return c.Send("Su cuenta está bloqueada. Contacte al soporte si cree que es un error.")
		}
		c.Set(ctxUserKey, user)
		return next(c)
	}
}

// currentUser devuelve el usuario resuelto por el middleware.
func currentUser(c telebot.Context) *entity.User {
	u, _ := c.Get(ctxUserKey).(*entity.User)
	return u
}

func (b *Bot) handleStart(c telebot.Context) error {
	user := currentUser(c)
	welcome, _ := b.deps.Settings.Get(context.Background(), "welcome_text")
	if welcome == "" {
		welcome = "Bienvenido al mercado de granos. Publique lotes, negocie precios y coordine transporte."
	}
	if err := c.Send(welcome); err != nil {
		return err
	}
	if !user.IsRegistered() {
		return b.startRegistration(c)
	}
	return c.Send("¿Qué desea hacer?", mainMenu())
}

func (b *Bot) handleMenu(c telebot.Context) error {
	b.deps.Sessions.Clear(c.Sender().ID)
	return c.Send("Menú principal", mainMenu())
}

// handleSubscription muestra el plan actual y activa la prueba pro si aún no
// la usó. Los días de prueba se ajustan desde el panel (clave pro_trial_days).
func (b *Bot) handleSubscription(c telebot.Context) error {
	user := currentUser(c)
	if user.Plan == entity.PlanPro && user.PlanExpiresAt != nil && user.PlanExpiresAt.After(time.Now()) {
		return c.Send(fmt.Sprintf("Su plan pro está activo hasta %s.",
			user.PlanExpiresAt.Format("2006-01-02")))
	}
	days := 7
	if v, _ := b.deps.Settings.Get(context.Background(), "pro_trial_days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	updated, err := b.deps.Users.Subscribe(context.Background(), user.TelegramID, days)
	if err != nil {
		return c.Send("No se pudo activar la suscripción, intente más tarde.")
	}
	return c.Send(fmt.Sprintf("Plan pro activado hasta %s.",
		updated.PlanExpiresAt.Format("2006-01-02")))
}
