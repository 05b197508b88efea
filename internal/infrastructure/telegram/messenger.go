package telegram

import (
	"context"
	"fmt"

	"gopkg.in/telebot.v3"

	"github.com/agrolink/agromercado/internal/application/ports"
)

var _ ports.Messenger = (*Messenger)(nil)

// Messenger adaptador de salida hacia Telegram sobre telebot.
type Messenger struct {
	bot *telebot.Bot
}

// NewMessenger construye el adaptador sobre un bot ya conectado.
func NewMessenger(bot *telebot.Bot) *Messenger {
	return &Messenger{bot: bot}
}

// SendMessage envía texto plano a un chat privado por telegram_id.
func (m *Messenger) SendMessage(_ context.Context, telegramID int64, text string) error {
	if _, err := m.bot.Send(&telebot.User{ID: telegramID}, text); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
