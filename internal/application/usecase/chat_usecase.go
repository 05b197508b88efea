package usecase

import (
	"context"
	"fmt"

	"github.com/agrolink/agromercado/internal/application/ports"
	"github.com/agrolink/agromercado/internal/domain"
	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

// ChatUseCase chat anónimo con intercambio de contacto. El relay de mensajes
// solo se habilita cuando existe una solicitud de contacto accepted entre
// ambos participantes; hasta entonces solo se puede solicitar contacto.
type ChatUseCase struct {
	chats     repository.ChatRepository
	contacts  repository.ContactRepository
	users     repository.UserRepository
	messenger ports.Messenger
}

// NewChatUseCase construye el caso de uso.
func NewChatUseCase(
	chats repository.ChatRepository,
	contacts repository.ContactRepository,
	users repository.UserRepository,
	messenger ports.Messenger,
) *ChatUseCase {
	return &ChatUseCase{chats: chats, contacts: contacts, users: users, messenger: messenger}
}

// RequestContact crea una solicitud de contacto hacia otro usuario y le avisa.
// Si ya existe una solicitud entre ambos, devuelve su estado actual.
func (uc *ChatUseCase) RequestContact(ctx context.Context, fromUserID, toUserID int64) (*entity.ContactRequest, error) {
	if fromUserID == toUserID {
		return nil, domain.ErrValidation
	}
	existing, err := uc.contacts.GetBetween(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == entity.ContactStatusPending {
			return existing, domain.ErrContactPending
		}
		return existing, nil
	}

	req := &entity.ContactRequest{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     entity.ContactStatusPending,
	}
	if err := uc.contacts.Create(ctx, req); err != nil {
		return nil, err
	}

	from, err := uc.users.GetByID(ctx, fromUserID)
	if err == nil && from != nil {
		uc.notifyUser(ctx, toUserID, fmt.Sprintf(
			"El usuario %s quiere intercambiar contactos con usted. Acepte para habilitar el chat.",
			from.AnonymousID()))
	}
	return req, nil
}

// RespondContact acepta o rechaza una solicitud dirigida al actor.
func (uc *ChatUseCase) RespondContact(ctx context.Context, requestID, actorUserID int64, accept bool) (*entity.ContactRequest, error) {
	req, err := uc.contacts.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if req.ToUserID != actorUserID {
		return nil, domain.ErrForbidden
	}
	if req.Status != entity.ContactStatusPending {
		return nil, domain.ErrAlreadyDecided
	}

	status := entity.ContactStatusRejected
	if accept {
		status = entity.ContactStatusAccepted
	}
	if err := uc.contacts.SetStatus(ctx, requestID, status); err != nil {
		return nil, err
	}
	req.Status = status

	if accept {
		uc.notifyUser(ctx, req.FromUserID,
			"Su solicitud de contacto fue aceptada. El chat quedó habilitado.")
	} else {
		uc.notifyUser(ctx, req.FromUserID,
			"Su solicitud de contacto fue rechazada.")
	}
	return req, nil
}

// OpenChat abre (o recupera) la sesión entre dos usuarios con contacto mutuo.
func (uc *ChatUseCase) OpenChat(ctx context.Context, userID, otherUserID int64, lotID *int64) (*entity.ChatSession, error) {
	if userID == otherUserID {
		return nil, domain.ErrValidation
	}
	ok, err := uc.contacts.MutualAccepted(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrContactPending
	}
	return uc.chats.GetOrCreateSession(ctx, userID, otherUserID, lotID)
}

// SendMessage agrega el mensaje a la sesión y lo reenvía al interlocutor con
// el identificador anónimo del emisor.
func (uc *ChatUseCase) SendMessage(ctx context.Context, sessionID, senderUserID int64, content string) (*entity.ChatMessage, error) {
	if content == "" {
		return nil, domain.ErrValidation
	}
	session, err := uc.chats.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	if !session.HasParticipant(senderUserID) {
		return nil, domain.ErrForbidden
	}
	if session.Status != entity.ChatStatusActive {
		return nil, domain.ErrConflict
	}

	msg := &entity.ChatMessage{
		SessionID:    sessionID,
		SenderUserID: senderUserID,
		Content:      content,
	}
	if err := uc.chats.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	sender, err := uc.users.GetByID(ctx, senderUserID)
	if err == nil && sender != nil {
		uc.notifyUser(ctx, session.Counterpart(senderUserID),
			fmt.Sprintf("%s: %s", sender.AnonymousID(), content))
	}
	return msg, nil
}

// History lista los mensajes de una sesión del actor.
func (uc *ChatUseCase) History(ctx context.Context, sessionID, actorUserID int64, limit, offset int) ([]*entity.ChatMessage, error) {
	session, err := uc.chats.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	if !session.HasParticipant(actorUserID) {
		return nil, domain.ErrForbidden
	}
	return uc.chats.ListMessages(ctx, sessionID, limit, offset)
}

// MyChats lista las sesiones activas del usuario.
func (uc *ChatUseCase) MyChats(ctx context.Context, userID int64) ([]*entity.ChatSession, error) {
	return uc.chats.ListSessionsForUser(ctx, userID)
}

// CloseChat cierra una sesión del actor.
func (uc *ChatUseCase) CloseChat(ctx context.Context, sessionID, actorUserID int64) error {
	session, err := uc.chats.GetSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrNotFound
	}
	if !session.HasParticipant(actorUserID) {
		return domain.ErrForbidden
	}
	return uc.chats.CloseSession(ctx, sessionID)
}

func (uc *ChatUseCase) notifyUser(ctx context.Context, userID int64, text string) {
	if uc.messenger == nil {
		return
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return
	}
	_ = uc.messenger.SendMessage(ctx, user.TelegramID, text)
}
