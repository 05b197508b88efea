package repository

import (
	"context"

	"github.com/agrolink/agromercado/internal/domain/entity"
)

// ChatRepository puerto de persistencia para sesiones y mensajes de chat.
type ChatRepository interface {
	// GetOrCreateSession normaliza el par (menor, mayor) y devuelve la sesión
	// activa existente o crea una nueva.
	GetOrCreateSession(ctx context.Context, user1ID, user2ID int64, lotID *int64) (*entity.ChatSession, error)
	GetSessionByID(ctx context.Context, id int64) (*entity.ChatSession, error)
	ListSessionsForUser(ctx context.Context, userID int64) ([]*entity.ChatSession, error)
	CloseSession(ctx context.Context, id int64) error
	AppendMessage(ctx context.Context, msg *entity.ChatMessage) error
	ListMessages(ctx context.Context, sessionID int64, limit, offset int) ([]*entity.ChatMessage, error)
}

// ContactRepository puerto de persistencia para solicitudes de contacto.
type ContactRepository interface {
	Create(ctx context.Context, req *entity.ContactRequest) error
	GetByID(ctx context.Context, id int64) (*entity.ContactRequest, error)
	// GetBetween devuelve la solicitud entre dos usuarios en cualquier dirección.
	GetBetween(ctx context.Context, userA, userB int64) (*entity.ContactRequest, error)
	SetStatus(ctx context.Context, id int64, status string) error
	// MutualAccepted indica si existe una solicitud accepted entre ambos usuarios.
	MutualAccepted(ctx context.Context, userA, userB int64) (bool, error)
}
