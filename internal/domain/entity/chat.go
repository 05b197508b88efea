package entity

import "time"

// Estados de sesión de chat.
const (
	ChatStatusActive = "active"
	ChatStatusClosed = "closed"
)

// ChatSession sesión de chat anónimo entre dos usuarios, opcionalmente ligada
// a un lote. El par se normaliza (User1ID < User2ID) para que exista una sola
// sesión por pareja+lote.
type ChatSession struct {
	ID        int64
	User1ID   int64
	User2ID   int64
	LotID     *int64
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Counterpart devuelve el otro participante de la sesión.
func (s *ChatSession) Counterpart(userID int64) int64 {
	if s.User1ID == userID {
		return s.User2ID
	}
	return s.User1ID
}

// HasParticipant indica si userID pertenece a la sesión.
func (s *ChatSession) HasParticipant(userID int64) bool {
	return s.User1ID == userID || s.User2ID == userID
}

// ChatMessage mensaje de chat, solo texto. Append-only, ordenado por creación.
type ChatMessage struct {
	ID           int64
	SessionID    int64
	SenderUserID int64
	Content      string
	CreatedAt    time.Time
}

// Estados de solicitud de contacto.
const (
	ContactStatusPending  = "pending"
	ContactStatusAccepted = "accepted"
	ContactStatusRejected = "rejected"
)

// ContactRequest solicitud de intercambio de contacto. El relay de mensajes
// al interlocutor solo se permite con una solicitud accepted entre ambos.
type ContactRequest struct {
	ID          int64
	FromUserID  int64
	ToUserID    int64
	Status      string
	CreatedAt   time.Time
	RespondedAt *time.Time
}
