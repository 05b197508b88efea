package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolink/agromercado/internal/domain/entity"
	"github.com/agrolink/agromercado/internal/domain/repository"
)

var _ repository.ChatRepository = (*ChatRepo)(nil)

const sessionColumns = `id, user1_id, user2_id, lot_id, status, created_at, updated_at`

// ChatRepo implementación del puerto ChatRepository sobre PostgreSQL.
type ChatRepo struct {
	pool *pgxpool.Pool
}

// NewChatRepository construye el adaptador de persistencia para chat.
func NewChatRepository(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

// GetOrCreateSession normaliza el par y devuelve la sesión activa o crea una nueva.
func (r *ChatRepo) GetOrCreateSession(ctx context.Context, user1ID, user2ID int64, lotID *int64) (*entity.ChatSession, error) {
	lo, hi := user1ID, user2ID
	if lo > hi {
		lo, hi = hi, lo
	}

	query := `SELECT ` + sessionColumns + ` FROM chat_sessions
		WHERE user1_id = $1 AND user2_id = $2 AND status = 'active'
		  AND (lot_id = $3 OR (lot_id IS NULL AND $3::BIGINT IS NULL))
		LIMIT 1`
	s, err := r.scanSession(r.pool.QueryRow(ctx, query, lo, hi, lotID))
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}

	insert := `
		INSERT INTO chat_sessions (user1_id, user2_id, lot_id, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING ` + sessionColumns
	s, err = r.scanSession(r.pool.QueryRow(ctx, insert, lo, hi, lotID))
	if err != nil {
		return nil, fmt.Errorf("insert chat session: %w", err)
	}
	return s, nil
}

// GetSessionByID obtiene una sesión por ID.
func (r *ChatRepo) GetSessionByID(ctx context.Context, id int64) (*entity.ChatSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions WHERE id = $1`
	return r.scanSession(r.pool.QueryRow(ctx, query, id))
}

// ListSessionsForUser lista las sesiones activas donde participa el usuario.
func (r *ChatRepo) ListSessionsForUser(ctx context.Context, userID int64) ([]*entity.ChatSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions
		WHERE (user1_id = $1 OR user2_id = $1) AND status = 'active'
		ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}
	defer rows.Close()
	var list []*entity.ChatSession
	for rows.Next() {
		var s entity.ChatSession
		if err := rows.Scan(&s.ID, &s.User1ID, &s.User2ID, &s.LotID, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan chat session: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// CloseSession marca la sesión como cerrada.
func (r *ChatRepo) CloseSession(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE chat_sessions SET status = 'closed', updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("close chat session: %w", err)
	}
	return nil
}

// AppendMessage agrega un mensaje (append-only) y refresca la sesión.
func (r *ChatRepo) AppendMessage(ctx context.Context, msg *entity.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (session_id, sender_user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, msg.SessionID, msg.SenderUserID, msg.Content).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	_, err = r.pool.Exec(ctx, `UPDATE chat_sessions SET updated_at = NOW() WHERE id = $1`, msg.SessionID)
	if err != nil {
		return fmt.Errorf("touch chat session: %w", err)
	}
	return nil
}

// ListMessages lista los mensajes de una sesión ordenados por creación.
func (r *ChatRepo) ListMessages(ctx context.Context, sessionID int64, limit, offset int) ([]*entity.ChatMessage, error) {
	query := `SELECT id, session_id, sender_user_id, content, created_at
		FROM chat_messages WHERE session_id = $1
		ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()
	var list []*entity.ChatMessage
	for rows.Next() {
		var m entity.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.SenderUserID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

func (r *ChatRepo) scanSession(row pgx.Row) (*entity.ChatSession, error) {
	var s entity.ChatSession
	err := row.Scan(&s.ID, &s.User1ID, &s.User2ID, &s.LotID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat session: %w", err)
	}
	return &s, nil
}

var _ repository.ContactRepository = (*ContactRepo)(nil)

// ContactRepo implementación del puerto ContactRepository sobre PostgreSQL.
type ContactRepo struct {
	pool *pgxpool.Pool
}

// NewContactRepository construye el adaptador de persistencia para solicitudes de contacto.
func NewContactRepository(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

// Create persiste una solicitud de contacto.
func (r *ContactRepo) Create(ctx context.Context, req *entity.ContactRequest) error {
	query := `
		INSERT INTO contact_requests (from_user_id, to_user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, req.FromUserID, req.ToUserID, req.Status).
		Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert contact request: %w", errors.New("solicitud duplicada"))
		}
		return fmt.Errorf("insert contact request: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID.
func (r *ContactRepo) GetByID(ctx context.Context, id int64) (*entity.ContactRequest, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

// GetBetween devuelve la solicitud entre dos usuarios en cualquier dirección.
func (r *ContactRepo) GetBetween(ctx context.Context, userA, userB int64) (*entity.ContactRequest, error) {
	query := `SELECT id, from_user_id, to_user_id, status, created_at, responded_at
		FROM contact_requests
		WHERE (from_user_id = $1 AND to_user_id = $2) OR (from_user_id = $2 AND to_user_id = $1)
		ORDER BY id DESC LIMIT 1`
	var c entity.ContactRequest
	err := r.pool.QueryRow(ctx, query, userA, userB).Scan(
		&c.ID, &c.FromUserID, &c.ToUserID, &c.Status, &c.CreatedAt, &c.RespondedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contact request: %w", err)
	}
	return &c, nil
}

func (r *ContactRepo) getBy(ctx context.Context, where string, arg any) (*entity.ContactRequest, error) {
	query := `SELECT id, from_user_id, to_user_id, status, created_at, responded_at FROM contact_requests ` + where
	var c entity.ContactRequest
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.FromUserID, &c.ToUserID, &c.Status, &c.CreatedAt, &c.RespondedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contact request: %w", err)
	}
	return &c, nil
}

// SetStatus decide una solicitud y registra cuándo.
func (r *ContactRepo) SetStatus(ctx context.Context, id int64, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE contact_requests SET status = $2, responded_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set contact status: %w", err)
	}
	return nil
}

// MutualAccepted indica si existe una solicitud accepted entre ambos usuarios.
func (r *ContactRepo) MutualAccepted(ctx context.Context, userA, userB int64) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM contact_requests
		WHERE status = 'accepted'
		  AND ((from_user_id = $1 AND to_user_id = $2) OR (from_user_id = $2 AND to_user_id = $1))
	)`
	var ok bool
	if err := r.pool.QueryRow(ctx, query, userA, userB).Scan(&ok); err != nil {
		return false, fmt.Errorf("check mutual contact: %w", err)
	}
	return ok, nil
}
