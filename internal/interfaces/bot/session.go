package bot

import (
	"context"
	"sync"
	"time"
)

// Session estado efímero de un flujo conversacional (registro, publicación,
// contraoferta). Vive en memoria con TTL: si el usuario abandona a mitad de
// flujo, el estado expira solo.
type Session struct {
	Flow      string
	Step      string
	Data      map[string]string
	UpdatedAt time.Time
}

// SessionStore mapa en memoria con TTL por usuario.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]*Session
}

// NewSessionStore construye el almacén de sesiones de flujo.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{ttl: ttl, sessions: make(map[int64]*Session)}
}

// Begin arranca un flujo nuevo descartando cualquier estado previo.
func (s *SessionStore) Begin(telegramID int64, flow, step string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{Flow: flow, Step: step, Data: make(map[string]string), UpdatedAt: time.Now()}
	s.sessions[telegramID] = sess
	return sess
}

// Current devuelve la sesión vigente, o nil si no hay o expiró.
func (s *SessionStore) Current(telegramID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[telegramID]
	if !ok {
		return nil
	}
	if time.Since(sess.UpdatedAt) > s.ttl {
		delete(s.sessions, telegramID)
		return nil
	}
	return sess
}

// Advance fija el paso siguiente y refresca el TTL.
func (s *SessionStore) Advance(telegramID int64, step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[telegramID]; ok {
		sess.Step = step
		sess.UpdatedAt = time.Now()
	}
}

// Put guarda un dato del flujo y refresca el TTL.
func (s *SessionStore) Put(telegramID int64, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[telegramID]; ok {
		sess.Data[key] = value
		sess.UpdatedAt = time.Now()
	}
}

// Clear descarta la sesión del usuario.
func (s *SessionStore) Clear(telegramID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, telegramID)
}

// Janitor purga sesiones expiradas periódicamente hasta que ctx se cancele.
func (s *SessionStore) Janitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purge()
		}
	}
}

func (s *SessionStore) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
