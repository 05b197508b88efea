package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Un flujo recién iniciado se recupera con su paso y sus datos.
func TestSessionStore_BeginYCurrent(t *testing.T) {
	store := NewSessionStore(time.Minute)

	store.Begin(1, "registro", "rol")
	store.Put(1, "rol", "farmer")
	store.Advance(1, "region")

	sess := store.Current(1)
	require.NotNil(t, sess)
	assert.Equal(t, "registro", sess.Flow)
	assert.Equal(t, "region", sess.Step)
	assert.Equal(t, "farmer", sess.Data["rol"])
}

// Begin descarta el estado de un flujo anterior.
func TestSessionStore_BeginDescartaFlujoAnterior(t *testing.T) {
	store := NewSessionStore(time.Minute)

	store.Begin(1, "registro", "rol")
	store.Put(1, "rol", "farmer")
	store.Begin(1, "lote", "tipo")

	sess := store.Current(1)
	require.NotNil(t, sess)
	assert.Equal(t, "lote", sess.Flow)
	assert.Empty(t, sess.Data)
}

// Una sesión más vieja que el TTL desaparece.
func TestSessionStore_ExpiraPorTTL(t *testing.T) {
	store := NewSessionStore(10 * time.Millisecond)

	store.Begin(1, "registro", "rol")
	time.Sleep(20 * time.Millisecond)

	assert.Nil(t, store.Current(1), "la sesión expirada no debe recuperarse")
}

// purge elimina solo las expiradas.
func TestSessionStore_PurgeSoloExpiradas(t *testing.T) {
	store := NewSessionStore(10 * time.Millisecond)

	store.Begin(1, "registro", "rol")
	time.Sleep(20 * time.Millisecond)
	store.Begin(2, "lote", "tipo")

	store.purge()

	assert.Nil(t, store.Current(1))
	assert.NotNil(t, store.Current(2))
}

// Sesiones de usuarios distintos no se pisan.
func TestSessionStore_AislamientoPorUsuario(t *testing.T) {
	store := NewSessionStore(time.Minute)

	store.Begin(1, "registro", "rol")
	store.Begin(2, "lote", "tipo")
	store.Clear(1)

	assert.Nil(t, store.Current(1))
	require.NotNil(t, store.Current(2))
	assert.Equal(t, "lote", store.Current(2).Flow)
}
