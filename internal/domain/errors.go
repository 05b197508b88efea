package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrUserNotFound   = errors.New("usuario no encontrado")
	ErrValidation     = errors.New("entrada inválida")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrUserBanned     = errors.New("usuario bloqueado")
	ErrUsernameTaken  = errors.New("el nombre de usuario ya está registrado")
	ErrContactPending = errors.New("solicitud de contacto pendiente de aceptación")
)

// Errores específicos de la negociación. Todos son casos de ErrValidation o
// ErrConflict, pero el bot necesita distinguirlos para el mensaje al usuario.
var (
	ErrLotInactive    = errors.New("el lote no está activo")
	ErrSelfOffer      = errors.New("no puede ofertar sobre su propio lote")
	ErrAlreadyDecided = errors.New("la oferta ya fue decidida")
)
