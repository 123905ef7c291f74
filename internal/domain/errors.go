package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")

	// Protección de invariantes: nunca se corrigen en silencio.
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrCapacityExceeded  = errors.New("capacidad de la UDC excedida")
	ErrInvalidRelease    = errors.New("liberación de volumen inválida")
	ErrUDCBlocked        = errors.New("UDC bloqueada")

	// Violaciones del flujo de trabajo.
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrSessionNotActive  = errors.New("sesión de inventario no activa")
	ErrOutOfScope        = errors.New("producto fuera del alcance de la sesión")
	ErrAlreadyDecided    = errors.New("movimiento ya decidido")

	// ErrWriteConflict lo emite la capa de persistencia cuando otra transacción
	// modificó la misma clave; es el único error que el núcleo reintenta.
	ErrWriteConflict = errors.New("conflicto de escritura concurrente")
	ErrConflict      = errors.New("conflicto con el estado actual")
	ErrInternal      = errors.New("error interno")
)
