package inventory

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/pkg/logger"
	"github.com/jhoicas/magazzino-api/pkg/metrics"
)

const retryBaseDelay = 2 * time.Millisecond

// withRetry reintenta fn completa mientras devuelva domain.ErrWriteConflict.
// Cada intento vuelve a leer el estado más reciente (fn abre su propia transacción).
// Agotados los intentos devuelve domain.ErrConflict.
func withRetry(ctx context.Context, op string, maxAttempts int, log *logger.Logger, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	for attempt := 1; ; attempt++ {
		err := fn()
		if !errors.Is(err, domain.ErrWriteConflict) {
			return err
		}
		if attempt >= maxAttempts {
			log.Warn().Str("op", op).Int("attempts", attempt).Msg("conflicto de escritura: reintentos agotados")
			return domain.ErrConflict
		}
		metrics.WriteConflictRetriesTotal.WithLabelValues(op).Inc()
		log.Debug().Str("op", op).Int("attempt", attempt).Msg("conflicto de escritura, reintentando")

		delay := retryBaseDelay*time.Duration(attempt) + time.Duration(rand.Int63n(int64(retryBaseDelay)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// domainErrors errores que se devuelven tal cual al llamador.
var domainErrors = []error{
	domain.ErrNotFound,
	domain.ErrInvalidInput,
	domain.ErrDuplicate,
	domain.ErrInsufficientStock,
	domain.ErrCapacityExceeded,
	domain.ErrInvalidRelease,
	domain.ErrUDCBlocked,
	domain.ErrInvalidTransition,
	domain.ErrSessionNotActive,
	domain.ErrOutOfScope,
	domain.ErrAlreadyDecided,
	domain.ErrConflict,
	context.Canceled,
	context.DeadlineExceeded,
}

// surface traduce el error para el llamador: los de dominio pasan sin cambios,
// cualquier otro (almacenamiento, red) se registra y se devuelve como domain.ErrInternal.
func surface(log *logger.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return known
		}
	}
	log.Error().Err(err).Str("op", op).Msg("error interno")
	return domain.ErrInternal
}
