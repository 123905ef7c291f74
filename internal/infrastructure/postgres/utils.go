package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/magazzino-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isSerializationFailure 40001 (serialization_failure) o 40P01 (deadlock_detected):
// la transacción se puede reintentar desde el principio.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// wrap traduce errores de Postgres a los del dominio; el resto lleva contexto de la operación.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if isSerializationFailure(err) {
		return domain.ErrWriteConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}
