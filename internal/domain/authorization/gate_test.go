package authorization_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/authorization"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

func TestAuthorize(t *testing.T) {
	gate := authorization.NewGate()
	draft := &entity.Movement{}

	st, err := gate.Authorize(&entity.Causale{Code: "CAR", Active: true}, draft)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAutoApproved, st)

	st, err = gate.Authorize(&entity.Causale{Code: "TRASF", Active: true, RequiresAuthorization: true}, draft)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, st)

	_, err = gate.Authorize(&entity.Causale{Code: "OLD", Active: false}, draft)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "causale inactiva no admite movimientos")
}

func TestDecide_SoloDesdePending(t *testing.T) {
	st, err := authorization.Decide(entity.StatusPending, true)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, st)

	st, err = authorization.Decide(entity.StatusPending, false)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, st)

	for _, decided := range []entity.AuthorizationStatus{
		entity.StatusApproved, entity.StatusRejected, entity.StatusAutoApproved,
	} {
		_, err := authorization.Decide(decided, true)
		assert.ErrorIs(t, err, domain.ErrAlreadyDecided, string(decided))
	}

	_, err = authorization.Decide("desconocido", true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStatus_Effective(t *testing.T) {
	assert.True(t, entity.StatusAutoApproved.Effective())
	assert.True(t, entity.StatusApproved.Effective())
	assert.False(t, entity.StatusPending.Effective())
	assert.False(t, entity.StatusRejected.Effective())
}
