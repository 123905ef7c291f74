package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

func (f *fixture) openAndStart(t *testing.T, productIDs ...string) string {
	t.Helper()
	ctx := context.Background()
	s, err := f.counts.Open(ctx, inventory.OpenCountInput{CommittenteID: tenant, ProductIDs: productIDs})
	require.NoError(t, err)
	assert.Equal(t, entity.CountStatePlanned, s.State)

	view, err := f.counts.Start(ctx, tenant, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountStateInProgress, view.Session.State)
	return s.ID
}

func TestReconciliacion_Determinismo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.commit(t, causaleIn, 100)

	id := f.openAndStart(t, product)
	line, err := f.counts.RecordCount(ctx, tenant, id, product, dec(85))
	require.NoError(t, err)
	assert.True(t, line.Variance.Equal(dec(-15)))

	res, err := f.counts.Close(ctx, tenant, id, "auditor")
	require.NoError(t, err)
	require.Len(t, res.Adjustments, 1)
	adj := res.Adjustments[0]
	assert.True(t, adj.QuantityDelta.Equal(dec(-15)))
	assert.Equal(t, entity.CausaleAdjustment, adj.CausaleCode)
	assert.Equal(t, id, adj.Reference)
	assert.Equal(t, entity.CountStateClosed, res.Session.State)
	assert.True(t, f.stock(t, product).Equal(dec(85)))

	view, err := f.counts.Get(ctx, tenant, id)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.True(t, view.Lines[0].Resolved)
	assert.Equal(t, adj.ID, view.Lines[0].AdjustmentMovementID)
}

func TestReconciliacion_CierreIdempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.commit(t, causaleIn, 10)

	id := f.openAndStart(t, product)
	_, err := f.counts.RecordCount(ctx, tenant, id, product, dec(12))
	require.NoError(t, err)
	_, err = f.counts.Close(ctx, tenant, id, "auditor")
	require.NoError(t, err)

	_, err = f.counts.Close(ctx, tenant, id, "auditor")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	hist, err := f.ledger.Movements(ctx, tenant, product, 50, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 2, "carga inicial + un solo ajuste")
	assert.True(t, f.stock(t, product).Equal(dec(12)))
}

func TestReconciliacion_CierreTodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.commit(t, causaleIn, 100)

	id := f.openAndStart(t, product, product2)
	_, err := f.counts.RecordCount(ctx, tenant, id, product2, dec(7)) // +7, válido por sí solo
	require.NoError(t, err)
	_, err = f.counts.RecordCount(ctx, tenant, id, product, dec(0)) // -100
	require.NoError(t, err)

	// entre el inicio y el cierre sale mercancía: el ajuste de -100 deja la giacenza negativa
	f.commit(t, causaleOut, -50)

	_, err = f.counts.Close(ctx, tenant, id, "auditor")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	view, err := f.counts.Get(ctx, tenant, id)
	require.NoError(t, err)
	assert.Equal(t, entity.CountStateInProgress, view.Session.State)
	for _, l := range view.Lines {
		assert.False(t, l.Resolved)
		assert.Empty(t, l.AdjustmentMovementID)
	}
	assert.True(t, f.stock(t, product2).IsZero(), "el ajuste válido tampoco se aplicó")
	assert.True(t, f.stock(t, product).Equal(dec(50)))
}

func TestReconciliacion_LineasSinContarNoAjustan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.commit(t, causaleIn, 40)

	id := f.openAndStart(t, product, product2)
	res, err := f.counts.Close(ctx, tenant, id, "auditor")
	require.NoError(t, err)
	assert.Empty(t, res.Adjustments)
	for _, l := range res.Lines {
		assert.True(t, l.Resolved)
	}
	assert.True(t, f.stock(t, product).Equal(dec(40)))
}

func TestReconciliacion_Transiciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.counts.Open(ctx, inventory.OpenCountInput{CommittenteID: tenant, ProductIDs: []string{product}})
	require.NoError(t, err)

	_, err = f.counts.RecordCount(ctx, tenant, s.ID, product, dec(1))
	assert.ErrorIs(t, err, domain.ErrSessionNotActive, "planned no acepta conteos")
	_, err = f.counts.Close(ctx, tenant, s.ID, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "close desde planned")

	_, err = f.counts.Start(ctx, tenant, s.ID)
	require.NoError(t, err)
	_, err = f.counts.Start(ctx, tenant, s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.counts.RecordCount(ctx, tenant, s.ID, product2, dec(1))
	assert.ErrorIs(t, err, domain.ErrOutOfScope)
	_, err = f.counts.RecordCount(ctx, tenant, s.ID, product, dec(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.counts.Close(ctx, tenant, s.ID, "x")
	require.NoError(t, err)
	_, err = f.counts.RecordCount(ctx, tenant, s.ID, product, dec(1))
	assert.ErrorIs(t, err, domain.ErrSessionNotActive)
	_, err = f.counts.Start(ctx, tenant, s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReconciliacion_FotoNoSeResincroniza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.commit(t, causaleIn, 100)

	id := f.openAndStart(t, product)
	f.commit(t, causaleOut, -10) // deriva posterior al inicio

	line, err := f.counts.RecordCount(ctx, tenant, id, product, dec(100))
	require.NoError(t, err)
	assert.True(t, line.ExpectedQuantity.Equal(dec(100)))
	assert.True(t, line.Variance.IsZero())

	res, err := f.counts.Close(ctx, tenant, id, "auditor")
	require.NoError(t, err)
	assert.Empty(t, res.Adjustments)
	assert.True(t, f.stock(t, product).Equal(dec(90)))
}

func TestReconciliacion_Open(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.counts.Open(ctx, inventory.OpenCountInput{CommittenteID: tenant})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.counts.Open(ctx, inventory.OpenCountInput{CommittenteID: otherTenant, ProductIDs: []string{product}})
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto de otro committente")

	s, err := f.counts.Open(ctx, inventory.OpenCountInput{CommittenteID: tenant, ProductIDs: []string{product, product, ""}})
	require.NoError(t, err)
	assert.Equal(t, []string{product}, s.Scope.ProductIDs)

	_, err = f.counts.Get(ctx, otherTenant, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCountSheet_OrdenadaPorSKU(t *testing.T) {
	f := newFixture(t)
	id := f.openAndStart(t, product, product2)

	sheet, err := f.sheet.Build(context.Background(), tenant, id)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "A-100", sheet.Rows[0].SKU)
	assert.Equal(t, "B-200", sheet.Rows[1].SKU)
	assert.Equal(t, "Acme", sheet.Committente.Name)
}

func TestReconciliacion_CierreConcurrente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.commit(t, causaleIn, 100)

	id := f.openAndStart(t, product)
	_, err := f.counts.RecordCount(ctx, tenant, id, product, dec(85))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.counts.Close(context.Background(), tenant, id, "auditor")
		}(i)
	}
	wg.Wait()

	var ok, invalid int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInvalidTransition):
			invalid++
		default:
			t.Errorf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, invalid)

	hist, err := f.ledger.Movements(ctx, tenant, product, 50, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 2, "carga inicial + un solo ajuste")
	assert.True(t, f.stock(t, product).Equal(dec(85)))
}
