package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

func TestCommit_ConservacionDeCantidad(t *testing.T) {
	f := newFixture(t)
	deltas := []int64{100, -30, 45, -15}
	var sum int64
	for _, d := range deltas {
		c := causaleIn
		if d < 0 {
			c = causaleOut
		}
		m := f.commit(t, c, d)
		assert.Equal(t, entity.StatusAutoApproved, m.Status)
		sum += d
	}
	q := f.stock(t, product)
	assert.True(t, q.Equal(dec(sum)), "giacenza %s, esperado %d", q, sum)

	hist, err := f.ledger.Movements(context.Background(), tenant, product, 0, 0)
	require.NoError(t, err)
	require.Len(t, hist, len(deltas))
	assert.True(t, hist[0].QuantityDelta.Equal(dec(-15)), "el más reciente primero")
}

func TestCommit_CausaleEnMinusculas(t *testing.T) {
	f := newFixture(t)
	m := f.commit(t, " car ", 5)
	assert.Equal(t, causaleIn, m.CausaleCode)
}

func TestCommit_SinStockSuficiente_NoDejaRastro(t *testing.T) {
	f := newFixture(t)
	f.commit(t, causaleIn, 10)

	_, err := f.ledger.Commit(context.Background(), inventory.MovementDraft{
		CommittenteID: tenant, ProductID: product, CausaleCode: causaleOut, QuantityDelta: dec(-11),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stock(t, product).Equal(dec(10)))

	hist, err := f.ledger.Movements(context.Background(), tenant, product, 10, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 1, "el movimiento rechazado no se registra")
}

func TestCommit_CommittenteConBackorder(t *testing.T) {
	f := newFixture(t)
	allow := true
	f.store.AddCommittente(entity.Committente{ID: tenant, Name: "Acme", AllowNegativeStock: &allow})

	f.commit(t, causaleOut, -5)
	assert.True(t, f.stock(t, product).Equal(dec(-5)))
}

func TestCommit_ValidacionDeEntrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := map[string]inventory.MovementDraft{
		"delta cero sin reubicación": {CommittenteID: tenant, ProductID: product, CausaleCode: causaleIn},
		"sin causale":                {CommittenteID: tenant, ProductID: product, QuantityDelta: dec(1)},
		"misma UDC origen y destino": {CommittenteID: tenant, ProductID: product, CausaleCode: causaleIn, QuantityDelta: dec(1), SourceUDCID: "u1", DestinationUDCID: "u1"},
		"volumen negativo":           {CommittenteID: tenant, ProductID: product, CausaleCode: causaleIn, QuantityDelta: dec(1), VolumeCM3: -1},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.ledger.Commit(ctx, d)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCommit_CausaleDesconocida(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Commit(context.Background(), inventory.MovementDraft{
		CommittenteID: tenant, ProductID: product, CausaleCode: "NOPE", QuantityDelta: dec(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommit_OtroCommittenteNoVeElProducto(t *testing.T) {
	f := newFixture(t)
	f.commit(t, causaleIn, 10)

	_, err := f.ledger.Commit(context.Background(), inventory.MovementDraft{
		CommittenteID: otherTenant, ProductID: product, CausaleCode: causaleOut, QuantityDelta: dec(-1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ledger.CurrentStock(context.Background(), otherTenant, product)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, f.stock(t, product).Equal(dec(10)))
}

func TestCommit_ExcedeCapacidad_SinEfectos(t *testing.T) {
	f := newFixture(t)
	f.addUDC(t, "u1", 900)

	_, err := f.ledger.Commit(context.Background(), inventory.MovementDraft{
		CommittenteID: tenant, ProductID: product, CausaleCode: causaleIn,
		QuantityDelta: dec(20), VolumeCM3: 200, DestinationUDCID: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.True(t, f.stock(t, product).IsZero(), "la giacenza no cambia")

	u := f.udc(t, "u1")
	assert.Equal(t, int64(900), u.VolumeOccupiedCM3)
	assert.Equal(t, entity.UDCStateInUse, u.State)
}

func TestCommit_VolumeDerivadoDelProducto(t *testing.T) {
	f := newFixture(t)
	f.addUDC(t, "u1", 0)

	m, err := f.ledger.Commit(context.Background(), inventory.MovementDraft{
		CommittenteID: tenant, ProductID: product, CausaleCode: causaleIn,
		QuantityDelta: dec(100), DestinationUDCID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), m.VolumeCM3)

	u := f.udc(t, "u1")
	assert.Equal(t, int64(1000), u.VolumeOccupiedCM3)
	assert.Equal(t, entity.UDCStateFull, u.State)
}

func TestCommit_Reubicacion(t *testing.T) {
	f := newFixture(t)
	f.addUDC(t, "src", 300)
	f.addUDC(t, "dst", 0)
	f.commit(t, causaleIn, 30)

	m, err := f.ledger.Commit(context.Background(), inventory.MovementDraft{
		CommittenteID: tenant, ProductID: product, CausaleCode: causaleIn,
		VolumeCM3: 300, SourceUDCID: "src", DestinationUDCID: "dst",
	})
	require.NoError(t, err)
	assert.True(t, m.QuantityDelta.IsZero())

	assert.True(t, f.stock(t, product).Equal(dec(30)), "la reubicación no cambia la cantidad")
	src, dst := f.udc(t, "src"), f.udc(t, "dst")
	assert.Equal(t, int64(0), src.VolumeOccupiedCM3)
	assert.Equal(t, entity.UDCStateFree, src.State)
	assert.Equal(t, int64(300), dst.VolumeOccupiedCM3)
	assert.Equal(t, entity.UDCStateInUse, dst.State)
}

func TestCommit_UDCBloqueada(t *testing.T) {
	f := newFixture(t)
	f.addUDC(t, "u1", 0)
	_, err := f.udcs.SetBlocked(context.Background(), "u1", true)
	require.NoError(t, err)

	_, err = f.ledger.Commit(context.Background(), inventory.MovementDraft{
		CommittenteID: tenant, ProductID: product, CausaleCode: causaleIn,
		QuantityDelta: dec(1), VolumeCM3: 10, DestinationUDCID: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrUDCBlocked)
	assert.True(t, f.stock(t, product).IsZero())
}

func TestCommit_ConcurrenciaNoVendeDosVeces(t *testing.T) {
	f := newFixture(t)
	f.commit(t, causaleIn, 100)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.Commit(context.Background(), inventory.MovementDraft{
				CommittenteID: tenant, ProductID: product, CausaleCode: causaleOut, QuantityDelta: dec(-60),
			})
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Errorf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.True(t, f.stock(t, product).Equal(dec(40)))
}

func TestAutorizacion_PendienteSinEfecto_LuegoAprobado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.commit(t, causaleAuth, 25)
	assert.Equal(t, entity.StatusPending, m.Status)
	assert.True(t, f.stock(t, product).IsZero(), "un movimiento pendiente no mueve la giacenza")

	approved, err := f.ledger.Approve(ctx, tenant, m.ID, "supervisor")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, approved.Status)
	assert.Equal(t, "supervisor", approved.DecidedBy)
	require.NotNil(t, approved.DecidedAt)
	assert.True(t, f.stock(t, product).Equal(dec(25)))

	_, err = f.ledger.Approve(ctx, tenant, m.ID, "supervisor")
	assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
	_, err = f.ledger.Reject(ctx, tenant, m.ID, "supervisor")
	assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
	assert.True(t, f.stock(t, product).Equal(dec(25)), "la segunda decisión no aplica nada")
}

func TestAutorizacion_Rechazo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.commit(t, causaleAuth, 25)
	rejected, err := f.ledger.Reject(ctx, tenant, m.ID, "supervisor")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, rejected.Status)
	assert.True(t, f.stock(t, product).IsZero())

	hist, err := f.ledger.Movements(ctx, tenant, product, 10, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1, "el rechazado se conserva")
	assert.Equal(t, entity.StatusRejected, hist[0].Status)
}

func TestAutorizacion_AprobarSinStock_SiguePendiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.commit(t, causaleAuth, -10)
	_, err := f.ledger.Approve(ctx, tenant, m.ID, "supervisor")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	hist, err := f.ledger.Movements(ctx, tenant, product, 10, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, entity.StatusPending, hist[0].Status)
}

func TestAutorizacion_OtroCommittente(t *testing.T) {
	f := newFixture(t)
	m := f.commit(t, causaleAuth, 5)
	_, err := f.ledger.Approve(context.Background(), otherTenant, m.ID, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLowStockProducts_MayorDeficitPrimero(t *testing.T) {
	f := newFixture(t)
	f.commit(t, causaleIn, 15) // p1: mínimo 20, déficit 5; p2: 0 de 5, déficit 5

	items, err := f.ledger.LowStockProducts(context.Background(), tenant)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A-100", items[0].SKU, "a igual déficit desempata por SKU")
	assert.True(t, items[0].Deficit().Equal(decimal.NewFromInt(5)))

	f.commit(t, causaleIn, 10)
	items, err = f.ledger.LowStockProducts(context.Background(), tenant)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, product2, items[0].ProductID)
}

func TestCommit_UDCInexistenteSinVolumen(t *testing.T) {
	// product2 no tiene volumen unitario: el movimiento no mueve capacidad pero nombra una UDC.
	for _, causale := range []string{causaleIn, causaleAuth} {
		t.Run(causale, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			_, err := f.ledger.Commit(ctx, inventory.MovementDraft{
				CommittenteID: tenant, ProductID: product2, CausaleCode: causale,
				QuantityDelta: dec(5), DestinationUDCID: "fantasma",
			})
			assert.ErrorIs(t, err, domain.ErrNotFound)

			_, err = f.ledger.Commit(ctx, inventory.MovementDraft{
				CommittenteID: tenant, ProductID: product2, CausaleCode: causale,
				QuantityDelta: dec(5), SourceUDCID: "fantasma",
			})
			assert.ErrorIs(t, err, domain.ErrNotFound)

			hist, err := f.ledger.Movements(ctx, tenant, product2, 50, 0)
			require.NoError(t, err)
			assert.Empty(t, hist)
			assert.True(t, f.stock(t, product2).IsZero())
		})
	}
}

func TestCommit_UDCExistenteSinVolumen(t *testing.T) {
	f := newFixture(t)
	f.addUDC(t, "u1", 0)

	m, err := f.ledger.Commit(context.Background(), inventory.MovementDraft{
		CommittenteID: tenant, ProductID: product2, CausaleCode: causaleIn,
		QuantityDelta: dec(5), DestinationUDCID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.VolumeCM3)
	assert.True(t, f.stock(t, product2).Equal(dec(5)))
	assert.Equal(t, int64(0), f.udc(t, "u1").VolumeOccupiedCM3)
}

func TestAutorizacion_AprobacionConcurrente(t *testing.T) {
	f := newFixture(t)
	m := f.commit(t, causaleAuth, 25)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.Approve(context.Background(), tenant, m.ID, "supervisor")
		}(i)
	}
	wg.Wait()

	var ok, decided int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyDecided):
			decided++
		default:
			t.Errorf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, decided)
	assert.True(t, f.stock(t, product).Equal(dec(25)), "la giacenza se aplica una sola vez")
}

func TestCommit_CausaleEnMinusculasConcurrente(t *testing.T) {
	f := newFixture(t)
	ledger := inventory.NewStockLedger(f.store, f.store.Repos(), f.udcsConReintentos(50),
		inventory.LedgerConfig{MaxRetries: 50}, logger.Nop())

	var wg sync.WaitGroup
	errs := make([]error, 10)
	codes := []string{"car", " Car ", "cAR"}
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Commit(context.Background(), inventory.MovementDraft{
				CommittenteID: tenant, ProductID: product2, CausaleCode: codes[i%len(codes)], QuantityDelta: dec(1),
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.True(t, f.stock(t, product2).Equal(dec(10)))
}
