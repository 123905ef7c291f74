package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// Copias profundas: nada de lo que sale del almacén comparte punteros con su estado.

func cloneCommittente(c entity.Committente) entity.Committente {
	if c.AllowNegativeStock != nil {
		v := *c.AllowNegativeStock
		c.AllowNegativeStock = &v
	}
	return c
}

func cloneMovement(m entity.Movement) entity.Movement {
	m.DecidedAt = cloneTime(m.DecidedAt)
	return m
}

func cloneCount(c entity.InventoryCount) entity.InventoryCount {
	c.Scope.ProductIDs = append([]string(nil), c.Scope.ProductIDs...)
	c.Scope.LocationIDs = append([]string(nil), c.Scope.LocationIDs...)
	c.OpenedAt = cloneTime(c.OpenedAt)
	c.ClosedAt = cloneTime(c.ClosedAt)
	return c
}

func cloneLine(l entity.CountLine) entity.CountLine {
	if l.CountedQuantity != nil {
		v := decimal.NewFromBigInt(l.CountedQuantity.Coefficient(), l.CountedQuantity.Exponent())
		l.CountedQuantity = &v
	}
	return l
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
