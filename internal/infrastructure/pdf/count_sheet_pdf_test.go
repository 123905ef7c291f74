package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/pdf"
)

func TestRenderCountSheet_GeneraPDF(t *testing.T) {
	now := time.Now()
	counted := decimal.NewFromInt(85)
	sheet := inventory.CountSheet{
		Committente: &entity.Committente{ID: "c1", Name: "Acme"},
		Session: &entity.InventoryCount{
			ID: "s1", CommittenteID: "c1", State: entity.CountStateInProgress, OpenedAt: &now,
		},
		Rows: []inventory.CountSheetRow{
			{SKU: "A-100", Description: "Viti", Line: &entity.CountLine{
				ProductID: "p2", ExpectedQuantity: decimal.NewFromInt(5),
			}},
			{SKU: "B-200", Description: "Bulloni", Line: &entity.CountLine{
				ProductID: "p1", ExpectedQuantity: decimal.NewFromInt(100),
				CountedQuantity: &counted, Variance: decimal.NewFromInt(-15),
			}},
		},
	}

	doc, err := pdf.NewCountSheetGenerator().RenderCountSheet(context.Background(), sheet)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")), "debe ser un PDF")
}

func TestRenderCountSheet_SinSesion(t *testing.T) {
	_, err := pdf.NewCountSheetGenerator().RenderCountSheet(context.Background(), inventory.CountSheet{})
	assert.Error(t, err)
}
