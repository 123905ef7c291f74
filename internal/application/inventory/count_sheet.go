package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// CountSheetRow línea de la planilla con los datos de catálogo del producto.
type CountSheetRow struct {
	SKU         string
	Description string
	Line        *entity.CountLine
}

// CountSheet datos para la planilla de conteo / informe de varianzas.
type CountSheet struct {
	Committente *entity.Committente
	Session     *entity.InventoryCount
	Rows        []CountSheetRow
}

// CountSheetRenderer genera el documento (PDF) de una planilla.
type CountSheetRenderer interface {
	RenderCountSheet(ctx context.Context, sheet CountSheet) ([]byte, error)
}

// CountSheetUseCase arma la planilla de una sesión y la delega al renderer.
type CountSheetUseCase struct {
	reads    Repos
	renderer CountSheetRenderer
	log      *logger.Logger
}

// NewCountSheetUseCase construye el caso de uso.
func NewCountSheetUseCase(reads Repos, renderer CountSheetRenderer, log *logger.Logger) *CountSheetUseCase {
	return &CountSheetUseCase{reads: reads, renderer: renderer, log: log.Component("count_sheet")}
}

// Build arma la planilla ordenada por SKU. Sirve en cualquier estado: en planned no hay líneas.
func (uc *CountSheetUseCase) Build(ctx context.Context, committenteID, sessionID string) (*CountSheet, error) {
	if committenteID == "" || sessionID == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.reads.Counts.GetByID(ctx, committenteID, sessionID)
	if err != nil {
		return nil, surface(uc.log, "count_sheet", err)
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	committente, err := uc.reads.Committenti.GetByID(ctx, committenteID)
	if err != nil {
		return nil, surface(uc.log, "count_sheet", err)
	}
	if committente == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.reads.Counts.ListLines(ctx, sessionID)
	if err != nil {
		return nil, surface(uc.log, "count_sheet", err)
	}
	products, err := uc.reads.Products.ListByIDs(ctx, committenteID, s.Scope.ProductIDs)
	if err != nil {
		return nil, surface(uc.log, "count_sheet", err)
	}
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	rows := make([]CountSheetRow, 0, len(lines))
	for _, l := range lines {
		row := CountSheetRow{Line: l, SKU: l.ProductID}
		if p, ok := byID[l.ProductID]; ok {
			row.SKU = p.SKU
			row.Description = p.Description
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SKU < rows[j].SKU })

	return &CountSheet{Committente: committente, Session: s, Rows: rows}, nil
}

// PDF genera la planilla en PDF.
func (uc *CountSheetUseCase) PDF(ctx context.Context, committenteID, sessionID string) ([]byte, error) {
	sheet, err := uc.Build(ctx, committenteID, sessionID)
	if err != nil {
		return nil, err
	}
	doc, err := uc.renderer.RenderCountSheet(ctx, *sheet)
	if err != nil {
		return nil, surface(uc.log, "count_sheet_pdf", err)
	}
	return doc, nil
}
