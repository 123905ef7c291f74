// Package pdf genera la planilla de conteo / informe de varianzas de una sesión
// de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Committente           │  Sesión + estado + fechas  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Descripción | Esperado | Contado | Varianza    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: líneas / contadas / con varianza                   │
//	│  FOOTER: QR con el ID de la sesión + firma del responsable   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.CountSheetRenderer = (*CountSheetGenerator)(nil)

// CountSheetGenerator implementa inventory.CountSheetRenderer usando Maroto v2.
type CountSheetGenerator struct{}

// NewCountSheetGenerator construye el generador.
func NewCountSheetGenerator() *CountSheetGenerator { return &CountSheetGenerator{} }

// RenderCountSheet genera el PDF y devuelve sus bytes.
func (g *CountSheetGenerator) RenderCountSheet(_ context.Context, sheet inventory.CountSheet) ([]byte, error) {
	if sheet.Session == nil || sheet.Committente == nil {
		return nil, fmt.Errorf("pdf: planilla sin sesión o committente")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Inventario "+sheet.Session.ID, true).
		WithAuthor(sheet.Committente.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sheet))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(sheet.Rows)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(sheet.Rows))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(sheet.Session))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: committente (izq) y sesión + estado + fechas (der).
func headerRow(sheet inventory.CountSheet) core.Row {
	s := sheet.Session
	return row.New(20).Add(
		col.New(7).Add(
			text.New(sheet.Committente.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Planilla de conteo físico", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("SESIÓN "+stateLabel(s.State), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(s.ID, props.Text{
				Size: 7, Align: align.Right, Top: 6,
			}),
			text.New("Inicio: "+formatDate(s.OpenedAt)+"   Cierre: "+formatDate(s.ClosedAt), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Descripción", 4, align.Left),
		h("Esperado", 2, align.Right),
		h("Contado", 2, align.Right),
		h("Varianza", 2, align.Right),
	)
}

// tableRows: una fila por línea; sin conteo se deja el espacio para escribir a mano.
func tableRows(rows []inventory.CountSheetRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		counted, variance := "________", ""
		varianceColor := colorGray
		if r.Line.Counted() {
			counted = r.Line.CountedQuantity.String()
			variance = r.Line.Variance.String()
			if !r.Line.Variance.IsZero() {
				varianceColor = colorAlert
			}
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(r.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(r.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(r.Line.ExpectedQuantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(counted, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(variance, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: varianceColor})),
		))
	}
	return result
}

func summaryRow(rows []inventory.CountSheetRow) core.Row {
	var counted, withVariance int
	for _, r := range rows {
		if r.Line.Counted() {
			counted++
			if !r.Line.Variance.IsZero() {
				withVariance++
			}
		}
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(n int) core.Component {
		return text.New(fmt.Sprintf("%d", n), props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(16).Add(
		col.New(6),
		col.New(4).Add(label("Líneas:"), label("Contadas:"), label("Con varianza:")),
		col.New(2).Add(value(len(rows)), value(counted), value(withVariance)),
	)
}

// footerRow: QR con el ID de la sesión (para volver a la sesión desde la planilla impresa) y firma.
func footerRow(s *entity.InventoryCount) core.Row {
	signature := "Firma del responsable: ______________________"
	if s.ClosedBy != "" {
		signature = "Cerrada por: " + s.ClosedBy
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(s.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New(signature, props.Text{Size: 9, Top: 14, Left: 3}),
			text.New("Las varianzas se ajustan al cerrar la sesión.", props.Text{
				Size: 7, Top: 24, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func stateLabel(s entity.CountState) string {
	switch s {
	case entity.CountStatePlanned:
		return "PLANIFICADA"
	case entity.CountStateInProgress:
		return "EN CURSO"
	case entity.CountStateClosed:
		return "CERRADA"
	default:
		return string(s)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01/2006 15:04")
}
