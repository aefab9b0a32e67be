// Package pdf implementa la generación del comprobante de una transacción
// de inventario (entrada, salida, traslado o ajuste).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de comprobante  │  N° Transacción + Fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BODEGAS: origen / destino + referencia externa             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Línea | SKU | Cant | UOM | Factor | Cant. base      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: creado por + nota                                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
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

	apptxn "github.com/jhoicas/Bodega-api/internal/application/transaction"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// Títulos del comprobante por tipo de transacción.
var voucherTitles = map[string]string{
	entity.TypeGoodsReceipt:  "COMPROBANTE DE ENTRADA",
	entity.TypeGoodsIssue:    "COMPROBANTE DE SALIDA",
	entity.TypeStockTransfer: "COMPROBANTE DE TRASLADO",
	entity.TypeAdjustment:    "COMPROBANTE DE AJUSTE",
}

var _ apptxn.VoucherGenerator = (*MarotoVoucherGenerator)(nil)

// MarotoVoucherGenerator implementa transaction.VoucherGenerator usando
// Maroto v2.
type MarotoVoucherGenerator struct{}

// NewMarotoVoucherGenerator construye el generador.
func NewMarotoVoucherGenerator() *MarotoVoucherGenerator { return &MarotoVoucherGenerator{} }

// GenerateVoucher genera el PDF y devuelve sus bytes.
func (g *MarotoVoucherGenerator) GenerateVoucher(_ context.Context, txn *entity.InventoryTransaction) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de inventario "+txn.TransNum, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(txn))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(warehousesRow(txn))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(txn.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(txn))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título del comprobante (izq) y número + fecha (der).
func headerRow(txn *entity.InventoryTransaction) core.Row {
	title := voucherTitles[txn.Type]
	fecha := txn.TransactionDate.Format("02/01/2006")

	return row.New(16).Add(
		col.New(7).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+txn.Status, props.Text{
				Size: 8, Top: 10, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(txn.TransNum, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 2,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

// warehousesRow: bodega origen/destino y referencia externa si existe.
func warehousesRow(txn *entity.InventoryTransaction) core.Row {
	ref := "—"
	if txn.ReferenceNum != "" {
		ref = fmt.Sprintf("%s %s", txn.ReferenceType, txn.ReferenceNum)
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Bodega origen: %s   |   Bodega destino: %s   |   Referencia: %s",
				nonEmpty(txn.FromWarehouseID, "—"),
				nonEmpty(txn.ToWarehouseID, "—"),
				ref,
			), props.Text{Size: 8, Top: 3, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Línea", 1, align.Center),
		h("SKU", 4, align.Left),
		h("Cantidad", 2, align.Right),
		h("UOM", 1, align.Center),
		h("Factor", 2, align.Right),
		h("Cant. base", 2, align.Right),
	)
}

// tableLineRows: una fila por línea de la transacción.
func tableLineRows(lines []entity.TransactionLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", l.LineNum),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(l.ItemSKUID,
				props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(l.Quantity.String(),
				props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(l.UOMCode,
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.ToBaseFactor.String(),
				props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(l.BaseQty.String()+" "+l.BaseUOMCode,
				props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return result
}

// footerRow: creado por + nota.
func footerRow(txn *entity.InventoryTransaction) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New("Creado por: "+txn.CreatedBy, props.Text{Size: 8, Top: 2, Color: colorGray}),
			text.New("Nota: "+nonEmpty(txn.Note, "—"), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
