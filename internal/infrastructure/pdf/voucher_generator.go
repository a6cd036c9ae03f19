// Package pdf genera el comprobante imprimible de una transacción de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de movimiento + ID  │  Estado + Fecha         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ÍTEM: SKU + Nombre + Unidad                                │
//	│  TABLA: Ubicación | Rol | Efecto                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMAS: Solicitó / Aprobó / Contabilizó                    │
//	│  FOOTER: QR con el ID + versión                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

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

	"github.com/jhoicas/Operaciones-api/internal/application/inventory"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorVoid    = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ inventory.VoucherGenerator = (*VoucherGenerator)(nil)

// VoucherGenerator implementa inventory.VoucherGenerator usando Maroto v2.
type VoucherGenerator struct {
	company string
}

// NewVoucherGenerator construye el generador. company se imprime como autor del documento.
func NewVoucherGenerator(company string) *VoucherGenerator {
	return &VoucherGenerator{company: company}
}

var typeTitles = map[entity.TransactionType]string{
	entity.TransactionTypeReceipt:    "ENTRADA DE INVENTARIO",
	entity.TransactionTypeIssue:      "SALIDA DE INVENTARIO",
	entity.TransactionTypeTransfer:   "TRASLADO ENTRE UBICACIONES",
	entity.TransactionTypeAdjustment: "AJUSTE DE INVENTARIO",
}

// GenerateTransactionPDF genera el PDF y devuelve sus bytes.
func (g *VoucherGenerator) GenerateTransactionPDF(_ context.Context, v inventory.TransactionVoucher) ([]byte, error) {
	tx := v.Transaction
	if tx == nil {
		return nil, fmt.Errorf("pdf: transacción vacía")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de movimiento "+tx.ID, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(tx))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(itemRow(tx, v.Item))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range movementRows(v) {
		m.AddRows(r)
	}

	if tx.Reference != "" || tx.Notes != "" {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(notesRow(tx))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(signaturesRow(tx))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(tx))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tipo de movimiento + ID (izq) y estado + fecha (der).
func headerRow(tx *entity.StockTransaction) core.Row {
	statusColor := colorPrimary
	if tx.Status == entity.StatusVoid || tx.Status == entity.StatusRejected {
		statusColor = colorVoid
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(typeTitles[tx.Type], string(tx.Type)), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("ID: "+tx.ID, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(statusLabel(tx.Status), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Color: statusColor, Top: 1,
			}),
			text.New("Creada: "+tx.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Actualizada: "+tx.UpdatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// itemRow: SKU, nombre y cantidad del movimiento.
func itemRow(tx *entity.StockTransaction, item *entity.Item) core.Row {
	name, sku := "Ítem "+tx.ItemID, "-"
	if item != nil {
		name, sku = item.Name, item.SKU
	}
	return row.New(14).Add(
		col.New(8).Add(
			text.New("ÍTEM", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("SKU: "+sku, props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("CANTIDAD", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(tx.Quantity.String()+" "+tx.Unit, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de ubicaciones afectadas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ubicación", 5, align.Left),
		h("Bodega", 3, align.Left),
		h("Rol", 2, align.Center),
		h("Efecto", 2, align.Right),
	)
}

// movementRows: una fila por ubicación con el efecto firmado sobre su stock.
func movementRows(v inventory.TransactionVoucher) []core.Row {
	tx := v.Transaction
	var result []core.Row
	add := func(id string, loc *entity.Location, role string) {
		if id == "" {
			return
		}
		name, warehouse := id, "-"
		if loc != nil {
			name, warehouse = loc.Name, loc.WarehouseID
		}
		result = append(result, row.New(7).Add(
			col.New(5).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(warehouse, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(role, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(signed(tx, id), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	add(tx.SourceLocationID, v.Source, "Origen")
	add(tx.DestinationLocationID, v.Destination, "Destino")
	return result
}

// notesRow: referencia externa y notas libres.
func notesRow(tx *entity.StockTransaction) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("Referencia: "+nonEmpty(tx.Reference, "-"), props.Text{Size: 8, Top: 1}),
			text.New(nonEmpty(tx.Notes, ""), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

// signaturesRow: actores de cada etapa del flujo.
func signaturesRow(tx *entity.StockTransaction) core.Row {
	actor := func(label, who string) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(who, "-"), props.Text{Size: 8, Align: align.Center, Top: 7}),
		)
	}
	return row.New(14).Add(
		actor("Solicitó", tx.RequestedBy),
		actor("Aprobó", tx.ApprovedBy),
		actor("Contabilizó", tx.PostedBy),
	)
}

// footerRow: QR con el ID para ubicar el registro y leyenda según el estado.
func footerRow(tx *entity.StockTransaction) core.Row {
	legend := "Este comprobante no afecta el stock hasta que la transacción esté contabilizada."
	switch tx.Status {
	case entity.StatusPosted:
		legend = "Movimiento contabilizado: ya forma parte del stock de las ubicaciones indicadas."
	case entity.StatusVoid:
		legend = "Movimiento anulado: su efecto fue retirado del stock."
	case entity.StatusRejected:
		legend = "Movimiento rechazado: nunca afectó el stock."
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(tx.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New(legend, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New(fmt.Sprintf("Versión %d", tx.Version), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 16, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusLabel(s entity.TransactionStatus) string {
	switch s {
	case entity.StatusRequested:
		return "SOLICITADA"
	case entity.StatusApproved:
		return "APROBADA"
	case entity.StatusPosted:
		return "CONTABILIZADA"
	case entity.StatusRejected:
		return "RECHAZADA"
	case entity.StatusVoid:
		return "ANULADA"
	default:
		return string(s)
	}
}

func signed(tx *entity.StockTransaction, locationID string) string {
	d := tx.SignedQuantityAt(locationID)
	if d.IsPositive() {
		return "+" + d.String()
	}
	return d.String()
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
