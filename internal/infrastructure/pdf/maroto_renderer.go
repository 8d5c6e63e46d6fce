// Package pdf representación gráfica del CFDI a partir de la proyección de vista previa.
//
// Layout de la página carta:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + RFC + régimen │ Serie/Folio + Fecha        │
//	│  RECEPTOR: Nombre + RFC + uso CFDI + CP                      │
//	│  TABLA: Cant | Clave | Descripción | P.Unit | Importe        │
//	│  TOTALES: Subtotal / Impuestos trasladados / Total           │
//	│  FOOTER: UUID + QR de verificación SAT (o leyenda BORRADOR)  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/pkg/sat"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorDraft   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// MarotoRenderer implementa billing.Renderer con Maroto v2.
type MarotoRenderer struct{}

// NewMarotoRenderer construye el renderizador.
func NewMarotoRenderer() *MarotoRenderer { return &MarotoRenderer{} }

// RenderInvoice genera el PDF y devuelve sus bytes.
func (r *MarotoRenderer) RenderInvoice(_ context.Context, pv *billing.Preview) ([]byte, error) {
	if pv == nil {
		return nil, fmt.Errorf("pdf: vista previa vacía")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("CFDI "+sat.CFDIVersion, true).
		WithAuthor(pv.Issuer.Name, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(pv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(receiverRow(pv.Receiver))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(pv.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(pv))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(pv)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(pv *billing.Preview) core.Row {
	number := "BORRADOR"
	if pv.UUID != "" {
		number = pv.Serie + "-" + pv.Folio
	}
	regime := pv.Issuer.TaxRegime
	if name, ok := sat.TaxRegimes[regime]; ok {
		regime += " " + name
	}
	return row.New(22).Add(
		col.New(7).Add(
			text.New(pv.Issuer.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("RFC: "+pv.Issuer.RFC, props.Text{Size: 9, Top: 9, Color: colorGray}),
			text.New("Régimen: "+regime, props.Text{Size: 8, Top: 14, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("FACTURA (CFDI "+sat.CFDIVersion+" INGRESO)", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+pv.IssuedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
			text.New("Lugar de expedición: "+pv.Issuer.ZipCode, props.Text{
				Size: 8, Align: align.Right, Top: 18, Color: colorGray,
			}),
		),
	)
}

func receiverRow(p billing.PreviewParty) core.Row {
	use := p.CfdiUse
	if name, ok := sat.CfdiUses[use]; ok {
		use += " " + name
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("RECEPTOR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(p.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("RFC: %s   |   Régimen: %s   |   CP: %s   |   Uso CFDI: %s",
				p.RFC, nonEmpty(p.TaxRegime, "—"), nonEmpty(p.ZipCode, "—"), nonEmpty(use, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Clave", 2, align.Left),
		h("Descripción", 4, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Impuestos", 1, align.Right),
		h("Importe", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableRows(lines []billing.PreviewLine) []core.Row {
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.ProductKey+" / "+l.UnitKey, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatMoney(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(formatMoney(l.Taxes), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(l.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalsRow(pv *billing.Preview) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label("Impuestos trasladados:", 6),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 12}),
		),
		col.New(3).Add(
			value(formatMoney(pv.Subtotal), 1),
			value(formatMoney(pv.Taxes), 6),
			text.New(formatMoney(pv.Total)+" "+sat.CurrencyMXN, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 12}),
		),
	)
}

func footerRows(pv *billing.Preview) []core.Row {
	if pv.UUID == "" {
		return []core.Row{
			row.New(12).Add(col.New(12).Add(
				text.New("BORRADOR - SIN VALIDEZ FISCAL", props.Text{
					Style: fontstyle.Bold, Size: 14, Align: align.Center, Color: colorDraft, Top: 2,
				}),
			)),
		}
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("Folio fiscal (UUID): "+strings.ToUpper(pv.UUID), props.Text{Style: fontstyle.Bold, Size: 8, Top: 1}),
		)),
	}
	if pv.VerificationURL != "" {
		rows = append(rows, row.New(40).Add(
			col.New(3).Add(code.NewQr(pv.VerificationURL, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Este documento es una representación impresa de un CFDI.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("Verifique su autenticidad escaneando el código QR en el portal del SAT.", props.Text{
					Size: 8, Top: 10, Left: 3, Color: colorGray,
				}),
			),
		))
	}
	if pv.Status == entity.InvoiceStatusCancelled {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("CANCELADO", props.Text{Style: fontstyle.Bold, Size: 14, Align: align.Center, Color: colorDraft, Top: 2}),
		)))
	}
	return rows
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formato mexicano con separador de miles: 1234.5 → "$1,234.50".
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + string(buf) + "." + frac
}

var _ billing.Renderer = (*MarotoRenderer)(nil)
