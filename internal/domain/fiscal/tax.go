package fiscal

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// Los precios de venta son netos de impuestos. Por línea:
//
//	base = cantidad × precio
//	ieps = round2(base × tasaIEPS)
//	iva  = round2((base + ieps) × tasaIVA)   (0 si exento)

// LineTaxes impuestos trasladados de una línea.
type LineTaxes struct {
	Base decimal.Decimal
	IEPS decimal.Decimal
	IVA  decimal.Decimal
}

// Total suma de impuestos de la línea.
func (l LineTaxes) Total() decimal.Decimal { return l.IEPS.Add(l.IVA) }

// Totals importes del comprobante.
type Totals struct {
	Subtotal decimal.Decimal
	IEPS     decimal.Decimal
	IVA      decimal.Decimal
	Taxes    decimal.Decimal
	Total    decimal.Decimal
}

// ComputeLine calcula los impuestos de una línea con las tasas del producto.
// Sin producto la línea no causa impuestos.
func ComputeLine(qty, unitPrice decimal.Decimal, p *entity.Product) LineTaxes {
	base := qty.Mul(unitPrice)
	lt := LineTaxes{Base: base, IEPS: decimal.Zero, IVA: decimal.Zero}
	if p == nil {
		return lt
	}
	if p.IEPSRate.IsPositive() {
		lt.IEPS = base.Mul(p.IEPSRate).Round(2)
	}
	if !p.IVAExempt && p.IVARate.IsPositive() {
		lt.IVA = base.Add(lt.IEPS).Mul(p.IVARate).Round(2)
	}
	return lt
}

// Rollup acumula las líneas. Subtotal es la suma exacta de bases (igual al total de la venta).
func Rollup(lines []LineTaxes) Totals {
	t := Totals{Subtotal: decimal.Zero, IEPS: decimal.Zero, IVA: decimal.Zero}
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Base)
		t.IEPS = t.IEPS.Add(l.IEPS)
		t.IVA = t.IVA.Add(l.IVA)
	}
	t.Taxes = t.IEPS.Add(t.IVA)
	t.Total = t.Subtotal.Add(t.Taxes)
	return t
}

// InvoiceLines proyecta las líneas de venta (con Product resuelto) a líneas de factura.
func InvoiceLines(items []entity.SaleItem) ([]entity.InvoiceItem, Totals) {
	out := make([]entity.InvoiceItem, 0, len(items))
	lines := make([]LineTaxes, 0, len(items))
	for i := range items {
		it := &items[i]
		lt := ComputeLine(it.Quantity, it.UnitPrice, it.Product)
		lines = append(lines, lt)
		ii := entity.InvoiceItem{
			SaleItemID:    it.ID,
			ProductID:     it.ProductID,
			Description:   it.DisplayDescription(),
			SatProductKey: it.ProductKey(),
			SatUnitKey:    it.UnitKey(),
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Subtotal:      lt.Base,
			IEPSRate:      decimal.Zero,
			IEPS:          lt.IEPS,
			IVARate:       decimal.Zero,
			IVA:           lt.IVA,
		}
		if it.Product != nil {
			ii.IEPSRate = it.Product.IEPSRate
			ii.IVARate = it.Product.IVARate
			ii.IVAExempt = it.Product.IVAExempt
		}
		out = append(out, ii)
	}
	return out, Rollup(lines)
}
