package fiscal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/fiscal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeLine_Tasas(t *testing.T) {
	cases := []struct {
		name     string
		product  *entity.Product
		qty      string
		price    string
		wantIEPS string
		wantIVA  string
	}{
		{"IVA 16%", &entity.Product{IVARate: d("0.16")}, "3", "100", "0", "48"},
		{"IVA frontera 8%", &entity.Product{IVARate: d("0.08")}, "2", "10.55", "0", "1.69"},
		{"exento", &entity.Product{IVARate: d("0.16"), IVAExempt: true}, "1", "100", "0", "0"},
		{"IEPS y IVA", &entity.Product{IVARate: d("0.16"), IEPSRate: d("0.08")}, "1", "100", "8", "17.28"},
		{"sin producto", nil, "1", "100", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lt := fiscal.ComputeLine(d(tc.qty), d(tc.price), tc.product)

			assert.True(t, d(tc.qty).Mul(d(tc.price)).Equal(lt.Base))
			assert.True(t, d(tc.wantIEPS).Equal(lt.IEPS), "IEPS: %s", lt.IEPS)
			assert.True(t, d(tc.wantIVA).Equal(lt.IVA), "IVA: %s", lt.IVA)
		})
	}
}

func TestInvoiceLines_SubtotalIgualAlTotalDeLaVenta(t *testing.T) {
	sale := validSale()
	sale.Items = append(sale.Items, entity.SaleItem{
		ID:        "item-2",
		ProductID: "p-2",
		Quantity:  d("1.5"),
		UnitPrice: d("19.99"),
		Total:     d("29.985"),
		Product:   &entity.Product{ID: "p-2", Name: "Refresco", SatProductKey: "50202306", SatUnitKey: "H87", IEPSRate: d("0.08"), IVARate: d("0.16")},
	})

	items, totals := fiscal.InvoiceLines(sale.Items)

	assert.Len(t, items, 2)
	assert.True(t, d("329.985").Equal(totals.Subtotal))
	// línea 1: IVA 48; línea 2: IEPS 2.40, IVA round2((29.985+2.40)*0.16)=5.18
	assert.True(t, d("2.40").Equal(totals.IEPS), totals.IEPS.String())
	assert.True(t, d("53.18").Equal(totals.IVA), totals.IVA.String())
	assert.True(t, totals.Subtotal.Add(totals.Taxes).Equal(totals.Total))
	assert.Equal(t, "Refresco", items[1].Description)
	assert.Equal(t, "50202306", items[1].SatProductKey)
}
