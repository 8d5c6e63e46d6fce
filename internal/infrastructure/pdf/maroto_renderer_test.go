package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
)

func TestFormatMoney_Formatos(t *testing.T) {
	cases := map[string]string{
		"0":        "$0.00",
		"12.5":     "$12.50",
		"1234.5":   "$1,234.50",
		"1000000":  "$1,000,000.00",
		"-2500.01": "-$2,500.01",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestRenderInvoice_GeneraPDF(t *testing.T) {
	pv := &billing.Preview{
		InvoiceID: "inv-1",
		Status:    "stamped",
		Serie:     "A",
		Folio:     "15",
		UUID:      "6f9619ff-8b86-d011-b42d-00c04fc964ff",
		IssuedAt:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Issuer:    billing.PreviewParty{Name: "ESCUELA KEMPER URGATE", RFC: "EKU9003173C9", TaxRegime: "601", ZipCode: "06600"},
		Receiver:  billing.PreviewParty{Name: "XOCHILT CASAS CHAVEZ", RFC: "XIQB891116QE4", TaxRegime: "612", ZipCode: "10740", CfdiUse: "G03"},
		Lines: []billing.PreviewLine{{
			Description: "Café molido", ProductKey: "50201706", UnitKey: "H87",
			Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(100),
			Subtotal: decimal.NewFromInt(300), Taxes: decimal.NewFromInt(48),
		}},
		VerificationURL: "https://verificacfdi.facturaelectronica.sat.gob.mx/default.aspx?id=x",
		Subtotal:        decimal.NewFromInt(300),
		Taxes:           decimal.NewFromInt(48),
		Total:           decimal.NewFromInt(348),
	}
	out, err := NewMarotoRenderer().RenderInvoice(context.Background(), pv)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	pv.UUID, pv.Status = "", "pending"
	draft, err := NewMarotoRenderer().RenderInvoice(context.Background(), pv)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(draft, []byte("%PDF")))
}
