package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-cfdi/internal/application/sales"
	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

func createQuotation(t *testing.T, e env, items ...sales.SaleItemInput) *entity.Quotation {
	t.Helper()
	q, err := e.quotations.Create(context.Background(), cashier, sales.CreateQuotationInput{
		CustomerID: "cust-1",
		Items:      items,
		Notes:      "precio especial",
	})
	require.NoError(t, err)
	return q
}

func TestQuotation_CrearNoTocaStock(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	q := createQuotation(t, e, line("p-1", 4, "90.00"))

	assert.Equal(t, entity.QuotationStatusPending, q.Status)
	assert.True(t, q.TotalAmount.Equal(dec("360.00")))
	p, _ := e.store.Repos().Products.GetByID(ctx, "c-1", "p-1")
	assert.True(t, p.Stock.Equal(dec("5")))
}

func TestQuotation_ConvertirRespetaPreciosCotizados(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	q := createQuotation(t, e, line("p-1", 2, "90.00"))

	sale, err := e.quotations.Convert(ctx, cashier, q.ID)
	require.NoError(t, err)
	assert.True(t, sale.TotalAmount.Equal(dec("180.00")))
	assert.True(t, sale.Items[0].UnitPrice.Equal(dec("90.00")))
	assert.Contains(t, sale.Notes, "Cotización #")

	got, err := e.quotations.Get(ctx, cashier, q.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.QuotationStatusConverted, got.Status)
	assert.Equal(t, sale.ID, got.SaleID)

	p, _ := e.store.Repos().Products.GetByID(ctx, "c-1", "p-1")
	assert.True(t, p.Stock.Equal(dec("3")))
}

func TestQuotation_ConvertirDosVecesFalla(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	q := createQuotation(t, e, line("p-1", 1, "90.00"))

	_, err := e.quotations.Convert(ctx, cashier, q.ID)
	require.NoError(t, err)

	_, err = e.quotations.Convert(ctx, cashier, q.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyConverted)

	p, _ := e.store.Repos().Products.GetByID(ctx, "c-1", "p-1")
	assert.True(t, p.Stock.Equal(dec("4")), "la segunda conversión no debe descontar stock")
}

func TestQuotation_ConversionFallidaSiguePendiente(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	t.Run("stock insuficiente", func(t *testing.T) {
		q := createQuotation(t, e, line("p-1", 6, "90.00"))
		_, err := e.quotations.Convert(ctx, cashier, q.ID)
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
		got, _ := e.quotations.Get(ctx, cashier, q.ID)
		assert.Equal(t, entity.QuotationStatusPending, got.Status)
	})

	t.Run("falla al marcar convertida", func(t *testing.T) {
		q := createQuotation(t, e, line("p-1", 1, "90.00"))
		e.store.Fail("quotations.update_status", errors.New("conexión perdida"))
		defer e.store.Fail("quotations.update_status", nil)

		_, err := e.quotations.Convert(ctx, cashier, q.ID)
		require.ErrorIs(t, err, domain.ErrTransactionFailed)

		got, _ := e.quotations.Get(ctx, cashier, q.ID)
		assert.Equal(t, entity.QuotationStatusPending, got.Status)
		p, _ := e.store.Repos().Products.GetByID(ctx, "c-1", "p-1")
		assert.True(t, p.Stock.Equal(dec("5")), "la venta debe revertirse")
	})
}

func TestQuotation_RechazadaNoSeConvierte(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	q := createQuotation(t, e, line("p-2", 1, "50.00"))

	rejected, err := e.quotations.Reject(ctx, cashier, q.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.QuotationStatusRejected, rejected.Status)

	_, err = e.quotations.Convert(ctx, cashier, q.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = e.quotations.Reject(ctx, cashier, q.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestQuotation_VigenciaDebeSerFutura(t *testing.T) {
	e := newEnv()
	past := time.Now().Add(-time.Hour)
	_, err := e.quotations.Create(context.Background(), cashier, sales.CreateQuotationInput{
		CustomerID: "cust-1",
		Items:      []sales.SaleItemInput{line("p-2", 1, "50.00")},
		ValidUntil: &past,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
