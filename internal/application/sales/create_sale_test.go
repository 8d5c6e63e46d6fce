package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-cfdi/internal/application/sales"
	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

func TestCreateSale_DescuentaStockYRegistraMovimiento(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	sale, err := e.sales.Create(ctx, cashier, sales.CreateSaleInput{
		CustomerID: "cust-1",
		Items:      []sales.SaleItemInput{line("p-1", 3, "100.00")},
	})
	require.NoError(t, err)
	assert.True(t, sale.TotalAmount.Equal(dec("300.00")))
	assert.Equal(t, entity.SaleStatusCompleted, sale.Status)
	require.Len(t, sale.Items, 1)

	p, _ := e.store.Repos().Products.GetByID(ctx, "c-1", "p-1")
	assert.True(t, p.Stock.Equal(dec("2")))

	movs, _ := e.store.Repos().Movements.ListByProduct(ctx, "c-1", "p-1")
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementOutbound, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(dec("3")))
	assert.True(t, movs[0].PreviousStock.Equal(dec("5")))
	assert.True(t, movs[0].NewStock.Equal(dec("2")))

	_, err = e.sales.Create(ctx, cashier, sales.CreateSaleInput{
		CustomerID: "cust-1",
		Items:      []sales.SaleItemInput{line("p-1", 3, "100.00")},
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(dec("2")))

	p, _ = e.store.Repos().Products.GetByID(ctx, "c-1", "p-1")
	assert.True(t, p.Stock.Equal(dec("2")))
}

func TestCreateSale_TotalEsSumaDeLineas(t *testing.T) {
	e := newEnv()
	sale, err := e.sales.Create(context.Background(), cashier, sales.CreateSaleInput{
		CustomerID: "cust-1",
		Items: []sales.SaleItemInput{
			line("p-1", 2, "99.99"),
			line("p-2", 1, "50.00"),
		},
	})
	require.NoError(t, err)

	sum := dec("0")
	for _, it := range sale.Items {
		sum = sum.Add(it.Total)
	}
	assert.True(t, sale.TotalAmount.Equal(sum))
	assert.True(t, sale.TotalAmount.Equal(dec("249.98")))

	// los productos sin control de stock no generan movimientos
	movs, _ := e.store.Repos().Movements.ListByProduct(context.Background(), "c-1", "p-2")
	assert.Empty(t, movs)
}

func TestCreateSale_AgrupaCantidadPorProducto(t *testing.T) {
	e := newEnv()
	_, err := e.sales.Create(context.Background(), cashier, sales.CreateSaleInput{
		CustomerID: "cust-1",
		Items:      []sales.SaleItemInput{line("p-1", 3, "100.00"), line("p-1", 3, "100.00")},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestCreateSale_RevierteSiFallaElMovimiento(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.store.Fail("movements.create", errors.New("conexión perdida"))

	_, err := e.sales.Create(ctx, cashier, sales.CreateSaleInput{
		CustomerID: "cust-1",
		Items:      []sales.SaleItemInput{line("p-1", 1, "100.00")},
	})
	require.ErrorIs(t, err, domain.ErrTransactionFailed)

	p, _ := e.store.Repos().Products.GetByID(ctx, "c-1", "p-1")
	assert.True(t, p.Stock.Equal(dec("5")))
	movs, _ := e.store.Repos().Movements.ListByProduct(ctx, "c-1", "p-1")
	assert.Empty(t, movs)
}

func TestCreateSale_VentasConcurrentesSinSobreventa(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.sales.Create(ctx, cashier, sales.CreateSaleInput{
				CustomerID: "cust-1",
				Items:      []sales.SaleItemInput{line("p-1", 1, "100.00")},
			})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	p, _ := e.store.Repos().Products.GetByID(ctx, "c-1", "p-1")
	assert.True(t, p.Stock.IsZero())

	// conservación: stock inicial + Σ deltas = stock final
	movs, _ := e.store.Repos().Movements.ListByProduct(ctx, "c-1", "p-1")
	total := dec("5")
	for _, m := range movs {
		total = total.Add(m.Delta())
	}
	assert.True(t, total.Equal(p.Stock))
}

func TestCreateSale_ErroresDeEntrada(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	tests := []struct {
		name string
		p    entity.Principal
		in   sales.CreateSaleInput
		want error
	}{
		{"sin principal", entity.Principal{}, sales.CreateSaleInput{CustomerID: "cust-1", Items: []sales.SaleItemInput{line("p-1", 1, "1")}}, domain.ErrUnauthorized},
		{"sin líneas", cashier, sales.CreateSaleInput{CustomerID: "cust-1"}, domain.ErrInvalidInput},
		{"cantidad cero", cashier, sales.CreateSaleInput{CustomerID: "cust-1", Items: []sales.SaleItemInput{line("p-1", 0, "1")}}, domain.ErrInvalidInput},
		{"precio negativo", cashier, sales.CreateSaleInput{CustomerID: "cust-1", Items: []sales.SaleItemInput{line("p-1", 1, "-1")}}, domain.ErrInvalidInput},
		{"cliente inexistente", cashier, sales.CreateSaleInput{CustomerID: "nope", Items: []sales.SaleItemInput{line("p-1", 1, "1")}}, domain.ErrNotFound},
		{"producto inexistente", cashier, sales.CreateSaleInput{CustomerID: "cust-1", Items: []sales.SaleItemInput{line("nope", 1, "1")}}, domain.ErrNotFound},
		{"cliente de otra empresa", entity.Principal{UserID: "u-9", CompanyID: "c-9"}, sales.CreateSaleInput{CustomerID: "cust-1", Items: []sales.SaleItemInput{line("p-1", 1, "1")}}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.sales.Create(ctx, tt.p, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetSale_ResuelveProductosYCliente(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	created, err := e.sales.Create(ctx, cashier, sales.CreateSaleInput{
		CustomerID: "cust-1",
		Items:      []sales.SaleItemInput{line("p-1", 1, "100.00")},
	})
	require.NoError(t, err)

	got, err := e.sales.Get(ctx, cashier, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Mostrador", got.Customer.Name)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Café molido", got.Items[0].Product.Name)

	_, err = e.sales.Get(ctx, entity.Principal{UserID: "u-9", CompanyID: "c-9"}, created.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
