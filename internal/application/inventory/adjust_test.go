package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-cfdi/internal/application/inventory"
	"github.com/jhoicas/ventas-cfdi/internal/application/sales"
	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/infrastructure/memory"
)

var admin = entity.Principal{UserID: "u-1", CompanyID: "c-1", Role: "admin"}

func setup(stock int64, useStock bool) (*memory.Store, *inventory.AdjustStockUseCase) {
	store := memory.NewStore()
	store.SeedProduct(entity.Product{
		ID: "p-1", CompanyID: "c-1", Name: "Café", UseStock: useStock, Stock: decimal.NewFromInt(stock),
	})
	repos := store.Repos()
	uc := inventory.NewAdjustStockUseCase(store, inventory.NewLedger(), repos.Products, repos.Movements)
	return store, uc
}

func TestAdjust_EntradaYSalida(t *testing.T) {
	store, uc := setup(5, true)
	ctx := context.Background()

	in, err := uc.Adjust(ctx, admin, inventory.AdjustInput{ProductID: "p-1", Delta: decimal.NewFromInt(10), Note: "Reabasto"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementInbound, in.Type)
	assert.True(t, in.PreviousStock.Equal(decimal.NewFromInt(5)))
	assert.True(t, in.NewStock.Equal(decimal.NewFromInt(15)))

	out, err := uc.Adjust(ctx, admin, inventory.AdjustInput{ProductID: "p-1", Delta: decimal.NewFromInt(-4), Note: "Merma"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementOutbound, out.Type)
	assert.True(t, out.Quantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, out.NewStock.Equal(decimal.NewFromInt(11)))

	p, _ := store.Repos().Products.GetByID(ctx, "c-1", "p-1")
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(11)))

	movs, err := uc.ListMovements(ctx, admin, "p-1")
	require.NoError(t, err)
	require.Len(t, movs, 2)
	// cada movimiento encadena con el anterior
	assert.True(t, movs[1].PreviousStock.Equal(movs[0].NewStock))
	assert.True(t, movs[1].NewStock.Equal(movs[1].PreviousStock.Add(movs[1].Delta())))
}

func TestAdjust_RechazaStockNegativo(t *testing.T) {
	store, uc := setup(3, true)
	ctx := context.Background()

	_, err := uc.Adjust(ctx, admin, inventory.AdjustInput{ProductID: "p-1", Delta: decimal.NewFromInt(-4), Note: "Merma"})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(3)))

	movs, _ := store.Repos().Movements.ListByProduct(ctx, "c-1", "p-1")
	assert.Empty(t, movs)
}

func TestAdjust_ProductoSinControlPuedeQuedarNegativo(t *testing.T) {
	_, uc := setup(0, false)
	mov, err := uc.Adjust(context.Background(), admin, inventory.AdjustInput{ProductID: "p-1", Delta: decimal.NewFromInt(-2), Note: "Servicio"})
	require.NoError(t, err)
	assert.True(t, mov.NewStock.Equal(decimal.NewFromInt(-2)))
}

func TestAdjust_ErroresDeEntrada(t *testing.T) {
	_, uc := setup(3, true)
	ctx := context.Background()

	tests := []struct {
		name string
		p    entity.Principal
		in   inventory.AdjustInput
		want error
	}{
		{"sin principal", entity.Principal{}, inventory.AdjustInput{ProductID: "p-1", Delta: decimal.NewFromInt(1), Note: "x"}, domain.ErrUnauthorized},
		{"delta cero", admin, inventory.AdjustInput{ProductID: "p-1", Note: "x"}, domain.ErrInvalidInput},
		{"sin nota", admin, inventory.AdjustInput{ProductID: "p-1", Delta: decimal.NewFromInt(1)}, domain.ErrInvalidInput},
		{"producto inexistente", admin, inventory.AdjustInput{ProductID: "nope", Delta: decimal.NewFromInt(1), Note: "x"}, domain.ErrNotFound},
		{"otra empresa", entity.Principal{UserID: "u-2", CompanyID: "c-2"}, inventory.AdjustInput{ProductID: "p-1", Delta: decimal.NewFromInt(1), Note: "x"}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Adjust(ctx, tt.p, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAdjust_FallaDeAlmacenamientoEsErrorDeTransaccion(t *testing.T) {
	store, uc := setup(3, true)
	ctx := context.Background()
	store.Fail("movements.create", errors.New("conexión perdida"))

	_, err := uc.Adjust(ctx, admin, inventory.AdjustInput{ProductID: "p-1", Delta: decimal.NewFromInt(1), Note: "Reabasto"})
	require.ErrorIs(t, err, domain.ErrTransactionFailed)

	p, _ := store.Repos().Products.GetByID(ctx, "c-1", "p-1")
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(3)), "el stock no debe cambiar si falla el movimiento")
}

// Ventas y reabastos intercalados: el stock final es el inicial más la suma de los deltas
// y cada movimiento parte del stock que dejó el anterior.
func TestAdjust_VentasYReabastosConservanStock(t *testing.T) {
	store, uc := setup(10, true)
	store.SeedCustomer(entity.Customer{ID: "cust-1", CompanyID: "c-1", Name: "Mostrador"})
	repos := store.Repos()
	createSale := sales.NewCreateSaleUseCase(store, inventory.NewLedger(), repos.Customers, repos.Products, repos.Sales)
	ctx := context.Background()

	sell := func(qty int64) {
		t.Helper()
		_, err := createSale.Create(ctx, admin, sales.CreateSaleInput{
			CustomerID: "cust-1",
			Items: []sales.SaleItemInput{{
				ProductID: "p-1", Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.RequireFromString("25.00"),
			}},
		})
		require.NoError(t, err)
	}
	adjust := func(delta int64, note string) {
		t.Helper()
		_, err := uc.Adjust(ctx, admin, inventory.AdjustInput{ProductID: "p-1", Delta: decimal.NewFromInt(delta), Note: note})
		require.NoError(t, err)
	}

	sell(3)
	adjust(5, "Reabasto")
	sell(4)
	adjust(-2, "Merma")
	sell(6)
	adjust(1, "Reabasto")
	deltas := []int64{-3, 5, -4, -2, -6, 1}

	sum := decimal.Zero
	for _, d := range deltas {
		sum = sum.Add(decimal.NewFromInt(d))
	}
	p, err := repos.Products.GetByID(ctx, "c-1", "p-1")
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(10).Add(sum)), "stock final %s", p.Stock)

	movs, err := uc.ListMovements(ctx, admin, "p-1")
	require.NoError(t, err)
	require.Len(t, movs, len(deltas))
	prev := decimal.NewFromInt(10)
	for i, m := range movs {
		assert.True(t, m.Delta().Equal(decimal.NewFromInt(deltas[i])), "delta del movimiento %d", i)
		assert.True(t, m.PreviousStock.Equal(prev), "stock previo del movimiento %d", i)
		assert.True(t, m.NewStock.Equal(m.PreviousStock.Add(m.Delta())), "stock nuevo del movimiento %d", i)
		prev = m.NewStock
	}
	assert.True(t, prev.Equal(p.Stock))
}
