package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
	"github.com/jhoicas/ventas-cfdi/internal/infrastructure/memory"
)

func seeded() *memory.Store {
	s := memory.NewStore()
	s.SeedProduct(entity.Product{ID: "p-1", CompanyID: "c-1", Name: "Café", UseStock: true, Stock: decimal.NewFromInt(10)})
	return s
}

func TestStore_RunConfirma(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	err := s.Run(ctx, func(r repository.Repos) error {
		return r.Products.UpdateStock(ctx, "c-1", "p-1", decimal.NewFromInt(7))
	})
	require.NoError(t, err)

	p, err := s.Repos().Products.GetByID(ctx, "c-1", "p-1")
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(7)))
}

func TestStore_RunRevierteConError(t *testing.T) {
	s := seeded()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(r repository.Repos) error {
		if err := r.Products.UpdateStock(ctx, "c-1", "p-1", decimal.NewFromInt(1)); err != nil {
			return err
		}
		require.NoError(t, r.Movements.Create(ctx, &entity.Movement{ID: "m-1", CompanyID: "c-1", ProductID: "p-1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, _ := s.Repos().Products.GetByID(ctx, "c-1", "p-1")
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(10)))
	movs, _ := s.Repos().Movements.ListByProduct(ctx, "c-1", "p-1")
	assert.Empty(t, movs)
}

func TestStore_FallaInyectada(t *testing.T) {
	s := seeded()
	ctx := context.Background()
	boom := errors.New("disco lleno")
	s.Fail("movements.create", boom)

	err := s.Repos().Movements.Create(ctx, &entity.Movement{ID: "m-1"})
	require.ErrorIs(t, err, boom)

	s.Fail("movements.create", nil)
	require.NoError(t, s.Repos().Movements.Create(ctx, &entity.Movement{ID: "m-1"}))
}

func TestStore_AislamientoPorEmpresa(t *testing.T) {
	s := seeded()
	p, err := s.Repos().Products.GetByID(context.Background(), "otra", "p-1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestInvoiceRepo_UnaActivaPorVenta(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	repo := s.Repos().Invoices

	first := &entity.Invoice{ID: "i-1", CompanyID: "c-1", SaleID: "s-1", Status: entity.InvoiceStatusPending}
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, &entity.Invoice{ID: "i-2", CompanyID: "c-1", SaleID: "s-1", Status: entity.InvoiceStatusPending})
	require.ErrorIs(t, err, domain.ErrDuplicateInvoice)

	first.Status = entity.InvoiceStatusCancelled
	require.NoError(t, repo.SaveCancellation(ctx, first))
	require.NoError(t, repo.Create(ctx, &entity.Invoice{ID: "i-3", CompanyID: "c-1", SaleID: "s-1", Status: entity.InvoiceStatusPending}))

	active, err := repo.GetActiveBySale(ctx, "c-1", "s-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "i-3", active.ID)
}

func TestSaleRepo_LineasSonCopias(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	repo := s.Repos().Sales
	require.NoError(t, repo.Create(ctx, &entity.Sale{ID: "s-1", CompanyID: "c-1"}))
	require.NoError(t, repo.CreateItem(ctx, &entity.SaleItem{ID: "it-1", SaleID: "s-1", Quantity: decimal.NewFromInt(2)}))

	got, err := repo.GetByID(ctx, "c-1", "s-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	got.Items[0].Quantity = decimal.NewFromInt(99)

	again, _ := repo.GetByID(ctx, "c-1", "s-1")
	assert.True(t, again.Items[0].Quantity.Equal(decimal.NewFromInt(2)))
}
