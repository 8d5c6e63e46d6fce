package sales_test

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/application/inventory"
	"github.com/jhoicas/ventas-cfdi/internal/application/sales"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/infrastructure/memory"
)

var cashier = entity.Principal{UserID: "u-1", CompanyID: "c-1", Role: "cajero"}

type env struct {
	store      *memory.Store
	sales      *sales.CreateSaleUseCase
	quotations *sales.QuotationUseCase
}

func newEnv() env {
	store := memory.NewStore()
	store.SeedCustomer(entity.Customer{ID: "cust-1", CompanyID: "c-1", Name: "Mostrador"})
	store.SeedProduct(entity.Product{
		ID: "p-1", CompanyID: "c-1", Name: "Café molido", UseStock: true,
		Stock: decimal.NewFromInt(5), Price: decimal.RequireFromString("100.00"),
	})
	store.SeedProduct(entity.Product{
		ID: "p-2", CompanyID: "c-1", Name: "Envío", UseStock: false,
		Price: decimal.RequireFromString("50.00"),
	})
	repos := store.Repos()
	createSale := sales.NewCreateSaleUseCase(store, inventory.NewLedger(), repos.Customers, repos.Products, repos.Sales)
	return env{
		store:      store,
		sales:      createSale,
		quotations: sales.NewQuotationUseCase(store, createSale, repos.Customers, repos.Products, repos.Quotations),
	}
}

func line(productID string, qty int64, price string) sales.SaleItemInput {
	return sales.SaleItemInput{
		ProductID: productID,
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: decimal.RequireFromString(price),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
