package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// ProductRepository lectura del catálogo de productos y escritura exclusiva del stock.
// Todas las lecturas filtran por companyID; si no existe devuelve (nil, nil).
type ProductRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error)
	// UpdateStock solo debe llamarlo el ledger de inventario.
	UpdateStock(ctx context.Context, companyID, id string, stock decimal.Decimal) error
}
