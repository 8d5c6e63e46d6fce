package repository

import (
	"context"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// SaleRepository persistencia de ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	// GetByID devuelve la venta con sus líneas (sin resolver productos).
	GetByID(ctx context.Context, companyID, id string) (*entity.Sale, error)
}
