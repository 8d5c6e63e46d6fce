package repository

import (
	"context"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// MovementRepository historial de movimientos; solo inserción, sin update ni delete.
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.Movement, error)
}
