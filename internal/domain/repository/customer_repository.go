package repository

import (
	"context"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// CustomerRepository lectura de clientes (filtrada por empresa).
type CustomerRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.Customer, error)
}
