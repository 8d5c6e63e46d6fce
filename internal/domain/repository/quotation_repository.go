package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// QuotationRepository persistencia de cotizaciones.
type QuotationRepository interface {
	Create(ctx context.Context, q *entity.Quotation) error
	CreateItem(ctx context.Context, item *entity.QuotationItem) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Quotation, error)
	// GetForUpdate devuelve solo la cabecera y bloquea la fila.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Quotation, error)
	UpdateStatus(ctx context.Context, id, status, saleID string, at time.Time) error
}
