package repository

import (
	"context"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// InvoiceRepository persistencia de facturas. Las líneas no se modifican tras crearse.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	CreateItem(ctx context.Context, item *entity.InvoiceItem) error
	// GetByID devuelve la factura con sus líneas.
	GetByID(ctx context.Context, companyID, id string) (*entity.Invoice, error)
	// GetForUpdate devuelve la cabecera y bloquea la fila.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Invoice, error)
	// GetActiveBySale devuelve la factura no cancelada de la venta, si existe.
	GetActiveBySale(ctx context.Context, companyID, saleID string) (*entity.Invoice, error)
	SaveStamp(ctx context.Context, inv *entity.Invoice) error
	SaveCancellation(ctx context.Context, inv *entity.Invoice) error
	// Delete elimina un borrador (líneas incluidas).
	Delete(ctx context.Context, companyID, id string) error
}
