package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

// TxRunner unidad de trabajo: fn recibe repositorios atados a la misma transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}

// StampRequest documento sellado listo para timbrar.
type StampRequest struct {
	InvoiceID string
	Company   *entity.Company
	Document  []byte
}

// CancelRequest solicitud de cancelación ante el SAT vía PAC.
type CancelRequest struct {
	InvoiceID       string
	UUID            string
	ReceiverRFC     string
	Total           decimal.Decimal
	Motive          string
	ReplacementUUID string
	Company         *entity.Company
}

// PACGateway proveedor de certificación. Las fallas se reportan como *domain.PacUnavailableError.
// SignAndRegister debe ser idempotente por InvoiceID: si el PAC ya timbró ese documento,
// devuelve el timbre existente.
type PACGateway interface {
	SignAndRegister(ctx context.Context, req StampRequest) (*entity.Stamp, error)
	Cancel(ctx context.Context, req CancelRequest) error
}

// DocumentInput datos para armar el CFDI.
type DocumentInput struct {
	Invoice  *entity.Invoice
	Sale     *entity.Sale
	Company  *entity.Company
	IssuedAt time.Time
}

// DocumentSigner arma el XML del comprobante y lo sella con el CSD de la empresa.
type DocumentSigner interface {
	SignedDocument(in DocumentInput) ([]byte, error)
}

// Release libera un candado adquirido.
type Release func(ctx context.Context) error

// Locker serializa operaciones fiscales por factura. Si el candado está tomado
// devuelve domain.ErrStampInProgress.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

// Renderer representación gráfica (PDF) a partir de la proyección de vista previa.
type Renderer interface {
	RenderInvoice(ctx context.Context, preview *Preview) ([]byte, error)
}
