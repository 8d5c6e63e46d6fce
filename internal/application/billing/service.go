package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-cfdi/internal/application/sales"
	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/fiscal"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
	"github.com/jhoicas/ventas-cfdi/pkg/sat"
)

// Config parámetros de la máquina de estados.
type Config struct {
	PACTimeout time.Duration
	LockTTL    time.Duration
	Validation fiscal.Options
}

// DefaultConfig valores por defecto.
func DefaultConfig() Config {
	return Config{
		PACTimeout: 30 * time.Second,
		LockTTL:    2 * time.Minute,
		Validation: fiscal.DefaultOptions(),
	}
}

// ServiceDeps dependencias de InvoiceService.
type ServiceDeps struct {
	TxRunner     TxRunner
	InvoiceRepo  repository.InvoiceRepository
	SaleRepo     repository.SaleRepository
	CustomerRepo repository.CustomerRepository
	ProductRepo  repository.ProductRepository
	CompanyRepo  repository.CompanyRepository
	Signer       DocumentSigner
	PAC          PACGateway
	Locker       Locker
	Logger       zerolog.Logger
}

// InvoiceService ciclo de vida de la factura: pending -> stamped -> cancelled.
// El estado local solo avanza después de que el PAC confirma.
type InvoiceService struct {
	ServiceDeps
	cfg Config
	now func() time.Time
}

// NewInvoiceService construye el servicio.
func NewInvoiceService(deps ServiceDeps, cfg Config) *InvoiceService {
	return &InvoiceService{ServiceDeps: deps, cfg: cfg, now: time.Now}
}

// CreateDraft genera la factura pending a partir de la venta, calculando subtotal e impuestos
// por línea. Falla con ErrDuplicateInvoice si la venta ya tiene una factura no cancelada.
func (s *InvoiceService) CreateDraft(ctx context.Context, p entity.Principal, saleID string) (*entity.Invoice, error) {
	if !p.Valid() {
		return nil, domain.ErrUnauthorized
	}
	sale, err := s.loadSale(ctx, p.CompanyID, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status != entity.SaleStatusCompleted {
		return nil, &domain.InvalidStateError{Entity: "venta", ID: sale.ID, Status: sale.Status, Op: "facturar"}
	}
	existing, err := s.InvoiceRepo.GetActiveBySale(ctx, p.CompanyID, saleID)
	if err != nil {
		return nil, fmt.Errorf("buscar factura de la venta: %w", err)
	}
	if existing != nil {
		return nil, duplicateInvoice(saleID, existing.ID)
	}

	items, totals := fiscal.InvoiceLines(sale.Items)
	now := s.now()
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		CompanyID:  p.CompanyID,
		SaleID:     sale.ID,
		CustomerID: sale.CustomerID,
		Status:     entity.InvoiceStatusPending,
		Subtotal:   totals.Subtotal,
		Taxes:      totals.Taxes,
		Total:      totals.Total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i := range items {
		items[i].ID = uuid.New().String()
		items[i].InvoiceID = inv.ID
	}
	inv.Items = items

	err = s.TxRunner.Run(ctx, func(repos repository.Repos) error {
		dup, err := repos.Invoices.GetActiveBySale(ctx, p.CompanyID, saleID)
		if err != nil {
			return fmt.Errorf("buscar factura de la venta: %w", err)
		}
		if dup != nil {
			return duplicateInvoice(saleID, dup.ID)
		}
		if err := repos.Invoices.Create(ctx, inv); err != nil {
			return err
		}
		for i := range inv.Items {
			if err := repos.Invoices.CreateItem(ctx, &inv.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify("crear factura", err)
	}
	s.Logger.Info().Str("invoice_id", inv.ID).Str("sale_id", sale.ID).Str("company_id", p.CompanyID).
		Str("total", inv.Total.StringFixed(2)).Msg("factura borrador creada")
	return inv, nil
}

// Get devuelve la factura con sus líneas.
func (s *InvoiceService) Get(ctx context.Context, p entity.Principal, id string) (*entity.Invoice, error) {
	if !p.Valid() {
		return nil, domain.ErrUnauthorized
	}
	inv, err := s.InvoiceRepo.GetByID(ctx, p.CompanyID, id)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil {
		return nil, &domain.NotFoundError{Entity: "factura", ID: id}
	}
	return inv, nil
}

// Stamp timbra la factura. Es idempotente: una factura ya timbrada se devuelve sin contactar al PAC.
// Con el candado de la factura tomado vuelve a leer el estado, valida (ValidationFailed con todos
// los errores si no se puede timbrar), sella el documento y llama al PAC con timeout. Solo si el PAC
// confirma se persisten serie, folio, UUID y URL; ante falla del PAC la factura sigue pending.
func (s *InvoiceService) Stamp(ctx context.Context, p entity.Principal, invoiceID string) (*entity.Invoice, error) {
	inv, err := s.Get(ctx, p, invoiceID)
	if err != nil {
		return nil, err
	}
	done, err := stampPrecondition(inv)
	if err != nil {
		return nil, err
	}
	if done {
		return inv, nil
	}

	release, err := s.Locker.Acquire(ctx, lockKey(invoiceID), s.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, release, invoiceID)

	// Otra solicitud pudo timbrar mientras esperábamos.
	inv, err = s.Get(ctx, p, invoiceID)
	if err != nil {
		return nil, err
	}
	done, err = stampPrecondition(inv)
	if err != nil {
		return nil, err
	}
	if done {
		return inv, nil
	}

	sale, err := s.loadSale(ctx, p.CompanyID, inv.SaleID)
	if err != nil {
		return nil, err
	}
	company, err := s.loadCompany(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}
	vopts := s.cfg.Validation
	vopts.Now = s.now()
	if res := fiscal.ValidateInvoice(inv, sale, company, vopts); !res.CanStamp {
		return nil, &domain.ValidationFailedError{Issues: res.Errors}
	}

	doc, err := s.Signer.SignedDocument(DocumentInput{Invoice: inv, Sale: sale, Company: company, IssuedAt: vopts.Now})
	if err != nil {
		return nil, fmt.Errorf("sellar comprobante: %w", err)
	}

	// La llamada no se cancela si el cliente se desconecta: el resultado remoto no puede deshacerse.
	pacCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PACTimeout)
	defer cancel()
	started := time.Now()
	stamp, err := s.PAC.SignAndRegister(pacCtx, StampRequest{InvoiceID: inv.ID, Company: company, Document: doc})
	elapsed := time.Since(started)
	if err != nil {
		perr := pacFailure("timbrar", pacCtx, err)
		s.Logger.Warn().Err(perr).Str("invoice_id", inv.ID).Str("company_id", p.CompanyID).
			Dur("pac_duration", elapsed).Msg("timbrado fallido; la factura sigue pendiente")
		return nil, perr
	}

	persistCtx := context.WithoutCancel(ctx)
	err = s.TxRunner.Run(persistCtx, func(repos repository.Repos) error {
		cur, err := repos.Invoices.GetForUpdate(persistCtx, p.CompanyID, invoiceID)
		if err != nil {
			return fmt.Errorf("bloquear factura: %w", err)
		}
		if cur == nil {
			return &domain.NotFoundError{Entity: "factura", ID: invoiceID}
		}
		if cur.Status == entity.InvoiceStatusStamped && cur.UUID == stamp.UUID {
			return nil
		}
		if !cur.ApplyStamp(*stamp) {
			return &domain.InvalidStateError{Entity: "factura", ID: cur.ID, Status: cur.Status, Op: "timbrar"}
		}
		return repos.Invoices.SaveStamp(persistCtx, cur)
	})
	if err != nil {
		// El PAC ya timbró; un reintento recupera el mismo timbre por idempotencia del PAC.
		s.Logger.Error().Err(err).Str("invoice_id", inv.ID).Str("uuid", stamp.UUID).
			Msg("timbre obtenido pero no persistido")
		return nil, classify("guardar timbre", err)
	}
	s.Logger.Info().Str("invoice_id", inv.ID).Str("company_id", p.CompanyID).Str("uuid", stamp.UUID).
		Str("serie", stamp.Serie).Str("folio", stamp.Folio).Dur("pac_duration", elapsed).Msg("factura timbrada")

	return s.Get(persistCtx, p, invoiceID)
}

// CancelInput motivo SAT (01-04); el motivo 01 exige el UUID que sustituye al cancelado.
type CancelInput struct {
	Motive          string
	ReplacementUUID string
}

// Cancel cancela ante el SAT una factura timbrada. Una factura ya cancelada se devuelve sin cambios.
// Si el PAC falla la factura sigue stamped; nunca se persiste un estado intermedio.
func (s *InvoiceService) Cancel(ctx context.Context, p entity.Principal, invoiceID string, in CancelInput) (*entity.Invoice, error) {
	if !sat.ValidCancelMotive(in.Motive) {
		return nil, domain.InvalidInputf("motivo de cancelación inválido: %q", in.Motive)
	}
	if in.Motive == sat.CancelWithRelation {
		if _, err := uuid.Parse(in.ReplacementUUID); err != nil {
			return nil, domain.InvalidInputf("el motivo 01 requiere el UUID del comprobante que sustituye")
		}
	} else {
		in.ReplacementUUID = ""
	}

	inv, err := s.Get(ctx, p, invoiceID)
	if err != nil {
		return nil, err
	}
	done, err := cancelPrecondition(inv)
	if err != nil {
		return nil, err
	}
	if done {
		return inv, nil
	}

	release, err := s.Locker.Acquire(ctx, lockKey(invoiceID), s.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, release, invoiceID)

	inv, err = s.Get(ctx, p, invoiceID)
	if err != nil {
		return nil, err
	}
	done, err = cancelPrecondition(inv)
	if err != nil {
		return nil, err
	}
	if done {
		return inv, nil
	}
	if in.ReplacementUUID != "" && in.ReplacementUUID == inv.UUID {
		return nil, domain.InvalidInputf("el UUID sustituto no puede ser el mismo comprobante")
	}
	company, err := s.loadCompany(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}
	receiver := sat.GenericRFC
	if cust, err := s.CustomerRepo.GetByID(ctx, p.CompanyID, inv.CustomerID); err == nil && cust != nil && !cust.IsPublic() {
		receiver = sat.NormalizeRFC(cust.Fiscal.RFC)
	}

	pacCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PACTimeout)
	defer cancel()
	started := time.Now()
	err = s.PAC.Cancel(pacCtx, CancelRequest{
		InvoiceID:       inv.ID,
		UUID:            inv.UUID,
		ReceiverRFC:     receiver,
		Total:           inv.Total,
		Motive:          in.Motive,
		ReplacementUUID: in.ReplacementUUID,
		Company:         company,
	})
	elapsed := time.Since(started)
	if err != nil {
		perr := pacFailure("cancelar", pacCtx, err)
		s.Logger.Warn().Err(perr).Str("invoice_id", inv.ID).Str("uuid", inv.UUID).
			Dur("pac_duration", elapsed).Msg("cancelación fallida; la factura sigue timbrada")
		return nil, perr
	}

	persistCtx := context.WithoutCancel(ctx)
	err = s.TxRunner.Run(persistCtx, func(repos repository.Repos) error {
		cur, err := repos.Invoices.GetForUpdate(persistCtx, p.CompanyID, invoiceID)
		if err != nil {
			return fmt.Errorf("bloquear factura: %w", err)
		}
		if cur == nil {
			return &domain.NotFoundError{Entity: "factura", ID: invoiceID}
		}
		if cur.Status == entity.InvoiceStatusCancelled {
			return nil
		}
		if !cur.ApplyCancellation(s.now(), in.Motive, in.ReplacementUUID) {
			return &domain.InvalidStateError{Entity: "factura", ID: cur.ID, Status: cur.Status, Op: "cancelar"}
		}
		return repos.Invoices.SaveCancellation(persistCtx, cur)
	})
	if err != nil {
		s.Logger.Error().Err(err).Str("invoice_id", inv.ID).Str("uuid", inv.UUID).
			Msg("cancelación aceptada por el PAC pero no persistida")
		return nil, classify("guardar cancelación", err)
	}
	s.Logger.Info().Str("invoice_id", inv.ID).Str("uuid", inv.UUID).Str("motive", in.Motive).
		Dur("pac_duration", elapsed).Msg("factura cancelada")

	return s.Get(persistCtx, p, invoiceID)
}

// DeleteDraft elimina localmente una factura pending. No es una cancelación fiscal.
func (s *InvoiceService) DeleteDraft(ctx context.Context, p entity.Principal, invoiceID string) error {
	if !p.Valid() {
		return domain.ErrUnauthorized
	}
	err := s.TxRunner.Run(ctx, func(repos repository.Repos) error {
		cur, err := repos.Invoices.GetForUpdate(ctx, p.CompanyID, invoiceID)
		if err != nil {
			return fmt.Errorf("bloquear factura: %w", err)
		}
		if cur == nil {
			return &domain.NotFoundError{Entity: "factura", ID: invoiceID}
		}
		if cur.Status != entity.InvoiceStatusPending {
			return &domain.InvalidStateError{Entity: "factura", ID: cur.ID, Status: cur.Status, Op: "eliminar"}
		}
		return repos.Invoices.Delete(ctx, p.CompanyID, invoiceID)
	})
	if err != nil {
		return classify("eliminar factura", err)
	}
	return nil
}

// ValidateSale corre la validación fiscal sobre una venta sin crear factura.
func (s *InvoiceService) ValidateSale(ctx context.Context, p entity.Principal, saleID string) (fiscal.Result, error) {
	if !p.Valid() {
		return fiscal.Result{}, domain.ErrUnauthorized
	}
	sale, err := s.loadSale(ctx, p.CompanyID, saleID)
	if err != nil {
		return fiscal.Result{}, err
	}
	company, err := s.loadCompany(ctx, p.CompanyID)
	if err != nil {
		return fiscal.Result{}, err
	}
	vopts := s.cfg.Validation
	vopts.Now = s.now()
	return fiscal.Validate(sale, company, vopts), nil
}

func (s *InvoiceService) loadSale(ctx context.Context, companyID, saleID string) (*entity.Sale, error) {
	sale, err := s.SaleRepo.GetByID(ctx, companyID, saleID)
	if err != nil {
		return nil, fmt.Errorf("obtener venta: %w", err)
	}
	if sale == nil {
		return nil, &domain.NotFoundError{Entity: "venta", ID: saleID}
	}
	if err := sales.ResolveSale(ctx, sale, s.CustomerRepo, s.ProductRepo); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *InvoiceService) loadCompany(ctx context.Context, companyID string) (*entity.Company, error) {
	company, err := s.CompanyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("obtener empresa: %w", err)
	}
	if company == nil {
		return nil, &domain.NotFoundError{Entity: "empresa", ID: companyID}
	}
	return company, nil
}

func (s *InvoiceService) release(ctx context.Context, release Release, invoiceID string) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.Logger.Warn().Err(err).Str("invoice_id", invoiceID).Msg("liberar candado de factura")
	}
}

// stampPrecondition done=true si la factura ya está timbrada (resultado idempotente).
func stampPrecondition(inv *entity.Invoice) (done bool, err error) {
	switch inv.Status {
	case entity.InvoiceStatusStamped:
		return true, nil
	case entity.InvoiceStatusPending:
		return false, nil
	}
	return false, &domain.InvalidStateError{Entity: "factura", ID: inv.ID, Status: inv.Status, Op: "timbrar"}
}

// cancelPrecondition done=true si la factura ya está cancelada.
func cancelPrecondition(inv *entity.Invoice) (done bool, err error) {
	switch inv.Status {
	case entity.InvoiceStatusCancelled:
		return true, nil
	case entity.InvoiceStatusStamped:
		return false, nil
	}
	return false, &domain.InvalidStateError{Entity: "factura", ID: inv.ID, Status: inv.Status, Op: "cancelar"}
}

func pacFailure(op string, pacCtx context.Context, err error) error {
	timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(pacCtx.Err(), context.DeadlineExceeded)
	var perr *domain.PacUnavailableError
	if errors.As(err, &perr) {
		if timedOut {
			perr.Unknown = true
		}
		return perr
	}
	reason := err.Error()
	if timedOut {
		reason = "tiempo de espera agotado"
	}
	return &domain.PacUnavailableError{Op: op, Reason: reason, Unknown: timedOut, Err: err}
}

func duplicateInvoice(saleID, invoiceID string) error {
	return fmt.Errorf("%w: la venta %s ya tiene la factura %s", domain.ErrDuplicateInvoice, saleID, invoiceID)
}

func classify(op string, err error) error {
	if domain.IsClassified(err) {
		return err
	}
	return &domain.TransactionError{Op: op, Err: err}
}

func lockKey(invoiceID string) string { return "invoice:" + invoiceID }
