package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

// QuotationUseCase alta, rechazo y conversión de cotizaciones a venta.
type QuotationUseCase struct {
	txRunner      TxRunner
	sales         *CreateSaleUseCase
	customerRepo  repository.CustomerRepository
	productRepo   repository.ProductRepository
	quotationRepo repository.QuotationRepository
	now           func() time.Time
}

// NewQuotationUseCase construye el caso de uso.
func NewQuotationUseCase(
	txRunner TxRunner,
	sales *CreateSaleUseCase,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	quotationRepo repository.QuotationRepository,
) *QuotationUseCase {
	return &QuotationUseCase{
		txRunner:      txRunner,
		sales:         sales,
		customerRepo:  customerRepo,
		productRepo:   productRepo,
		quotationRepo: quotationRepo,
		now:           time.Now,
	}
}

// CreateQuotationInput solicitud de cotización; no afecta inventario.
type CreateQuotationInput struct {
	CustomerID string
	Items      []SaleItemInput
	Notes      string
	ValidUntil *time.Time
}

// Create registra la cotización en estado pending.
func (uc *QuotationUseCase) Create(ctx context.Context, p entity.Principal, in CreateQuotationInput) (*entity.Quotation, error) {
	if !p.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if len(in.Items) == 0 {
		return nil, domain.InvalidInputf("la cotización debe tener al menos una línea")
	}
	now := uc.now()
	if in.ValidUntil != nil && !in.ValidUntil.After(now) {
		return nil, domain.InvalidInputf("la vigencia debe ser posterior a la fecha actual")
	}
	cust, err := uc.customerRepo.GetByID(ctx, p.CompanyID, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if cust == nil {
		return nil, &domain.NotFoundError{Entity: "cliente", ID: in.CustomerID}
	}

	q := &entity.Quotation{
		ID:          uuid.New().String(),
		CompanyID:   p.CompanyID,
		CustomerID:  in.CustomerID,
		UserID:      p.UserID,
		Status:      entity.QuotationStatusPending,
		TotalAmount: decimal.Zero,
		Notes:       in.Notes,
		ValidUntil:  in.ValidUntil,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	seen := make(map[string]bool)
	for i, it := range in.Items {
		if !it.Quantity.IsPositive() || it.UnitPrice.IsNegative() {
			return nil, domain.InvalidInputf("línea %d: cantidad o precio inválido", i)
		}
		if !seen[it.ProductID] {
			prod, err := uc.productRepo.GetByID(ctx, p.CompanyID, it.ProductID)
			if err != nil {
				return nil, fmt.Errorf("obtener producto %s: %w", it.ProductID, err)
			}
			if prod == nil {
				return nil, &domain.NotFoundError{Entity: "producto", ID: it.ProductID}
			}
			seen[it.ProductID] = true
		}
		line := entity.LineTotal(it.Quantity, it.UnitPrice)
		q.TotalAmount = q.TotalAmount.Add(line)
		q.Items = append(q.Items, entity.QuotationItem{
			ID:            uuid.New().String(),
			QuotationID:   q.ID,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Total:         line,
			SatProductKey: it.SatProductKey,
			SatUnitKey:    it.SatUnitKey,
			Description:   it.Description,
		})
	}

	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		if err := repos.Quotations.Create(ctx, q); err != nil {
			return fmt.Errorf("insertar cotización: %w", err)
		}
		for i := range q.Items {
			if err := repos.Quotations.CreateItem(ctx, &q.Items[i]); err != nil {
				return fmt.Errorf("insertar línea de cotización: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, classifyTxError("crear cotización", err)
	}
	return q, nil
}

// Get devuelve la cotización con sus líneas.
func (uc *QuotationUseCase) Get(ctx context.Context, p entity.Principal, id string) (*entity.Quotation, error) {
	if !p.Valid() {
		return nil, domain.ErrUnauthorized
	}
	q, err := uc.quotationRepo.GetByID(ctx, p.CompanyID, id)
	if err != nil {
		return nil, fmt.Errorf("obtener cotización: %w", err)
	}
	if q == nil {
		return nil, &domain.NotFoundError{Entity: "cotización", ID: id}
	}
	return q, nil
}

// Convert crea una venta con las líneas de la cotización (precios tal cual) y la marca converted.
// El cambio de estado ocurre después de crear la venta y en la misma transacción, con la fila de
// la cotización bloqueada: una segunda conversión falla con ErrAlreadyConverted y un fallo deja
// la cotización pending.
func (uc *QuotationUseCase) Convert(ctx context.Context, p entity.Principal, quotationID string) (*entity.Sale, error) {
	q, err := uc.Get(ctx, p, quotationID)
	if err != nil {
		return nil, err
	}
	if err := uc.checkConvertible(q); err != nil {
		return nil, err
	}

	in := CreateSaleInput{
		CustomerID: q.CustomerID,
		Notes:      fmt.Sprintf("Cotización #%s", shortID(q.ID)),
	}
	if q.Notes != "" {
		in.Notes += ": " + q.Notes
	}
	for _, it := range q.Items {
		in.Items = append(in.Items, SaleItemInput{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			SatProductKey: it.SatProductKey,
			SatUnitKey:    it.SatUnitKey,
			Description:   it.Description,
		})
	}
	prep, err := uc.sales.prepare(ctx, p, in)
	if err != nil {
		return nil, err
	}

	var sale *entity.Sale
	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		locked, err := repos.Quotations.GetForUpdate(ctx, p.CompanyID, quotationID)
		if err != nil {
			return fmt.Errorf("bloquear cotización: %w", err)
		}
		if locked == nil {
			return &domain.NotFoundError{Entity: "cotización", ID: quotationID}
		}
		if err := uc.checkConvertible(locked); err != nil {
			return err
		}
		s, err := uc.sales.persist(ctx, repos, p, in, prep)
		if err != nil {
			return err
		}
		if err := repos.Quotations.UpdateStatus(ctx, quotationID, entity.QuotationStatusConverted, s.ID, uc.now()); err != nil {
			return fmt.Errorf("marcar cotización convertida: %w", err)
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, classifyTxError("convertir cotización", err)
	}
	return sale, nil
}

// Reject pasa una cotización pendiente a rejected.
func (uc *QuotationUseCase) Reject(ctx context.Context, p entity.Principal, quotationID string) (*entity.Quotation, error) {
	if !p.Valid() {
		return nil, domain.ErrUnauthorized
	}
	var out *entity.Quotation
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		q, err := repos.Quotations.GetForUpdate(ctx, p.CompanyID, quotationID)
		if err != nil {
			return fmt.Errorf("bloquear cotización: %w", err)
		}
		if q == nil {
			return &domain.NotFoundError{Entity: "cotización", ID: quotationID}
		}
		if q.Status != entity.QuotationStatusPending && q.Status != entity.QuotationStatusAccepted {
			return &domain.InvalidStateError{Entity: "cotización", ID: q.ID, Status: q.Status, Op: "rechazar"}
		}
		now := uc.now()
		if err := repos.Quotations.UpdateStatus(ctx, q.ID, entity.QuotationStatusRejected, "", now); err != nil {
			return fmt.Errorf("rechazar cotización: %w", err)
		}
		q.Status = entity.QuotationStatusRejected
		q.UpdatedAt = now
		out = q
		return nil
	})
	if err != nil {
		return nil, classifyTxError("rechazar cotización", err)
	}
	return out, nil
}

func (uc *QuotationUseCase) checkConvertible(q *entity.Quotation) error {
	switch {
	case q.Status == entity.QuotationStatusConverted:
		return fmt.Errorf("%w: la cotización %s generó la venta %s", domain.ErrAlreadyConverted, q.ID, q.SaleID)
	case q.Status == entity.QuotationStatusRejected:
		return &domain.InvalidStateError{Entity: "cotización", ID: q.ID, Status: q.Status, Op: "convertir"}
	case q.ExpiredAt(uc.now()):
		return &domain.InvalidStateError{Entity: "cotización", ID: q.ID, Status: entity.QuotationStatusExpired, Op: "convertir"}
	}
	return nil
}
