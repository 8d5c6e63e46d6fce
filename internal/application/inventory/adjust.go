package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

// AdjustStockUseCase reabastos, devoluciones y ajustes explícitos, cada uno en su propia transacción.
type AdjustStockUseCase struct {
	txRunner     TxRunner
	ledger       *Ledger
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(
	txRunner TxRunner,
	ledger *Ledger,
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		productRepo:  productRepo,
		movementRepo: movementRepo,
	}
}

// AdjustInput Delta con signo; Note obligatoria para auditoría.
type AdjustInput struct {
	ProductID string
	Delta     decimal.Decimal
	Note      string
}

// Adjust valida fuera de la transacción y aplica el delta a través del ledger.
func (uc *AdjustStockUseCase) Adjust(ctx context.Context, p entity.Principal, in AdjustInput) (*entity.Movement, error) {
	if !p.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if in.ProductID == "" || in.Delta.IsZero() {
		return nil, domain.InvalidInputf("producto y cantidad distinta de cero requeridos")
	}
	if in.Note == "" {
		return nil, domain.InvalidInputf("la nota del movimiento es obligatoria")
	}
	product, err := uc.productRepo.GetByID(ctx, p.CompanyID, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("ajuste: obtener producto: %w", err)
	}
	if product == nil {
		return nil, &domain.NotFoundError{Entity: "producto", ID: in.ProductID}
	}

	var mov *entity.Movement
	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		m, err := uc.ledger.Apply(ctx, repos, ApplyInput{
			CompanyID: p.CompanyID,
			ProductID: in.ProductID,
			ActorID:   p.UserID,
			Delta:     in.Delta,
			Note:      in.Note,
		})
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		if domain.IsClassified(err) {
			return nil, err
		}
		return nil, &domain.TransactionError{Op: "ajuste de inventario", Err: err}
	}
	return mov, nil
}

// ListMovements historial del producto en orden cronológico.
func (uc *AdjustStockUseCase) ListMovements(ctx context.Context, p entity.Principal, productID string) ([]*entity.Movement, error) {
	if !p.Valid() {
		return nil, domain.ErrUnauthorized
	}
	product, err := uc.productRepo.GetByID(ctx, p.CompanyID, productID)
	if err != nil {
		return nil, fmt.Errorf("movimientos: obtener producto: %w", err)
	}
	if product == nil {
		return nil, &domain.NotFoundError{Entity: "producto", ID: productID}
	}
	list, err := uc.movementRepo.ListByProduct(ctx, p.CompanyID, productID)
	if err != nil {
		return nil, fmt.Errorf("movimientos: listar: %w", err)
	}
	return list, nil
}
