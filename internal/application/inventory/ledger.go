package inventory

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

// Ledger aplica deltas de stock y agrega el movimiento correspondiente.
// Es la única vía para modificar Product.Stock.
type Ledger struct {
	now func() time.Time
}

// NewLedger construye el ledger con el reloj del sistema.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// ApplyInput delta negativo para salidas (ventas), positivo para entradas (devoluciones, reabasto).
type ApplyInput struct {
	CompanyID string
	ProductID string
	ActorID   string
	Delta     decimal.Decimal
	Note      string
}

// Apply se ejecuta con los repositorios de la transacción del caller: bloquea la fila del producto
// (SELECT FOR UPDATE), valida que el stock no quede negativo, escribe el stock nuevo y agrega el
// movimiento con los valores antes/después. Ante error no muta nada; el caller hace rollback.
func (l *Ledger) Apply(ctx context.Context, repos repository.Repos, in ApplyInput) (*entity.Movement, error) {
	if in.Delta.IsZero() {
		return nil, domain.InvalidInputf("la cantidad del movimiento no puede ser cero")
	}
	product, err := repos.Products.GetForUpdate(ctx, in.CompanyID, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("ledger: bloquear producto: %w", err)
	}
	if product == nil {
		return nil, &domain.NotFoundError{Entity: "producto", ID: in.ProductID}
	}

	previous := product.Stock
	next := previous.Add(in.Delta)
	if product.UseStock && next.IsNegative() {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   previous,
			Requested:   in.Delta.Neg(),
		}
	}

	if err := repos.Products.UpdateStock(ctx, in.CompanyID, product.ID, next); err != nil {
		return nil, fmt.Errorf("ledger: actualizar stock: %w", err)
	}

	mov := &entity.Movement{
		ID:            uuid.New().String(),
		CompanyID:     in.CompanyID,
		ProductID:     product.ID,
		UserID:        in.ActorID,
		Type:          entity.MovementInbound,
		Quantity:      in.Delta.Abs(),
		PreviousStock: previous,
		NewStock:      next,
		Note:          in.Note,
		CreatedAt:     l.now(),
	}
	if in.Delta.IsNegative() {
		mov.Type = entity.MovementOutbound
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, fmt.Errorf("ledger: registrar movimiento: %w", err)
	}
	return mov, nil
}
