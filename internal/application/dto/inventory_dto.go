package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// AdjustStockRequest entrada de POST /api/inventory/movements.
// Delta con signo: positivo reabasto o devolución, negativo merma o ajuste.
type AdjustStockRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Delta     decimal.Decimal `json:"delta"`
	Note      string          `json:"note" validate:"required,max=500"`
}

// MovementResponse salida de un movimiento del ledger.
type MovementResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	UserID        string          `json:"user_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		UserID:        m.UserID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
	}
}
