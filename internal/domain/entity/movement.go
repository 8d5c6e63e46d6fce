package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del movimiento de inventario.
const (
	MovementInbound  = "inbound"
	MovementOutbound = "outbound"
)

// Movement registro inmutable de un cambio de stock. Solo lo crea el ledger.
type Movement struct {
	ID            string
	CompanyID     string
	ProductID     string
	UserID        string
	Type          string          // inbound | outbound
	Quantity      decimal.Decimal // siempre positiva; la dirección la da Type
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	Note          string
	CreatedAt     time.Time
}

// Delta devuelve la cantidad con signo aplicada al stock.
func (m *Movement) Delta() decimal.Decimal {
	if m.Type == MovementOutbound {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
