package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo. El core solo lo lee, salvo el campo Stock
// que se modifica exclusivamente a través del ledger de inventario.
type Product struct {
	ID            string
	CompanyID     string
	SKU           string
	Name          string
	Price         decimal.Decimal // precio unitario antes de impuestos
	UseStock      bool            // si es true, Stock nunca puede quedar negativo
	Stock         decimal.Decimal
	SatProductKey string // c_ClaveProdServ
	SatUnitKey    string // c_ClaveUnidad
	UnitName      string
	IVARate       decimal.Decimal // 0, 0.08 (frontera) o 0.16
	IVAExempt     bool
	IEPSRate      decimal.Decimal // 0 si no aplica
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
