package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la cotización. converted es terminal.
const (
	QuotationStatusPending   = "pending"
	QuotationStatusAccepted  = "accepted"
	QuotationStatusRejected  = "rejected"
	QuotationStatusExpired   = "expired"
	QuotationStatusConverted = "converted"
)

// Quotation propuesta de precio no vinculante que puede convertirse en venta.
type Quotation struct {
	ID          string
	CompanyID   string
	CustomerID  string
	UserID      string
	Status      string
	TotalAmount decimal.Decimal
	Notes       string
	ValidUntil  *time.Time
	SaleID      string // venta generada al convertir
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Items       []QuotationItem
}

// QuotationItem espejo de SaleItem.
type QuotationItem struct {
	ID            string
	QuotationID   string
	ProductID     string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Total         decimal.Decimal
	SatProductKey string
	SatUnitKey    string
	Description   string
}

// ExpiredAt indica si la vigencia terminó antes de now.
func (q *Quotation) ExpiredAt(now time.Time) bool {
	return q.Status == QuotationStatusExpired || (q.ValidUntil != nil && now.After(*q.ValidUntil))
}
