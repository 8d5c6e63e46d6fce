package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la venta.
const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
	SaleStatusRefunded  = "refunded"
)

// Sale agregado de venta; sus líneas son inmutables una vez creada.
type Sale struct {
	ID          string
	CompanyID   string
	CustomerID  string
	UserID      string
	Status      string
	TotalAmount decimal.Decimal
	Notes       string
	CreatedAt   time.Time
	Items       []SaleItem

	Customer *Customer // resuelto para lectura; no se persiste
}

// SaleItem línea de venta. Total = Quantity × UnitPrice.
type SaleItem struct {
	ID            string
	SaleID        string
	ProductID     string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Total         decimal.Decimal
	SatProductKey string // opcional; si está vacío se usa el del producto
	SatUnitKey    string
	Description   string

	Product *Product
}

// ProductKey clave de producto SAT efectiva de la línea.
func (i *SaleItem) ProductKey() string {
	if i.SatProductKey != "" {
		return i.SatProductKey
	}
	if i.Product != nil {
		return i.Product.SatProductKey
	}
	return ""
}

// UnitKey clave de unidad SAT efectiva de la línea.
func (i *SaleItem) UnitKey() string {
	if i.SatUnitKey != "" {
		return i.SatUnitKey
	}
	if i.Product != nil {
		return i.Product.SatUnitKey
	}
	return ""
}

// DisplayDescription descripción para el comprobante; cae al nombre del producto.
func (i *SaleItem) DisplayDescription() string {
	if i.Description != "" {
		return i.Description
	}
	if i.Product != nil {
		return i.Product.Name
	}
	return ""
}

// LineTotal cantidad × precio unitario.
func LineTotal(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitPrice)
}
