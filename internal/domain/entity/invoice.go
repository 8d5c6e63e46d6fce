package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura: pending -> stamped -> cancelled.
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusStamped   = "stamped"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice comprobante fiscal derivado de una venta.
// Serie, Folio y UUID existen si y solo si la factura fue timbrada.
type Invoice struct {
	ID                 string
	CompanyID          string
	SaleID             string
	CustomerID         string
	Status             string
	Serie              string
	Folio              string
	UUID               string
	VerificationURL    string
	Subtotal           decimal.Decimal
	Taxes              decimal.Decimal
	Total              decimal.Decimal
	StampedXML         string
	StampedAt          *time.Time
	CancelledAt        *time.Time
	CancellationMotive string
	ReplacementUUID    string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Items              []InvoiceItem
}

// InvoiceItem línea del comprobante; inmutable una vez creada.
type InvoiceItem struct {
	ID            string
	InvoiceID     string
	SaleItemID    string
	ProductID     string
	Description   string
	SatProductKey string
	SatUnitKey    string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
	IEPSRate      decimal.Decimal
	IEPS          decimal.Decimal
	IVARate       decimal.Decimal
	IVAExempt     bool
	IVA           decimal.Decimal
}

// Stamp resultado de un timbrado exitoso.
type Stamp struct {
	UUID            string
	Serie           string
	Folio           string
	VerificationURL string
	XML             string
	StampedAt       time.Time
}

// HasStampData true si serie, folio y UUID están presentes.
func (i *Invoice) HasStampData() bool {
	return i.Serie != "" && i.Folio != "" && i.UUID != ""
}

// StampConsistent verifica que los datos de timbrado correspondan al estado.
func (i *Invoice) StampConsistent() bool {
	switch i.Status {
	case InvoiceStatusPending:
		return i.Serie == "" && i.Folio == "" && i.UUID == ""
	case InvoiceStatusStamped:
		return i.HasStampData()
	case InvoiceStatusCancelled:
		return i.StampedAt == nil || i.HasStampData()
	}
	return false
}

// ApplyStamp pasa la factura a stamped. Devuelve false si no estaba pending.
func (i *Invoice) ApplyStamp(s Stamp) bool {
	if i.Status != InvoiceStatusPending {
		return false
	}
	at := s.StampedAt
	i.Status = InvoiceStatusStamped
	i.Serie, i.Folio, i.UUID = s.Serie, s.Folio, s.UUID
	i.VerificationURL = s.VerificationURL
	i.StampedXML = s.XML
	i.StampedAt = &at
	i.UpdatedAt = at
	return true
}

// ApplyCancellation pasa la factura a cancelled. Devuelve false si no estaba stamped.
func (i *Invoice) ApplyCancellation(at time.Time, motive, replacementUUID string) bool {
	if i.Status != InvoiceStatusStamped {
		return false
	}
	i.Status = InvoiceStatusCancelled
	i.CancelledAt = &at
	i.CancellationMotive = motive
	i.ReplacementUUID = replacementUUID
	i.UpdatedAt = at
	return true
}
