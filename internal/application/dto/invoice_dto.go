package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// CreateInvoiceRequest entrada de POST /api/invoices (borrador desde una venta).
type CreateInvoiceRequest struct {
	SaleID string `json:"sale_id" validate:"required"`
}

// CancelInvoiceRequest motivo SAT 01-04; 01 exige replacement_uuid.
type CancelInvoiceRequest struct {
	Motive          string `json:"motive" validate:"required,oneof=01 02 03 04"`
	ReplacementUUID string `json:"replacement_uuid" validate:"required_if=Motive 01"`
}

// InvoiceItemResponse línea del comprobante.
type InvoiceItemResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Description   string          `json:"description"`
	SatProductKey string          `json:"sat_product_key"`
	SatUnitKey    string          `json:"sat_unit_key"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	IEPS          decimal.Decimal `json:"ieps"`
	IVA           decimal.Decimal `json:"iva"`
	IVAExempt     bool            `json:"iva_exempt,omitempty"`
}

// InvoiceResponse salida de una factura; el XML timbrado no se incluye.
type InvoiceResponse struct {
	ID                 string                `json:"id"`
	SaleID             string                `json:"sale_id"`
	CustomerID         string                `json:"customer_id"`
	Status             string                `json:"status"`
	Serie              string                `json:"serie,omitempty"`
	Folio              string                `json:"folio,omitempty"`
	UUID               string                `json:"uuid,omitempty"`
	VerificationURL    string                `json:"verification_url,omitempty"`
	Subtotal           decimal.Decimal       `json:"subtotal"`
	Taxes              decimal.Decimal       `json:"taxes"`
	Total              decimal.Decimal       `json:"total"`
	StampedAt          *time.Time            `json:"stamped_at,omitempty"`
	CancelledAt        *time.Time            `json:"cancelled_at,omitempty"`
	CancellationMotive string                `json:"cancellation_motive,omitempty"`
	ReplacementUUID    string                `json:"replacement_uuid,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	Items              []InvoiceItemResponse `json:"items,omitempty"`
}

func NewInvoiceResponse(inv *entity.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                 inv.ID,
		SaleID:             inv.SaleID,
		CustomerID:         inv.CustomerID,
		Status:             inv.Status,
		Serie:              inv.Serie,
		Folio:              inv.Folio,
		UUID:               inv.UUID,
		VerificationURL:    inv.VerificationURL,
		Subtotal:           inv.Subtotal,
		Taxes:              inv.Taxes,
		Total:              inv.Total,
		StampedAt:          inv.StampedAt,
		CancelledAt:        inv.CancelledAt,
		CancellationMotive: inv.CancellationMotive,
		ReplacementUUID:    inv.ReplacementUUID,
		CreatedAt:          inv.CreatedAt,
	}
	for _, it := range inv.Items {
		resp.Items = append(resp.Items, InvoiceItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			Description:   it.Description,
			SatProductKey: it.SatProductKey,
			SatUnitKey:    it.SatUnitKey,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Subtotal:      it.Subtotal,
			IEPS:          it.IEPS,
			IVA:           it.IVA,
			IVAExempt:     it.IVAExempt,
		})
	}
	return resp
}
