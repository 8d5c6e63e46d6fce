package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/application/sales"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// SaleItemRequest línea de venta o cotización. El precio lo fija el llamador.
type SaleItemRequest struct {
	ProductID     string          `json:"product_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	SatProductKey string          `json:"sat_product_key" validate:"omitempty,len=8,numeric"`
	SatUnitKey    string          `json:"sat_unit_key" validate:"omitempty,max=3"`
	Description   string          `json:"description" validate:"max=1000"`
}

// CreateSaleRequest entrada de POST /api/sales.
type CreateSaleRequest struct {
	CustomerID string            `json:"customer_id" validate:"required"`
	Items      []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes      string            `json:"notes" validate:"max=2000"`
}

// ToInput convierte a la entrada del caso de uso.
func (r CreateSaleRequest) ToInput() sales.CreateSaleInput {
	return sales.CreateSaleInput{CustomerID: r.CustomerID, Items: itemInputs(r.Items), Notes: r.Notes}
}

// CreateQuotationRequest entrada de POST /api/quotations.
type CreateQuotationRequest struct {
	CustomerID string            `json:"customer_id" validate:"required"`
	Items      []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes      string            `json:"notes" validate:"max=2000"`
	ValidUntil *time.Time        `json:"valid_until"`
}

func (r CreateQuotationRequest) ToInput() sales.CreateQuotationInput {
	return sales.CreateQuotationInput{
		CustomerID: r.CustomerID,
		Items:      itemInputs(r.Items),
		Notes:      r.Notes,
		ValidUntil: r.ValidUntil,
	}
}

func itemInputs(items []SaleItemRequest) []sales.SaleItemInput {
	out := make([]sales.SaleItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, sales.SaleItemInput{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			SatProductKey: it.SatProductKey,
			SatUnitKey:    it.SatUnitKey,
			Description:   it.Description,
		})
	}
	return out
}

// LineResponse línea de venta o cotización.
type LineResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Total         decimal.Decimal `json:"total"`
	SatProductKey string          `json:"sat_product_key,omitempty"`
	SatUnitKey    string          `json:"sat_unit_key,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"company_id"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name,omitempty"`
	UserID       string          `json:"user_id"`
	Status       string          `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Items        []LineResponse  `json:"items"`
}

// NewSaleResponse mapea la venta con sus referencias resueltas (si las hay).
func NewSaleResponse(s *entity.Sale) SaleResponse {
	resp := SaleResponse{
		ID:          s.ID,
		CompanyID:   s.CompanyID,
		CustomerID:  s.CustomerID,
		UserID:      s.UserID,
		Status:      s.Status,
		TotalAmount: s.TotalAmount,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		Items:       make([]LineResponse, 0, len(s.Items)),
	}
	if s.Customer != nil {
		resp.CustomerName = s.Customer.Name
	}
	for _, it := range s.Items {
		line := LineResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Total:         it.Total,
			SatProductKey: it.SatProductKey,
			SatUnitKey:    it.SatUnitKey,
			Description:   it.Description,
		}
		if it.Product != nil {
			line.ProductName = it.Product.Name
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

// QuotationResponse salida de una cotización.
type QuotationResponse struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	CustomerID  string          `json:"customer_id"`
	UserID      string          `json:"user_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Notes       string          `json:"notes,omitempty"`
	ValidUntil  *time.Time      `json:"valid_until,omitempty"`
	SaleID      string          `json:"sale_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Items       []LineResponse  `json:"items"`
}

func NewQuotationResponse(q *entity.Quotation) QuotationResponse {
	resp := QuotationResponse{
		ID:          q.ID,
		CompanyID:   q.CompanyID,
		CustomerID:  q.CustomerID,
		UserID:      q.UserID,
		Status:      q.Status,
		TotalAmount: q.TotalAmount,
		Notes:       q.Notes,
		ValidUntil:  q.ValidUntil,
		SaleID:      q.SaleID,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
		Items:       make([]LineResponse, 0, len(q.Items)),
	}
	for _, it := range q.Items {
		resp.Items = append(resp.Items, LineResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Total:         it.Total,
			SatProductKey: it.SatProductKey,
			SatUnitKey:    it.SatUnitKey,
			Description:   it.Description,
		})
	}
	return resp
}
