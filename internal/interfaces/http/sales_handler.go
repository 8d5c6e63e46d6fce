package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/application/dto"
	"github.com/jhoicas/ventas-cfdi/internal/application/sales"
)

// SalesHandler ventas y cotizaciones (protegido).
type SalesHandler struct {
	createSale *sales.CreateSaleUseCase
	quotations *sales.QuotationUseCase
	invoices   *billing.InvoiceService
}

// NewSalesHandler construye el handler.
func NewSalesHandler(createSale *sales.CreateSaleUseCase, quotations *sales.QuotationUseCase, invoices *billing.InvoiceService) *SalesHandler {
	return &SalesHandler{createSale: createSale, quotations: quotations, invoices: invoices}
}

// CreateSale godoc
// @Summary      Registrar venta
// @Description  Crea la venta y descuenta inventario en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "customer_id, items"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SalesHandler) CreateSale(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	sale, err := h.createSale.Create(c.UserContext(), GetPrincipal(c), in.ToInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSaleResponse(sale))
}

// GetSale GET /api/sales/:id
func (h *SalesHandler) GetSale(c *fiber.Ctx) error {
	sale, err := h.createSale.Get(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewSaleResponse(sale))
}

// ValidateSale godoc
// @Summary      Validación fiscal de una venta
// @Description  Errores bloqueantes y advertencias antes de facturar; no modifica nada.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  fiscal.Result
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/fiscal-validation [get]
func (h *SalesHandler) ValidateSale(c *fiber.Ctx) error {
	res, err := h.invoices.ValidateSale(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// CreateQuotation POST /api/quotations. No afecta inventario.
func (h *SalesHandler) CreateQuotation(c *fiber.Ctx) error {
	var in dto.CreateQuotationRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	q, err := h.quotations.Create(c.UserContext(), GetPrincipal(c), in.ToInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewQuotationResponse(q))
}

// GetQuotation GET /api/quotations/:id
func (h *SalesHandler) GetQuotation(c *fiber.Ctx) error {
	q, err := h.quotations.Get(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewQuotationResponse(q))
}

// ConvertQuotation godoc
// @Summary      Convertir cotización en venta
// @Description  Usa los precios cotizados; una cotización solo se convierte una vez.
// @Tags         quotations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cotización"
// @Success      201  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotations/{id}/convert [post]
func (h *SalesHandler) ConvertQuotation(c *fiber.Ctx) error {
	sale, err := h.quotations.Convert(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSaleResponse(sale))
}

// RejectQuotation POST /api/quotations/:id/reject
func (h *SalesHandler) RejectQuotation(c *fiber.Ctx) error {
	q, err := h.quotations.Reject(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewQuotationResponse(q))
}
