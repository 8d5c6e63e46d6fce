package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/application/dto"
)

// InvoiceHandler ciclo de vida de la factura (protegido).
type InvoiceHandler struct {
	invoices *billing.InvoiceService
	pdf      *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(invoices *billing.InvoiceService, pdf *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, pdf: pdf}
}

// Create godoc
// @Summary      Crear borrador de factura
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "sale_id"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	inv, err := h.invoices.CreateDraft(c.UserContext(), GetPrincipal(c), in.SaleID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewInvoiceResponse(inv))
}

// GetByID GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.invoices.Get(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewInvoiceResponse(inv))
}

// Stamp godoc
// @Summary      Timbrar factura
// @Description  Valida, sella y envía al PAC. Idempotente: una factura ya timbrada se devuelve igual.
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse  "VALIDATION_FAILED con la lista de errores"
// @Failure      503  {object}  dto.ErrorResponse  "PAC_UNAVAILABLE; la factura sigue pending"
// @Router       /api/invoices/{id}/stamp [post]
func (h *InvoiceHandler) Stamp(c *fiber.Ctx) error {
	inv, err := h.invoices.Stamp(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewInvoiceResponse(inv))
}

// Cancel godoc
// @Summary      Cancelar factura timbrada
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la factura"
// @Param        body  body  dto.CancelInvoiceRequest  true  "motive, replacement_uuid"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelInvoiceRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	inv, err := h.invoices.Cancel(c.UserContext(), GetPrincipal(c), c.Params("id"), billing.CancelInput{
		Motive:          in.Motive,
		ReplacementUUID: in.ReplacementUUID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewInvoiceResponse(inv))
}

// Delete DELETE /api/invoices/:id (solo borradores).
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.invoices.DeleteDraft(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Preview GET /api/invoices/:id/preview
func (h *InvoiceHandler) Preview(c *fiber.Ctx) error {
	p, err := h.invoices.Preview(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// PDF GET /api/invoices/:id/pdf
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	pdf, filename, err := h.pdf.Render(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, "inline; filename="+strconv.Quote(filename))
	return c.Send(pdf)
}
