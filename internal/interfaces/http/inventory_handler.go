package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-cfdi/internal/application/dto"
	"github.com/jhoicas/ventas-cfdi/internal/application/inventory"
)

// InventoryHandler ajustes manuales y consulta del ledger (protegido).
type InventoryHandler struct {
	uc *inventory.AdjustStockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.AdjustStockUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// AdjustStock godoc
// @Summary      Registrar movimiento de inventario
// @Description  Reabasto, devolución o ajuste con delta con signo; nunca deja negativo un producto con control de stock.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, delta, note"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	mov, err := h.uc.Adjust(c.UserContext(), GetPrincipal(c), inventory.AdjustInput{
		ProductID: in.ProductID,
		Delta:     in.Delta,
		Note:      in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// ListMovements GET /api/inventory/products/:id/movements
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	list, err := h.uc.ListMovements(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(fiber.Map{
		"total":     len(out),
		"movements": out,
	})
}
