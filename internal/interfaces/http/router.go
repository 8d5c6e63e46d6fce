package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/application/inventory"
	"github.com/jhoicas/ventas-cfdi/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateSale  *sales.CreateSaleUseCase
	Quotations  *sales.QuotationUseCase
	AdjustStock *inventory.AdjustStockUseCase
	Invoices    *billing.InvoiceService
	PDF         *billing.PDFUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(RoleAdmin, RoleCashier, RoleSeller, RoleWarehouse)

	salesHandler := NewSalesHandler(deps.CreateSale, deps.Quotations, deps.Invoices)
	salesGroup := api.Group("/sales", RequireRole(RoleAdmin, RoleCashier, RoleSeller))
	salesGroup.Post("/", salesHandler.CreateSale)
	salesGroup.Get("/:id", salesHandler.GetSale)
	salesGroup.Get("/:id/fiscal-validation", salesHandler.ValidateSale)

	quotations := api.Group("/quotations", RequireRole(RoleAdmin, RoleCashier, RoleSeller))
	quotations.Post("/", salesHandler.CreateQuotation)
	quotations.Get("/:id", salesHandler.GetQuotation)
	quotations.Post("/:id/convert", salesHandler.ConvertQuotation)
	quotations.Post("/:id/reject", salesHandler.RejectQuotation)

	inventoryHandler := NewInventoryHandler(deps.AdjustStock)
	inv := api.Group("/inventory")
	inv.Post("/movements", RequireRole(RoleAdmin, RoleWarehouse), inventoryHandler.AdjustStock)
	inv.Get("/products/:id/movements", anyRole, inventoryHandler.ListMovements)

	invoiceHandler := NewInvoiceHandler(deps.Invoices, deps.PDF)
	invoices := api.Group("/invoices", RequireRole(RoleAdmin, RoleCashier, RoleSeller))
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/stamp", invoiceHandler.Stamp)
	invoices.Post("/:id/cancel", RequireRole(RoleAdmin), invoiceHandler.Cancel)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Get("/:id/preview", invoiceHandler.Preview)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
}
