package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-cfdi/internal/application/dto"
	"github.com/jhoicas/ventas-cfdi/internal/domain"
)

// errorStatus clase de error -> (status, código estable). El orden importa: los tipos
// con detalle se resuelven antes que los sentinels genéricos.
var errorStatus = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrValidationFailed, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED"},
	{domain.ErrAlreadyConverted, fiber.StatusConflict, "ALREADY_CONVERTED"},
	{domain.ErrDuplicateInvoice, fiber.StatusConflict, "DUPLICATE_INVOICE"},
	{domain.ErrPacUnavailable, fiber.StatusServiceUnavailable, "PAC_UNAVAILABLE"},
	{domain.ErrTransactionFailed, fiber.StatusConflict, "TRANSACTION_FAILED"},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrStampInProgress, fiber.StatusConflict, "STAMP_IN_PROGRESS"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// respondError traduce un error de negocio a su respuesta. Los errores no clasificados
// se devuelven a Fiber para que ErrorHandler los registre como 500.
func respondError(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if !errors.Is(err, e.target) {
			continue
		}
		body := dto.ErrorResponse{Code: e.code, Message: err.Error()}
		var vf *domain.ValidationFailedError
		if errors.As(err, &vf) {
			body.Issues = vf.Issues
		}
		if e.status == fiber.StatusServiceUnavailable {
			c.Set(fiber.HeaderRetryAfter, "30")
		}
		return c.Status(e.status).JSON(body)
	}
	return err
}

// ErrorHandler respuesta final de Fiber: registra el error y responde sin filtrar detalles internos.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("request_id", requestID(c)).
			Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
