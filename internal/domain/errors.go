package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrValidationFailed  = errors.New("validación fiscal fallida")
	ErrAlreadyConverted  = errors.New("la cotización ya fue convertida")
	ErrDuplicateInvoice  = errors.New("la venta ya tiene una factura activa")
	ErrPacUnavailable    = errors.New("PAC no disponible")
	ErrTransactionFailed = errors.New("la transacción no pudo completarse")
	ErrInvalidState      = errors.New("transición de estado inválida")
	ErrStampInProgress   = errors.New("hay una operación fiscal en curso para la factura")
)

// classified son las clases de error que los casos de uso devuelven tal cual.
var classified = []error{
	ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrForbidden, ErrConflict,
	ErrInsufficientStock, ErrValidationFailed, ErrAlreadyConverted, ErrDuplicateInvoice,
	ErrPacUnavailable, ErrTransactionFailed, ErrInvalidState, ErrStampInProgress,
}

// IsClassified indica si err pertenece a la taxonomía de errores de negocio.
func IsClassified(err error) bool {
	for _, target := range classified {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// NotFoundError referencia ausente o de otra empresa.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError indica el producto y la cantidad disponible.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductID
	if e.ProductName != "" {
		name = fmt.Sprintf("%s (%s)", e.ProductName, e.ProductID)
	}
	return fmt.Sprintf("stock insuficiente para %s: disponible %s, solicitado %s",
		name, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ValidationIssue es un hallazgo de la validación fiscal.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationFailedError lleva la lista completa de errores bloqueantes.
type ValidationFailedError struct {
	Issues []ValidationIssue
}

func (e *ValidationFailedError) Error() string {
	fields := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		fields = append(fields, is.Field)
	}
	return fmt.Sprintf("validación fiscal fallida (%d errores): %s", len(e.Issues), strings.Join(fields, ", "))
}

func (e *ValidationFailedError) Is(target error) bool { return target == ErrValidationFailed }

// PacUnavailableError falla o timeout del proveedor de certificación.
// Unknown es true cuando no se sabe si el PAC procesó la solicitud (timeout).
type PacUnavailableError struct {
	Op      string
	Reason  string
	Code    string
	Unknown bool
	Err     error
}

func (e *PacUnavailableError) Error() string {
	msg := fmt.Sprintf("PAC no disponible (%s): %s", e.Op, e.Reason)
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	if e.Unknown {
		msg += "; resultado desconocido, consulte el estado antes de reintentar"
	}
	return msg
}

func (e *PacUnavailableError) Is(target error) bool { return target == ErrPacUnavailable }

func (e *PacUnavailableError) Unwrap() error { return e.Err }

// InvalidStateError transición no permitida desde el estado actual.
type InvalidStateError struct {
	Entity string
	ID     string
	Status string
	Op     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("no se puede %s %s %s en estado %q", e.Op, e.Entity, e.ID, e.Status)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// TransactionError falla atómica genérica; la operación completa puede reintentarse.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transacción fallida: %v", e.Op, e.Err)
}

func (e *TransactionError) Is(target error) bool { return target == ErrTransactionFailed }

func (e *TransactionError) Unwrap() error { return e.Err }

// InvalidInputf envuelve ErrInvalidInput con un detalle legible.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
