package dto

import "github.com/jhoicas/ventas-cfdi/internal/domain"

// ErrorResponse cuerpo de error HTTP. Issues solo viene en VALIDATION_FAILED y VALIDATION.
type ErrorResponse struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Issues  []domain.ValidationIssue `json:"issues,omitempty"`
}
