package entity

import (
	"time"

	"github.com/jhoicas/ventas-cfdi/pkg/sat"
)

// Customer cliente de la empresa. Los campos fiscales son opcionales
// mientras el cliente no se nombre en una factura.
type Customer struct {
	ID        string
	CompanyID string
	Name      string
	Email     string
	Phone     string
	Fiscal    FiscalFields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPublic true cuando la factura va a "público en general" (sin RFC o RFC genérico).
func (c *Customer) IsPublic() bool {
	return c.Fiscal.RFC == "" || sat.NormalizeRFC(c.Fiscal.RFC) == sat.GenericRFC
}

// Receiver devuelve el receptor validado del comprobante.
func (c *Customer) Receiver(issuerZip string) (FiscalInfo, error) {
	if c.IsPublic() {
		return PublicFiscalInfo(issuerZip), nil
	}
	f := c.Fiscal
	if f.LegalName == "" {
		f.LegalName = c.Name
	}
	return NewFiscalInfo(f, true)
}
