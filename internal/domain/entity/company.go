package entity

import (
	"bytes"
	"time"
)

// Company perfil fiscal del tenant. Solo lectura para este core.
type Company struct {
	ID        string
	Name      string
	RFC       string
	LegalName string
	TaxRegime string
	Email     string
	Address   FiscalAddress
	PAC       PACCredentials
	CSD       CSD
	Sandbox   bool // timbrado contra el ambiente de pruebas del PAC
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FiscalAddress domicilio fiscal registrado.
type FiscalAddress struct {
	Street         string
	ExteriorNumber string
	InteriorNumber string
	Neighborhood   string
	City           string
	State          string
	Country        string
	ZipCode        string
}

// MissingFields nombres de los campos obligatorios vacíos, en orden fijo.
func (a FiscalAddress) MissingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"street", a.Street},
		{"exterior_number", a.ExteriorNumber},
		{"neighborhood", a.Neighborhood},
		{"city", a.City},
		{"state", a.State},
		{"zip_code", a.ZipCode},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// PACCredentials credenciales del proveedor de certificación.
type PACCredentials struct {
	User     string
	Password string
}

// CSD certificado de sello digital. Certificate puede ser PEM (con PrivateKey en PEM)
// o un contenedor PKCS#12 que ya incluye la llave.
type CSD struct {
	Certificate []byte
	PrivateKey  []byte
	Password    string
	CertNumber  string // NoCertificado (20 dígitos)
	NotAfter    time.Time
}

// IsBundle true si Certificate es un contenedor PKCS#12.
func (c CSD) IsBundle() bool {
	return len(c.Certificate) > 0 && !bytes.HasPrefix(bytes.TrimSpace(c.Certificate), []byte("-----BEGIN"))
}

// HasMaterial indica si hay certificado y llave utilizables.
func (c CSD) HasMaterial() bool {
	if len(c.Certificate) == 0 {
		return false
	}
	return c.IsBundle() || len(c.PrivateKey) > 0
}

// Issuer devuelve el emisor validado del comprobante.
func (c *Company) Issuer() (FiscalInfo, error) {
	return NewFiscalInfo(FiscalFields{
		RFC:       c.RFC,
		LegalName: c.LegalName,
		TaxRegime: c.TaxRegime,
		ZipCode:   c.Address.ZipCode,
	}, false)
}
