package sat

import (
	"net/url"

	"github.com/shopspring/decimal"
)

// VerificationBaseURL servicio público de verificación de CFDI.
const VerificationBaseURL = "https://verificacfdi.facturaelectronica.sat.gob.mx/default.aspx"

// VerificationURL arma la URL de consulta pública que se imprime en la representación gráfica:
// id (UUID), re (RFC emisor), rr (RFC receptor), tt (total) y fe (últimos 8 caracteres del sello).
func VerificationURL(base, uuid, issuerRFC, receiverRFC string, total decimal.Decimal, seal string) string {
	if base == "" {
		base = VerificationBaseURL
	}
	fe := seal
	if len(fe) > 8 {
		fe = fe[len(fe)-8:]
	}
	q := url.Values{}
	q.Set("id", uuid)
	q.Set("re", issuerRFC)
	q.Set("rr", receiverRFC)
	q.Set("tt", total.StringFixed(6))
	q.Set("fe", fe)
	return base + "?" + q.Encode()
}
