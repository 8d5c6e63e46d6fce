package sat

import (
	"fmt"
	"regexp"
	"strings"
)

// RFC genéricos definidos por el SAT.
const (
	GenericRFC = "XAXX010101000" // Público en general
	ForeignRFC = "XEXX010101000" // Residentes en el extranjero
)

var (
	rfcPattern        = regexp.MustCompile(`^[A-ZÑ&]{3,4}[0-9]{6}[A-Z0-9]{3}$`)
	zipPattern        = regexp.MustCompile(`^[0-9]{5}$`)
	productKeyPattern = regexp.MustCompile(`^[0-9]{8}$`)
	unitKeyPattern    = regexp.MustCompile(`^[A-Z0-9]{1,3}$`)
	certNumberPattern = regexp.MustCompile(`^[0-9]{20}$`)
)

// NormalizeRFC pasa a mayúsculas y quita espacios y guiones.
func NormalizeRFC(rfc string) string {
	r := strings.ToUpper(strings.TrimSpace(rfc))
	r = strings.ReplaceAll(r, "-", "")
	return strings.ReplaceAll(r, " ", "")
}

// ValidateRFC verifica la estructura del RFC (12 caracteres persona moral, 13 persona física)
// y que la fecha embebida sea plausible.
func ValidateRFC(rfc string) error {
	r := NormalizeRFC(rfc)
	if r == "" {
		return fmt.Errorf("sat: RFC vacío")
	}
	if !rfcPattern.MatchString(r) {
		return fmt.Errorf("sat: RFC %q con formato inválido", rfc)
	}
	rs := []rune(r)
	date := string(rs[len(rs)-9 : len(rs)-3])
	month := (date[2]-'0')*10 + (date[3] - '0')
	day := (date[4]-'0')*10 + (date[5] - '0')
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return fmt.Errorf("sat: RFC %q con fecha inválida", rfc)
	}
	return nil
}

// IsLegalEntity true para RFC de persona moral (12 caracteres).
func IsLegalEntity(rfc string) bool {
	return len([]rune(NormalizeRFC(rfc))) == 12
}

// IsGenericRFC true para los RFC genéricos de público en general y extranjero.
func IsGenericRFC(rfc string) bool {
	r := NormalizeRFC(rfc)
	return r == GenericRFC || r == ForeignRFC
}

// ValidZipCode código postal de 5 dígitos (c_CodigoPostal).
func ValidZipCode(zip string) bool { return zipPattern.MatchString(strings.TrimSpace(zip)) }

// ValidProductKey clave c_ClaveProdServ de 8 dígitos.
func ValidProductKey(key string) bool { return productKeyPattern.MatchString(key) }

// ValidUnitKey clave c_ClaveUnidad (p. ej. H87, E48, KGM).
func ValidUnitKey(key string) bool { return unitKeyPattern.MatchString(key) }

// ValidCertNumber número de certificado (NoCertificado) de 20 dígitos.
func ValidCertNumber(n string) bool { return certNumberPattern.MatchString(n) }

// ValidTaxRegime indica si el código existe en c_RegimenFiscal.
func ValidTaxRegime(code string) bool {
	_, ok := TaxRegimes[code]
	return ok
}

// ValidCfdiUse indica si el código existe en c_UsoCFDI.
func ValidCfdiUse(code string) bool {
	_, ok := CfdiUses[code]
	return ok
}

// ValidCancelMotive indica si el motivo de cancelación existe.
func ValidCancelMotive(code string) bool {
	_, ok := CancelMotives[code]
	return ok
}
