package entity

import (
	"strings"

	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/pkg/sat"
)

// FiscalFields datos fiscales tal como llegan del catálogo; pueden estar incompletos.
type FiscalFields struct {
	RFC       string
	LegalName string
	TaxRegime string
	ZipCode   string
	CfdiUse   string
}

// Issues devuelve los problemas de los campos en orden fijo, con el prefijo indicado
// (p. ej. "customer"). requireUse exige el uso CFDI (solo receptores).
func (f FiscalFields) Issues(prefix string, requireUse bool) []domain.ValidationIssue {
	var issues []domain.ValidationIssue
	add := func(field, msg string) {
		issues = append(issues, domain.ValidationIssue{Field: prefix + "." + field, Message: msg})
	}
	switch {
	case strings.TrimSpace(f.RFC) == "":
		add("rfc", "RFC requerido")
	case sat.ValidateRFC(f.RFC) != nil:
		add("rfc", "RFC con formato inválido: "+f.RFC)
	}
	if strings.TrimSpace(f.LegalName) == "" {
		add("legal_name", "razón social requerida")
	}
	switch {
	case f.TaxRegime == "":
		add("tax_regime", "régimen fiscal requerido")
	case !sat.ValidTaxRegime(f.TaxRegime):
		add("tax_regime", "régimen fiscal desconocido: "+f.TaxRegime)
	}
	switch {
	case f.ZipCode == "":
		add("zip_code", "código postal fiscal requerido")
	case !sat.ValidZipCode(f.ZipCode):
		add("zip_code", "código postal fiscal inválido: "+f.ZipCode)
	}
	if requireUse {
		switch {
		case f.CfdiUse == "":
			add("cfdi_use", "uso de CFDI requerido")
		case !sat.ValidCfdiUse(f.CfdiUse):
			add("cfdi_use", "uso de CFDI desconocido: "+f.CfdiUse)
		}
	}
	return issues
}

// FiscalInfo valor fiscal validado de una de las partes del comprobante.
// Solo se obtiene mediante NewFiscalInfo o PublicFiscalInfo.
type FiscalInfo struct {
	rfc       string
	legalName string
	taxRegime string
	zipCode   string
	cfdiUse   string
}

// NewFiscalInfo construye el valor o devuelve *domain.ValidationFailedError con todos los problemas.
func NewFiscalInfo(f FiscalFields, requireUse bool) (FiscalInfo, error) {
	if issues := f.Issues("fiscal", requireUse); len(issues) > 0 {
		return FiscalInfo{}, &domain.ValidationFailedError{Issues: issues}
	}
	return FiscalInfo{
		rfc:       sat.NormalizeRFC(f.RFC),
		legalName: strings.ToUpper(strings.TrimSpace(f.LegalName)),
		taxRegime: f.TaxRegime,
		zipCode:   strings.TrimSpace(f.ZipCode),
		cfdiUse:   f.CfdiUse,
	}, nil
}

// PublicFiscalInfo receptor genérico "público en general"; el domicilio es el lugar de expedición.
func PublicFiscalInfo(issuerZip string) FiscalInfo {
	return FiscalInfo{
		rfc:       sat.GenericRFC,
		legalName: sat.GenericPublicName,
		taxRegime: sat.RegimeNoFiscalDuties,
		zipCode:   issuerZip,
		cfdiUse:   sat.UseNoFiscalEffects,
	}
}

func (f FiscalInfo) RFC() string       { return f.rfc }
func (f FiscalInfo) LegalName() string { return f.legalName }
func (f FiscalInfo) TaxRegime() string { return f.taxRegime }
func (f FiscalInfo) ZipCode() string   { return f.zipCode }
func (f FiscalInfo) CfdiUse() string   { return f.cfdiUse }

// IsZero true si no fue construido.
func (f FiscalInfo) IsZero() bool { return f.rfc == "" }
