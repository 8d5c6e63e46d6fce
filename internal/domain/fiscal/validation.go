// Package fiscal contiene las reglas de validación y cálculo de impuestos del CFDI 4.0.
// Todo es puro: no accede a repositorios ni al reloj salvo por Options.Now.
package fiscal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/pkg/sat"
)

// Result clasifica los hallazgos: Errors bloquean el timbrado, Warnings no.
type Result struct {
	Errors     []domain.ValidationIssue `json:"errors"`
	Warnings   []domain.ValidationIssue `json:"warnings"`
	CanStamp   bool                     `json:"can_stamp"`
	CanPreview bool                     `json:"can_preview"`
}

// Options parámetros de la validación.
type Options struct {
	Now       time.Time
	MinAmount decimal.Decimal // advertencia si el total es menor
	MaxAmount decimal.Decimal // advertencia si el total es mayor; cero desactiva
}

// DefaultOptions umbrales por defecto.
func DefaultOptions() Options {
	return Options{
		MinAmount: decimal.NewFromInt(1),
		MaxAmount: decimal.NewFromInt(500000),
	}
}

// Validate inspecciona la venta (con Customer y Product de cada línea resueltos) y el perfil
// fiscal de la empresa. El orden de los hallazgos es estable: empresa, certificado, cliente, líneas.
func Validate(sale *entity.Sale, company *entity.Company, opts Options) Result {
	errs := issuerIssues(company, opts.Now)
	if sale == nil {
		errs = append(errs, domain.ValidationIssue{Field: "sale", Message: "venta no disponible"})
		return finish(errs, nil, false)
	}
	errs = append(errs, receiverIssues(sale.Customer)...)

	lines := make([]conceptKeys, len(sale.Items))
	for i := range sale.Items {
		it := &sale.Items[i]
		lines[i] = conceptKeys{product: it.ProductKey(), unit: it.UnitKey()}
	}
	errs = append(errs, conceptIssues(lines)...)

	warns := emailWarning(sale.Customer)
	for i := range sale.Items {
		if sale.Items[i].Description == "" {
			warns = append(warns, domain.ValidationIssue{
				Field:   fmt.Sprintf("items[%d].description", i),
				Message: "sin descripción; se usará el nombre del producto",
			})
		}
	}
	if len(sale.Items) > 0 {
		warns = append(warns, amountWarnings(sale.TotalAmount, opts)...)
	}
	return finish(errs, warns, len(sale.Items) > 0)
}

// ValidateInvoice valida el comprobante que se va a sellar: emisor y receptor como Validate,
// pero los conceptos salen de las líneas de la factura, que son las que se escriben en el XML.
func ValidateInvoice(inv *entity.Invoice, sale *entity.Sale, company *entity.Company, opts Options) Result {
	errs := issuerIssues(company, opts.Now)
	if inv == nil {
		errs = append(errs, domain.ValidationIssue{Field: "invoice", Message: "factura no disponible"})
		return finish(errs, nil, false)
	}
	var cust *entity.Customer
	if sale != nil {
		cust = sale.Customer
	}
	errs = append(errs, receiverIssues(cust)...)

	lines := make([]conceptKeys, len(inv.Items))
	for i := range inv.Items {
		lines[i] = conceptKeys{product: inv.Items[i].SatProductKey, unit: inv.Items[i].SatUnitKey}
	}
	errs = append(errs, conceptIssues(lines)...)
	for i := range inv.Items {
		if inv.Items[i].Description == "" {
			errs = append(errs, domain.ValidationIssue{
				Field:   fmt.Sprintf("items[%d].description", i),
				Message: "el concepto no tiene descripción",
			})
		}
	}

	warns := emailWarning(cust)
	if len(inv.Items) > 0 {
		warns = append(warns, amountWarnings(inv.Total, opts)...)
	}
	return finish(errs, warns, len(inv.Items) > 0)
}

type conceptKeys struct {
	product string
	unit    string
}

func issuerIssues(company *entity.Company, now time.Time) []domain.ValidationIssue {
	if now.IsZero() {
		now = time.Now()
	}
	if company == nil {
		return []domain.ValidationIssue{{Field: "company", Message: "perfil fiscal de la empresa no disponible"}}
	}
	errs := companyIssues(company)
	csd := func(msg string) {
		errs = append(errs, domain.ValidationIssue{Field: "company.csd", Message: msg})
	}
	switch {
	case !company.CSD.HasMaterial():
		csd("certificado de sello digital (CSD) no configurado")
	case company.CSD.NotAfter.IsZero():
		csd("vigencia del CSD no registrada")
	case !now.Before(company.CSD.NotAfter):
		csd(fmt.Sprintf("CSD vencido desde %s", company.CSD.NotAfter.Format("2006-01-02")))
	}
	return errs
}

func receiverIssues(cust *entity.Customer) []domain.ValidationIssue {
	switch {
	case cust == nil:
		return []domain.ValidationIssue{{Field: "customer", Message: "cliente no asociado a la venta"}}
	case cust.IsPublic():
		return nil
	}
	f := cust.Fiscal
	if f.LegalName == "" {
		f.LegalName = cust.Name
	}
	return f.Issues("customer", true)
}

func conceptIssues(lines []conceptKeys) []domain.ValidationIssue {
	if len(lines) == 0 {
		return []domain.ValidationIssue{{Field: "items", Message: "la venta no tiene líneas"}}
	}
	var errs []domain.ValidationIssue
	add := func(field, msg string) {
		errs = append(errs, domain.ValidationIssue{Field: field, Message: msg})
	}
	for i, l := range lines {
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case l.product == "":
			add(field+".product_key", "clave de producto SAT faltante")
		case !sat.ValidProductKey(l.product):
			add(field+".product_key", "clave de producto SAT inválida: "+l.product)
		}
		switch {
		case l.unit == "":
			add(field+".unit_key", "clave de unidad SAT faltante")
		case !sat.ValidUnitKey(l.unit):
			add(field+".unit_key", "clave de unidad SAT inválida: "+l.unit)
		}
	}
	return errs
}

func emailWarning(cust *entity.Customer) []domain.ValidationIssue {
	if cust == nil || cust.Email != "" {
		return nil
	}
	return []domain.ValidationIssue{{
		Field:   "customer.email",
		Message: "el cliente no tiene email; la factura no podrá enviarse por correo",
	}}
}

func amountWarnings(total decimal.Decimal, opts Options) []domain.ValidationIssue {
	var warns []domain.ValidationIssue
	if !opts.MinAmount.IsZero() && total.LessThan(opts.MinAmount) {
		warns = append(warns, domain.ValidationIssue{
			Field:   "total",
			Message: fmt.Sprintf("el total %s es menor al mínimo esperado %s", total.StringFixed(2), opts.MinAmount.StringFixed(2)),
		})
	}
	if !opts.MaxAmount.IsZero() && total.GreaterThan(opts.MaxAmount) {
		warns = append(warns, domain.ValidationIssue{
			Field:   "total",
			Message: fmt.Sprintf("el total %s supera el máximo esperado %s", total.StringFixed(2), opts.MaxAmount.StringFixed(2)),
		})
	}
	return warns
}

func companyIssues(c *entity.Company) []domain.ValidationIssue {
	issues := entity.FiscalFields{
		RFC:       c.RFC,
		LegalName: c.LegalName,
		TaxRegime: c.TaxRegime,
		ZipCode:   c.Address.ZipCode,
	}.Issues("company", false)

	// El código postal se reporta como parte del domicilio.
	out := make([]domain.ValidationIssue, 0, len(issues))
	for _, is := range issues {
		if is.Field == "company.zip_code" {
			continue
		}
		out = append(out, is)
	}
	for _, f := range c.Address.MissingFields() {
		out = append(out, domain.ValidationIssue{
			Field:   "company.address." + f,
			Message: "domicilio fiscal incompleto: falta " + f,
		})
	}
	if c.Address.ZipCode != "" && !sat.ValidZipCode(c.Address.ZipCode) {
		out = append(out, domain.ValidationIssue{
			Field:   "company.address.zip_code",
			Message: "código postal fiscal inválido: " + c.Address.ZipCode,
		})
	}
	return out
}

func finish(errs, warns []domain.ValidationIssue, canPreview bool) Result {
	if errs == nil {
		errs = []domain.ValidationIssue{}
	}
	if warns == nil {
		warns = []domain.ValidationIssue{}
	}
	return Result{
		Errors:     errs,
		Warnings:   warns,
		CanStamp:   len(errs) == 0,
		CanPreview: canPreview,
	}
}
