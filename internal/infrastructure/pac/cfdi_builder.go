package pac

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/pkg/sat"
)

// Namespaces CFDI 4.0.
const (
	NsCFDI = "http://www.sat.gob.mx/cfd/4"
	NsTFD  = "http://www.sat.gob.mx/TimbreFiscalDigital"
	nsXsi  = "http://www.w3.org/2001/XMLSchema-instance"

	schemaLocationCFDI = "http://www.sat.gob.mx/cfd/4 http://www.sat.gob.mx/sitio_internet/cfd/4/cfdv40.xsd"
	dateLayout         = "2006-01-02T15:04:05"
)

var mexicoCity = loadLocation("America/Mexico_City")

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("CST", -6*60*60)
	}
	return loc
}

// transfer traslado agrupado para el nodo Impuestos del comprobante.
type transfer struct {
	tax    string
	factor string
	rate   decimal.Decimal
	base   decimal.Decimal
	amount decimal.Decimal
}

func (t transfer) key() string {
	return t.tax + "|" + t.factor + "|" + t.rate.StringFixed(6)
}

// BuildCFDI arma el comprobante de ingreso sin Sello. Certificado y NoCertificado
// se incluyen porque forman parte de la cadena sellada.
func BuildCFDI(in billing.DocumentInput, cred *Credential) (*etree.Document, error) {
	if in.Invoice == nil || in.Sale == nil || in.Company == nil {
		return nil, errors.New("cfdi: faltan factura, venta o empresa")
	}
	issuer, err := in.Company.Issuer()
	if err != nil {
		return nil, fmt.Errorf("cfdi: emisor: %w", err)
	}
	receiver := entity.PublicFiscalInfo(issuer.ZipCode())
	if in.Sale.Customer != nil {
		receiver, err = in.Sale.Customer.Receiver(issuer.ZipCode())
		if err != nil {
			return nil, fmt.Errorf("cfdi: receptor: %w", err)
		}
	}
	inv := in.Invoice

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("cfdi:Comprobante")
	root.CreateAttr("xmlns:cfdi", NsCFDI)
	root.CreateAttr("xmlns:xsi", nsXsi)
	root.CreateAttr("xsi:schemaLocation", schemaLocationCFDI)
	root.CreateAttr("Version", sat.CFDIVersion)
	root.CreateAttr("Fecha", in.IssuedAt.In(mexicoCity).Format(dateLayout))
	root.CreateAttr("FormaPago", sat.PaymentCash)
	root.CreateAttr("NoCertificado", cred.CertNumber)
	root.CreateAttr("Certificado", base64.StdEncoding.EncodeToString(cred.Cert.Raw))
	root.CreateAttr("SubTotal", money(inv.Subtotal))
	root.CreateAttr("Moneda", sat.CurrencyMXN)
	root.CreateAttr("Total", money(inv.Total))
	root.CreateAttr("TipoDeComprobante", sat.VoucherIncome)
	root.CreateAttr("Exportacion", sat.ExportNotApply)
	root.CreateAttr("MetodoPago", sat.PaymentSingle)
	root.CreateAttr("LugarExpedicion", issuer.ZipCode())

	emisor := root.CreateElement("cfdi:Emisor")
	emisor.CreateAttr("Rfc", issuer.RFC())
	emisor.CreateAttr("Nombre", issuer.LegalName())
	emisor.CreateAttr("RegimenFiscal", issuer.TaxRegime())

	receptor := root.CreateElement("cfdi:Receptor")
	receptor.CreateAttr("Rfc", receiver.RFC())
	receptor.CreateAttr("Nombre", receiver.LegalName())
	receptor.CreateAttr("DomicilioFiscalReceptor", receiver.ZipCode())
	receptor.CreateAttr("RegimenFiscalReceptor", receiver.TaxRegime())
	receptor.CreateAttr("UsoCFDI", receiver.CfdiUse())

	conceptos := root.CreateElement("cfdi:Conceptos")
	grouped := map[string]*transfer{}
	for i := range inv.Items {
		writeConcept(conceptos, &inv.Items[i], grouped)
	}
	writeTaxSummary(root, grouped)
	return doc, nil
}

func writeConcept(parent *etree.Element, it *entity.InvoiceItem, grouped map[string]*transfer) {
	c := parent.CreateElement("cfdi:Concepto")
	c.CreateAttr("ClaveProdServ", it.SatProductKey)
	c.CreateAttr("Cantidad", it.Quantity.String())
	c.CreateAttr("ClaveUnidad", it.SatUnitKey)
	c.CreateAttr("Descripcion", it.Description)
	c.CreateAttr("ValorUnitario", money(it.UnitPrice))
	c.CreateAttr("Importe", money(it.Subtotal))
	c.CreateAttr("ObjetoImp", sat.TaxObjectYes)

	traslados := c.CreateElement("cfdi:Impuestos").CreateElement("cfdi:Traslados")
	if it.IEPSRate.IsPositive() {
		t := transfer{tax: sat.TaxIEPS, factor: sat.FactorRate, rate: it.IEPSRate, base: it.Subtotal, amount: it.IEPS}
		writeTransfer(traslados, t)
		accumulate(grouped, t)
	}
	ivaBase := it.Subtotal.Add(it.IEPS)
	if it.IVAExempt {
		t := transfer{tax: sat.TaxIVA, factor: sat.FactorExempt, base: ivaBase}
		writeTransfer(traslados, t)
		accumulate(grouped, t)
		return
	}
	t := transfer{tax: sat.TaxIVA, factor: sat.FactorRate, rate: it.IVARate, base: ivaBase, amount: it.IVA}
	writeTransfer(traslados, t)
	accumulate(grouped, t)
}

func writeTransfer(parent *etree.Element, t transfer) {
	el := parent.CreateElement("cfdi:Traslado")
	el.CreateAttr("Base", money(t.base))
	el.CreateAttr("Impuesto", t.tax)
	el.CreateAttr("TipoFactor", t.factor)
	if t.factor == sat.FactorExempt {
		return
	}
	el.CreateAttr("TasaOCuota", t.rate.StringFixed(6))
	el.CreateAttr("Importe", money(t.amount))
}

func accumulate(grouped map[string]*transfer, t transfer) {
	if g, ok := grouped[t.key()]; ok {
		g.base = g.base.Add(t.base)
		g.amount = g.amount.Add(t.amount)
		return
	}
	grouped[t.key()] = &t
}

// writeTaxSummary nodo Impuestos del comprobante; los exentos no suman al total trasladado.
func writeTaxSummary(root *etree.Element, grouped map[string]*transfer) {
	if len(grouped) == 0 {
		return
	}
	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := decimal.Zero
	taxable := false
	for _, k := range keys {
		if g := grouped[k]; g.factor != sat.FactorExempt {
			total = total.Add(g.amount)
			taxable = true
		}
	}
	impuestos := root.CreateElement("cfdi:Impuestos")
	if taxable {
		impuestos.CreateAttr("TotalImpuestosTrasladados", money(total))
	}
	traslados := impuestos.CreateElement("cfdi:Traslados")
	for _, k := range keys {
		writeTransfer(traslados, *grouped[k])
	}
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }
