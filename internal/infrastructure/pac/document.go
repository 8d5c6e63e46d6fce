package pac

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// facts datos del comprobante que se necesitan tras el timbrado.
type facts struct {
	serie       string
	folio       string
	issuerRFC   string
	receiverRFC string
	total       decimal.Decimal
	seal        string
	uuid        string
	stampedAt   time.Time
}

// readFacts lee el comprobante (sellado o timbrado). uuid y stampedAt solo existen si trae el
// complemento TimbreFiscalDigital.
func readFacts(xmlDoc []byte) (facts, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlDoc); err != nil {
		return facts{}, fmt.Errorf("cfdi: parsear comprobante: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "Comprobante" {
		return facts{}, fmt.Errorf("cfdi: la raíz no es un Comprobante")
	}
	f := facts{
		serie: root.SelectAttrValue("Serie", ""),
		folio: root.SelectAttrValue("Folio", ""),
		seal:  root.SelectAttrValue("Sello", ""),
	}
	total, err := decimal.NewFromString(root.SelectAttrValue("Total", "0"))
	if err != nil {
		return facts{}, fmt.Errorf("cfdi: Total inválido: %w", err)
	}
	f.total = total
	if e := root.SelectElement("Emisor"); e != nil {
		f.issuerRFC = e.SelectAttrValue("Rfc", "")
	}
	if r := root.SelectElement("Receptor"); r != nil {
		f.receiverRFC = r.SelectAttrValue("Rfc", "")
	}
	if tfd := root.FindElement("./Complemento/TimbreFiscalDigital"); tfd != nil {
		f.uuid = tfd.SelectAttrValue("UUID", "")
		if ts := tfd.SelectAttrValue("FechaTimbrado", ""); ts != "" {
			if at, err := time.ParseInLocation(dateLayout, ts, mexicoCity); err == nil {
				f.stampedAt = at
			}
		}
	}
	return f, nil
}
