package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/fiscal"
	"github.com/jhoicas/ventas-cfdi/pkg/sat"
)

// PreviewParty datos visibles de emisor o receptor.
type PreviewParty struct {
	Name      string `json:"name"`
	RFC       string `json:"rfc"`
	TaxRegime string `json:"tax_regime"`
	ZipCode   string `json:"zip_code"`
	CfdiUse   string `json:"cfdi_use,omitempty"`
	Email     string `json:"email,omitempty"`
}

// PreviewLine línea de la representación gráfica.
type PreviewLine struct {
	Description string          `json:"description"`
	ProductKey  string          `json:"product_key"`
	UnitKey     string          `json:"unit_key"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Taxes       decimal.Decimal `json:"taxes"`
}

// Preview proyección de solo lectura para el renderizador; no expone material del CSD
// ni credenciales del PAC.
type Preview struct {
	InvoiceID       string          `json:"invoice_id,omitempty"`
	SaleID          string          `json:"sale_id"`
	Status          string          `json:"status"`
	Serie           string          `json:"serie,omitempty"`
	Folio           string          `json:"folio,omitempty"`
	UUID            string          `json:"uuid,omitempty"`
	VerificationURL string          `json:"verification_url,omitempty"`
	IssuedAt        time.Time       `json:"issued_at"`
	Issuer          PreviewParty    `json:"issuer"`
	Receiver        PreviewParty    `json:"receiver"`
	Lines           []PreviewLine   `json:"lines"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Taxes           decimal.Decimal `json:"taxes"`
	Total           decimal.Decimal `json:"total"`
	Validation      fiscal.Result   `json:"validation"`
}

// Preview arma la proyección de una factura con la validación fiscal de sus líneas.
func (s *InvoiceService) Preview(ctx context.Context, p entity.Principal, invoiceID string) (*Preview, error) {
	inv, err := s.Get(ctx, p, invoiceID)
	if err != nil {
		return nil, err
	}
	sale, err := s.loadSale(ctx, p.CompanyID, inv.SaleID)
	if err != nil {
		return nil, err
	}
	company, err := s.loadCompany(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}
	vopts := s.cfg.Validation
	vopts.Now = s.now()

	pv := &Preview{
		InvoiceID:       inv.ID,
		SaleID:          sale.ID,
		Status:          inv.Status,
		Serie:           inv.Serie,
		Folio:           inv.Folio,
		UUID:            inv.UUID,
		VerificationURL: inv.VerificationURL,
		IssuedAt:        inv.CreatedAt,
		Issuer:          issuerParty(company),
		Receiver:        receiverParty(sale.Customer, company.Address.ZipCode),
		Subtotal:        inv.Subtotal,
		Taxes:           inv.Taxes,
		Total:           inv.Total,
		Validation:      fiscal.ValidateInvoice(inv, sale, company, vopts),
	}
	if inv.StampedAt != nil {
		pv.IssuedAt = *inv.StampedAt
	}
	for _, it := range inv.Items {
		pv.Lines = append(pv.Lines, PreviewLine{
			Description: it.Description,
			ProductKey:  it.SatProductKey,
			UnitKey:     it.SatUnitKey,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
			Taxes:       it.IEPS.Add(it.IVA),
		})
	}
	return pv, nil
}

func issuerParty(c *entity.Company) PreviewParty {
	return PreviewParty{
		Name:      firstNonEmpty(c.LegalName, c.Name),
		RFC:       c.RFC,
		TaxRegime: c.TaxRegime,
		ZipCode:   c.Address.ZipCode,
		Email:     c.Email,
	}
}

func receiverParty(c *entity.Customer, issuerZip string) PreviewParty {
	if c == nil {
		return PreviewParty{Name: sat.GenericPublicName, RFC: sat.GenericRFC, ZipCode: issuerZip}
	}
	if c.IsPublic() {
		return PreviewParty{
			Name:      sat.GenericPublicName,
			RFC:       sat.GenericRFC,
			TaxRegime: sat.RegimeNoFiscalDuties,
			ZipCode:   issuerZip,
			CfdiUse:   sat.UseNoFiscalEffects,
			Email:     c.Email,
		}
	}
	return PreviewParty{
		Name:      firstNonEmpty(c.Fiscal.LegalName, c.Name),
		RFC:       c.Fiscal.RFC,
		TaxRegime: c.Fiscal.TaxRegime,
		ZipCode:   c.Fiscal.ZipCode,
		CfdiUse:   c.Fiscal.CfdiUse,
		Email:     c.Email,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// PDFUseCase representación gráfica de la factura.
type PDFUseCase struct {
	invoices *InvoiceService
	renderer Renderer
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(invoices *InvoiceService, renderer Renderer) *PDFUseCase {
	return &PDFUseCase{invoices: invoices, renderer: renderer}
}

// Render genera el PDF. Los borradores también se pueden previsualizar mientras tengan líneas.
func (uc *PDFUseCase) Render(ctx context.Context, p entity.Principal, invoiceID string) (pdf []byte, filename string, err error) {
	pv, err := uc.invoices.Preview(ctx, p, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if !pv.Validation.CanPreview {
		return nil, "", domain.InvalidInputf("la factura no tiene líneas para previsualizar")
	}
	pdf, err = uc.renderer.RenderInvoice(ctx, pv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: %w", err)
	}
	filename = fmt.Sprintf("borrador-%s.pdf", shortID(pv.InvoiceID))
	if pv.UUID != "" {
		filename = fmt.Sprintf("factura-%s%s.pdf", pv.Serie, pv.Folio)
	}
	return pdf, filename, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
