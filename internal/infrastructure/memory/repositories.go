package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.CustomerRepository  = (*CustomerRepo)(nil)
	_ repository.CompanyRepository   = (*CompanyRepo)(nil)
	_ repository.MovementRepository  = (*MovementRepo)(nil)
	_ repository.SaleRepository      = (*SaleRepo)(nil)
	_ repository.QuotationRepository = (*QuotationRepo)(nil)
	_ repository.InvoiceRepository   = (*InvoiceRepo)(nil)
)

// ── Productos ────────────────────────────────────────────────────────────────

type ProductRepo struct{ v view }

func (r *ProductRepo) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	d, done := r.v.open()
	defer done()
	p, ok := d.products[id]
	if !ok || p.CompanyID != companyID {
		return nil, nil
	}
	return &p, nil
}

// GetForUpdate el store serializa las transacciones completas; equivale a GetByID.
func (r *ProductRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *ProductRepo) UpdateStock(_ context.Context, companyID, id string, stock decimal.Decimal) error {
	d, done := r.v.open()
	defer done()
	if err := r.v.fault("products.update_stock"); err != nil {
		return err
	}
	p, ok := d.products[id]
	if !ok || p.CompanyID != companyID {
		return fmt.Errorf("update stock: producto %s no existe", id)
	}
	p.Stock = stock
	d.products[id] = p
	return nil
}

// ── Clientes y empresas ──────────────────────────────────────────────────────

type CustomerRepo struct{ v view }

func (r *CustomerRepo) GetByID(_ context.Context, companyID, id string) (*entity.Customer, error) {
	d, done := r.v.open()
	defer done()
	c, ok := d.customers[id]
	if !ok || c.CompanyID != companyID {
		return nil, nil
	}
	return &c, nil
}

type CompanyRepo struct{ v view }

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	d, done := r.v.open()
	defer done()
	c, ok := d.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ── Movimientos ──────────────────────────────────────────────────────────────

type MovementRepo struct{ v view }

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	d, done := r.v.open()
	defer done()
	if err := r.v.fault("movements.create"); err != nil {
		return err
	}
	d.movements = append(d.movements, *m)
	return nil
}

func (r *MovementRepo) ListByProduct(_ context.Context, companyID, productID string) ([]*entity.Movement, error) {
	d, done := r.v.open()
	defer done()
	var out []*entity.Movement
	for _, m := range d.movements {
		if m.CompanyID == companyID && m.ProductID == productID {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

// ── Ventas ───────────────────────────────────────────────────────────────────

type SaleRepo struct{ v view }

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	d, done := r.v.open()
	defer done()
	if err := r.v.fault("sales.create"); err != nil {
		return err
	}
	h := *sale
	h.Items, h.Customer = nil, nil
	d.sales[sale.ID] = h
	return nil
}

func (r *SaleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	d, done := r.v.open()
	defer done()
	if err := r.v.fault("sales.create_item"); err != nil {
		return err
	}
	it := *item
	it.Product = nil
	d.saleItems[item.SaleID] = append(slices.Clone(d.saleItems[item.SaleID]), it)
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, companyID, id string) (*entity.Sale, error) {
	d, done := r.v.open()
	defer done()
	s, ok := d.sales[id]
	if !ok || s.CompanyID != companyID {
		return nil, nil
	}
	s.Items = slices.Clone(d.saleItems[id])
	return &s, nil
}

// ── Cotizaciones ─────────────────────────────────────────────────────────────

type QuotationRepo struct{ v view }

func (r *QuotationRepo) Create(_ context.Context, q *entity.Quotation) error {
	d, done := r.v.open()
	defer done()
	h := *q
	h.Items = nil
	d.quotations[q.ID] = h
	return nil
}

func (r *QuotationRepo) CreateItem(_ context.Context, item *entity.QuotationItem) error {
	d, done := r.v.open()
	defer done()
	d.quotationItems[item.QuotationID] = append(slices.Clone(d.quotationItems[item.QuotationID]), *item)
	return nil
}

func (r *QuotationRepo) GetByID(_ context.Context, companyID, id string) (*entity.Quotation, error) {
	d, done := r.v.open()
	defer done()
	q, ok := d.quotations[id]
	if !ok || q.CompanyID != companyID {
		return nil, nil
	}
	q.Items = slices.Clone(d.quotationItems[id])
	return &q, nil
}

func (r *QuotationRepo) GetForUpdate(_ context.Context, companyID, id string) (*entity.Quotation, error) {
	d, done := r.v.open()
	defer done()
	q, ok := d.quotations[id]
	if !ok || q.CompanyID != companyID {
		return nil, nil
	}
	return &q, nil
}

func (r *QuotationRepo) UpdateStatus(_ context.Context, id, status, saleID string, at time.Time) error {
	d, done := r.v.open()
	defer done()
	if err := r.v.fault("quotations.update_status"); err != nil {
		return err
	}
	q, ok := d.quotations[id]
	if !ok {
		return fmt.Errorf("update quotation: %s no existe", id)
	}
	q.Status = status
	if saleID != "" {
		q.SaleID = saleID
	}
	q.UpdatedAt = at
	d.quotations[id] = q
	return nil
}

// ── Facturas ─────────────────────────────────────────────────────────────────

type InvoiceRepo struct{ v view }

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	d, done := r.v.open()
	defer done()
	for _, other := range d.invoices {
		if other.SaleID == inv.SaleID && other.CompanyID == inv.CompanyID && other.Status != entity.InvoiceStatusCancelled {
			return fmt.Errorf("%w: venta %s", domain.ErrDuplicateInvoice, inv.SaleID)
		}
	}
	h := *inv
	h.Items = nil
	d.invoices[inv.ID] = h
	return nil
}

func (r *InvoiceRepo) CreateItem(_ context.Context, item *entity.InvoiceItem) error {
	d, done := r.v.open()
	defer done()
	d.invoiceItems[item.InvoiceID] = append(slices.Clone(d.invoiceItems[item.InvoiceID]), *item)
	return nil
}

func (r *InvoiceRepo) GetByID(_ context.Context, companyID, id string) (*entity.Invoice, error) {
	d, done := r.v.open()
	defer done()
	inv, ok := d.invoices[id]
	if !ok || inv.CompanyID != companyID {
		return nil, nil
	}
	inv.Items = slices.Clone(d.invoiceItems[id])
	return &inv, nil
}

func (r *InvoiceRepo) GetForUpdate(_ context.Context, companyID, id string) (*entity.Invoice, error) {
	d, done := r.v.open()
	defer done()
	inv, ok := d.invoices[id]
	if !ok || inv.CompanyID != companyID {
		return nil, nil
	}
	return &inv, nil
}

func (r *InvoiceRepo) GetActiveBySale(_ context.Context, companyID, saleID string) (*entity.Invoice, error) {
	d, done := r.v.open()
	defer done()
	for _, inv := range d.invoices {
		if inv.CompanyID == companyID && inv.SaleID == saleID && inv.Status != entity.InvoiceStatusCancelled {
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *InvoiceRepo) SaveStamp(_ context.Context, inv *entity.Invoice) error {
	return r.save("invoices.save_stamp", inv)
}

func (r *InvoiceRepo) SaveCancellation(_ context.Context, inv *entity.Invoice) error {
	return r.save("invoices.save_cancellation", inv)
}

func (r *InvoiceRepo) save(op string, inv *entity.Invoice) error {
	d, done := r.v.open()
	defer done()
	if err := r.v.fault(op); err != nil {
		return err
	}
	if _, ok := d.invoices[inv.ID]; !ok {
		return fmt.Errorf("%s: factura %s no existe", op, inv.ID)
	}
	h := *inv
	h.Items = nil
	d.invoices[inv.ID] = h
	return nil
}

func (r *InvoiceRepo) Delete(_ context.Context, companyID, id string) error {
	d, done := r.v.open()
	defer done()
	inv, ok := d.invoices[id]
	if !ok || inv.CompanyID != companyID {
		return nil
	}
	delete(d.invoiceItems, id)
	delete(d.invoices, id)
	return nil
}
