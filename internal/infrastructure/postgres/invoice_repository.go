package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const activeSaleIndex = "uq_invoices_active_sale"

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera. El índice parcial uq_invoices_active_sale
// garantiza una sola factura no cancelada por venta.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, company_id, sale_id, customer_id, status, subtotal, taxes, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.CompanyID, inv.SaleID, inv.CustomerID, inv.Status,
		inv.Subtotal, inv.Taxes, inv.Total, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && constraintName(err) == activeSaleIndex {
			return fmt.Errorf("%w: venta %s", domain.ErrDuplicateInvoice, inv.SaleID)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateItem persiste una línea; las líneas no se actualizan después.
func (r *InvoiceRepo) CreateItem(ctx context.Context, it *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, sale_item_id, product_id, description, sat_product_key, sat_unit_key,
		                           quantity, unit_price, subtotal, ieps_rate, ieps, iva_rate, iva_exempt, iva)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.InvoiceID, it.SaleItemID, it.ProductID, it.Description, it.SatProductKey, it.SatUnitKey,
		it.Quantity, it.UnitPrice, it.Subtotal, it.IEPSRate, it.IEPS, it.IVARate, it.IVAExempt, it.IVA,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

const invoiceColumns = `
	SELECT id, company_id, sale_id, customer_id, status, serie, folio, uuid, verification_url,
	       subtotal, taxes, total, stamped_xml, stamped_at, cancelled_at, cancellation_motive,
	       replacement_uuid, created_at, updated_at
	FROM invoices`

// GetByID factura completa con sus líneas.
func (r *InvoiceRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	inv, err := r.scanOne(ctx, invoiceColumns+` WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil || inv == nil {
		return inv, err
	}
	if inv.Items, err = r.items(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetForUpdate cabecera con la fila bloqueada.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	return r.scanOne(ctx, invoiceColumns+` WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
}

func (r *InvoiceRepo) GetActiveBySale(ctx context.Context, companyID, saleID string) (*entity.Invoice, error) {
	return r.scanOne(ctx, invoiceColumns+` WHERE company_id = $1 AND sale_id = $2 AND status <> 'cancelled'`, companyID, saleID)
}

func (r *InvoiceRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.Invoice, error) {
	var inv entity.Invoice
	var serie, folio, uuid, xml *string
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&inv.ID, &inv.CompanyID, &inv.SaleID, &inv.CustomerID, &inv.Status,
		&serie, &folio, &uuid, &inv.VerificationURL,
		&inv.Subtotal, &inv.Taxes, &inv.Total, &xml, &inv.StampedAt, &inv.CancelledAt,
		&inv.CancellationMotive, &inv.ReplacementUUID, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.Serie = derefStr(serie)
	inv.Folio = derefStr(folio)
	inv.UUID = derefStr(uuid)
	inv.StampedXML = derefStr(xml)
	return &inv, nil
}

func (r *InvoiceRepo) items(ctx context.Context, invoiceID string) ([]entity.InvoiceItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, sale_item_id, product_id, description, sat_product_key, sat_unit_key,
		       quantity, unit_price, subtotal, ieps_rate, ieps, iva_rate, iva_exempt, iva
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var items []entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.SaleItemID, &it.ProductID, &it.Description,
			&it.SatProductKey, &it.SatUnitKey, &it.Quantity, &it.UnitPrice, &it.Subtotal,
			&it.IEPSRate, &it.IEPS, &it.IVARate, &it.IVAExempt, &it.IVA); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SaveStamp registra el timbre (estado, serie, folio, UUID, XML).
func (r *InvoiceRepo) SaveStamp(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET status = $3, serie = $4, folio = $5, uuid = $6, verification_url = $7,
		    stamped_xml = $8, stamped_at = $9, updated_at = $10
		WHERE company_id = $1 AND id = $2`
	return r.update(ctx, "save stamp", query,
		inv.CompanyID, inv.ID, inv.Status, nullIfEmpty(inv.Serie), nullIfEmpty(inv.Folio), nullIfEmpty(inv.UUID),
		inv.VerificationURL, nullIfEmpty(inv.StampedXML), inv.StampedAt, inv.UpdatedAt,
	)
}

// SaveCancellation registra la cancelación; el timbre se conserva.
func (r *InvoiceRepo) SaveCancellation(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET status = $3, cancelled_at = $4, cancellation_motive = $5, replacement_uuid = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2`
	return r.update(ctx, "save cancellation", query,
		inv.CompanyID, inv.ID, inv.Status, inv.CancelledAt, inv.CancellationMotive, inv.ReplacementUUID, inv.UpdatedAt,
	)
}

func (r *InvoiceRepo) update(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: factura %v no existe", op, args[1])
	}
	return nil
}

// Delete elimina un borrador; las líneas se borran primero.
func (r *InvoiceRepo) Delete(ctx context.Context, companyID, id string) error {
	if _, err := r.q.Exec(ctx,
		`DELETE FROM invoice_items WHERE invoice_id IN (SELECT id FROM invoices WHERE company_id = $1 AND id = $2 AND status = 'pending')`,
		companyID, id); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	if _, err := r.q.Exec(ctx,
		`DELETE FROM invoices WHERE company_id = $1 AND id = $2 AND status = 'pending'`, companyID, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}
