package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

var _ repository.QuotationRepository = (*QuotationRepo)(nil)

// QuotationRepo cotizaciones. Crear una cotización no toca el stock.
type QuotationRepo struct {
	q Querier
}

func NewQuotationRepository(q Querier) *QuotationRepo {
	return &QuotationRepo{q: q}
}

func (r *QuotationRepo) Create(ctx context.Context, qt *entity.Quotation) error {
	query := `
		INSERT INTO quotations (id, company_id, customer_id, user_id, status, total_amount, notes, valid_until, sale_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		qt.ID, qt.CompanyID, qt.CustomerID, qt.UserID, qt.Status, qt.TotalAmount, qt.Notes,
		qt.ValidUntil, nullIfEmpty(qt.SaleID), qt.CreatedAt, qt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quotation: %w", err)
	}
	return nil
}

func (r *QuotationRepo) CreateItem(ctx context.Context, it *entity.QuotationItem) error {
	query := `
		INSERT INTO quotation_items (id, quotation_id, product_id, quantity, unit_price, total, sat_product_key, sat_unit_key, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.QuotationID, it.ProductID, it.Quantity, it.UnitPrice, it.Total,
		it.SatProductKey, it.SatUnitKey, it.Description,
	)
	if err != nil {
		return fmt.Errorf("insert quotation item: %w", err)
	}
	return nil
}

const quotationSelect = `
	SELECT id, company_id, customer_id, user_id, status, total_amount, notes, valid_until, sale_id, created_at, updated_at
	FROM quotations WHERE company_id = $1 AND id = $2`

// GetByID cotización con sus líneas.
func (r *QuotationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Quotation, error) {
	qt, err := r.header(ctx, quotationSelect, companyID, id)
	if err != nil || qt == nil {
		return qt, err
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, quotation_id, product_id, quantity, unit_price, total, sat_product_key, sat_unit_key, description
		FROM quotation_items WHERE quotation_id = $1 ORDER BY position`, qt.ID)
	if err != nil {
		return nil, fmt.Errorf("list quotation items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.QuotationItem
		if err := rows.Scan(&it.ID, &it.QuotationID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Total,
			&it.SatProductKey, &it.SatUnitKey, &it.Description); err != nil {
			return nil, fmt.Errorf("scan quotation item: %w", err)
		}
		qt.Items = append(qt.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quotation items: %w", err)
	}
	return qt, nil
}

// GetForUpdate cabecera con la fila bloqueada; serializa conversiones concurrentes.
func (r *QuotationRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Quotation, error) {
	return r.header(ctx, quotationSelect+` FOR UPDATE`, companyID, id)
}

func (r *QuotationRepo) header(ctx context.Context, query, companyID, id string) (*entity.Quotation, error) {
	var qt entity.Quotation
	var saleID *string
	err := r.q.QueryRow(ctx, query, companyID, id).Scan(
		&qt.ID, &qt.CompanyID, &qt.CustomerID, &qt.UserID, &qt.Status, &qt.TotalAmount, &qt.Notes,
		&qt.ValidUntil, &saleID, &qt.CreatedAt, &qt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	qt.SaleID = derefStr(saleID)
	return &qt, nil
}

// UpdateStatus cambia el estado; saleID vacío conserva la venta registrada.
func (r *QuotationRepo) UpdateStatus(ctx context.Context, id, status, saleID string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE quotations
		SET status = $2, sale_id = COALESCE($3, sale_id), updated_at = $4
		WHERE id = $1`,
		id, status, nullIfEmpty(saleID), at,
	)
	if err != nil {
		return fmt.Errorf("update quotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update quotation: %s no existe", id)
	}
	return nil
}
