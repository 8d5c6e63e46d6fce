package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `
	id, company_id, sku, name, price, use_stock, stock, sat_product_key, sat_unit_key,
	unit_name, iva_rate, iva_exempt, ieps_rate, created_at, updated_at`

// GetByID obtiene un producto de la empresa.
func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT`+productColumns+` FROM products WHERE company_id = $1 AND id = $2`, companyID, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT`+productColumns+` FROM products WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
}

func (r *ProductRepo) get(ctx context.Context, query, companyID, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, companyID, id).Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Price, &p.UseStock, &p.Stock,
		&p.SatProductKey, &p.SatUnitKey, &p.UnitName, &p.IVARate, &p.IVAExempt, &p.IEPSRate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// UpdateStock escribe el stock resultante de un movimiento del ledger.
func (r *ProductRepo) UpdateStock(ctx context.Context, companyID, id string, stock decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $3, updated_at = $4 WHERE company_id = $1 AND id = $2`,
		companyID, id, stock, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock: producto %s no existe", id)
	}
	return nil
}
