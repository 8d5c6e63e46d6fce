package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo ledger de inventario. Solo inserción.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, company_id, product_id, user_id, type, quantity, previous_stock, new_stock, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.ProductID, m.UserID, m.Type, m.Quantity,
		m.PreviousStock, m.NewStock, m.Note, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByProduct movimientos del producto en orden de inserción.
func (r *MovementRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.Movement, error) {
	query := `
		SELECT id, company_id, product_id, user_id, type, quantity, previous_stock, new_stock, note, created_at
		FROM inventory_movements
		WHERE company_id = $1 AND product_id = $2
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, companyID, productID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.UserID, &m.Type, &m.Quantity,
			&m.PreviousStock, &m.NewStock, &m.Note, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
