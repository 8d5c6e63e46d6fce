package inventory

import (
	"context"

	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD, con repositorios atados a esa tx.
// Si fn devuelve error se hace rollback de todo.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}
