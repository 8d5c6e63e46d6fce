package sales

import (
	"context"

	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

// TxRunner unidad de trabajo: fn recibe repositorios atados a la misma transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}
