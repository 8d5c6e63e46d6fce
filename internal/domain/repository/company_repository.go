package repository

import (
	"context"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// CompanyRepository lectura del perfil fiscal de la empresa.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}
