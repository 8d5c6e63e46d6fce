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

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo lectura del perfil fiscal, credenciales PAC y CSD de la empresa.
type CompanyRepo struct {
	q Querier
}

func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `
		SELECT id, name, rfc, legal_name, tax_regime, email,
		       street, exterior_number, interior_number, neighborhood, city, state, country, zip_code,
		       pac_user, pac_password,
		       csd_certificate, csd_private_key, csd_password, csd_cert_number, csd_not_after,
		       sandbox, created_at, updated_at
		FROM companies WHERE id = $1`
	var c entity.Company
	var notAfter *time.Time
	a := &c.Address
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.RFC, &c.LegalName, &c.TaxRegime, &c.Email,
		&a.Street, &a.ExteriorNumber, &a.InteriorNumber, &a.Neighborhood, &a.City, &a.State, &a.Country, &a.ZipCode,
		&c.PAC.User, &c.PAC.Password,
		&c.CSD.Certificate, &c.CSD.PrivateKey, &c.CSD.Password, &c.CSD.CertNumber, &notAfter,
		&c.Sandbox, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	if notAfter != nil {
		c.CSD.NotAfter = *notAfter
	}
	return &c, nil
}
