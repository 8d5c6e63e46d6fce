package entity

// Principal usuario autenticado que ejecuta una operación. CompanyID es el límite del tenant.
type Principal struct {
	UserID    string
	CompanyID string
	Email     string
	Role      string
}

// Valid indica si el principal trae usuario y empresa.
func (p Principal) Valid() bool {
	return p.UserID != "" && p.CompanyID != ""
}
