package repository

// Repos repositorios atados a una misma transacción (unidad de trabajo).
type Repos struct {
	Products   ProductRepository
	Customers  CustomerRepository
	Companies  CompanyRepository
	Movements  MovementRepository
	Sales      SaleRepository
	Quotations QuotationRepository
	Invoices   InvoiceRepository
}
